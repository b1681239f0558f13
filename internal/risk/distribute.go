package risk

import (
	"fmt"

	"github.com/Re-Quant/calc/internal/numeric"
)

// DistributionArgs is the input of DistributeOrderVolumes.
type DistributionArgs struct {
	TradeType TradeType
	Deposit   float64
	// TotalTradeVolumeQuoted is the entries' volume in quote units.
	TotalTradeVolumeQuoted float64

	Entries []Order
	Stops   []Order
	Takes   []Order
}

// OrdersInfo is the result of DistributeOrderVolumes.
type OrdersInfo struct {
	Entries     []OrderInfo
	Stops       []OrderInfo
	Takes       []OrderInfo
	TotalVolume TotalVolumeInfo
}

// DistributeOrderVolumes splits the total volume over the order legs.
//
// A long position is bought in base units, so its exits are sized in base
// units first. A short position is sold for quote units, so every group is
// sized in quote units.
func DistributeOrderVolumes(args DistributionArgs) (OrdersInfo, error) {
	if !args.TradeType.Valid() {
		return OrdersInfo{}, &CalcError{Op: "distribute", Value: float64(args.TradeType), Err: ErrOutOfRangeArgument}
	}
	if len(args.Takes) == 0 {
		return OrdersInfo{}, &CalcError{Op: "distribute", Err: fmt.Errorf("%w: no take orders", ErrMissingArgument)}
	}

	var info OrdersInfo
	var err error
	if args.TradeType == Long {
		info, err = distributeLong(args)
	} else {
		info, err = distributeShort(args)
	}
	if err != nil {
		return OrdersInfo{}, err
	}

	total := &info.TotalVolume
	if !isFinite(total.Loss.Quoted) {
		return OrdersInfo{}, degenerate("distribute: loss", total.Loss.Quoted)
	}
	if !isFinite(total.Profit.Quoted) {
		return OrdersInfo{}, degenerate("distribute: profit", total.Profit.Quoted)
	}

	total.Loss.Percent = total.Loss.Quoted / args.Deposit
	total.Profit.Percent = total.Profit.Quoted / args.Deposit
	total.RiskRatio = total.Profit.Quoted / total.Loss.Quoted

	return info, nil
}

func distributeLong(args DistributionArgs) (OrdersInfo, error) {
	t := args.TotalTradeVolumeQuoted

	entries := allocate(args.Entries, func(o Order) Volume {
		q := t * o.VolumePart
		return Volume{Quoted: q, Base: q / o.Price}
	})
	eTotal := groupVolume(entries, args.Deposit)
	eB := eTotal.Orders.Base

	exit := func(o Order) Volume {
		b := eB * o.VolumePart
		return Volume{Quoted: b * o.Price, Base: b}
	}
	stops := allocate(args.Stops, exit)
	takes := allocate(args.Takes, exit)
	sTotal := groupVolume(stops, args.Deposit)
	tTotal := groupVolume(takes, args.Deposit)

	eQ, feQ := eTotal.Orders.Quoted, eTotal.Fees.Quoted
	if !isPositiveFinite(eB) {
		return OrdersInfo{}, degenerate("distribute: entries base volume", eB)
	}
	avgEntry := eQ / eB

	// Each exit leg closes its base volume, which was bought at the average entry price.
	exitDiff := func(oi OrderInfo) float64 {
		return oi.Volume.Order.Quoted - oi.Volume.Order.Base*avgEntry - oi.Volume.Fee.Quoted
	}
	fillEntryDiffs(entries, args.Deposit)
	fillExitDiffs(stops, -feQ, args.Deposit, exitDiff)
	fillExitDiffs(takes, -feQ, args.Deposit, exitDiff)

	return OrdersInfo{
		Entries: entries,
		Stops:   stops,
		Takes:   takes,
		TotalVolume: TotalVolumeInfo{
			Loss:    Amount{Quoted: eQ - sTotal.Orders.Quoted + feQ + sTotal.Fees.Quoted},
			Profit:  Amount{Quoted: tTotal.Orders.Quoted - eQ - tTotal.Fees.Quoted - feQ},
			Entries: eTotal,
			Stops:   sTotal,
			Takes:   tTotal,
		},
	}, nil
}

func distributeShort(args DistributionArgs) (OrdersInfo, error) {
	t := args.TotalTradeVolumeQuoted

	quoted := func(o Order) Volume {
		q := t * o.VolumePart
		return Volume{Quoted: q, Base: q / o.Price}
	}
	entries := allocate(args.Entries, quoted)
	stops := allocate(args.Stops, quoted)
	takes := allocate(args.Takes, quoted)
	eTotal := groupVolume(entries, args.Deposit)
	sTotal := groupVolume(stops, args.Deposit)
	tTotal := groupVolume(takes, args.Deposit)

	eB, feQ := eTotal.Orders.Base, eTotal.Fees.Quoted
	avgStop := AvgPriceOfQuoted(args.Stops)
	avgTake := AvgPriceOfQuoted(args.Takes)

	// Each exit leg buys back base volume; its share of the sold base volume
	// is VolumePart * eB. The difference is valued at the group average price.
	exitDiff := func(avg float64) func(OrderInfo) float64 {
		return func(oi OrderInfo) float64 {
			return (oi.Volume.Order.Base-oi.VolumePart*eB)*avg - oi.Volume.Fee.Quoted
		}
	}
	fillEntryDiffs(entries, args.Deposit)
	fillExitDiffs(stops, -feQ, args.Deposit, exitDiff(avgStop))
	fillExitDiffs(takes, -feQ, args.Deposit, exitDiff(avgTake))

	return OrdersInfo{
		Entries: entries,
		Stops:   stops,
		Takes:   takes,
		TotalVolume: TotalVolumeInfo{
			Loss:    Amount{Quoted: (eB-sTotal.Orders.Base)*avgStop + feQ + sTotal.Fees.Quoted},
			Profit:  Amount{Quoted: (tTotal.Orders.Base-eB)*avgTake - tTotal.Fees.Quoted - feQ},
			Entries: eTotal,
			Stops:   sTotal,
			Takes:   tTotal,
		},
	}, nil
}

// allocate sizes every leg with volumeOf and keeps running totals in slice order.
func allocate(orders []Order, volumeOf func(Order) Volume) []OrderInfo {
	infos := make([]OrderInfo, len(orders))

	var sum SumWithPrev
	for i, o := range orders {
		v := volumeOf(o)
		fee := Volume{Quoted: v.Quoted * o.Fee, Base: v.Base * o.Fee}
		sum.Orders = sum.Orders.add(v)
		sum.Fees = sum.Fees.add(fee)

		infos[i] = OrderInfo{
			Order: o,
			Volume: OrderVolumeInfo{
				Order:       v,
				Fee:         fee,
				SumWithPrev: sum,
			},
		}
	}
	return infos
}

func groupVolume(infos []OrderInfo, deposit float64) GroupVolume {
	pick := func(get func(OrderVolumeInfo) float64) float64 {
		return numeric.SumBy(infos, func(oi OrderInfo, _ int) float64 { return get(oi.Volume) })
	}

	quoted := pick(func(v OrderVolumeInfo) float64 { return v.Order.Quoted })
	return GroupVolume{
		Orders: GroupOrdersVolume{
			Quoted:  quoted,
			Base:    pick(func(v OrderVolumeInfo) float64 { return v.Order.Base }),
			Percent: quoted / deposit,
		},
		Fees: Volume{
			Quoted: pick(func(v OrderVolumeInfo) float64 { return v.Fee.Quoted }),
			Base:   pick(func(v OrderVolumeInfo) float64 { return v.Fee.Base }),
		},
	}
}

// fillEntryDiffs charges every entry with its own fee only.
func fillEntryDiffs(entries []OrderInfo, deposit float64) {
	var total float64
	for i := range entries {
		current := -entries[i].Volume.Fee.Quoted
		total += current
		entries[i].Volume.Diff = OrderDiff{
			Current: Amount{Quoted: current, Percent: current / deposit},
			Total:   Amount{Quoted: total, Percent: total / deposit},
		}
	}
}

// fillExitDiffs accumulates the per-leg result of an exit group on top of seed.
func fillExitDiffs(exits []OrderInfo, seed, deposit float64, diffOf func(OrderInfo) float64) {
	total := seed
	for i := range exits {
		current := diffOf(exits[i])
		total += current
		exits[i].Volume.Diff = OrderDiff{
			Current: Amount{Quoted: current, Percent: current / deposit},
			Total:   Amount{Quoted: total, Percent: total / deposit},
		}
	}
}
