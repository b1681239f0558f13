// Package risk sizes a trade plan so that its worst-case loss matches a risk
// budget, spreads the volume over the plan's order legs and derives the
// plan's analytics.
//
// Everything in the package is a pure function of its arguments and is safe
// for concurrent use. Arguments are expected to have passed validation.
package risk

// GetTradeInfo runs the whole calculation for one trade plan.
func GetTradeInfo(args TradeArgs) (TradeInfo, error) {
	preliminary, err := TradeVolumeQuoted(SizingArgs{
		TradeType: args.TradeType,
		Deposit:   args.Deposit,
		Risk:      args.Risk,
		Entries:   args.Entries,
		Stops:     args.Stops,
	})
	if err != nil {
		return TradeInfo{}, err
	}

	managed, err := ManageTradeVolume(VolumeManagementArgs{
		Deposit:              args.Deposit,
		Leverage:             args.Leverage,
		MaxTradeVolumeQuoted: args.MaxTradeVolumeQuoted,
		PreliminaryVolume:    preliminary,
	})
	if err != nil {
		return TradeInfo{}, err
	}

	orders, err := DistributeOrderVolumes(DistributionArgs{
		TradeType:              args.TradeType,
		Deposit:                args.Deposit,
		TotalTradeVolumeQuoted: managed.TotalTradeVolumeQuoted,
		Entries:                args.Entries,
		Stops:                  args.Stops,
		Takes:                  args.Takes,
	})
	if err != nil {
		return TradeInfo{}, err
	}

	avg, err := AveragePrices(args.TradeType, args.Entries, args.Stops, args.Takes)
	if err != nil {
		return TradeInfo{}, err
	}

	marginCall, err := MarginCallPrice(args.TradeType, managed.Leverage.Actual, avg.Entry)
	if err != nil {
		return TradeInfo{}, err
	}

	return TradeInfo{
		Deposit:                args.Deposit,
		Risk:                   args.Risk,
		TradeType:              args.TradeType,
		Leverage:               managed.Leverage,
		MaxTradeVolumeQuoted:   args.MaxTradeVolumeQuoted,
		TotalTradeVolumeQuoted: managed.TotalTradeVolumeQuoted,
		Entries:                orders.Entries,
		Stops:                  orders.Stops,
		Takes:                  orders.Takes,
		TotalVolume:            orders.TotalVolume,
		AvgPrices:              avg,
		Breakeven: BreakevenInfo{
			Fee:   args.Breakeven.Fee,
			Price: BreakevenPrice(args.Breakeven.Fee, orders.TotalVolume.Entries),
		},
		MarginCall: MarginCallInfo{Price: marginCall},
	}, nil
}
