package risk

import (
	"math"

	"github.com/Re-Quant/calc/internal/numeric"
)

// AvgPriceOfQuoted is the average execution price of legs whose VolumePart
// weights quote volume: every long entry and every short leg.
func AvgPriceOfQuoted(orders []Order) float64 {
	return 1 / numeric.SumBy(orders, weightPerPrice)
}

// AvgPriceOfBase is the average execution price of legs whose VolumePart
// weights base volume: long stops and takes.
func AvgPriceOfBase(orders []Order) float64 {
	return numeric.SumBy(orders, weightedPrice)
}

// AveragePrices returns the average execution price of every group.
func AveragePrices(tradeType TradeType, entries, stops, takes []Order) (AvgPrices, error) {
	prices := AvgPrices{Entry: AvgPriceOfQuoted(entries)}

	switch tradeType {
	case Long:
		prices.Stop = AvgPriceOfBase(stops)
		prices.Take = AvgPriceOfBase(takes)
	case Short:
		prices.Stop = AvgPriceOfQuoted(stops)
		prices.Take = AvgPriceOfQuoted(takes)
	default:
		return AvgPrices{}, &CalcError{Op: "average prices", Value: float64(tradeType), Err: ErrOutOfRangeArgument}
	}
	return prices, nil
}

// BreakevenPrice is the price at which closing the whole entered position
// with a fee of fee recovers the entry volume and the entry fees.
func BreakevenPrice(fee float64, entries GroupVolume) float64 {
	return (entries.Orders.Quoted + entries.Fees.Quoted) / (entries.Orders.Base * (1 - fee))
}

// MarginCallPrice is the adverse price at which a position opened at
// entryAvgPrice with the given leverage consumes the whole deposit. A long
// position below 1x leverage cannot be called, so its price is 0.
func MarginCallPrice(tradeType TradeType, leverage, entryAvgPrice float64) (float64, error) {
	if !isPositiveFinite(leverage) {
		return 0, degenerate("margin call: leverage", leverage)
	}

	switch tradeType {
	case Long:
		return math.Max(entryAvgPrice-entryAvgPrice/leverage, 0), nil
	case Short:
		return entryAvgPrice + entryAvgPrice/leverage, nil
	}
	return 0, &CalcError{Op: "margin call", Value: float64(tradeType), Err: ErrOutOfRangeArgument}
}
