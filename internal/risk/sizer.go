package risk

import (
	"fmt"
	"math"

	"github.com/Re-Quant/calc/internal/numeric"
)

// SizingArgs is the input of TradeVolumeQuoted.
type SizingArgs struct {
	TradeType TradeType
	Deposit   float64
	Risk      float64
	Entries   []Order
	Stops     []Order
}

// TradeVolumeQuoted returns the total entry volume in quote units for which
// running the trade from the entries to the stops loses exactly
// Deposit * Risk, fees included. Leverage and volume caps are not applied.
func TradeVolumeQuoted(args SizingArgs) (float64, error) {
	if len(args.Entries) == 0 {
		return 0, &CalcError{Op: "size", Err: fmt.Errorf("%w: no entry orders", ErrMissingArgument)}
	}
	if len(args.Stops) == 0 {
		return 0, &CalcError{Op: "size", Err: fmt.Errorf("%w: no stop orders", ErrMissingArgument)}
	}

	vRisk := args.Deposit * args.Risk

	var denominator float64
	switch args.TradeType {
	case Long:
		denominator = longSizingDenominator(args.Entries, args.Stops)
	case Short:
		denominator = shortSizingDenominator(args.Entries, args.Stops)
	default:
		return 0, &CalcError{Op: "size", Value: float64(args.TradeType), Err: ErrOutOfRangeArgument}
	}

	if !isPositiveFinite(denominator) {
		return 0, degenerate("size denominator", denominator)
	}

	volume := vRisk / denominator
	if !isPositiveFinite(volume) {
		return 0, degenerate("size", volume)
	}
	return volume, nil
}

// longSizingDenominator is the loss per quote unit entered: the position is
// bought in base units at the entries and sold at the stops.
func longSizingDenominator(entries, stops []Order) float64 {
	x := numeric.SumBy(entries, weightedFee)
	y := numeric.SumBy(entries, weightPerPrice) *
		(numeric.SumBy(stops, func(o Order, _ int) float64 { return o.VolumePart * o.Price * o.Fee }) -
			numeric.SumBy(stops, weightedPrice))

	return 1 + x + y
}

// shortSizingDenominator is the loss per quote unit entered: the same quote
// volume that opened the position buys it back at the stops.
func shortSizingDenominator(entries, stops []Order) float64 {
	x := numeric.SumBy(entries, weightPerPrice)
	y := numeric.SumBy(stops, weightPerPrice)
	fe := numeric.SumBy(entries, weightedFee)
	fs := numeric.SumBy(stops, weightedFee)

	return x/y - 1 + fe + fs
}

func weightPerPrice(o Order, _ int) float64 { return o.VolumePart / o.Price }

func weightedPrice(o Order, _ int) float64 { return o.VolumePart * o.Price }

func weightedFee(o Order, _ int) float64 { return o.VolumePart * o.Fee }

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
