// Package validation checks trade arguments before they reach the risk
// calculation. The risk package never calls it; callers do.
package validation

import (
	"fmt"
	"math"

	"github.com/Re-Quant/calc/internal/numeric"
	"github.com/Re-Quant/calc/internal/risk"
)

const (
	maxRisk        = 0.1
	maxFee         = 0.1
	maxLeverage    = 1000
	minLeverage    = 1
	maxVolumePart  = 1
	sumPrecision   = 10
	msgRequired    = "Required field"
	msgNumber      = "Should be a number"
	msgTradeType   = "Wrong trade type"
	msgSumVolParts = "Sum of volume parts should be no more than '1'"
)

func minValue(actual float64) string { return fmt.Sprintf("Value should be more than %v.", actual) }
func maxValue(actual float64) string { return fmt.Sprintf("Value should be less than %v.", actual) }

func lessPrice(actual, comparing float64) string {
	return fmt.Sprintf("Price %v should be less than %v.", actual, comparing)
}

func biggerPrice(actual, comparing float64) string {
	return fmt.Sprintf("Price %v should be more than %v.", actual, comparing)
}

// Validate returns nil when args are safe to pass to risk.GetTradeInfo.
func Validate(args risk.TradeArgs) Errors {
	errs := Errors{}

	validateCommonFields(args, errs)
	validateOrders("entries", args.Entries, errs)
	validateOrders("stops", args.Stops, errs)
	validateOrders("takes", args.Takes, errs)
	validatePriceOrdering(args, errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateCommonFields(p risk.TradeArgs, errs Errors) {
	// deposit: (0, +Inf)
	switch {
	case p.Deposit == 0:
		errs.add("deposit", ErrorInfo{Message: msgRequired, Code: CodeRequired})
	case !isFinite(p.Deposit):
		errs.add("deposit", ErrorInfo{Message: msgNumber, Code: CodeNumber})
	case p.Deposit < 0:
		errs.add("deposit", ErrorInfo{Message: minValue(p.Deposit), Code: CodeMin, Actual: p.Deposit})
	}

	// risk: (0, 0.1]
	switch {
	case p.Risk == 0:
		errs.add("risk", ErrorInfo{Message: msgRequired, Code: CodeRequired})
	case !isFinite(p.Risk):
		errs.add("risk", ErrorInfo{Message: msgNumber, Code: CodeNumber})
	case p.Risk < 0:
		errs.add("risk", ErrorInfo{Message: minValue(p.Risk), Code: CodeMin, Actual: p.Risk})
	case p.Risk > maxRisk:
		errs.add("risk", ErrorInfo{Message: maxValue(p.Risk), Code: CodeMax, Actual: p.Risk})
	}

	// maxTradeVolumeQuoted: (0, +Inf]
	switch {
	case p.MaxTradeVolumeQuoted == 0:
		errs.add("maxTradeVolumeQuoted", ErrorInfo{Message: msgRequired, Code: CodeRequired})
	case math.IsNaN(p.MaxTradeVolumeQuoted):
		errs.add("maxTradeVolumeQuoted", ErrorInfo{Message: msgNumber, Code: CodeNumber})
	case p.MaxTradeVolumeQuoted < 0:
		errs.add("maxTradeVolumeQuoted", ErrorInfo{
			Message: minValue(p.MaxTradeVolumeQuoted), Code: CodeMin, Actual: p.MaxTradeVolumeQuoted,
		})
	}

	// leverage.max: [1, 1000]
	switch {
	case p.Leverage.Max == 0:
		errs.add("leverage.max", ErrorInfo{Message: msgRequired, Code: CodeRequired})
	case !isFinite(p.Leverage.Max):
		errs.add("leverage.max", ErrorInfo{Message: msgNumber, Code: CodeNumber})
	case p.Leverage.Max < minLeverage:
		errs.add("leverage.max", ErrorInfo{Message: minValue(p.Leverage.Max), Code: CodeMin, Actual: p.Leverage.Max})
	case p.Leverage.Max > maxLeverage:
		errs.add("leverage.max", ErrorInfo{Message: maxValue(p.Leverage.Max), Code: CodeMax, Actual: p.Leverage.Max})
	}

	switch {
	case p.TradeType == 0:
		errs.add("tradeType", ErrorInfo{Message: msgRequired, Code: CodeRequired})
	case !p.TradeType.Valid():
		errs.add("tradeType", ErrorInfo{Message: msgTradeType, Code: CodeTradeType, Actual: p.TradeType.String()})
	}

	validateFee("breakeven.fee", p.Breakeven.Fee, errs)
}

func validateOrders(group string, orders []risk.Order, errs Errors) {
	if len(orders) == 0 {
		errs.add(entityPath(group), ErrorInfo{Message: msgRequired, Code: CodeRequired})
		return
	}

	for i, o := range orders {
		path := func(field string) string { return fmt.Sprintf("%s[%d].%s", group, i, field) }

		switch {
		case o.Price == 0:
			errs.add(path("price"), ErrorInfo{Message: msgRequired, Code: CodeRequired})
		case !isFinite(o.Price):
			errs.add(path("price"), ErrorInfo{Message: msgNumber, Code: CodeNumber})
		case o.Price < 0:
			errs.add(path("price"), ErrorInfo{Message: minValue(o.Price), Code: CodeMin, Actual: o.Price})
		}

		switch {
		case o.VolumePart == 0:
			errs.add(path("volumePart"), ErrorInfo{Message: msgRequired, Code: CodeRequired})
		case !isFinite(o.VolumePart):
			errs.add(path("volumePart"), ErrorInfo{Message: msgNumber, Code: CodeNumber})
		case o.VolumePart < 0:
			errs.add(path("volumePart"), ErrorInfo{Message: minValue(o.VolumePart), Code: CodeMin, Actual: o.VolumePart})
		case o.VolumePart > maxVolumePart:
			errs.add(path("volumePart"), ErrorInfo{Message: maxValue(o.VolumePart), Code: CodeMax, Actual: o.VolumePart})
		}

		validateFee(path("fee"), o.Fee, errs)
	}

	sum := numeric.SumBy(orders, numeric.Field(func(o risk.Order) float64 { return o.VolumePart }))
	if numeric.Round(sum, sumPrecision) > maxVolumePart {
		errs.add(entityPath(group), ErrorInfo{Message: msgSumVolParts, Code: CodeSumVolumeParts, Actual: sum})
	}
}

func validateFee(path string, fee float64, errs Errors) {
	switch {
	case !isFinite(fee):
		errs.add(path, ErrorInfo{Message: msgNumber, Code: CodeNumber})
	case fee < 0:
		errs.add(path, ErrorInfo{Message: minValue(fee), Code: CodeMin, Actual: fee})
	case fee > maxFee:
		errs.add(path, ErrorInfo{Message: maxValue(fee), Code: CodeMax, Actual: fee})
	}
}

// validatePriceOrdering checks every stop and take against every entry: a
// long stop must be below the entries and a long take must not be below
// them; a short plan mirrors both rules.
func validatePriceOrdering(p risk.TradeArgs, errs Errors) {
	for i, stop := range p.Stops {
		for _, entry := range p.Entries {
			path := fmt.Sprintf("stops[%d].price", i)
			switch p.TradeType {
			case risk.Long:
				if stop.Price >= entry.Price {
					errs.add(path, ErrorInfo{Message: lessPrice(stop.Price, entry.Price), Code: CodeOrdering, Actual: stop.Price})
				}
			case risk.Short:
				if stop.Price < entry.Price {
					errs.add(path, ErrorInfo{Message: biggerPrice(stop.Price, entry.Price), Code: CodeOrdering, Actual: stop.Price})
				}
			}
		}
	}

	for i, take := range p.Takes {
		for _, entry := range p.Entries {
			path := fmt.Sprintf("takes[%d].price", i)
			switch p.TradeType {
			case risk.Long:
				if take.Price < entry.Price {
					errs.add(path, ErrorInfo{Message: biggerPrice(take.Price, entry.Price), Code: CodeOrdering, Actual: take.Price})
				}
			case risk.Short:
				if take.Price > entry.Price {
					errs.add(path, ErrorInfo{Message: lessPrice(take.Price, entry.Price), Code: CodeOrdering, Actual: take.Price})
				}
			}
		}
	}
}

func entityPath(group string) string {
	return group + "[0].entity"
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
