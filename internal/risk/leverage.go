package risk

import "math"

// VolumeManagementArgs is the input of ManageTradeVolume.
type VolumeManagementArgs struct {
	Deposit              float64
	Leverage             Leverage
	MaxTradeVolumeQuoted float64
	// PreliminaryVolume is the volume from TradeVolumeQuoted.
	PreliminaryVolume float64
}

// VolumeManagement is the result of ManageTradeVolume.
type VolumeManagement struct {
	Leverage               LeverageInfo
	TotalTradeVolumeQuoted float64
}

// ManageTradeVolume fits the preliminary volume into the leverage policy and
// then into MaxTradeVolumeQuoted. The absolute cap is applied last, so it can
// only shrink the volume further.
func ManageTradeVolume(args VolumeManagementArgs) (VolumeManagement, error) {
	if !isPositiveFinite(args.Deposit) {
		return VolumeManagement{}, degenerate("manage volume: deposit", args.Deposit)
	}
	if !isPositiveFinite(args.PreliminaryVolume) {
		return VolumeManagement{}, degenerate("manage volume: preliminary volume", args.PreliminaryVolume)
	}
	if math.IsNaN(args.MaxTradeVolumeQuoted) || args.MaxTradeVolumeQuoted <= 0 {
		return VolumeManagement{}, degenerate("manage volume: max trade volume", args.MaxTradeVolumeQuoted)
	}

	preliminaryLeverage := args.PreliminaryVolume / args.Deposit

	actual := 1.0
	if args.Leverage.Allow {
		actual = math.Min(math.Max(preliminaryLeverage, 1), args.Leverage.Max)
	}

	volume := args.PreliminaryVolume
	if preliminaryLeverage > actual {
		volume = args.Deposit * actual
	}

	if volume > args.MaxTradeVolumeQuoted {
		volume = args.MaxTradeVolumeQuoted
		actual = math.Min(actual, volume/args.Deposit)
	}

	return VolumeManagement{
		Leverage: LeverageInfo{
			Allow:  args.Leverage.Allow,
			Max:    args.Leverage.Max,
			Actual: actual,
		},
		TotalTradeVolumeQuoted: volume,
	}, nil
}
