package risk

import "math"

type scenario struct {
	name string
	args TradeArgs
}

func commonArgs(tradeType TradeType) TradeArgs {
	return TradeArgs{
		TradeType:            tradeType,
		Deposit:              100 * 1000,
		Risk:                 .01,
		MaxTradeVolumeQuoted: 100000,
		Leverage:             Leverage{Allow: true, Max: 3},
		Breakeven:            Breakeven{Fee: .002},
	}
}

func withLegs(args TradeArgs, entries, stops, takes []Order) TradeArgs {
	args.Entries = entries
	args.Stops = stops
	args.Takes = takes
	return args
}

func longScenarios() []scenario {
	base := commonArgs(Long)
	return []scenario{
		{
			name: "multiple orders",
			args: withLegs(base,
				[]Order{{8000, .25, .001}, {7500, .25, .002}, {7000, .5, .001}},
				[]Order{{6900, .5, .002}, {6800, .25, .002}, {6500, .25, .002}},
				[]Order{{9000, .25, .002}, {9250, .1, .001}, {9500, .15, .002}, {9900, .5, .001}},
			),
		},
		{
			name: "one order",
			args: withLegs(base,
				[]Order{{8000, 1, .001}},
				[]Order{{7900, 1, .002}},
				[]Order{{9000, 1, .002}},
			),
		},
		{
			name: "zero fees",
			args: withLegs(base,
				[]Order{{8000, .25, 0}, {7500, .75, 0}},
				[]Order{{7400, .75, 0}, {7000, .25, 0}},
				[]Order{{9000, .25, 0}, {9500, .75, 0}},
			),
		},
		{
			name: "large fees",
			args: withLegs(base,
				[]Order{{7000, .25, .1}, {6000, .75, .1}},
				[]Order{{5900, .75, .1}, {5800, .25, .1}},
				[]Order{{9000, .25, .1}, {9500, .75, .1}},
			),
		},
	}
}

func shortScenarios() []scenario {
	base := commonArgs(Short)
	uncapped := base
	uncapped.MaxTradeVolumeQuoted = math.Inf(1)

	return []scenario{
		{
			name: "multiple orders",
			args: withLegs(base,
				[]Order{{8000, .25, .001}, {7500, .25, .002}, {7000, .5, .001}},
				[]Order{{8100, .5, .002}, {8200, .25, .002}, {8500, .25, .002}},
				[]Order{{5000, .25, .002}, {5250, .1, .001}, {5500, .15, .002}, {5900, .5, .001}},
			),
		},
		{
			name: "one order",
			args: withLegs(base,
				[]Order{{8000, 1, .001}},
				[]Order{{8100, 1, .002}},
				[]Order{{7000, 1, .002}},
			),
		},
		{
			name: "zero fees",
			args: withLegs(base,
				[]Order{{8000, .25, 0}, {7500, .75, 0}},
				[]Order{{8100, .75, 0}, {8200, .25, 0}},
				[]Order{{5000, .25, 0}, {5250, .75, 0}},
			),
		},
		{
			name: "large fees uncapped",
			args: withLegs(uncapped,
				[]Order{{8000, .25, .1}, {7500, .75, .1}},
				[]Order{{8100, .75, .1}, {8200, .25, .1}},
				[]Order{{4000, .25, .1}, {5250, .75, .1}},
			),
		},
	}
}

func allScenarios() []scenario {
	var all []scenario
	for _, s := range longScenarios() {
		s.name = "Long " + s.name
		all = append(all, s)
	}
	for _, s := range shortScenarios() {
		s.name = "Short " + s.name
		all = append(all, s)
	}
	return all
}
