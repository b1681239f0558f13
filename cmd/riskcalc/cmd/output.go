package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/Re-Quant/calc/internal/models"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	quotedPlaces = 2
	basePlaces   = 8
	pricePlaces  = 4
	ratioPlaces  = 4
)

type renderFunc func(w io.Writer, res planner.Result) error

func renderer(format string) (renderFunc, error) {
	switch format {
	case "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	case "yaml":
		return renderYAML, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

func renderJSON(w io.Writer, v planner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v planner.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func renderTable(w io.Writer, res planner.Result) error {
	info := res.Info
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if res.ID != "" {
		fmt.Fprintf(tw, "ID\t%s\n", res.ID)
	}
	if res.Symbol != "" {
		fmt.Fprintf(tw, "Symbol\t%s\n", res.Symbol)
	}
	if res.MarketPrice != 0 {
		fmt.Fprintf(tw, "Market price\t%s\n", fixed(res.MarketPrice, pricePlaces))
	}
	fmt.Fprintf(tw, "Trade type\t%s\n", info.TradeType)
	fmt.Fprintf(tw, "Deposit\t%s\n", fixed(info.Deposit, quotedPlaces))
	fmt.Fprintf(tw, "Risk\t%s\n", percent(info.Risk))
	fmt.Fprintf(tw, "Volume (quoted)\t%s\n", fixed(info.TotalTradeVolumeQuoted, quotedPlaces))
	fmt.Fprintf(tw, "Max volume (quoted)\t%s\n", fixed(info.MaxTradeVolumeQuoted, quotedPlaces))
	fmt.Fprintf(tw, "Leverage\t%s (max %s, allowed %t)\n",
		fixed(info.Leverage.Actual, ratioPlaces), fixed(info.Leverage.Max, 0), info.Leverage.Allow)
	fmt.Fprintf(tw, "Loss\t%s (%s)\n", fixed(info.TotalVolume.Loss.Quoted, quotedPlaces), percent(info.TotalVolume.Loss.Percent))
	fmt.Fprintf(tw, "Profit\t%s (%s)\n", fixed(info.TotalVolume.Profit.Quoted, quotedPlaces), percent(info.TotalVolume.Profit.Percent))
	fmt.Fprintf(tw, "Risk ratio\t%s\n", fixed(info.TotalVolume.RiskRatio, ratioPlaces))
	fmt.Fprintf(tw, "Avg entry / stop / take\t%s / %s / %s\n",
		fixed(info.AvgPrices.Entry, pricePlaces), fixed(info.AvgPrices.Stop, pricePlaces), fixed(info.AvgPrices.Take, pricePlaces))
	fmt.Fprintf(tw, "Breakeven\t%s (fee %s)\n", fixed(info.Breakeven.Price, pricePlaces), percent(info.Breakeven.Fee))
	fmt.Fprintf(tw, "Margin call\t%s\n", fixed(info.MarginCall.Price, pricePlaces))

	for _, g := range []struct {
		name   string
		orders []risk.OrderInfo
	}{
		{"Entries", info.Entries},
		{"Stops", info.Stops},
		{"Takes", info.Takes},
	} {
		fmt.Fprintf(tw, "\n%s\n", g.name)
		fmt.Fprintln(tw, "#\tPrice\tPart\tQuoted\tBase\tFee\tTotal quoted\tDiff\tDiff total")
		for i, o := range g.orders {
			v := o.Volume
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i+1,
				fixed(o.Price, pricePlaces),
				percent(o.VolumePart),
				fixed(v.Order.Quoted, quotedPlaces),
				fixed(v.Order.Base, basePlaces),
				fixed(v.Fee.Quoted, quotedPlaces),
				fixed(v.SumWithPrev.Orders.Quoted, quotedPlaces),
				fixed(v.Diff.Current.Quoted, quotedPlaces),
				fixed(v.Diff.Total.Quoted, quotedPlaces),
			)
		}
	}

	return tw.Flush()
}

func renderHistory(w io.Writer, plans []models.TradePlan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCreated\tSymbol\tType\tVolume\tLeverage\tLoss\tProfit\tRatio")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			p.CreatedAt.Local().Format("2006-01-02 15:04"),
			p.Symbol,
			p.TradeType,
			fixed(p.TotalTradeVolumeQuoted, quotedPlaces),
			fixed(p.Leverage, ratioPlaces),
			fixed(p.Loss, quotedPlaces),
			fixed(p.Profit, quotedPlaces),
			fixed(p.RiskRatio, ratioPlaces),
		)
	}
	return tw.Flush()
}

// fixed formats v with a fixed number of decimals. decimal cannot hold
// infinities, so they are printed as words.
func fixed(v float64, places int32) string {
	switch {
	case math.IsInf(v, 1):
		return "unlimited"
	case math.IsInf(v, -1):
		return "-unlimited"
	case math.IsNaN(v):
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fixed(v, 0)
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}
