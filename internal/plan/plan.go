// Package plan reads trade plan files and turns them into risk arguments.
package plan

import (
	"errors"
	"fmt"
	"math"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ErrMarketPriceRequired is returned by TradeArgs when a leg is placed by
// offset and no market price was supplied.
var ErrMarketPriceRequired = errors.New("market price required for offset legs")

// Leg is one order of a plan. Price wins over Offset; Offset is a fraction
// of the market price, so -0.05 means five percent below it.
type Leg struct {
	Price      float64 `mapstructure:"price" json:"price,omitempty" yaml:"price,omitempty"`
	Offset     float64 `mapstructure:"offset" json:"offset,omitempty" yaml:"offset,omitempty"`
	VolumePart float64 `mapstructure:"volumePart" json:"volumePart" yaml:"volumePart"`
	Fee        float64 `mapstructure:"fee" json:"fee" yaml:"fee"`
}

func (l Leg) byOffset() bool {
	return l.Price == 0 && l.Offset != 0
}

type Leverage struct {
	Allow *bool   `mapstructure:"allow" json:"allow,omitempty" yaml:"allow,omitempty"`
	Max   float64 `mapstructure:"max" json:"max,omitempty" yaml:"max,omitempty"`
}

type Breakeven struct {
	Fee *float64 `mapstructure:"fee" json:"fee,omitempty" yaml:"fee,omitempty"`
}

// Plan describes one trade as written by the user. Zero values mean "not
// set" and are filled by WithDefaults.
type Plan struct {
	Symbol               string         `mapstructure:"symbol" json:"symbol,omitempty" yaml:"symbol,omitempty"`
	TradeType            risk.TradeType `mapstructure:"tradeType" json:"tradeType" yaml:"tradeType"`
	Deposit              float64        `mapstructure:"deposit" json:"deposit,omitempty" yaml:"deposit,omitempty"`
	Risk                 float64        `mapstructure:"risk" json:"risk,omitempty" yaml:"risk,omitempty"`
	Leverage             Leverage       `mapstructure:"leverage" json:"leverage" yaml:"leverage"`
	MaxTradeVolumeQuoted float64        `mapstructure:"maxTradeVolumeQuoted" json:"maxTradeVolumeQuoted,omitempty" yaml:"maxTradeVolumeQuoted,omitempty"`
	Breakeven            Breakeven      `mapstructure:"breakeven" json:"breakeven" yaml:"breakeven"`

	Entries []Leg `mapstructure:"entries" json:"entries" yaml:"entries"`
	Stops   []Leg `mapstructure:"stops" json:"stops" yaml:"stops"`
	Takes   []Leg `mapstructure:"takes" json:"takes" yaml:"takes"`
}

// Load reads a plan from a YAML, JSON or TOML file; the format follows the
// file extension. Unknown keys are rejected.
func Load(path string) (Plan, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Plan{}, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	var p Plan
	err := v.Unmarshal(&p,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)),
		func(dc *mapstructure.DecoderConfig) { dc.ErrorUnused = true },
	)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan %s: %w", path, err)
	}
	return p, nil
}

// WithDefaults returns a copy of p with unset fields taken from d.
func (p Plan) WithDefaults(d config.Defaults) Plan {
	if p.Deposit == 0 {
		p.Deposit = d.Deposit
	}
	if p.Risk == 0 {
		p.Risk = d.Risk
	}
	if p.Leverage.Allow == nil {
		allow := d.Leverage.Allow
		p.Leverage.Allow = &allow
	}
	if p.Leverage.Max == 0 {
		p.Leverage.Max = d.Leverage.Max
	}
	if p.MaxTradeVolumeQuoted == 0 {
		p.MaxTradeVolumeQuoted = d.MaxTradeVolumeQuoted
	}
	if p.Breakeven.Fee == nil {
		fee := d.BreakevenFee
		p.Breakeven.Fee = &fee
	}
	return p
}

// NeedsMarketPrice reports whether any leg is placed by offset.
func (p Plan) NeedsMarketPrice() bool {
	for _, group := range [][]Leg{p.Entries, p.Stops, p.Takes} {
		for _, l := range group {
			if l.byOffset() {
				return true
			}
		}
	}
	return false
}

// TradeArgs resolves leg prices against marketPrice and converts the plan to
// risk arguments. marketPrice is ignored when no leg uses an offset. An
// unset MaxTradeVolumeQuoted means no cap.
func (p Plan) TradeArgs(marketPrice float64) (risk.TradeArgs, error) {
	if p.NeedsMarketPrice() && !(marketPrice > 0 && !math.IsInf(marketPrice, 1)) {
		return risk.TradeArgs{}, fmt.Errorf("%w: got %v", ErrMarketPriceRequired, marketPrice)
	}

	args := risk.TradeArgs{
		TradeType:            p.TradeType,
		Deposit:              p.Deposit,
		Risk:                 p.Risk,
		MaxTradeVolumeQuoted: p.MaxTradeVolumeQuoted,
		Leverage:             risk.Leverage{Max: p.Leverage.Max},
		Entries:              orders(p.Entries, marketPrice),
		Stops:                orders(p.Stops, marketPrice),
		Takes:                orders(p.Takes, marketPrice),
	}
	if args.MaxTradeVolumeQuoted == 0 {
		args.MaxTradeVolumeQuoted = math.Inf(1)
	}
	if p.Leverage.Allow != nil {
		args.Leverage.Allow = *p.Leverage.Allow
	}
	if p.Breakeven.Fee != nil {
		args.Breakeven.Fee = *p.Breakeven.Fee
	}
	return args, nil
}

func orders(legs []Leg, marketPrice float64) []risk.Order {
	if legs == nil {
		return nil
	}
	out := make([]risk.Order, len(legs))
	for i, l := range legs {
		price := l.Price
		if l.byOffset() {
			price = marketPrice * (1 + l.Offset)
		}
		out[i] = risk.Order{Price: price, VolumePart: l.VolumePart, Fee: l.Fee}
	}
	return out
}
