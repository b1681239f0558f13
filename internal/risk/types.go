package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TradeType is the direction of a trade.
type TradeType int

const (
	Long TradeType = iota + 1
	Short
)

// ParseTradeType parses "long" or "short", ignoring case.
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long":
		return Long, nil
	case "short":
		return Short, nil
	}
	return 0, fmt.Errorf("%w: unknown trade type %q", ErrOutOfRangeArgument, s)
}

func (t TradeType) String() string {
	switch t {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return fmt.Sprintf("TradeType(%d)", int(t))
}

// Valid reports whether t is Long or Short.
func (t TradeType) Valid() bool {
	return t == Long || t == Short
}

func (t TradeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown trade type %d", ErrOutOfRangeArgument, int(t))
	}
	return []byte(t.String()), nil
}

func (t *TradeType) UnmarshalText(text []byte) error {
	parsed, err := ParseTradeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Order is a single entry, stop-loss or take-profit leg.
type Order struct {
	// Price of the order execution.
	Price float64 `json:"price" yaml:"price"`
	// VolumePart is the weight of the leg inside its group, 0..1.
	VolumePart float64 `json:"volumePart" yaml:"volumePart"`
	// Fee is the fee rate of the leg, 0..1.
	Fee float64 `json:"fee" yaml:"fee"`
}

type Leverage struct {
	Allow bool    `json:"allow" yaml:"allow"`
	Max   float64 `json:"max" yaml:"max"`
}

type Breakeven struct {
	// Fee of the hypothetical order closing the whole position.
	Fee float64 `json:"fee" yaml:"fee"`
}

// TradeArgs describes a trade plan.
type TradeArgs struct {
	Deposit   float64   `json:"deposit" yaml:"deposit"`
	Risk      float64   `json:"risk" yaml:"risk"`
	TradeType TradeType `json:"tradeType" yaml:"tradeType"`
	Leverage  Leverage  `json:"leverage" yaml:"leverage"`
	// MaxTradeVolumeQuoted caps the entry volume regardless of leverage.
	// math.Inf(1) means no cap.
	MaxTradeVolumeQuoted float64   `json:"maxTradeVolumeQuoted" yaml:"maxTradeVolumeQuoted"`
	Breakeven            Breakeven `json:"breakeven" yaml:"breakeven"`

	Entries []Order `json:"entries" yaml:"entries"`
	Stops   []Order `json:"stops" yaml:"stops"`
	Takes   []Order `json:"takes" yaml:"takes"`
}

// Volume is one quantity expressed in quote and in base units.
type Volume struct {
	Quoted float64 `json:"quoted" yaml:"quoted"`
	Base   float64 `json:"base" yaml:"base"`
}

func (v Volume) add(o Volume) Volume {
	return Volume{Quoted: v.Quoted + o.Quoted, Base: v.Base + o.Base}
}

// Amount is a quote amount together with its share of the deposit.
type Amount struct {
	Quoted  float64 `json:"quoted" yaml:"quoted"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type SumWithPrev struct {
	Orders Volume `json:"orders" yaml:"orders"`
	Fees   Volume `json:"fees" yaml:"fees"`
}

// OrderDiff is the profit (negative: loss) contributed by one order.
type OrderDiff struct {
	Current Amount `json:"current" yaml:"current"`
	Total   Amount `json:"total" yaml:"total"`
}

type OrderVolumeInfo struct {
	Order       Volume      `json:"order" yaml:"order"`
	Fee         Volume      `json:"fee" yaml:"fee"`
	SumWithPrev SumWithPrev `json:"sumWithPrev" yaml:"sumWithPrev"`
	Diff        OrderDiff   `json:"diff" yaml:"diff"`
}

// OrderInfo is an input leg together with the volumes allocated to it.
type OrderInfo struct {
	Order  `yaml:",inline"`
	Volume OrderVolumeInfo `json:"volume" yaml:"volume"`
}

type LeverageInfo struct {
	Allow bool    `json:"allow" yaml:"allow"`
	Max   float64 `json:"max" yaml:"max"`
	// Actual is the leverage applied after clamping.
	Actual float64 `json:"actual" yaml:"actual"`
}

type GroupOrdersVolume struct {
	Quoted  float64 `json:"quoted" yaml:"quoted"`
	Base    float64 `json:"base" yaml:"base"`
	Percent float64 `json:"percent" yaml:"percent"`
}

type GroupVolume struct {
	Orders GroupOrdersVolume `json:"orders" yaml:"orders"`
	Fees   Volume            `json:"fees" yaml:"fees"`
}

type TotalVolumeInfo struct {
	Loss      Amount      `json:"loss" yaml:"loss"`
	Profit    Amount      `json:"profit" yaml:"profit"`
	RiskRatio float64     `json:"riskRatio" yaml:"riskRatio"`
	Entries   GroupVolume `json:"entries" yaml:"entries"`
	Stops     GroupVolume `json:"stops" yaml:"stops"`
	Takes     GroupVolume `json:"takes" yaml:"takes"`
}

type AvgPrices struct {
	Entry float64 `json:"entry" yaml:"entry"`
	Stop  float64 `json:"stop" yaml:"stop"`
	Take  float64 `json:"take" yaml:"take"`
}

type BreakevenInfo struct {
	Fee   float64 `json:"fee" yaml:"fee"`
	Price float64 `json:"price" yaml:"price"`
}

type MarginCallInfo struct {
	Price float64 `json:"price" yaml:"price"`
}

// TradeInfo is the full result of GetTradeInfo.
type TradeInfo struct {
	Deposit                float64      `json:"deposit" yaml:"deposit"`
	Risk                   float64      `json:"risk" yaml:"risk"`
	TradeType              TradeType    `json:"tradeType" yaml:"tradeType"`
	Leverage               LeverageInfo `json:"leverage" yaml:"leverage"`
	MaxTradeVolumeQuoted   float64      `json:"maxTradeVolumeQuoted" yaml:"maxTradeVolumeQuoted"`
	TotalTradeVolumeQuoted float64      `json:"totalTradeVolumeQuoted" yaml:"totalTradeVolumeQuoted"`

	Entries []OrderInfo `json:"entries" yaml:"entries"`
	Stops   []OrderInfo `json:"stops" yaml:"stops"`
	Takes   []OrderInfo `json:"takes" yaml:"takes"`

	TotalVolume TotalVolumeInfo `json:"totalVolume" yaml:"totalVolume"`
	AvgPrices   AvgPrices       `json:"avgPrices" yaml:"avgPrices"`
	Breakeven   BreakevenInfo   `json:"breakeven" yaml:"breakeven"`
	MarginCall  MarginCallInfo  `json:"marginCall" yaml:"marginCall"`
}

// MarshalJSON writes an uncapped MaxTradeVolumeQuoted as null.
func (ti TradeInfo) MarshalJSON() ([]byte, error) {
	type plain TradeInfo
	out := struct {
		plain
		MaxTradeVolumeQuoted *float64 `json:"maxTradeVolumeQuoted"`
	}{plain: plain(ti)}
	if !math.IsInf(ti.MaxTradeVolumeQuoted, 1) {
		out.MaxTradeVolumeQuoted = &ti.MaxTradeVolumeQuoted
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null MaxTradeVolumeQuoted back as +Inf.
func (ti *TradeInfo) UnmarshalJSON(data []byte) error {
	type plain TradeInfo
	in := struct {
		*plain
		MaxTradeVolumeQuoted *float64 `json:"maxTradeVolumeQuoted"`
	}{plain: (*plain)(ti)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	ti.MaxTradeVolumeQuoted = math.Inf(1)
	if in.MaxTradeVolumeQuoted != nil {
		ti.MaxTradeVolumeQuoted = *in.MaxTradeVolumeQuoted
	}
	return nil
}
