package models

import "time"

// TradePlan is a journaled calculation. The numeric columns are copied out
// of Info so history can be listed and filtered without decoding JSON.
type TradePlan struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Symbol      string  `gorm:"index" json:"symbol"`
	TradeType   string  `gorm:"not null" json:"trade_type"`
	MarketPrice float64 `json:"market_price,omitempty"`

	Deposit                float64 `json:"deposit"`
	Risk                   float64 `json:"risk"`
	TotalTradeVolumeQuoted float64 `json:"total_trade_volume_quoted"`
	Leverage               float64 `json:"leverage"`
	Loss                   float64 `json:"loss"`
	Profit                 float64 `json:"profit"`
	RiskRatio              float64 `json:"risk_ratio"`
	BreakevenPrice         float64 `json:"breakeven_price"`

	// Info is the full risk.TradeInfo as JSON.
	Info string `gorm:"type:text;not null" json:"-"`
}
