// Package planner runs a trade plan through pricing, validation, sizing and
// the journal.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/models"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/Re-Quant/calc/internal/validation"
	"go.uber.org/zap"
)

// ErrNoPriceSource is returned when a plan uses offsets but the service has
// no way to look up market prices.
var ErrNoPriceSource = errors.New("no market price source configured")

// PriceSource looks up the current price of a symbol.
type PriceSource interface {
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// Journal stores calculated plans.
type Journal interface {
	Save(ctx context.Context, rec database.PlanRecord) (models.TradePlan, error)
}

// Result is a calculated plan. ID is empty when no journal is configured.
type Result struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Symbol      string         `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	MarketPrice float64        `json:"marketPrice,omitempty" yaml:"marketPrice,omitempty"`
	Info        risk.TradeInfo `json:"tradeInfo" yaml:"tradeInfo"`
}

// Service calculates trade plans. Prices and Journal may be nil.
type Service struct {
	log      *zap.Logger
	prices   PriceSource
	journal  Journal
	defaults config.Defaults
}

// NewService creates a new planner Service.
func NewService(log *zap.Logger, prices PriceSource, journal Journal, defaults config.Defaults) *Service {
	return &Service{
		log:      log.Named("planner"),
		prices:   prices,
		journal:  journal,
		defaults: defaults,
	}
}

// Calculate sizes p. Invalid plans return validation.Errors, degenerate
// arithmetic returns an error wrapping risk.ErrArithmeticDegenerate.
func (s *Service) Calculate(ctx context.Context, p plan.Plan) (Result, error) {
	p = p.WithDefaults(s.defaults)
	res := Result{Symbol: p.Symbol}
	log := s.log.With(zap.String("symbol", p.Symbol), zap.Stringer("trade_type", p.TradeType))

	if p.NeedsMarketPrice() {
		price, err := s.marketPrice(ctx, p.Symbol)
		if err != nil {
			s.reject(log, reasonMarketPrice, err)
			return Result{}, err
		}
		res.MarketPrice = price
	}

	args, err := p.TradeArgs(res.MarketPrice)
	if err != nil {
		s.reject(log, reasonPlan, err)
		return Result{}, fmt.Errorf("failed to resolve plan: %w", err)
	}

	if errs := validation.Validate(args); errs != nil {
		s.reject(log, reasonValidation, errs)
		return Result{}, errs
	}

	info, err := risk.GetTradeInfo(args)
	if err != nil {
		s.reject(log, reasonDegenerate, err)
		return Result{}, fmt.Errorf("failed to calculate trade info: %w", err)
	}
	res.Info = info

	if s.journal != nil {
		row, err := s.journal.Save(ctx, database.PlanRecord{Symbol: p.Symbol, MarketPrice: res.MarketPrice, Info: info})
		if err != nil {
			s.reject(log, reasonJournal, err)
			return Result{}, err
		}
		res.ID = row.ID
	}

	metricPlansCalculated.Inc()
	if ratio := info.TotalVolume.RiskRatio; !math.IsNaN(ratio) && !math.IsInf(ratio, 0) {
		metricRiskRatio.Observe(ratio)
	}

	log.Info("Trade plan calculated",
		zap.String("id", res.ID),
		zap.Float64("volume_quoted", info.TotalTradeVolumeQuoted),
		zap.Float64("leverage", info.Leverage.Actual),
		zap.Float64("loss", info.TotalVolume.Loss.Quoted),
		zap.Float64("profit", info.TotalVolume.Profit.Quoted),
		zap.Float64("risk_ratio", info.TotalVolume.RiskRatio),
	)
	return res, nil
}

func (s *Service) marketPrice(ctx context.Context, symbol string) (float64, error) {
	if s.prices == nil {
		return 0, ErrNoPriceSource
	}
	if symbol == "" {
		return 0, fmt.Errorf("%w: plan has offset legs but no symbol", plan.ErrMarketPriceRequired)
	}
	price, err := s.prices.GetTickerPrice(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to get market price: %w", err)
	}
	return price, nil
}

func (s *Service) reject(log *zap.Logger, reason string, err error) {
	metricPlansRejected.WithLabelValues(reason).Inc()
	log.Warn("Trade plan rejected", zap.String("reason", reason), zap.Error(err))
}
