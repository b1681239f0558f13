package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Re-Quant/calc/internal/models"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ErrPlanNotFound is returned by Get when no plan has the given ID.
var ErrPlanNotFound = errors.New("plan not found")

// PlanRecord is what the journal is asked to store for one calculation.
type PlanRecord struct {
	Symbol      string
	MarketPrice float64
	Info        risk.TradeInfo
}

// PlanStore journals calculated trade plans.
type PlanStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPlanStore creates a PlanStore on an already migrated database.
func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db, now: time.Now}
}

// Save stores a calculation and returns the stored row with its new ID.
func (s *PlanStore) Save(ctx context.Context, rec PlanRecord) (models.TradePlan, error) {
	info, err := json.Marshal(rec.Info)
	if err != nil {
		return models.TradePlan{}, fmt.Errorf("failed to encode trade info: %w", err)
	}

	now := s.now().UTC()
	row := models.TradePlan{
		ID:                     ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		CreatedAt:              now,
		Symbol:                 rec.Symbol,
		TradeType:              rec.Info.TradeType.String(),
		MarketPrice:            rec.MarketPrice,
		Deposit:                rec.Info.Deposit,
		Risk:                   rec.Info.Risk,
		TotalTradeVolumeQuoted: rec.Info.TotalTradeVolumeQuoted,
		Leverage:               rec.Info.Leverage.Actual,
		Loss:                   rec.Info.TotalVolume.Loss.Quoted,
		Profit:                 rec.Info.TotalVolume.Profit.Quoted,
		RiskRatio:              rec.Info.TotalVolume.RiskRatio,
		BreakevenPrice:         rec.Info.Breakeven.Price,
		Info:                   string(info),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.TradePlan{}, fmt.Errorf("failed to save trade plan: %w", err)
	}
	return row, nil
}

// Recent returns up to limit plans, newest first. A limit below 1 returns all.
func (s *PlanStore) Recent(ctx context.Context, limit int) ([]models.TradePlan, error) {
	var plans []models.TradePlan
	q := s.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list trade plans: %w", err)
	}
	return plans, nil
}

// Get returns one stored plan together with its decoded TradeInfo.
func (s *PlanStore) Get(ctx context.Context, id string) (models.TradePlan, risk.TradeInfo, error) {
	var row models.TradePlan
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TradePlan{}, risk.TradeInfo{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if err != nil {
		return models.TradePlan{}, risk.TradeInfo{}, fmt.Errorf("failed to get trade plan %s: %w", id, err)
	}

	var info risk.TradeInfo
	if err := json.Unmarshal([]byte(row.Info), &info); err != nil {
		return models.TradePlan{}, risk.TradeInfo{}, fmt.Errorf("failed to decode trade plan %s: %w", id, err)
	}
	return row, info, nil
}

// Count returns the number of journaled plans.
func (s *PlanStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.TradePlan{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count trade plans: %w", err)
	}
	return n, nil
}
