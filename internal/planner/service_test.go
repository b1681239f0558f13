package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/models"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/Re-Quant/calc/internal/validation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPriceSource is a mock implementation of PriceSource.
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

// MockJournal is a mock implementation of Journal.
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Save(ctx context.Context, rec database.PlanRecord) (models.TradePlan, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(models.TradePlan), args.Error(1)
}

var testDefaults = config.Defaults{
	Deposit:      10000,
	Risk:         .01,
	Leverage:     config.Leverage{Allow: true, Max: 3},
	BreakevenFee: .002,
}

func fixedLongPlan() plan.Plan {
	return plan.Plan{
		Symbol:    "BTCUSDT",
		TradeType: risk.Long,
		Entries:   []plan.Leg{{Price: 100, VolumePart: 1, Fee: .001}},
		Stops:     []plan.Leg{{Price: 95, VolumePart: 1, Fee: .001}},
		Takes:     []plan.Leg{{Price: 110, VolumePart: 1, Fee: .001}},
	}
}

func offsetShortPlan() plan.Plan {
	return plan.Plan{
		Symbol:    "ETHUSDT",
		TradeType: risk.Short,
		Entries:   []plan.Leg{{Offset: .01, VolumePart: 1, Fee: .001}},
		Stops:     []plan.Leg{{Offset: .05, VolumePart: 1, Fee: .001}},
		Takes:     []plan.Leg{{Offset: -.1, VolumePart: 1, Fee: .001}},
	}
}

func TestService_Calculate_FixedPrices(t *testing.T) {
	// Arrange
	prices := new(MockPriceSource)
	journal := new(MockJournal)
	journal.On("Save", mock.Anything, mock.MatchedBy(func(rec database.PlanRecord) bool {
		return rec.Symbol == "BTCUSDT" && rec.MarketPrice == 0 && rec.Info.TradeType == risk.Long
	})).Return(models.TradePlan{ID: "01HX0000000000000000000000"}, nil)

	svc := NewService(zap.NewNop(), prices, journal, testDefaults)
	before := testutil.ToFloat64(metricPlansCalculated)

	// Act
	res, err := svc.Calculate(context.Background(), fixedLongPlan())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "01HX0000000000000000000000", res.ID)
	assert.Equal(t, "BTCUSDT", res.Symbol)
	assert.InDelta(t, 100, res.Info.TotalVolume.Loss.Quoted, 1e-6)
	assert.Equal(t, 10000.0, res.Info.Deposit)
	assert.Equal(t, before+1, testutil.ToFloat64(metricPlansCalculated))
	prices.AssertNotCalled(t, "GetTickerPrice", mock.Anything, mock.Anything)
	journal.AssertExpectations(t)
}

func TestService_Calculate_OffsetsUseMarketPrice(t *testing.T) {
	// Arrange
	prices := new(MockPriceSource)
	prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(2000.0, nil)

	svc := NewService(zap.NewNop(), prices, nil, testDefaults)

	// Act
	res, err := svc.Calculate(context.Background(), offsetShortPlan())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, res.ID)
	assert.Equal(t, 2000.0, res.MarketPrice)
	assert.InDelta(t, 2020, res.Info.Entries[0].Price, 1e-9)
	assert.InDelta(t, 2100, res.Info.Stops[0].Price, 1e-9)
	assert.InDelta(t, 1800, res.Info.Takes[0].Price, 1e-9)
	assert.InDelta(t, 100, res.Info.TotalVolume.Loss.Quoted, 1e-6)
	prices.AssertExpectations(t)
}

func TestService_Calculate_Rejections(t *testing.T) {
	t.Run("Price lookup fails", func(t *testing.T) {
		// Arrange
		prices := new(MockPriceSource)
		prices.On("GetTickerPrice", mock.Anything, "ETHUSDT").Return(0.0, errors.New("API down"))
		svc := NewService(zap.NewNop(), prices, nil, testDefaults)
		before := testutil.ToFloat64(metricPlansRejected.WithLabelValues(reasonMarketPrice))

		// Act
		_, err := svc.Calculate(context.Background(), offsetShortPlan())

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API down")
		assert.Equal(t, before+1, testutil.ToFloat64(metricPlansRejected.WithLabelValues(reasonMarketPrice)))
	})

	t.Run("No price source", func(t *testing.T) {
		svc := NewService(zap.NewNop(), nil, nil, testDefaults)

		_, err := svc.Calculate(context.Background(), offsetShortPlan())

		assert.ErrorIs(t, err, ErrNoPriceSource)
	})

	t.Run("Offsets without symbol", func(t *testing.T) {
		svc := NewService(zap.NewNop(), new(MockPriceSource), nil, testDefaults)
		p := offsetShortPlan()
		p.Symbol = ""

		_, err := svc.Calculate(context.Background(), p)

		assert.ErrorIs(t, err, plan.ErrMarketPriceRequired)
	})

	t.Run("Invalid plan", func(t *testing.T) {
		// Arrange
		journal := new(MockJournal)
		svc := NewService(zap.NewNop(), nil, journal, testDefaults)
		p := fixedLongPlan()
		p.Stops[0].Price = 105
		before := testutil.ToFloat64(metricPlansRejected.WithLabelValues(reasonValidation))

		// Act
		_, err := svc.Calculate(context.Background(), p)

		// Assert
		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "stops[0].price")
		assert.ErrorIs(t, err, risk.ErrInconsistentLegConfiguration)
		assert.Equal(t, before+1, testutil.ToFloat64(metricPlansRejected.WithLabelValues(reasonValidation)))
		journal.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Degenerate arithmetic", func(t *testing.T) {
		// Short stop at the entry price with no fees has zero loss per unit.
		svc := NewService(zap.NewNop(), nil, nil, testDefaults)
		p := plan.Plan{
			TradeType: risk.Short,
			Entries:   []plan.Leg{{Price: 100, VolumePart: 1}},
			Stops:     []plan.Leg{{Price: 100, VolumePart: 1}},
			Takes:     []plan.Leg{{Price: 90, VolumePart: 1}},
		}

		_, err := svc.Calculate(context.Background(), p)

		assert.ErrorIs(t, err, risk.ErrArithmeticDegenerate)
	})

	t.Run("Journal fails", func(t *testing.T) {
		journal := new(MockJournal)
		journal.On("Save", mock.Anything, mock.Anything).Return(models.TradePlan{}, errors.New("disk full"))
		svc := NewService(zap.NewNop(), nil, journal, testDefaults)

		_, err := svc.Calculate(context.Background(), fixedLongPlan())

		assert.ErrorContains(t, err, "disk full")
		journal.AssertExpectations(t)
	})
}
