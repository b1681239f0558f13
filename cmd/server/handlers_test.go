package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const longPlanJSON = `{
	"symbol": "BTCUSDT",
	"tradeType": "long",
	"deposit": 10000,
	"risk": 0.01,
	"leverage": {"allow": true, "max": 3},
	"breakeven": {"fee": 0.002},
	"entries": [{"price": 100, "volumePart": 0.5, "fee": 0.001}, {"price": 98, "volumePart": 0.5, "fee": 0.001}],
	"stops": [{"price": 94, "volumePart": 1, "fee": 0.001}],
	"takes": [{"price": 110, "volumePart": 1, "fee": 0.001}]
}`

// MockCalculator is a mock implementation of Calculator.
type MockCalculator struct {
	mock.Mock
}

func (m *MockCalculator) Calculate(ctx context.Context, p plan.Plan) (planner.Result, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(planner.Result), args.Error(1)
}

// setupTestServer wires the real planner and an in-memory journal behind the routes.
func setupTestServer(t *testing.T) (*http.ServeMux, *database.PlanStore) {
	t.Helper()
	db, err := database.NewDatabase("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := database.NewPlanStore(db)
	svc := planner.NewService(zap.NewNop(), nil, store, config.Defaults{Leverage: config.Leverage{Max: 1}})

	mux := http.NewServeMux()
	NewAPIHandler(zap.NewNop(), svc, store).Routes(mux)
	return mux, store
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestTradeInfoHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mux, store := setupTestServer(t)

		// Act
		rec := do(mux, http.MethodPost, "/api/trade-info", longPlanJSON)

		// Assert
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var res planner.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.ID)
		assert.InDelta(t, 100, res.Info.TotalVolume.Loss.Quoted, 1e-6)
		assert.Len(t, res.Info.Entries, 2)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Nil(t, raw["tradeInfo"].(map[string]any)["maxTradeVolumeQuoted"])

		n, err := store.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Validation errors", func(t *testing.T) {
		mux, _ := setupTestServer(t)
		body := strings.Replace(longPlanJSON, `"risk": 0.01`, `"risk": 0.5`, 1)

		rec := do(mux, http.MethodPost, "/api/trade-info", body)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp struct {
			Error  string                    `json:"error"`
			Fields map[string]map[string]any `json:"fields"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "max", resp.Fields["risk"]["code"])
	})

	t.Run("Malformed body", func(t *testing.T) {
		mux, _ := setupTestServer(t)

		rec := do(mux, http.MethodPost, "/api/trade-info", `{"tradeType": "long", "bogus": 1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "bogus")
	})

	t.Run("Offset legs without price source", func(t *testing.T) {
		mux, _ := setupTestServer(t)
		body := strings.Replace(longPlanJSON, `{"price": 110,`, `{"offset": 0.1,`, 1)

		rec := do(mux, http.MethodPost, "/api/trade-info", body)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Error classes", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{"degenerate", &risk.CalcError{Op: "TradeVolumeQuoted", Err: risk.ErrArithmeticDegenerate}, http.StatusUnprocessableEntity},
			{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				calc := new(MockCalculator)
				calc.On("Calculate", mock.Anything, mock.Anything).Return(planner.Result{}, tt.err)
				mux := http.NewServeMux()
				NewAPIHandler(zap.NewNop(), calc, nil).Routes(mux)

				rec := do(mux, http.MethodPost, "/api/trade-info", longPlanJSON)

				assert.Equal(t, tt.status, rec.Code)
				assert.NotContains(t, rec.Body.String(), "boom")
				calc.AssertExpectations(t)
			})
		}
	})

	t.Run("Wrong method", func(t *testing.T) {
		mux, _ := setupTestServer(t)

		rec := do(mux, http.MethodGet, "/api/trade-info", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestPlanHandlers(t *testing.T) {
	// Arrange
	mux, _ := setupTestServer(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(mux, http.MethodPost, "/api/trade-info", longPlanJSON).Code)
	}

	t.Run("List", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/api/plans?limit=2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var plans []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
		assert.Len(t, plans, 2)
		assert.Equal(t, "long", plans[0]["trade_type"])
	})

	t.Run("Bad limit", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/api/plans?limit=-1", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Get one", func(t *testing.T) {
		var plans []map[string]any
		require.NoError(t, json.Unmarshal(do(mux, http.MethodGet, "/api/plans", "").Body.Bytes(), &plans))
		id := plans[0]["id"].(string)

		rec := do(mux, http.MethodGet, "/api/plans/"+id, "")

		require.Equal(t, http.StatusOK, rec.Code)
		var res planner.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, id, res.ID)
		assert.Equal(t, risk.Long, res.Info.TradeType)
	})

	t.Run("Not found", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/api/plans/01HZZZZZZZZZZZZZZZZZZZZZZZ", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Status", func(t *testing.T) {
		rec := do(mux, http.MethodGet, "/api/status", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var status StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, int64(3), status.PlansStored)
	})
}
