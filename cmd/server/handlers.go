package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/models"
	"github.com/Re-Quant/calc/internal/plan"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/Re-Quant/calc/internal/risk"
	"github.com/Re-Quant/calc/internal/validation"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 50
)

// Calculator sizes trade plans.
type Calculator interface {
	Calculate(ctx context.Context, p plan.Plan) (planner.Result, error)
}

// PlanReader reads the journal.
type PlanReader interface {
	Recent(ctx context.Context, limit int) ([]models.TradePlan, error)
	Get(ctx context.Context, id string) (models.TradePlan, risk.TradeInfo, error)
	Count(ctx context.Context) (int64, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	calc    Calculator
	plans   PlanReader
	started time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, calc Calculator, plans PlanReader) *APIHandler {
	return &APIHandler{log: log, calc: calc, plans: plans, started: time.Now()}
}

// Routes registers the API endpoints on mux.
func (h *APIHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/trade-info", h.TradeInfoHandler)
	mux.HandleFunc("GET /api/plans", h.PlansHandler)
	mux.HandleFunc("GET /api/plans/{id}", h.PlanHandler)
	mux.HandleFunc("GET /api/status", h.StatusHandler)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

// TradeInfoHandler sizes the plan in the request body.
func (h *APIHandler) TradeInfoHandler(w http.ResponseWriter, r *http.Request) {
	var p plan.Plan
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid plan: " + err.Error()})
		return
	}

	res, err := h.calc.Calculate(r.Context(), p)
	if err != nil {
		status, body := h.classify(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) classify(err error) (int, errorResponse) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, errorResponse{Error: "invalid trade arguments", Fields: verrs}
	case errors.Is(err, risk.ErrArithmeticDegenerate):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, plan.ErrMarketPriceRequired):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, planner.ErrNoPriceSource):
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{Error: err.Error()}
	}
	h.log.Error("Failed to calculate trade plan", zap.Error(err))
	return http.StatusInternalServerError, errorResponse{Error: "failed to calculate trade plan"}
}

// PlansHandler returns the most recent journaled plans.
func (h *APIHandler) PlansHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	plans, err := h.plans.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to get plans from database", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get plans"})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// PlanHandler returns one journaled plan with its full trade info.
func (h *APIHandler) PlanHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	row, info, err := h.plans.Get(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrPlanNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.log.Error("Failed to get plan from database", zap.String("id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get plan"})
		return
	}

	writeJSON(w, http.StatusOK, planner.Result{
		ID:          row.ID,
		Symbol:      row.Symbol,
		MarketPrice: row.MarketPrice,
		Info:        info,
	})
}

// StatusResponse is the body of /api/status.
type StatusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	PlansStored   int64  `json:"plans_stored"`
}

// StatusHandler reports liveness and the journal size.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.plans.Count(r.Context())
	if err != nil {
		h.log.Error("Failed to count plans", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		PlansStored:   n,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
