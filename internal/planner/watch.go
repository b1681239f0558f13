package planner

import (
	"context"
	"time"

	"github.com/Re-Quant/calc/internal/plan"
	"go.uber.org/zap"
)

// Watcher recalculates one plan on a fixed interval so that offset legs
// follow the market price.
type Watcher struct {
	log      *zap.Logger
	svc      *Service
	plan     plan.Plan
	interval time.Duration
	onResult func(Result)
}

// NewWatcher creates a Watcher. onResult, when not nil, is called after
// every successful calculation, from the Run goroutine.
func NewWatcher(log *zap.Logger, svc *Service, p plan.Plan, interval time.Duration, onResult func(Result)) *Watcher {
	return &Watcher{
		log:      log.Named("watcher"),
		svc:      svc,
		plan:     p,
		interval: interval,
		onResult: onResult,
	}
}

// Run calculates immediately and then on every tick until ctx is done.
// Failed ticks are logged and skipped.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Starting watch loop", zap.String("symbol", w.plan.Symbol), zap.Duration("interval", w.interval))
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Stopping watch loop")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	res, err := w.svc.Calculate(ctx, w.plan)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("Recalculation failed", zap.Error(err))
		}
		return
	}
	if w.onResult != nil {
		w.onResult(res)
	}
}
