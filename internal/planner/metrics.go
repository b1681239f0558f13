package planner

import "github.com/prometheus/client_golang/prometheus"

var (
	metricPlansCalculated = prometheus.NewCounter(prometheus.CounterOpts{Name: "riskcalc_plans_calculated_total", Help: "Trade plans sized successfully"})
	metricPlansRejected   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "riskcalc_plans_rejected_total", Help: "Trade plans that could not be sized, by reason"}, []string{"reason"})
	metricRiskRatio       = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskcalc_risk_ratio",
		Help:    "Profit to loss ratio of calculated plans",
		Buckets: []float64{0.5, 1, 1.5, 2, 3, 4, 5, 7.5, 10},
	})
)

const (
	reasonPlan        = "plan"
	reasonMarketPrice = "market_price"
	reasonValidation  = "validation"
	reasonDegenerate  = "degenerate"
	reasonJournal     = "journal"
)

func init() {
	prometheus.MustRegister(
		metricPlansCalculated,
		metricPlansRejected,
		metricRiskRatio,
	)
}
