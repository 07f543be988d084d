package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Basket mutation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeConflict = "conflict"
)

// BasketMetrics records basket mutations and report generation.
type BasketMetrics struct {
	mutations      *prometheus.CounterVec
	conflicts      *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	reportRows     *prometheus.CounterVec
}

// NewBasketMetrics registers the basket metrics on the provided registerer.
func NewBasketMetrics(reg prometheus.Registerer) *BasketMetrics {
	if reg == nil {
		return &BasketMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_mutations_total",
		Help: "Basket mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basket_version_conflicts_total",
		Help: "Optimistic concurrency conflicts hit while saving a basket.",
	}, []string{"op"})
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_duration_seconds",
		Help:    "Duration of report generation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	reportRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_rows_total",
		Help: "Rows emitted by reports.",
	}, []string{"report"})
	reg.MustRegister(mutations, conflicts, reportDuration, reportRows)
	return &BasketMetrics{
		mutations:      mutations,
		conflicts:      conflicts,
		reportDuration: reportDuration,
		reportRows:     reportRows,
	}
}

// IncMutation counts a finished basket mutation.
func (b *BasketMetrics) IncMutation(op, outcome string) {
	if b == nil || b.mutations == nil {
		return
	}
	b.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// IncConflict counts a lost compare-and-swap race.
func (b *BasketMetrics) IncConflict(op string) {
	if b == nil || b.conflicts == nil {
		return
	}
	b.conflicts.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveReport records the duration and row count of a generated report.
func (b *BasketMetrics) ObserveReport(report string, duration time.Duration, rows int) {
	if b == nil || b.reportDuration == nil {
		return
	}
	report = normalizeLabel(report)
	b.reportDuration.WithLabelValues(report).Observe(duration.Seconds())
	b.reportRows.WithLabelValues(report).Add(float64(rows))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
