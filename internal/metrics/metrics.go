// Package metrics exposes Prometheus instrumentation for analysis calls
// and the record index.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/models"
)

const namespace = "bantay"

// Forecast outcome label values.
const (
	OutcomeReady        = "ready"
	OutcomeInsufficient = "insufficient"
	OutcomeDivergent    = "divergent"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Labels: operation, kind.
	AnalysesTotal *prometheus.CounterVec
	// Labels: operation, kind.
	AnalysisDuration *prometheus.HistogramVec
	// Labels: kind, outcome.
	ForecastsTotal *prometheus.CounterVec
	// Labels: kind.
	IndexedRecords *prometheus.GaugeVec
	// Labels: op (created, updated, deleted).
	IndexEvents *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "requests_total",
			Help:      "Analysis calls by operation and record kind",
		}, []string{"operation", "kind"}),
		AnalysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "duration_seconds",
			Help:      "Time spent fetching and analysing records",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "kind"}),
		ForecastsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "results_total",
			Help:      "Forecast results by outcome",
		}, []string{"kind", "outcome"}),
		IndexedRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "records",
			Help:      "Records currently held in the index",
		}, []string{"kind"}),
		IndexEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "events_total",
			Help:      "Watcher-driven index changes",
		}, []string{"op"}),
	}
}

// ObserveAnalysis records one completed analysis call.
func (m *Metrics) ObserveAnalysis(op string, kind models.Kind, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(op, string(kind)).Inc()
	m.AnalysisDuration.WithLabelValues(op, string(kind)).Observe(d.Seconds())
}

// ObserveForecast counts a forecast by outcome. A divergent forecast is
// also counted as ready.
func (m *Metrics) ObserveForecast(kind models.Kind, res analytics.ForecastResult) {
	if !res.Ready {
		m.ForecastsTotal.WithLabelValues(string(kind), OutcomeInsufficient).Inc()
		return
	}
	m.ForecastsTotal.WithLabelValues(string(kind), OutcomeReady).Inc()
	if res.Divergent {
		m.ForecastsTotal.WithLabelValues(string(kind), OutcomeDivergent).Inc()
	}
}

// SetIndexed sets the indexed record gauge for kind.
func (m *Metrics) SetIndexed(kind models.Kind, n int) {
	m.IndexedRecords.WithLabelValues(string(kind)).Set(float64(n))
}

// ObserveIndexEvent counts a watcher index change.
func (m *Metrics) ObserveIndexEvent(op string) {
	m.IndexEvents.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
