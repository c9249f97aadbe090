package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collection pipeline.
type Metrics struct {
	ReportsCollected *prometheus.CounterVec // labels: source
	CollectionErrors *prometheus.CounterVec // labels: source
	NormalizeErrors  prometheus.Counter
	RecordsStored    prometheus.Counter
	AlertsGenerated  *prometheus.CounterVec // labels: severity
	PipelineRunning  prometheus.Gauge

	// Cycle metrics.
	Cycles        *prometheus.CounterVec // labels: status
	CycleDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReportsCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "reports_collected_total",
			Help:      "Total raw reports collected, by source.",
		}, []string{"source"}),
		CollectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "collection_errors_total",
			Help:      "Total collector failures, by source.",
		}, []string{"source"}),
		NormalizeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "normalize_errors_total",
			Help:      "Total reports dropped during normalization.",
		}),
		RecordsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "records_stored_total",
			Help:      "Total sentiment records appended to the store.",
		}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "alerts_generated_total",
			Help:      "Total security alerts generated, by severity.",
		}, []string{"severity"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metrowatch",
			Name:      "pipeline_running",
			Help:      "1 when the collection loop is active, 0 when shut down.",
		}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metrowatch",
			Name:      "cycles_total",
			Help:      "Total analysis cycles, by terminal status.",
		}, []string{"status"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metrowatch",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete collect-normalize-store-alert cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.ReportsCollected,
		m.CollectionErrors,
		m.NormalizeErrors,
		m.RecordsStored,
		m.AlertsGenerated,
		m.PipelineRunning,
		m.Cycles,
		m.CycleDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReportsCollected: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "metrowatch", Name: "reports_collected_total"}, []string{"source"}),
		CollectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "metrowatch", Name: "collection_errors_total"}, []string{"source"}),
		NormalizeErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "metrowatch", Name: "normalize_errors_total"}),
		RecordsStored:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "metrowatch", Name: "records_stored_total"}),
		AlertsGenerated:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "metrowatch", Name: "alerts_generated_total"}, []string{"severity"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "metrowatch", Name: "pipeline_running"}),
		Cycles:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "metrowatch", Name: "cycles_total"}, []string{"status"}),
		CycleDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "metrowatch", Name: "cycle_duration_seconds"}),
	}
}
