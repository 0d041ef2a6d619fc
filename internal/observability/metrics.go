// Package observability holds the Prometheus instrumentation for the
// nudging subsystem.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for a nudging
// process instance.
type Metrics struct {
	DatasetReads    prometheus.Counter
	WindowAdvances  prometheus.Counter
	RunSteps        prometheus.Counter
	RunErrors       prometheus.Counter
	RunStepDuration prometheus.Histogram
}

// NewMetrics creates and registers all nudging metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetReads,
		m.WindowAdvances,
		m.RunSteps,
		m.RunErrors,
		m.RunStepDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nudge",
			Name:      "dataset_reads_total",
			Help:      "Total snapshot reads from the reference dataset.",
		}),
		WindowAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nudge",
			Name:      "window_advances_total",
			Help:      "Total bracketing-window advances past a dataset timestamp.",
		}),
		RunSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nudge",
			Name:      "run_steps_total",
			Help:      "Total nudging run steps completed.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nudge",
			Name:      "run_errors_total",
			Help:      "Total nudging run steps that failed.",
		}),
		RunStepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nudge",
			Name:      "run_step_duration_seconds",
			Help:      "Duration of one interpolate-remap-apply cycle.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}
