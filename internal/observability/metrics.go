package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// demand pipeline.
type Metrics struct {
	RowsIngested prometheus.Counter
	RowsDropped  prometheus.Counter
	RowsCleaned  prometheus.Counter
	RowsRejected *prometheus.CounterVec // label: predicate={bounds,passengers,duration,completeness}

	BatchSize     prometheus.Histogram
	StageDuration *prometheus.HistogramVec // label: stage={ingest,clean,aggregate,forecast}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.RowsDropped,
		m.RowsCleaned,
		m.RowsRejected,
		m.BatchSize,
		m.StageDuration,
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
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "demand_pipeline",
			Name:      "rows_ingested_total",
			Help:      "Total trip rows appended to the trip store.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "demand_pipeline",
			Name:      "rows_dropped_total",
			Help:      "Total malformed rows dropped during ingestion.",
		}),
		RowsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "demand_pipeline",
			Name:      "rows_cleaned_total",
			Help:      "Total rows that passed every cleaning predicate.",
		}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "demand_pipeline",
			Name:      "rows_rejected_total",
			Help:      "Rows rejected by the cleaning filter, by predicate.",
		}, []string{"predicate"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "demand_pipeline",
			Name:      "batch_size",
			Help:      "Number of rows per ingested batch.",
			Buckets:   []float64{100, 1000, 10000, 25000, 50000, 100000},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "demand_pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"stage"}),
	}
}
