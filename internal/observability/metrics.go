package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taxi_prep"

// Metrics holds the Prometheus counters, histograms, and gauges for a prepare run.
type Metrics struct {
	RowsLoaded      prometheus.Counter
	ColumnsLoaded   prometheus.Gauge
	MissingCells    *prometheus.GaugeVec // labels: column
	CategoryColumns prometheus.Gauge

	// Feature enrichment.
	NonFiniteDistances prometheus.Counter
	InvalidHours       prometheus.Counter

	// Sink loading.
	RowsWritten    *prometheus.CounterVec   // labels: sink
	SinkErrors     *prometheus.CounterVec   // labels: sink
	BatchDuration  *prometheus.HistogramVec // labels: sink
	PrepareSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates all prepare-run metrics on a private registry, which
// Gatherer exposes for textfile export.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows read from the input CSV.",
		}),
		ColumnsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "columns_loaded",
			Help:      "Columns in the input CSV.",
		}),
		MissingCells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_cells",
			Help:      "Missing values per input column.",
		}, []string{"column"}),
		CategoryColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_columns",
			Help:      "Columns stored as categorical in the prepared output.",
		}),
		NonFiniteDistances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "non_finite_distances_total",
			Help:      "Rows whose haversine distance could not be computed.",
		}),
		InvalidHours: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_hours_total",
			Help:      "Rows whose pickup hour was missing or unparseable.",
		}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Prepared rows written, by sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed batch writes, by sink.",
		}, []string{"sink"}),
		BatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_write_duration_seconds",
			Help:      "Duration of one batch write, by sink.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"sink"}),
		PrepareSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prepare_duration_seconds",
			Help:      "Duration of a complete load-enrich-write run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RowsLoaded,
		m.ColumnsLoaded,
		m.MissingCells,
		m.CategoryColumns,
		m.NonFiniteDistances,
		m.InvalidHours,
		m.RowsWritten,
		m.SinkErrors,
		m.BatchDuration,
		m.PrepareSeconds,
	)

	return m
}

// Gatherer exposes the run's registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the run's metrics in the text exposition format, for
// node_exporter's textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
