// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RawRowsIngested *prometheus.CounterVec
	IngestErrors    *prometheus.CounterVec

	// Panel metrics
	PanelRowsBuilt    *prometheus.CounterVec
	MissingDataRows   prometheus.Counter
	GuardFailures     *prometheus.CounterVec
	AuditViolations   prometheus.Counter
	PanelBuildLatency prometheus.Histogram

	// Pipeline metrics
	PipelineRunsTotal   *prometheus.CounterVec
	PipelineDuration    *prometheus.HistogramVec
	SplitsEvaluated     *prometheus.CounterVec
	AggregatesComputed  prometheus.Counter
	ReportsGenerated    prometheus.Counter
	RunsSkippedExisting prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulPipeline  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fpl_points_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		RawRowsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "raw_rows_total",
			Help:      "Total number of raw rows ingested by table",
		}, []string{"table"}),
		IngestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by source file kind",
		}, []string{"source"}),

		// Panel metrics
		PanelRowsBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "panel",
			Name:      "rows_built_total",
			Help:      "Total number of panel rows built by row status",
		}, []string{"status"}),
		MissingDataRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "panel",
			Name:      "missing_data_rows_total",
			Help:      "Total number of rows recovered from missing raw data",
		}),
		GuardFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "panel",
			Name:      "guard_failures_total",
			Help:      "Total number of fatal schema or leakage failures",
		}, []string{"kind"}),
		AuditViolations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "panel",
			Name:      "audit_violations_total",
			Help:      "Total number of violations found by the panel audit",
		}),
		PanelBuildLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "panel",
			Name:      "build_seconds",
			Help:      "Panel build latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Pipeline metrics
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
		SplitsEvaluated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "splits_evaluated_total",
			Help:      "Total number of walk-forward splits evaluated by model",
		}, []string{"model"}),
		AggregatesComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "aggregates_computed_total",
			Help:      "Total number of season aggregates computed",
		}),
		ReportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		RunsSkippedExisting: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_skipped_total",
			Help:      "Total number of runs skipped because the output version exists",
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulPipeline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordRawRows adds n ingested rows for a table.
func RecordRawRows(table string, n int) {
	DefaultMetrics.RawRowsIngested.WithLabelValues(table).Add(float64(n))
}

// RecordIngestError records an ingestion failure.
func RecordIngestError(source string) {
	DefaultMetrics.IngestErrors.WithLabelValues(source).Inc()
}

// RecordPanelRow counts one built row by status.
func RecordPanelRow(status string) {
	DefaultMetrics.PanelRowsBuilt.WithLabelValues(status).Inc()
}

// RecordMissingData adds n recovered missing-data rows.
func RecordMissingData(n int) {
	DefaultMetrics.MissingDataRows.Add(float64(n))
}

// RecordGuardFailure records a fatal guard error ("schema", "leakage" or "idempotence").
func RecordGuardFailure(kind string) {
	DefaultMetrics.GuardFailures.WithLabelValues(kind).Inc()
}

// RecordAuditViolations adds n audit violations.
func RecordAuditViolations(n int) {
	DefaultMetrics.AuditViolations.Add(float64(n))
}

// RecordPanelBuild records panel build latency.
func RecordPanelBuild(seconds float64) {
	DefaultMetrics.PanelBuildLatency.Observe(seconds)
}

// RecordSplitEvaluated counts one evaluated split for a model.
func RecordSplitEvaluated(model string) {
	DefaultMetrics.SplitsEvaluated.WithLabelValues(model).Inc()
}

// RecordAggregates adds n computed season aggregates.
func RecordAggregates(n int) {
	DefaultMetrics.AggregatesComputed.Add(float64(n))
}

// RecordReportGenerated increments the reports counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordRunSkipped increments the skipped runs counter.
func RecordRunSkipped() {
	DefaultMetrics.RunsSkippedExisting.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// MarkPipelineSuccess sets the last successful pipeline timestamp.
func MarkPipelineSuccess(unix int64) {
	DefaultMetrics.LastSuccessfulPipeline.Set(float64(unix))
}

// MarkIngestionSuccess sets the last successful ingestion timestamp.
func MarkIngestionSuccess(unix int64) {
	DefaultMetrics.LastSuccessfulIngestion.Set(float64(unix))
}
