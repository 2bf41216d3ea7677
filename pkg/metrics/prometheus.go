// Package metrics provides Prometheus metrics for the ringstats report builder.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a ringstats run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Remote record source
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recordsFetched  *prometheus.CounterVec
	limiterWait     prometheus.Histogram

	// Data quality warnings
	truncationWarnings *prometheus.CounterVec
	duplicateEvents    *prometheus.CounterVec

	// Aggregation
	performersIndexed prometheus.Gauge
	rowsEmitted       prometheus.Gauge
	personalTotals    *prometheus.CounterVec

	// Report sink
	reportWrites        *prometheus.CounterVec
	reportWriteDuration prometheus.Histogram

	// Run lifecycle
	runDuration    prometheus.Gauge
	lastRunSuccess prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ringstats",
		subsystem:        "report",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "requests_total",
		Help:        "Total number of record source requests by query kind and HTTP status",
		ConstLabels: m.constLabels,
	}, []string{"query", "status"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "request_duration_milliseconds",
		Help:        "Record source request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.recordsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_fetched_total",
		Help:        "Total number of event records decoded from the record source",
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.limiterWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "limiter_wait_milliseconds",
		Help:        "Time spent blocked on the shared request rate limiter",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.truncationWarnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "truncation_warnings_total",
		Help:        "Queries whose result size reached the page size ceiling",
		ConstLabels: m.constLabels,
	}, []string{"query"})

	m.duplicateEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_events_total",
		Help:        "Event ids seen more than once in a single performer/year/affiliation list",
		ConstLabels: m.constLabels,
	}, []string{"affiliation"})

	m.performersIndexed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "performers_indexed",
		Help:        "Number of distinct performers discovered by the affiliation queries",
		ConstLabels: m.constLabels,
	})

	m.rowsEmitted = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_emitted",
		Help:        "Number of performer rows written to the report",
		ConstLabels: m.constLabels,
	})

	m.personalTotals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "personal_totals_total",
		Help:        "Personal total lookups by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.reportWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_writes_total",
		Help:        "Report sink writes by format and result",
		ConstLabels: m.constLabels,
	}, []string{"format", "result"})

	m.reportWriteDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_write_duration_milliseconds",
		Help:        "Report sink write duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall-clock duration of the last run",
		ConstLabels: m.constLabels,
	})

	m.lastRunSuccess = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_success_unix",
		Help:        "Unix timestamp of the last run that wrote its report",
		ConstLabels: m.constLabels,
	})
}

// RecordRequest counts a record source request and observes its latency.
func RecordRequest(query string, status int, latencyMs float64) {
	globalManager.requests.WithLabelValues(query, statusLabel(status)).Inc()
	globalManager.requestDuration.WithLabelValues(query).Observe(latencyMs)
}

// RecordRecordsFetched adds n decoded records for the query kind.
func RecordRecordsFetched(query string, n int) {
	globalManager.recordsFetched.WithLabelValues(query).Add(float64(n))
}

// RecordLimiterWait records time spent waiting on the rate limiter.
func RecordLimiterWait(waitMs float64) {
	globalManager.limiterWait.Observe(waitMs)
}

// RecordTruncationWarning increments the truncation warning counter.
func RecordTruncationWarning(query string) {
	globalManager.truncationWarnings.WithLabelValues(query).Inc()
}

// RecordDuplicateEvent increments the duplicate event counter.
func RecordDuplicateEvent(affiliation string) {
	globalManager.duplicateEvents.WithLabelValues(affiliation).Inc()
}

// UpdatePerformersIndexed sets the number of indexed performers.
func UpdatePerformersIndexed(count int) {
	globalManager.performersIndexed.Set(float64(count))
}

// UpdateRowsEmitted sets the number of emitted rows.
func UpdateRowsEmitted(count int) {
	globalManager.rowsEmitted.Set(float64(count))
}

// RecordPersonalTotal counts a personal total lookup outcome.
func RecordPersonalTotal(outcome string) {
	globalManager.personalTotals.WithLabelValues(outcome).Inc()
}

// RecordReportWrite counts a report write and observes its duration.
func RecordReportWrite(format string, err error, latencyMs float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	globalManager.reportWrites.WithLabelValues(format, result).Inc()
	globalManager.reportWriteDuration.Observe(latencyMs)
}

// RecordRunDuration sets the duration of the last run.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Set(seconds)
}

// MarkRunSucceeded stamps the last successful run.
func MarkRunSucceeded() {
	globalManager.lastRunSuccess.SetToCurrentTime()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the current metric values in the node exporter
// textfile format. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// statusLabel maps an HTTP status to a label; 0 means the request never
// produced a response.
func statusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return fmt.Sprintf("%d", status)
}
