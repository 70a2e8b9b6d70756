// Package metrics provides Prometheus metrics for the snipe bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the snipe bot.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pass metrics
	passesRun      prometheus.Counter
	passesSkipped  prometheus.Counter
	passDuration   prometheus.Histogram
	passesAborted  *prometheus.CounterVec
	listRemaining  prometheus.Gauge
	listWriteError prometheus.Counter

	// Location and attempt metrics
	locationsSkipped *prometheus.CounterVec
	attempts         *prometheus.CounterVec
	attemptRetries   prometheus.Counter
	attemptDuration  prometheus.Histogram
	cacheSize        prometheus.Gauge

	// External reports
	reportsFetched prometheus.Counter
	reportsKept    prometheus.Counter
	reportErrors   prometheus.Counter

	// History store
	historyWriteErrors prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "snipe",
		subsystem:        "bot",
		histogramBuckets: []float64{10, 50, 100, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.passesRun = m.counter("passes_total", "Total number of snipe-list passes started")
	m.passesSkipped = m.counter("passes_skipped_total", "Scheduler ticks that fell inside the wait interval")
	m.passDuration = m.histogram("pass_duration_milliseconds", "Duration of a full snipe-list pass in milliseconds", m.histogramBuckets)
	m.passesAborted = m.counterVec("passes_aborted_total", "Passes that stopped early, by reason", "reason")
	m.listRemaining = m.gauge("snipe_list_remaining", "Locations left in the snipe-list file after the last write")
	m.listWriteError = m.counter("snipe_list_write_errors_total", "Failed rewrites of the snipe-list file")

	m.locationsSkipped = m.counterVec("locations_skipped_total", "Locations skipped without an attempt, by reason", "reason")
	m.attempts = m.counterVec("attempts_total", "Snipe attempts by outcome", "outcome")
	m.attemptRetries = m.counter("attempt_retries_total", "Attempts that needed their single retry")
	m.attemptDuration = m.histogram("attempt_duration_milliseconds", "Duration of one snipe attempt in milliseconds", m.histogramBuckets)
	m.cacheSize = m.gauge("coordinate_cache_entries", "Live entries in the recently-tried coordinate cache")

	m.reportsFetched = m.counter("reports_fetched_total", "External sighting reports received")
	m.reportsKept = m.counter("reports_kept_total", "External sighting reports kept after the expiry horizon filter")
	m.reportErrors = m.counter("report_fetch_errors_total", "Failed external report fetches")

	m.historyWriteErrors = m.counter("history_write_errors_total", "Failed attempt history writes")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Error count by component and error type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Pass Metrics Functions.

// RecordPassRun increments the passes counter.
func RecordPassRun() {
	globalManager.passesRun.Inc()
}

// RecordPassSkipped counts a scheduler tick inside the wait interval.
func RecordPassSkipped() {
	globalManager.passesSkipped.Inc()
}

// RecordPassDuration records pass duration in milliseconds.
func RecordPassDuration(durationMs float64) {
	globalManager.passDuration.Observe(durationMs)
}

// RecordPassAborted counts a pass that stopped early.
func RecordPassAborted(reason string) {
	globalManager.passesAborted.WithLabelValues(reason).Inc()
}

// UpdateListRemaining sets the number of locations left on disk.
func UpdateListRemaining(count int) {
	globalManager.listRemaining.Set(float64(count))
}

// RecordListWriteError counts a failed snipe-list rewrite.
func RecordListWriteError() {
	globalManager.listWriteError.Inc()
}

// Attempt Metrics Functions.

// RecordLocationSkipped counts a location skipped for reason (invalid, exhausted).
func RecordLocationSkipped(reason string) {
	globalManager.locationsSkipped.WithLabelValues(reason).Inc()
}

// RecordAttempt counts an attempt by outcome.
func RecordAttempt(outcome string) {
	globalManager.attempts.WithLabelValues(outcome).Inc()
}

// RecordAttemptRetry counts an attempt that used its retry.
func RecordAttemptRetry() {
	globalManager.attemptRetries.Inc()
}

// RecordAttemptDuration records attempt duration in milliseconds.
func RecordAttemptDuration(durationMs float64) {
	globalManager.attemptDuration.Observe(durationMs)
}

// UpdateCacheSize sets the number of live coordinate cache entries.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// Report Metrics Functions.

// RecordReportsFetched adds n received reports.
func RecordReportsFetched(n int) {
	globalManager.reportsFetched.Add(float64(n))
}

// RecordReportsKept adds n reports that passed the horizon filter.
func RecordReportsKept(n int) {
	globalManager.reportsKept.Add(float64(n))
}

// RecordReportFetchError counts a failed report fetch.
func RecordReportFetchError() {
	globalManager.reportErrors.Inc()
}

// RecordHistoryWriteError counts a failed history write.
func RecordHistoryWriteError() {
	globalManager.historyWriteErrors.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and error type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
