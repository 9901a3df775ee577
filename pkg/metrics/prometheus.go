// Package metrics provides Prometheus metrics for the courtside rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Refresh pipeline
	refreshRuns     *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	subjectsRated   *prometheus.GaugeVec
	rolesDefaulted  prometheus.Gauge

	// Elo replay, per latest run
	gamesProcessed   prometheus.Gauge
	gamesSkipped     *prometheus.GaugeVec
	homeAwayInferred prometheus.Gauge

	// Rankings boards
	boardSize         *prometheus.GaugeVec
	boardQueryLatency prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	jobsDuplicate      prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Storage and sources
	archiveSaves  *prometheus.CounterVec
	sourceChanges prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter

	errorsByComponent *prometheus.CounterVec
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
		namespace:        "courtside",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.customLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)
	msBuckets := []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

	m.refreshRuns = auto.NewCounterVec(m.counterOpts("refresh_runs_total", "Refresh runs by outcome"), []string{"status"})
	m.refreshDuration = auto.NewHistogram(m.histogramOpts("refresh_duration_seconds", "Wall time of a full refresh", nil))
	m.subjectsRated = auto.NewGaugeVec(m.gaugeOpts("subjects_rated", "Subjects rated in the latest refresh"), []string{"kind"})
	m.rolesDefaulted = auto.NewGauge(m.gaugeOpts("roles_defaulted", "Players whose position fell back to the default role in the latest refresh"))

	m.gamesProcessed = auto.NewGauge(m.gaugeOpts("elo_games_processed", "Games applied in the latest Elo replay"))
	m.gamesSkipped = auto.NewGaugeVec(m.gaugeOpts("elo_games_skipped", "Games skipped in the latest Elo replay by reason"), []string{"reason"})
	m.homeAwayInferred = auto.NewGauge(m.gaugeOpts("elo_home_away_inferred", "Games whose home side came from the team id fallback"))

	m.boardSize = auto.NewGaugeVec(m.gaugeOpts("board_entries", "Entries per rankings board"), []string{"kind"})
	m.boardQueryLatency = auto.NewHistogram(m.histogramOpts("board_query_latency_milliseconds", "Rankings board query latency", msBuckets))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Refresh jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Refresh queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Refresh jobs enqueued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Refresh jobs rejected by the queue"))
	m.jobsDuplicate = auto.NewCounter(m.counterOpts("jobs_duplicate_total", "Refresh jobs dropped by idempotency key"))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently running a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_seconds", "Job processing latency", nil))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed in a worker"))

	m.archiveSaves = auto.NewCounterVec(m.counterOpts("archive_saves_total", "Archived refresh runs by outcome"), []string{"status"})
	m.sourceChanges = auto.NewCounter(m.counterOpts("source_changes_total", "Data directory change notifications"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_seconds", "HTTP request duration", nil), []string{"endpoint", "method", "status_code"})
	m.rateLimited = auto.NewCounter(m.counterOpts("http_rate_limited_total", "Requests rejected by the refresh rate limiter"))

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "type"})
}

// RecordRefresh records one refresh run.
func RecordRefresh(status string, seconds float64) {
	globalManager.refreshRuns.WithLabelValues(status).Inc()
	globalManager.refreshDuration.Observe(seconds)
}

// UpdateSubjectsRated sets the number of subjects rated for a kind.
func UpdateSubjectsRated(kind string, count int) {
	globalManager.subjectsRated.WithLabelValues(kind).Set(float64(count))
}

// UpdateRolesDefaulted sets the number of players with a defaulted role.
func UpdateRolesDefaulted(count int) {
	globalManager.rolesDefaulted.Set(float64(count))
}

// UpdateEloAudit publishes the latest replay audit counters.
func UpdateEloAudit(processed, incomplete, noScore, badDate, inferred int) {
	globalManager.gamesProcessed.Set(float64(processed))
	globalManager.gamesSkipped.WithLabelValues("incomplete").Set(float64(incomplete))
	globalManager.gamesSkipped.WithLabelValues("no_score").Set(float64(noScore))
	globalManager.gamesSkipped.WithLabelValues("bad_date").Set(float64(badDate))
	globalManager.homeAwayInferred.Set(float64(inferred))
}

// UpdateBoardSize sets the entry count of a rankings board.
func UpdateBoardSize(kind string, count int) {
	globalManager.boardSize.WithLabelValues(kind).Set(float64(count))
}

// RecordBoardQueryLatency records a board read in milliseconds.
func RecordBoardQueryLatency(latencyMs float64) {
	globalManager.boardQueryLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueued jobs counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueEnqueueError increments the rejected jobs counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordJobDuplicate increments the duplicate jobs counter.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job processing latency in seconds.
func RecordWorkerProcessingLatency(seconds float64) {
	globalManager.workerProcessingLatency.Observe(seconds)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordArchiveSave records an archive write.
func RecordArchiveSave(status string) {
	globalManager.archiveSaves.WithLabelValues(status).Inc()
}

// RecordSourceChange increments the data change counter.
func RecordSourceChange() {
	globalManager.sourceChanges.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited increments the rate limited requests counter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
