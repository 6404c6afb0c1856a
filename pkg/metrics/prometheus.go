package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	iterationBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Trial and aggregate metrics
	trialsAccepted      prometheus.Counter
	trialsRejected      *prometheus.CounterVec
	trialSetsCleared    prometheus.Counter
	pValueComputations  *prometheus.CounterVec
	seriesIterations    prometheus.Histogram
	convergenceFailures prometheus.Counter

	// Session metrics
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsExpired prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served at /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fisher",
		subsystem:        "meta",
		histogramBuckets: prometheus.DefBuckets,
		iterationBuckets: prometheus.ExponentialBuckets(1, 2, 14),
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.trialsAccepted = auto.NewCounter(m.counterOpts("trials_accepted_total",
		"Total number of trials accepted into a trial set"))
	m.trialsRejected = auto.NewCounterVec(m.counterOpts("trials_rejected_total",
		"Total number of trials rejected by validation"), []string{"reason"})
	m.trialSetsCleared = auto.NewCounter(m.counterOpts("trial_sets_cleared_total",
		"Total number of trial set clears"))
	m.pValueComputations = auto.NewCounterVec(m.counterOpts("pvalue_computations_total",
		"Total number of combined p-value computations by outcome"), []string{"outcome"})
	m.seriesIterations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "gamma_series_iterations",
		Help:        "Number of incomplete gamma series terms evaluated per computation",
		Buckets:     m.iterationBuckets,
		ConstLabels: m.constLabels,
	})
	m.convergenceFailures = auto.NewCounter(m.counterOpts("gamma_convergence_failures_total",
		"Total number of incomplete gamma series that failed to converge"))

	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active",
		"Current number of open sessions"))
	m.sessionsCreated = auto.NewCounter(m.counterOpts("sessions_created_total",
		"Total number of sessions created"))
	m.sessionsExpired = auto.NewCounter(m.counterOpts("sessions_expired_total",
		"Total number of sessions evicted after being idle"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"Total number of HTTP error responses by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Current number of goroutines"))
}

// RecordTrialAccepted counts an accepted trial.
func (m *Manager) RecordTrialAccepted() { m.trialsAccepted.Inc() }

// RecordTrialRejected counts a rejected trial.
func (m *Manager) RecordTrialRejected(reason string) { m.trialsRejected.WithLabelValues(reason).Inc() }

// RecordTrialSetCleared counts a clear.
func (m *Manager) RecordTrialSetCleared() { m.trialSetsCleared.Inc() }

// RecordPValueComputation counts a combined p-value computation.
func (m *Manager) RecordPValueComputation(outcome string) {
	m.pValueComputations.WithLabelValues(outcome).Inc()
}

// ObserveSeries records one incomplete gamma evaluation.
func (m *Manager) ObserveSeries(iterations int, err error) {
	m.seriesIterations.Observe(float64(iterations))
	if err != nil {
		m.convergenceFailures.Inc()
	}
}

// UpdateSessionsActive sets the open session gauge.
func (m *Manager) UpdateSessionsActive(n int) { m.sessionsActive.Set(float64(n)) }

// RecordSessionCreated counts a new session.
func (m *Manager) RecordSessionCreated() { m.sessionsCreated.Inc() }

// RecordSessionsExpired counts idle evictions.
func (m *Manager) RecordSessionsExpired(n int) { m.sessionsExpired.Add(float64(n)) }

// RecordHTTPRequest counts a request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts an error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(n int) { m.systemGoroutineCount.Set(float64(n)) }

// RecordTrialAccepted counts an accepted trial on the global manager.
func RecordTrialAccepted() {
	globalManager.RecordTrialAccepted()
}

// RecordTrialRejected counts a rejected trial on the global manager.
func RecordTrialRejected(reason string) {
	globalManager.RecordTrialRejected(reason)
}

// RecordTrialSetCleared counts a clear on the global manager.
func RecordTrialSetCleared() {
	globalManager.RecordTrialSetCleared()
}

// RecordPValueComputation counts a combined p-value computation on the global manager.
func RecordPValueComputation(outcome string) {
	globalManager.RecordPValueComputation(outcome)
}

// ObserveSeries records an incomplete gamma evaluation on the global manager.
func ObserveSeries(iterations int, err error) {
	globalManager.ObserveSeries(iterations, err)
}

// UpdateSessionsActive sets the open session gauge on the global manager.
func UpdateSessionsActive(n int) {
	globalManager.UpdateSessionsActive(n)
}

// RecordSessionCreated counts a new session on the global manager.
func RecordSessionCreated() {
	globalManager.RecordSessionCreated()
}

// RecordSessionsExpired counts idle evictions on the global manager.
func RecordSessionsExpired(n int) {
	globalManager.RecordSessionsExpired(n)
}

// RecordHTTPRequest counts a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordHTTPError counts an error response on the global manager.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.UpdateSystemMemoryUsage(bytes)
}

// UpdateSystemGoroutineCount updates system goroutine count.
func UpdateSystemGoroutineCount(n int) {
	globalManager.UpdateSystemGoroutineCount(n)
}

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
