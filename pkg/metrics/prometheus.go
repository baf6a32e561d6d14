// Package metrics provides Prometheus metrics for the jokerank service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by acquisition and source metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeNetwork   = "network_error"
	OutcomeMalformed = "malformed"
	OutcomeExhausted = "exhausted"
	OutcomeDuplicate = "duplicate"
	OutcomeCanceled  = "canceled"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Acquisition
	acquisitions        *prometheus.CounterVec
	acquisitionDuration prometheus.Histogram
	acquisitionAttempts prometheus.Histogram
	sourceRequests      *prometheus.CounterVec
	sourceLatency       prometheus.Histogram
	jokesCollected      prometheus.Counter

	// Board
	votes            *prometheus.CounterVec
	listSize         prometheus.Gauge
	generation       prometheus.Gauge
	staleRefreshes   prometheus.Counter
	refreshesRunning prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jokerank",
		subsystem:        "board",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.acquisitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("acquisitions_total"),
		Help:        "Acquisition cycles by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.acquisitionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("acquisition_duration_milliseconds"),
		Help:        "Wall time of one acquisition cycle in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(10, 2, 12),
		ConstLabels: labels,
	})

	m.acquisitionAttempts = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("acquisition_attempts"),
		Help:        "Source requests issued per acquisition cycle",
		Buckets:     prometheus.LinearBuckets(1, 5, 12),
		ConstLabels: labels,
	})

	m.sourceRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_requests_total"),
		Help:        "Requests to the remote joke source by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.sourceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("source_latency_milliseconds"),
		Help:        "Latency of single remote joke requests in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(5, 2, 12),
		ConstLabels: labels,
	})

	m.jokesCollected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("jokes_collected_total"),
		Help:        "Distinct jokes accepted into acquisition results",
		ConstLabels: labels,
	})

	m.votes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("votes_total"),
		Help:        "Votes applied by direction and whether the id matched",
		ConstLabels: labels,
	}, []string{"direction", "matched"})

	m.listSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("list_size"),
		Help:        "Number of jokes currently held by the board",
		ConstLabels: labels,
	})

	m.generation = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("generation"),
		Help:        "Current refresh generation",
		ConstLabels: labels,
	})

	m.staleRefreshes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("stale_refreshes_total"),
		Help:        "Acquisition results dropped because a newer refresh started",
		ConstLabels: labels,
	})

	m.refreshesRunning = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("refreshes_in_flight"),
		Help:        "Acquisition cycles currently running",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_component_total"),
		Help:        "Errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_by_endpoint_total"),
		Help:        "HTTP errors by endpoint, method and type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// Acquisition

// RecordAcquisition records one finished acquisition cycle.
func RecordAcquisition(outcome string, attempts int, duration time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.acquisitions.WithLabelValues(outcome).Inc()
	globalManager.acquisitionAttempts.Observe(float64(attempts))
	globalManager.acquisitionDuration.Observe(float64(duration.Milliseconds()))
}

// RecordSourceRequest records one request to the remote source.
func RecordSourceRequest(outcome string, latency time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceRequests.WithLabelValues(outcome).Inc()
	globalManager.sourceLatency.Observe(float64(latency.Milliseconds()))
}

// RecordDuplicateSkipped counts a response whose id was already collected.
func RecordDuplicateSkipped() {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceRequests.WithLabelValues(OutcomeDuplicate).Inc()
}

// RecordJokeCollected counts a distinct joke accepted into a result.
func RecordJokeCollected() {
	if !globalManager.enabled {
		return
	}
	globalManager.jokesCollected.Inc()
}

// Board

// RecordVote counts an applied vote.
func RecordVote(delta int, matched bool) {
	if !globalManager.enabled {
		return
	}
	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	m := "false"
	if matched {
		m = "true"
	}
	globalManager.votes.WithLabelValues(direction, m).Inc()
}

// UpdateListSize sets the current board size.
func UpdateListSize(n int) {
	globalManager.listSize.Set(float64(n))
}

// UpdateGeneration sets the current refresh generation.
func UpdateGeneration(gen uint64) {
	globalManager.generation.Set(float64(gen))
}

// RecordStaleRefresh counts a dropped acquisition result.
func RecordStaleRefresh() {
	if !globalManager.enabled {
		return
	}
	globalManager.staleRefreshes.Inc()
}

// RefreshStarted and RefreshFinished track in-flight acquisitions.
func RefreshStarted()  { globalManager.refreshesRunning.Inc() }
func RefreshFinished() { globalManager.refreshesRunning.Dec() }

// HTTP

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Errors

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
