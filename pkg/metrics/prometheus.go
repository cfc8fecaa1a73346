// Package metrics provides Prometheus metrics for the position predictor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Circuit breaker states as exported on the breaker gauge.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction pipeline
	predictions          *prometheus.CounterVec
	predictionFailures   *prometheus.CounterVec
	inferenceLatency     prometheus.Histogram
	predictionConfidence prometheus.Histogram
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	ready                prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream lookups
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec

	errorsByComponent *prometheus.CounterVec

	// System
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

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "footy",
		subsystem:        "predictor",
		histogramBuckets: prometheus.DefBuckets,
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
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Successful predictions by resolved position"),
		[]string{"position"},
	)
	m.predictionFailures = auto.NewCounterVec(
		m.counterOpts("prediction_failures_total", "Failed predictions by failure kind"),
		[]string{"kind"},
	)
	m.inferenceLatency = auto.NewHistogram(
		m.histogramOpts("inference_latency_milliseconds", "Classifier latency in milliseconds", m.histogramBuckets),
	)
	m.predictionConfidence = auto.NewHistogram(
		m.histogramOpts("prediction_confidence_percent", "Confidence of the top class in percent",
			prometheus.LinearBuckets(10, 10, 10)),
	)
	m.cacheHits = auto.NewCounter(m.counterOpts("prediction_cache_hits_total", "Predictions served from the memo cache"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("prediction_cache_misses_total", "Predictions that ran the classifier"))
	m.ready = auto.NewGauge(m.gaugeOpts("ready", "1 when artifacts are loaded and the service is healthy"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Upstream lookups by client and outcome"),
		[]string{"client", "outcome"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Upstream lookup latency in milliseconds", m.histogramBuckets),
		[]string{"client"},
	)
	m.breakerState = auto.NewGaugeVec(
		m.gaugeOpts("circuit_breaker_state", "Circuit breaker state (0 closed, 1 half-open, 2 open)"),
		[]string{"client"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a successful prediction and its confidence.
func (m *Manager) RecordPrediction(position string, confidence float64) {
	m.predictions.WithLabelValues(position).Inc()
	m.predictionConfidence.Observe(confidence)
}

// RecordPredictionFailure counts a failed prediction by kind.
func (m *Manager) RecordPredictionFailure(kind string) {
	m.predictionFailures.WithLabelValues(kind).Inc()
}

// RecordInferenceLatency records classifier latency in milliseconds.
func (m *Manager) RecordInferenceLatency(latencyMs float64) {
	m.inferenceLatency.Observe(latencyMs)
}

// RecordCacheHit increments the memo cache hit counter.
func (m *Manager) RecordCacheHit() { m.cacheHits.Inc() }

// RecordCacheMiss increments the memo cache miss counter.
func (m *Manager) RecordCacheMiss() { m.cacheMisses.Inc() }

// SetReady publishes the readiness state.
func (m *Manager) SetReady(ready bool) {
	if ready {
		m.ready.Set(1)
		return
	}
	m.ready.Set(0)
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordUpstream counts an upstream lookup and observes its latency.
func (m *Manager) RecordUpstream(client, outcome string, latencyMs float64) {
	m.upstreamRequests.WithLabelValues(client, outcome).Inc()
	m.upstreamLatency.WithLabelValues(client).Observe(latencyMs)
}

// SetBreakerState publishes a circuit breaker state for client.
func (m *Manager) SetBreakerState(client string, state int) {
	m.breakerState.WithLabelValues(client).Set(float64(state))
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystem publishes memory, goroutine and last GC pause figures.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if gcPauseMs > 0 {
		m.systemGCPauseTime.Observe(gcPauseMs)
	}
}

// Package-level recorders delegate to the global manager.

// RecordPrediction counts a successful prediction and its confidence.
func RecordPrediction(position string, confidence float64) {
	globalManager.RecordPrediction(position, confidence)
}

// RecordPredictionFailure counts a failed prediction by kind.
func RecordPredictionFailure(kind string) { globalManager.RecordPredictionFailure(kind) }

// RecordInferenceLatency records classifier latency in milliseconds.
func RecordInferenceLatency(latencyMs float64) { globalManager.RecordInferenceLatency(latencyMs) }

// RecordCacheHit increments the memo cache hit counter.
func RecordCacheHit() { globalManager.RecordCacheHit() }

// RecordCacheMiss increments the memo cache miss counter.
func RecordCacheMiss() { globalManager.RecordCacheMiss() }

// SetReady publishes the readiness state.
func SetReady(ready bool) { globalManager.SetReady(ready) }

// RecordHTTPRequest counts an HTTP request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordUpstream counts an upstream lookup and observes its latency.
func RecordUpstream(client, outcome string, latencyMs float64) {
	globalManager.RecordUpstream(client, outcome, latencyMs)
}

// SetBreakerState publishes a circuit breaker state for client.
func SetBreakerState(client string, state int) { globalManager.SetBreakerState(client, state) }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// UpdateSystem publishes memory, goroutine and last GC pause figures.
func UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, gcPauseMs)
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it before handlers capture GetRegistry.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
