package playcore

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request pipeline and
// the auth refresh coordinator. It is safe for concurrent use. A nil
// collector is valid and records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	queueDepth prometheus.Gauge

	tokenRefreshes *prometheus.CounterVec

	circuitBreakerState *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "playcore_requests_total",
				Help: "Total number of logical requests completed",
			},
			[]string{"method", "status_code", "path"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playcore_request_duration_seconds",
				Help:    "Duration of logical requests in seconds, attempts included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "path"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "playcore_requests_in_flight",
				Help: "Number of logical requests currently executing",
			},
			[]string{"method", "path"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "playcore_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "path", "attempt"},
		),
		queueDepth: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "playcore_queue_depth",
				Help: "Number of requests waiting in the serialized dispatch queue",
			},
		),
		tokenRefreshes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "playcore_token_refreshes_total",
				Help: "Total number of credential refresh cycles by outcome",
			},
			[]string{"outcome"},
		),
		circuitBreakerState: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "playcore_circuit_breaker_state",
				Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "playcore_errors_total",
				Help: "Total number of failed requests by error kind",
			},
			[]string{"kind", "method", "path"},
		),
	}
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	status := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, status, path).Inc()
	mc.requestDuration.WithLabelValues(method, status, path).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, path string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, path).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, path string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, path).Dec()
}

// RecordRetry increments the retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(method, path string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(method, path, strconv.Itoa(attempt)).Inc()
}

// RecordQueueDepth sets the serialized queue depth gauge.
func (mc *MetricsCollector) RecordQueueDepth(depth int) {
	if mc == nil {
		return
	}

	mc.queueDepth.Set(float64(depth))
}

// RecordTokenRefresh increments the refresh counter by outcome.
func (mc *MetricsCollector) RecordTokenRefresh(ok bool) {
	if mc == nil {
		return
	}

	outcome := "failure"
	if ok {
		outcome = "success"
	}
	mc.tokenRefreshes.WithLabelValues(outcome).Inc()
}

// RecordCircuitBreakerState sets the gauge to the breaker state.
func (mc *MetricsCollector) RecordCircuitBreakerState(name string, state CircuitState) {
	if mc == nil {
		return
	}

	var stateValue float64
	switch state {
	case StateClosed:
		stateValue = 0
	case StateOpen:
		stateValue = 1
	case StateHalfOpen:
		stateValue = 2
	}

	mc.circuitBreakerState.WithLabelValues(name).Set(stateValue)
}

// RecordError increments the error counter by kind.
func (mc *MetricsCollector) RecordError(kind ErrorKind, method, path string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(string(kind), method, path).Inc()
}
