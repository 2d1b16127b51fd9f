package playcore

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsNilCollectorIsSafe(t *testing.T) {
	var mc *MetricsCollector

	mc.RecordRequest("GET", "/v1/config", 200, time.Millisecond)
	mc.RecordRequestStart("GET", "/v1/config")
	mc.RecordRequestEnd("GET", "/v1/config")
	mc.RecordRetry("GET", "/v1/config", 1)
	mc.RecordQueueDepth(3)
	mc.RecordTokenRefresh(true)
	mc.RecordCircuitBreakerState("default", StateOpen)
	mc.RecordError(KindTimeout, "GET", "/v1/config")
}

func TestMetricsRecordRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordRequest("GET", "/v1/config", 200, 50*time.Millisecond)
	mc.RecordRequest("GET", "/v1/config", 200, 70*time.Millisecond)
	mc.RecordRequest("POST", "/v1/storage/k", 500, time.Millisecond)

	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("GET", "200", "/v1/config")); got != 2 {
		t.Errorf("requests_total GET 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("POST", "500", "/v1/storage/k")); got != 1 {
		t.Errorf("requests_total POST 500 = %v, want 1", got)
	}
}

func TestMetricsInFlightGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordRequestStart("GET", "/v1/config")
	mc.RecordRequestStart("GET", "/v1/config")
	mc.RecordRequestEnd("GET", "/v1/config")

	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("GET", "/v1/config")); got != 1 {
		t.Errorf("requests_in_flight = %v, want 1", got)
	}
}

func TestMetricsTokenRefreshOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordTokenRefresh(true)
	mc.RecordTokenRefresh(true)
	mc.RecordTokenRefresh(false)

	if got := testutil.ToFloat64(mc.tokenRefreshes.WithLabelValues("success")); got != 2 {
		t.Errorf("successes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mc.tokenRefreshes.WithLabelValues("failure")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
}

func TestMetricsCircuitBreakerStates(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	for state, want := range map[CircuitState]float64{
		StateClosed:   0,
		StateOpen:     1,
		StateHalfOpen: 2,
	} {
		mc.RecordCircuitBreakerState("default", state)
		if got := testutil.ToFloat64(mc.circuitBreakerState.WithLabelValues("default")); got != want {
			t.Errorf("state %v recorded as %v, want %v", state, got, want)
		}
	}
}

func TestMetricsWiredThroughClient(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	transport := &fakeTransport{fn: func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
		if call == 0 {
			return jsonResponse(503, nil), nil
		}
		return jsonResponse(200, map[string]any{}), nil
	}}
	client := newTestClient(transport, WithMetricsCollector(mc), WithMaxRetries(2))

	res := client.Request(context.Background(), Request{Method: http.MethodGet, Path: "/v1/config"})
	if !res.OK {
		t.Fatalf("request failed: %v", res.Err)
	}

	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("GET", "200", "/v1/config")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.retriesTotal.WithLabelValues("GET", "/v1/config", "1")); got != 1 {
		t.Errorf("retries_total attempt=1 = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("GET", "/v1/config")); got != 0 {
		t.Errorf("requests_in_flight = %v, want 0 after completion", got)
	}
}

func TestMetricsErrorKinds(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	transport := &fakeTransport{fn: func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
		return jsonResponse(404, map[string]any{"message": "missing"}), nil
	}}
	client := newTestClient(transport, WithMetricsCollector(mc))

	client.Request(context.Background(), Request{Method: http.MethodGet, Path: "/v1/storage/k"})

	if got := testutil.ToFloat64(mc.errorsTotal.WithLabelValues(string(KindNotFound), "GET", "/v1/storage/k")); got != 1 {
		t.Errorf("errors_total NOT_FOUND = %v, want 1", got)
	}
}
