package playcore

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func okTransport() *fakeTransport {
	return &fakeTransport{fn: func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
		return jsonResponse(200, map[string]any{"ok": true}), nil
	}}
}

func TestNewDefaults(t *testing.T) {
	client := New("https://api.example.com")
	defer client.Close()

	if !client.IsValid() {
		t.Fatalf("default client invalid: %v", client.ValidationError())
	}
	if client.timeout != 10*time.Second {
		t.Errorf("timeout = %v", client.timeout)
	}
	if client.maxRetries != 3 {
		t.Errorf("maxRetries = %d", client.maxRetries)
	}
	if client.mode != DispatchSerialized {
		t.Errorf("mode = %v, want serialized default", client.mode)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		options []Option
	}{
		{"empty base url", "", nil},
		{"bad scheme", "ftp://api.example.com", nil},
		{"zero timeout", "https://api.example.com", []Option{WithTimeout(0)}},
		{"negative retries", "https://api.example.com", []Option{WithMaxRetries(-1)}},
		{"unknown endpoint", "https://api.example.com", []Option{WithEndpointOverride("nope", "/x")}},
		{"relative endpoint", "https://api.example.com", []Option{WithEndpointOverride(EndpointConfigFetch, "cfg")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.baseURL, tt.options...)
			defer client.Close()

			if client.IsValid() {
				t.Fatal("expected invalid configuration")
			}
			res := client.Request(context.Background(), Request{Method: http.MethodGet, Path: "/v1/config"})
			if res.OK || res.Err.Kind != KindValidation {
				t.Errorf("got %+v, want VALIDATION failure", res)
			}
		})
	}
}

func TestValidationAggregatesProblems(t *testing.T) {
	client := New("", WithTimeout(-time.Second), WithMaxRetries(-1))
	defer client.Close()

	err := client.ValidationError()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"baseURL", "timeout", "maxRetries"} {
		if !strings.Contains(msg, want) {
			t.Errorf("validation error %q missing %q", msg, want)
		}
	}
}

func TestEndpointOverride(t *testing.T) {
	transport := okTransport()
	client := newTestClient(transport, WithEndpointOverride(EndpointConfigFetch, "/custom/config"))

	res := client.Config().Fetch(context.Background())
	if !res.OK {
		t.Fatalf("fetch failed: %v", res.Err)
	}
	if got := transport.call(0).url; got != "https://api.test/custom/config" {
		t.Errorf("url = %s", got)
	}
}

func TestRequestEvents(t *testing.T) {
	events := &recordingEvents{}
	client := newTestClient(okTransport(), WithEvents(events))

	client.Request(context.Background(), Request{Method: http.MethodGet, Path: "/v1/config"})

	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.started) != 1 || events.started[0] != "GET /v1/config" {
		t.Errorf("started = %v", events.started)
	}
	if len(events.finished) != 1 || events.finished[0] != "GET /v1/config" {
		t.Errorf("finished = %v", events.finished)
	}
}

func TestResponseCacheServesRepeatGets(t *testing.T) {
	transport := okTransport()
	client := newTestClient(transport, WithResponseCache(time.Minute))

	req := Request{Method: http.MethodGet, Path: "/v1/config"}
	first := client.Request(context.Background(), req)
	second := client.Request(context.Background(), req)

	if !first.OK || !second.OK {
		t.Fatalf("results: %+v %+v", first, second)
	}
	if transport.callCount() != 1 {
		t.Errorf("transport calls = %d, want 1 (second served from cache)", transport.callCount())
	}
}

func TestResponseCacheSkipsNonGet(t *testing.T) {
	transport := okTransport()
	client := newTestClient(transport, WithResponseCache(time.Minute))

	req := Request{Method: http.MethodPost, Path: "/v1/storage/k", Body: map[string]any{"value": 1}}
	client.Request(context.Background(), req)
	client.Request(context.Background(), req)

	if transport.callCount() != 2 {
		t.Errorf("transport calls = %d, want 2", transport.callCount())
	}
}

func TestStorageService(t *testing.T) {
	transport := okTransport()
	client := newTestClient(transport)
	ctx := context.Background()

	client.Storage().Get(ctx, "save slot/1")
	client.Storage().Set(ctx, "k", map[string]any{"hp": 10})
	client.Storage().Delete(ctx, "k")
	client.Storage().List(ctx)

	wants := []struct {
		method string
		url    string
	}{
		{http.MethodGet, "https://api.test/v1/storage/save%20slot%2F1"},
		{http.MethodPut, "https://api.test/v1/storage/k"},
		{http.MethodDelete, "https://api.test/v1/storage/k"},
		{http.MethodGet, "https://api.test/v1/storage"},
	}
	for i, want := range wants {
		sent := transport.call(i)
		if sent.method != want.method || sent.url != want.url {
			t.Errorf("call %d = %s %s, want %s %s", i, sent.method, sent.url, want.method, want.url)
		}
	}
	if !strings.Contains(string(transport.call(1).body), `"hp":10`) {
		t.Errorf("set body = %s", transport.call(1).body)
	}
}

func TestLeaderboardService(t *testing.T) {
	transport := okTransport()
	client := newTestClient(transport)
	ctx := context.Background()

	client.Leaderboard().Submit(ctx, "weekly", 1200)
	client.Leaderboard().Top(ctx, "weekly", 10)
	client.Leaderboard().Top(ctx, "weekly", 0)
	client.Leaderboard().Around(ctx, "weekly", "user/1")

	wants := []struct {
		method string
		url    string
	}{
		{http.MethodPost, "https://api.test/v1/leaderboards/weekly/scores"},
		{http.MethodGet, "https://api.test/v1/leaderboards/weekly/top?limit=10"},
		{http.MethodGet, "https://api.test/v1/leaderboards/weekly/top"},
		{http.MethodGet, "https://api.test/v1/leaderboards/weekly/around/user%2F1"},
	}
	for i, want := range wants {
		sent := transport.call(i)
		if sent.method != want.method || sent.url != want.url {
			t.Errorf("call %d = %s %s, want %s %s", i, sent.method, sent.url, want.method, want.url)
		}
	}
	if !strings.Contains(string(transport.call(0).body), `"score":1200`) {
		t.Errorf("submit body = %s", transport.call(0).body)
	}
}

func TestConfigValue(t *testing.T) {
	transport := &fakeTransport{fn: func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
		return jsonResponse(200, map[string]any{"feature_x": true, "max_rooms": float64(8)}), nil
	}}
	client := newTestClient(transport)

	v, ok, err := client.Config().Value(context.Background(), "feature_x")
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if !ok || v != true {
		t.Errorf("feature_x = %v, %v", v, ok)
	}

	_, ok, err = client.Config().Value(context.Background(), "missing")
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if ok {
		t.Error("missing key reported as present")
	}
}

func TestConfigValueSurfacesFailure(t *testing.T) {
	transport := &fakeTransport{fn: func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
		return jsonResponse(500, map[string]any{"error": "down"}), nil
	}}
	client := newTestClient(transport, WithMaxRetries(0))

	_, _, err := client.Config().Value(context.Background(), "feature_x")
	if err == nil || err.Kind != KindServerError {
		t.Fatalf("err = %v, want SERVER_ERROR", err)
	}
}

func TestExpandPath(t *testing.T) {
	got := expandPath("/v1/leaderboards/{board}/around/{user}", map[string]string{
		"board": "weekly",
		"user":  "u1",
	})
	if got != "/v1/leaderboards/weekly/around/u1" {
		t.Errorf("expandPath = %q", got)
	}
}
