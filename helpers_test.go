package playcore

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// fakeTransport routes every send through fn and counts calls.
type fakeTransport struct {
	mu    sync.Mutex
	calls []sentRequest
	fn    func(call int, method, url string, headers map[string]string, body []byte) (*TransportResponse, error)
}

type sentRequest struct {
	method  string
	url     string
	headers map[string]string
	body    []byte
}

func (t *fakeTransport) Send(ctx context.Context, method, url string, headers map[string]string, body []byte) (*TransportResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	call := len(t.calls)
	t.calls = append(t.calls, sentRequest{method: method, url: url, headers: headers, body: body})
	t.mu.Unlock()

	return t.fn(call, method, url, headers, body)
}

func (t *fakeTransport) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func (t *fakeTransport) call(i int) sentRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[i]
}

// jsonResponse builds a TransportResponse with a JSON body.
func jsonResponse(status int, payload any) *TransportResponse {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return &TransportResponse{StatusCode: status, Body: data}
}

// fakeClock records backoff sleeps without waiting.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

// recordingEvents captures every notification for assertions.
type recordingEvents struct {
	mu         sync.Mutex
	started    []string
	finished   []string
	refreshes  []bool
	banned     []any
	authStates []string
}

func (e *recordingEvents) RequestStarted(method, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, method+" "+path)
}

func (e *recordingEvents) RequestFinished(method, path string, ok bool, status int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = append(e.finished, method+" "+path)
}

func (e *recordingEvents) TokenRefreshed(ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshes = append(e.refreshes, ok)
}

func (e *recordingEvents) BannedDetected(details any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.banned = append(e.banned, details)
}

func (e *recordingEvents) AuthStateChanged(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.authStates = append(e.authStates, userID)
}

func (e *recordingEvents) states() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.authStates...)
}

func (e *recordingEvents) refreshOutcomes() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.refreshes...)
}

// newTestClient builds a client wired to the fake transport and clock.
func newTestClient(transport Transport, extra ...Option) *Client {
	options := append([]Option{
		WithTransport(transport),
		WithClock(newFakeClock()),
		WithTimeout(time.Second),
		WithBackoff(time.Millisecond, 10*time.Millisecond),
	}, extra...)
	return New("https://api.test", options...)
}
