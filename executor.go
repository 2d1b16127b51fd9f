package playcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// executorState tracks the per-request state machine:
// Idle → Attempting → {Succeeded, Retrying, Failed}, with Retrying looping
// back to Attempting. Succeeded and Failed are terminal.
type executorState int

const (
	stateIdle executorState = iota
	stateAttempting
	stateRetrying
	stateSucceeded
	stateFailed
)

// executor drives one logical request through attempts, per-attempt timeouts
// and retries to exactly one terminal Result. Created per request, never
// reused.
type executor struct {
	c         *Client
	req       Request
	requestID string

	state     executorState
	attempts  int // completed or in-progress attempt index, 0-based
	completed bool
	result    Result
}

func (c *Client) newExecutor(req Request) *executor {
	e := &executor{c: c, req: req, state: stateIdle}
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		e.requestID = c.debug.RequestIDGen()
	}
	return e
}

// run executes the retry loop and returns the terminal Result. It never
// returns a zero Result: if somehow no outcome was recorded, it synthesizes
// an UNKNOWN failure rather than hanging the caller.
func (e *executor) run(ctx context.Context) Result {
	for {
		e.state = stateAttempting
		if e.c.debugEnabled() && e.c.debug.LogRequests {
			e.c.logger.Debug("attempt started",
				"requestID", e.requestID, "attempt", e.attempts,
				"method", e.req.Method, "path", e.req.Path)
		}
		res, retry := e.attempt(ctx)
		if !retry {
			e.complete(res)
			break
		}

		e.state = stateRetrying
		e.attempts++
		delay := e.c.policy.Delay(e.attempts - 1)

		e.c.metrics.RecordRetry(e.req.Method, e.req.Path, e.attempts)
		if e.c.debugEnabled() && e.c.debug.LogRetries {
			e.c.logger.Info("scheduling retry",
				"requestID", e.requestID, "attempt", e.attempts,
				"maxRetries", e.c.maxRetries, "backoff", delay, "path", e.req.Path)
		}

		if err := e.c.clock.Sleep(ctx, delay); err != nil {
			e.complete(Failure(NewError(KindCancelled, "request cancelled during backoff", 0, nil)))
			break
		}
	}

	if !e.completed {
		e.complete(Failure(NewError(KindUnknown, "request produced no result", 0, nil)))
	}
	return e.result
}

// complete records the terminal Result. Duplicate completions are ignored,
// never re-signaled.
func (e *executor) complete(res Result) {
	if e.completed {
		return
	}
	e.completed = true
	e.result = res
	if res.OK {
		e.state = stateSucceeded
	} else {
		e.state = stateFailed
	}
}

// attempt performs one transport exchange. It returns the terminal result,
// or retry=true when the outcome is transient and budget remains.
func (e *executor) attempt(ctx context.Context) (Result, bool) {
	var body []byte
	if e.req.Body != nil {
		var err error
		body, err = json.Marshal(e.req.Body)
		if err != nil {
			return Failure(NewError(KindValidation, "request body not serializable", 0, err.Error())), false
		}
	}

	if e.c.breaker != nil {
		if !e.c.breaker.Allow() {
			e.c.metrics.RecordCircuitBreakerState("default", e.c.breaker.State())
			return Failure(NewError(KindNetworkError, "circuit breaker open", 0, ErrCircuitOpen)), false
		}
	}

	if e.c.limiter != nil {
		if err := e.c.limiter.Wait(ctx); err != nil {
			return Failure(NewError(KindCancelled, "request cancelled while rate limited", 0, nil)), false
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.c.timeout)
	resp, err := e.c.transport.Send(attemptCtx, e.req.Method, e.c.baseURL+e.req.Path, e.buildHeaders(), body)
	cancel()

	if err != nil {
		e.recordBreaker(false)
		return e.classifyFailure(ctx, err)
	}

	if resp.StatusCode >= 500 {
		e.recordBreaker(false)
	} else {
		e.recordBreaker(true)
	}

	return e.classifyResponse(resp)
}

// classifyFailure maps a transport or context error to a terminal result or
// a retry decision.
func (e *executor) classifyFailure(ctx context.Context, err error) (Result, bool) {
	// The caller's context ending always wins over per-attempt outcomes.
	if ctx.Err() != nil {
		return Failure(NewError(KindCancelled, "request cancelled", 0, nil)), false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		// Per-attempt timeout: the in-flight call was cancelled when the
		// attempt context expired.
		if e.attempts < e.c.maxRetries {
			return Result{}, true
		}
		return Failure(NewError(KindTimeout, "request timed out", 0, nil)), false
	}

	var trErr *TransportError
	if errors.As(err, &trErr) {
		if trErr.Retryable() && e.attempts < e.c.maxRetries {
			return Result{}, true
		}
		return Failure(NewError(KindNetworkError, trErr.Error(), 0, trErr)), false
	}

	return Failure(NewError(KindNetworkError, err.Error(), 0, err)), false
}

// classifyResponse maps an HTTP response to a terminal result or a retry
// decision.
func (e *executor) classifyResponse(resp *TransportResponse) (Result, bool) {
	if resp.StatusCode < 400 {
		if len(resp.Body) == 0 {
			return Success(map[string]any{}), false
		}
		var data any
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return Failure(NewError(KindInvalidResponse, "malformed response body", resp.StatusCode, string(resp.Body))), false
		}
		return Success(data), false
	}

	var payload any
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, &payload)
	}

	kind := ClassifyStatus(resp.StatusCode)
	if resp.StatusCode == http.StatusForbidden && isBannedPayload(payload) {
		kind = KindBanned
		e.c.events.BannedDetected(payload)
	}

	if resp.StatusCode >= 500 && e.attempts < e.c.maxRetries {
		return Result{}, true
	}

	return Failure(NewError(kind, errorMessage(payload, resp.StatusCode), resp.StatusCode, payload)), false
}

func (e *executor) recordBreaker(ok bool) {
	if e.c.breaker == nil {
		return
	}
	if ok {
		e.c.breaker.RecordSuccess()
	} else {
		e.c.breaker.RecordFailure()
	}
	e.c.metrics.RecordCircuitBreakerState("default", e.c.breaker.State())
}

// buildHeaders assembles the attempt's headers: defaults, project key,
// request ID, content type, Authorization (re-read every attempt so a replay
// after refresh picks up the renewed token), then per-request overrides.
func (e *executor) buildHeaders() map[string]string {
	headers := make(map[string]string, len(e.c.defaultHeaders)+len(e.req.Headers)+4)
	for k, v := range e.c.defaultHeaders {
		headers[k] = v
	}
	if e.c.projectKey != "" {
		headers["X-Project-Key"] = e.c.projectKey
	}
	if e.requestID != "" {
		headers["X-Request-ID"] = e.requestID
	}
	if e.req.Body != nil {
		headers["Content-Type"] = "application/json"
	}
	if !e.req.skipAuth {
		if creds := e.c.credentials(); creds.AccessToken != "" {
			headers["Authorization"] = "Bearer " + creds.AccessToken
		}
	}
	for k, v := range e.req.Headers {
		headers[k] = v
	}
	return headers
}

// isBannedPayload reports whether a decoded error body carries
// error.code == "banned".
func isBannedPayload(payload any) bool {
	m, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	inner, ok := m["error"].(map[string]any)
	if !ok {
		return false
	}
	code, _ := inner["code"].(string)
	return code == "banned"
}

// errorMessage extracts a human-readable message from an error body:
// error.message, then error (string), then message, then "HTTP <status>".
func errorMessage(payload any, status int) string {
	if m, ok := payload.(map[string]any); ok {
		if inner, ok := m["error"].(map[string]any); ok {
			if msg, ok := inner["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if msg, ok := m["error"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
