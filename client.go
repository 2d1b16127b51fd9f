package playcore

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/hoxsec/playcore/internal/backoff"
)

// Client is the facade over the request execution pipeline. It holds the
// configuration, the collaborators (transport, token store, clock, event
// sinks) and the dispatcher, and is safe for concurrent use.
type Client struct {
	baseURL        string
	projectKey     string
	timeout        time.Duration
	maxRetries     int
	policy         *backoff.Policy
	defaultHeaders map[string]string
	endpoints      map[string]string
	mode           DispatchMode

	transport Transport
	clock     Clock
	tokens    TokenStore
	events    Events
	logger    Logger
	debug     *DebugConfig
	metrics   *MetricsCollector
	limiter   *rate.Limiter
	breaker   *CircuitBreaker
	cache     *responseCache

	dispatcher   *dispatcher
	refreshGroup singleflight.Group

	credMu sync.RWMutex
	creds  CredentialBundle

	closed          atomic.Bool
	validationError error
}

// New constructs a Client for the given base URL using the provided
// functional options. A best effort validation is performed; call IsValid /
// ValidationError for errors. Configuration misuse is surfaced through a
// VALIDATION_ERROR result on the first request, never a panic.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:        baseURL,
		timeout:        10 * time.Second,
		maxRetries:     3,
		policy:         backoff.New(100*time.Millisecond, 5*time.Second),
		defaultHeaders: map[string]string{},
		endpoints:      map[string]string{},
		mode:           DispatchSerialized,
		transport:      NewHTTPTransport(nil),
		clock:          realClock{},
		tokens:         NewMemoryTokenStore(),
		events:         NopEvents{},
		logger:         NewSimpleLogger(),
		debug:          DefaultDebugConfig(),
	}

	for _, option := range options {
		option(c)
	}

	c.dispatcher = newDispatcher(c.mode, c.metrics)

	if bundle, err := c.tokens.Load(); err == nil {
		c.creds = bundle
	} else if c.debugEnabled() {
		c.logger.Warn("token store load failed", "error", err.Error())
	}

	if err := c.ValidateConfiguration(); err != nil {
		c.validationError = err
	}

	return c
}

// Request executes one logical request: dispatch, attempts with retries and
// timeouts, 401 interception with transparent refresh, and observability
// reporting. It always returns a Result and never panics for expected
// failures.
func (c *Client) Request(ctx context.Context, req Request) Result {
	if c.validationError != nil {
		return Failure(NewError(KindValidation, c.validationError.Error(), 0, nil))
	}
	if c.closed.Load() {
		return Failure(NewError(KindCancelled, ErrClosed.Error(), 0, nil))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := c.clock.Now()
	c.events.RequestStarted(req.Method, req.Path)
	c.metrics.RecordRequestStart(req.Method, req.Path)
	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("request submitted", "method", req.Method, "path", req.Path)
	}

	var res Result
	if cached, ok := c.cachedResult(req); ok {
		res = cached
	} else {
		res = <-c.dispatcher.Submit(ctx, func(runCtx context.Context) Result {
			return c.execute(runCtx, req)
		})
		c.storeResult(req, res)
	}

	status := 0
	if res.OK {
		status = http.StatusOK
	} else {
		status = res.Err.Status
		c.metrics.RecordError(res.Err.Kind, req.Method, req.Path)
	}
	c.metrics.RecordRequestEnd(req.Method, req.Path)
	c.metrics.RecordRequest(req.Method, req.Path, status, c.clock.Now().Sub(start))
	c.events.RequestFinished(req.Method, req.Path, res.OK, status)

	return res
}

// execute runs the executor and hands UNAUTHORIZED outcomes to the refresh
// coordinator unless the request opted out.
func (c *Client) execute(ctx context.Context, req Request) Result {
	res := c.newExecutor(req).run(ctx)
	if res.OK || res.Err.Kind != KindUnauthorized {
		return res
	}
	if req.skipAuth || req.noAuthRetry {
		return res
	}
	return c.recoverUnauthorized(ctx, req, res)
}

// Storage returns the key-value storage service.
func (c *Client) Storage() *StorageService {
	return &StorageService{c: c}
}

// Leaderboard returns the leaderboard service.
func (c *Client) Leaderboard() *LeaderboardService {
	return &LeaderboardService{c: c}
}

// Config returns the remote configuration service.
func (c *Client) Config() *ConfigService {
	return &ConfigService{c: c}
}

// Close rejects future submissions and releases every pending queued request
// with a CANCELLED result. Idempotent.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.dispatcher.Close()
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// credentials returns the current working copy of the credential bundle.
func (c *Client) credentials() CredentialBundle {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.creds
}

// saveCredentials updates the working copy and persists it through the token
// store. Only the refresh coordinator and the auth service write here.
func (c *Client) saveCredentials(bundle CredentialBundle) {
	c.credMu.Lock()
	c.creds = bundle
	c.credMu.Unlock()

	if err := c.tokens.Save(bundle); err != nil && c.debugEnabled() {
		c.logger.Warn("token store save failed", "error", err.Error())
	}
}

// clearCredentials drops the working copy and the persisted bundle.
func (c *Client) clearCredentials() {
	c.credMu.Lock()
	c.creds = CredentialBundle{}
	c.credMu.Unlock()

	if err := c.tokens.Clear(); err != nil && c.debugEnabled() {
		c.logger.Warn("token store clear failed", "error", err.Error())
	}
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

// cachedResult consults the optional GET response cache.
func (c *Client) cachedResult(req Request) (Result, bool) {
	if c.cache == nil || req.Method != http.MethodGet {
		return Result{}, false
	}
	return c.cache.get(req.Method + ":" + req.Path)
}

// storeResult records a successful GET in the response cache.
func (c *Client) storeResult(req Request, res Result) {
	if c.cache == nil || req.Method != http.MethodGet || !res.OK {
		return
	}
	c.cache.set(req.Method+":"+req.Path, res)
}

func defaultRequestID() string {
	return uuid.NewString()
}
