package playcore

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hoxsec/playcore/internal/backoff"
)

// Option represents a configuration option.
type Option func(*Client)

// WithProjectKey sets the per-project identifier injected as the
// X-Project-Key header on every request.
func WithProjectKey(key string) Option {
	return func(c *Client) {
		c.projectKey = key
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts. Total attempts
// never exceed n+1.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets the backoff curve's base and cap, keeping the default
// multiplier (2.0) and jitter fraction (0.10).
func WithBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		c.policy = backoff.New(base, max)
	}
}

// WithBackoffPolicy sets a fully custom backoff policy.
func WithBackoffPolicy(p *backoff.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithDefaultHeader adds a header sent on every request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders merges headers sent on every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithParallelDispatch launches every request immediately instead of
// serializing through the FIFO queue. No ordering guarantee between requests.
func WithParallelDispatch() Option {
	return func(c *Client) {
		c.mode = DispatchParallel
	}
}

// WithEndpointOverride replaces the path template for a named endpoint.
// Templates use {param} placeholders substituted by exact string replacement.
func WithEndpointOverride(name, template string) Option {
	return func(c *Client) {
		c.endpoints[name] = template
	}
}

// WithTransport sets a custom transport collaborator.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient wraps a custom *http.Client in the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(client)
	}
}

// WithTokenStore sets the credential persistence collaborator.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithEvents sets the observability event sink.
func WithEvents(events Events) Option {
	return func(c *Client) {
		c.events = events
	}
}

// WithClock sets the timer collaborator. Tests inject a fake to make backoff
// waits deterministic.
func WithClock(clock Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging with default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithMetrics enables Prometheus metrics collection on the default registry.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithRateLimit throttles attempts to r requests per second with the given
// burst. Attempts wait for a token rather than failing.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithCircuitBreaker fast-fails requests after repeated transport or server
// failures.
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.breaker = NewCircuitBreaker(config)
	}
}

// WithResponseCache memoizes successful GET results for the given TTL.
func WithResponseCache(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newResponseCache(ttl)
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error aggregating every violation, or nil.
func (c *Client) ValidateConfiguration() error {
	var problems []string

	problems = append(problems, c.validateCoreConfig()...)
	problems = append(problems, c.validateRetryConfig()...)
	problems = append(problems, c.validateCollaborators()...)
	problems = append(problems, c.validateEndpoints()...)

	if len(problems) > 0 {
		return NewError(KindValidation, "configuration validation failed: "+strings.Join(problems, "; "), 0, problems)
	}
	return nil
}

func (c *Client) validateCoreConfig() []string {
	var problems []string

	if strings.TrimSpace(c.baseURL) == "" {
		problems = append(problems, "baseURL must not be empty")
	}
	if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
		problems = append(problems, "baseURL must start with http:// or https://")
	}
	if c.timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.timeout > 10*time.Minute {
		problems = append(problems, "timeout > 10m may cause requests to hang for too long")
	}

	return problems
}

func (c *Client) validateRetryConfig() []string {
	var problems []string

	if c.maxRetries < 0 {
		problems = append(problems, "maxRetries must be non-negative")
	}
	if c.maxRetries > 100 {
		problems = append(problems, "maxRetries > 100 may cause excessive resource usage")
	}
	if c.policy == nil {
		problems = append(problems, "backoff policy must be set")
		return problems
	}
	if c.policy.Base <= 0 {
		problems = append(problems, "backoff base must be positive")
	}
	if c.policy.Max < c.policy.Base {
		problems = append(problems, "backoff max must be greater than or equal to base")
	}
	if c.policy.Multiplier <= 0 {
		problems = append(problems, "backoff multiplier must be positive")
	}
	if c.policy.Jitter < 0 || c.policy.Jitter > 1 {
		problems = append(problems, "backoff jitter must be between 0 and 1")
	}

	return problems
}

func (c *Client) validateCollaborators() []string {
	var problems []string

	if c.transport == nil {
		problems = append(problems, "transport cannot be nil")
	}
	if c.tokens == nil {
		problems = append(problems, "token store cannot be nil")
	}
	if c.clock == nil {
		problems = append(problems, "clock cannot be nil")
	}
	if c.events == nil {
		problems = append(problems, "events sink cannot be nil (use NopEvents)")
	}
	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			problems = append(problems, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			problems = append(problems, "logger must be set when debug is enabled")
		}
	}

	return problems
}

func (c *Client) validateEndpoints() []string {
	var problems []string

	for name, template := range c.endpoints {
		if _, known := defaultEndpoints[name]; !known {
			problems = append(problems, fmt.Sprintf("endpoint override %q does not name a known endpoint", name))
		}
		if !strings.HasPrefix(template, "/") {
			problems = append(problems, fmt.Sprintf("endpoint template %q must start with /", template))
		}
	}

	return problems
}
