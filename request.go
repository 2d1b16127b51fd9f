package playcore

import "strings"

// Request is one logical operation against the backend. It is immutable once
// submitted: the executor owns it exclusively for its lifetime and replays
// the same snapshot on every attempt.
type Request struct {
	Method string
	Path   string
	// Body is marshaled as JSON when non-nil.
	Body map[string]any
	// Headers override the client's default headers for this request only.
	Headers map[string]string

	// skipAuth suppresses the Authorization header and 401 interception.
	// Set on login and refresh requests, where a 401 means bad credentials
	// rather than an expired session.
	skipAuth bool
	// noAuthRetry marks the single post-refresh replay; a second 401 is
	// returned as-is instead of triggering another refresh cycle.
	noAuthRetry bool
}

// Endpoint names accepted by WithEndpointOverride.
const (
	EndpointAuthRegister     = "auth.register"
	EndpointAuthLogin        = "auth.login"
	EndpointAuthRefresh      = "auth.refresh"
	EndpointAuthLogout       = "auth.logout"
	EndpointStorageKey       = "storage.key"
	EndpointStorageList      = "storage.list"
	EndpointLeaderboardScore = "leaderboard.score"
	EndpointLeaderboardTop   = "leaderboard.top"
	EndpointLeaderboardNear  = "leaderboard.near"
	EndpointConfigFetch      = "config.fetch"
)

var defaultEndpoints = map[string]string{
	EndpointAuthRegister:     "/v1/auth/register",
	EndpointAuthLogin:        "/v1/auth/login",
	EndpointAuthRefresh:      "/v1/auth/refresh",
	EndpointAuthLogout:       "/v1/auth/logout",
	EndpointStorageKey:       "/v1/storage/{key}",
	EndpointStorageList:      "/v1/storage",
	EndpointLeaderboardScore: "/v1/leaderboards/{board}/scores",
	EndpointLeaderboardTop:   "/v1/leaderboards/{board}/top",
	EndpointLeaderboardNear:  "/v1/leaderboards/{board}/around/{user}",
	EndpointConfigFetch:      "/v1/config",
}

// expandPath substitutes {param} placeholders by exact string replacement.
// Values are inserted verbatim; callers escape them when needed.
func expandPath(template string, params map[string]string) string {
	for k, v := range params {
		template = strings.ReplaceAll(template, "{"+k+"}", v)
	}
	return template
}

// endpoint resolves a named endpoint template, applying any configured
// override, and expands its placeholders.
func (c *Client) endpoint(name string, params map[string]string) string {
	template, ok := c.endpoints[name]
	if !ok {
		template = defaultEndpoints[name]
	}
	return expandPath(template, params)
}
