package playcore

import (
	"context"
	"net/http"
)

// ConfigService exposes the remote configuration endpoint. Pairs well with
// WithResponseCache, since config is read often and changes rarely.
type ConfigService struct {
	c *Client
}

// Fetch returns the full remote configuration object.
func (s *ConfigService) Fetch(ctx context.Context) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodGet,
		Path:   s.c.endpoint(EndpointConfigFetch, nil),
	})
}

// Value fetches the configuration and returns the entry under key. A missing
// key yields (nil, false) with no error: absent config values are an
// expected condition.
func (s *ConfigService) Value(ctx context.Context, key string) (any, bool, *Error) {
	res := s.Fetch(ctx)
	if !res.OK {
		return nil, false, res.Err
	}
	v, ok := res.Map()[key]
	return v, ok, nil
}
