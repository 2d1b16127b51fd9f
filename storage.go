package playcore

import (
	"context"
	"net/http"
	"net/url"
)

// StorageService exposes the per-user key-value storage endpoints. Every
// call is a thin pass-through over Client.Request; serialized dispatch (the
// default) keeps read-modify-write sequences on the same key race-free.
type StorageService struct {
	c *Client
}

// Get fetches the value stored under key.
func (s *StorageService) Get(ctx context.Context, key string) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodGet,
		Path:   s.c.endpoint(EndpointStorageKey, map[string]string{"key": url.PathEscape(key)}),
	})
}

// Set stores value under key, replacing any previous value.
func (s *StorageService) Set(ctx context.Context, key string, value map[string]any) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodPut,
		Path:   s.c.endpoint(EndpointStorageKey, map[string]string{"key": url.PathEscape(key)}),
		Body:   map[string]any{"value": value},
	})
}

// Delete removes the value stored under key. Deleting a missing key yields
// NOT_FOUND from the backend, passed through untouched.
func (s *StorageService) Delete(ctx context.Context, key string) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodDelete,
		Path:   s.c.endpoint(EndpointStorageKey, map[string]string{"key": url.PathEscape(key)}),
	})
}

// List returns the caller's stored keys.
func (s *StorageService) List(ctx context.Context) Result {
	return s.c.Request(ctx, Request{
		Method: http.MethodGet,
		Path:   s.c.endpoint(EndpointStorageList, nil),
	})
}
