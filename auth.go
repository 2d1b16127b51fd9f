package playcore

import (
	"context"
	"net/http"
)

// refreshKey is the singleflight key gating the one refresh cycle a client
// may have in flight.
const refreshKey = "token-refresh"

// recoverUnauthorized is the auth refresh coordinator. Invoked when an
// executor terminates with UNAUTHORIZED for a request that carried an access
// token, it single-flights a credential refresh and replays the original
// request exactly once with the renewed token. Concurrent 401s share the one
// refresh cycle; its outcome fans out to every waiter.
func (c *Client) recoverUnauthorized(ctx context.Context, req Request, orig Result) Result {
	creds := c.credentials()
	if creds.AccessToken == "" {
		// The request never carried a token; a refresh cannot change the
		// answer.
		return orig
	}
	if creds.RefreshToken == "" {
		return orig
	}

	v, _, _ := c.refreshGroup.Do(refreshKey, func() (any, error) {
		// A refresh that finished between our 401 and this call already
		// rotated the token; replaying with it is enough.
		if current := c.credentials(); current.AccessToken != creds.AccessToken {
			return (*Error)(nil), nil
		}
		// Detached from the triggering caller: one caller giving up must
		// not fail the refresh every other waiter depends on.
		return c.refreshCredentials(context.WithoutCancel(ctx)), nil
	})

	if refreshErr, ok := v.(*Error); ok && refreshErr != nil {
		return Failure(NewError(KindUnauthorized, "credential refresh failed", orig.Err.Status, refreshErr))
	}

	if c.debugEnabled() && c.debug.LogAuth {
		c.logger.Debug("replaying request with refreshed credentials", "method", req.Method, "path", req.Path)
	}

	replay := req
	replay.noAuthRetry = true
	return c.newExecutor(replay).run(ctx)
}

// refreshCredentials runs the refresh operation through the same executor
// machinery as any other request: no Authorization header, no recursive 401
// handling. On success the renewed bundle is persisted; on failure all
// credentials are cleared and listeners are told the session is gone.
// Returns nil on success, the refresh failure otherwise.
func (c *Client) refreshCredentials(ctx context.Context) *Error {
	creds := c.credentials()
	if creds.RefreshToken == "" {
		return NewError(KindUnauthorized, ErrNoRefreshToken.Error(), 0, nil)
	}

	req := Request{
		Method:   http.MethodPost,
		Path:     c.endpoint(EndpointAuthRefresh, nil),
		Body:     map[string]any{"refresh_token": creds.RefreshToken},
		skipAuth: true,
	}
	res := c.newExecutor(req).run(ctx)

	if !res.OK {
		c.clearCredentials()
		c.metrics.RecordTokenRefresh(false)
		c.events.TokenRefreshed(false)
		c.events.AuthStateChanged("")
		return res.Err
	}

	bundle := bundleFromPayload(res.Map(), creds)
	c.saveCredentials(bundle)
	c.metrics.RecordTokenRefresh(true)
	c.events.TokenRefreshed(true)
	return nil
}

// bundleFromPayload builds the renewed bundle from a token response. Fields
// the server omits (refresh token rotation is optional) carry over from the
// previous bundle.
func bundleFromPayload(m map[string]any, prev CredentialBundle) CredentialBundle {
	bundle := prev
	if v, ok := m["user_id"].(string); ok && v != "" {
		bundle.UserID = v
	}
	if v, ok := m["access_token"].(string); ok && v != "" {
		bundle.AccessToken = v
	}
	if v, ok := m["refresh_token"].(string); ok && v != "" {
		bundle.RefreshToken = v
	}
	return bundle
}

// AuthService exposes the authentication endpoints. Thin pass-throughs over
// Client.Request plus local credential bookkeeping.
type AuthService struct {
	c *Client
}

// Auth returns the authentication service.
func (c *Client) Auth() *AuthService {
	return &AuthService{c: c}
}

// Register creates an account. When the backend responds with a token pair
// the session is adopted immediately, as with Login.
func (s *AuthService) Register(ctx context.Context, email, password string) Result {
	res := s.c.Request(ctx, Request{
		Method:   http.MethodPost,
		Path:     s.c.endpoint(EndpointAuthRegister, nil),
		Body:     map[string]any{"email": email, "password": password},
		skipAuth: true,
	})
	s.adoptSession(res)
	return res
}

// Login authenticates with email and password. A 401 here means bad
// credentials, not an expired session, so no refresh is attempted.
func (s *AuthService) Login(ctx context.Context, email, password string) Result {
	res := s.c.Request(ctx, Request{
		Method:   http.MethodPost,
		Path:     s.c.endpoint(EndpointAuthLogin, nil),
		Body:     map[string]any{"email": email, "password": password},
		skipAuth: true,
	})
	s.adoptSession(res)
	return res
}

// Refresh forces a credential refresh through the coordinator's single-flight
// gate. Callers racing an automatic refresh share its outcome.
func (s *AuthService) Refresh(ctx context.Context) Result {
	v, _, _ := s.c.refreshGroup.Do(refreshKey, func() (any, error) {
		return s.c.refreshCredentials(context.WithoutCancel(ctx)), nil
	})
	if refreshErr, ok := v.(*Error); ok && refreshErr != nil {
		return Failure(refreshErr)
	}
	return Success(map[string]any{})
}

// Logout revokes the session server-side and clears local credentials. Best
// effort: a failed revoke is swallowed and the local clear always wins, so
// Logout always reports success.
func (s *AuthService) Logout(ctx context.Context) Result {
	creds := s.c.credentials()
	if creds.HasTokens() {
		res := s.c.Request(ctx, Request{
			Method:      http.MethodPost,
			Path:        s.c.endpoint(EndpointAuthLogout, nil),
			noAuthRetry: true,
		})
		if !res.OK && s.c.debugEnabled() && s.c.debug.LogAuth {
			s.c.logger.Warn("server-side logout failed, clearing local session anyway",
				"kind", res.Err.Kind, "status", res.Err.Status)
		}
	}

	s.c.clearCredentials()
	s.c.events.AuthStateChanged("")
	return Success(map[string]any{})
}

// Session returns a copy of the current credential bundle.
func (s *AuthService) Session() CredentialBundle {
	return s.c.credentials()
}

// adoptSession persists a token pair carried by an auth response.
func (s *AuthService) adoptSession(res Result) {
	if !res.OK {
		return
	}
	bundle := bundleFromPayload(res.Map(), CredentialBundle{})
	if !bundle.HasTokens() {
		return
	}
	s.c.saveCredentials(bundle)
	s.c.events.AuthStateChanged(bundle.UserID)
}
