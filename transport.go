package playcore

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// TransportCategory identifies the failure mode of a transport-level error.
type TransportCategory string

const (
	CategoryCantConnect     TransportCategory = "cant_connect"
	CategoryCantResolve     TransportCategory = "cant_resolve"
	CategoryConnectionError TransportCategory = "connection_error"
	CategoryTLSHandshake    TransportCategory = "tls_handshake_error"
	CategoryNoResponse      TransportCategory = "no_response"
	CategoryBodyTooLarge    TransportCategory = "body_too_large"
	CategoryRequestFailed   TransportCategory = "request_failed"
	CategoryRedirectLimit   TransportCategory = "redirect_limit"
	CategoryLocalIO         TransportCategory = "local_io_error"
)

// TransportError is returned by a Transport when the request never produced
// an HTTP response.
type TransportError struct {
	Category TransportCategory
	Cause    error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport %s: %v", e.Category, e.Cause)
	}
	return fmt.Sprintf("transport %s", e.Category)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Retryable reports whether the failure category is worth another attempt.
// Connection, DNS and TLS handshake failures are; everything else is not.
func (e *TransportError) Retryable() bool {
	switch e.Category {
	case CategoryCantConnect, CategoryCantResolve, CategoryConnectionError, CategoryTLSHandshake:
		return true
	default:
		return false
	}
}

// TransportResponse is the raw outcome of a successful transport exchange.
type TransportResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport sends a single HTTP exchange. Implementations must honor ctx
// cancellation mid-flight and return either a *TransportResponse or an error
// (a *TransportError for transport-level failures, or the ctx error when the
// context ended the attempt).
type Transport interface {
	Send(ctx context.Context, method, url string, headers map[string]string, body []byte) (*TransportResponse, error)
}

// DefaultMaxBodyBytes caps response bodies read by the built-in transport.
const DefaultMaxBodyBytes = 8 << 20

type httpTransport struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPTransport returns a Transport backed by net/http. The per-attempt
// timeout is driven by the caller's context, not the http.Client, so a nil
// client gets a zero-timeout default.
func NewHTTPTransport(client *http.Client) Transport {
	if client == nil {
		client = &http.Client{}
	}
	return &httpTransport{client: client, maxBodyBytes: DefaultMaxBodyBytes}
}

func (t *httpTransport) Send(ctx context.Context, method, rawURL string, headers map[string]string, body []byte) (*TransportResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, &TransportError{Category: CategoryRequestFailed, Cause: err}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, t.maxBodyBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Category: CategoryConnectionError, Cause: err}
	}
	if int64(len(data)) > t.maxBodyBytes {
		return nil, &TransportError{Category: CategoryBodyTooLarge, Cause: fmt.Errorf("response body exceeds %d bytes", t.maxBodyBytes)}
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header.Clone(),
	}, nil
}

// classifyTransportError maps a net/http client error to a TransportError
// category. The mapping errs toward the terminal categories: only failures
// that are clearly connection-establishment problems get a retryable one.
func classifyTransportError(err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if strings.Contains(urlErr.Error(), "stopped after") {
			return &TransportError{Category: CategoryRedirectLimit, Cause: err}
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Category: CategoryCantResolve, Cause: err}
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return &TransportError{Category: CategoryTLSHandshake, Cause: err}
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return &TransportError{Category: CategoryTLSHandshake, Cause: err}
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return &TransportError{Category: CategoryTLSHandshake, Cause: err}
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return &TransportError{Category: CategoryTLSHandshake, Cause: err}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &TransportError{Category: CategoryCantConnect, Cause: err}
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TransportError{Category: CategoryConnectionError, Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return &TransportError{Category: CategoryCantConnect, Cause: err}
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			return &TransportError{Category: CategoryConnectionError, Cause: err}
		}
	}

	return &TransportError{Category: CategoryRequestFailed, Cause: err}
}

// Clock abstracts time operations for testing.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock implements Clock using the standard time package.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	}
}
