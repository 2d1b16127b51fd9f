package playcore

import "errors"

// Sentinel errors for common failure scenarios
var (
	// ErrClosed is returned when a request is submitted after Close.
	ErrClosed = errors.New("playcore: client closed")

	// ErrCircuitOpen is returned when the circuit breaker is in open state.
	ErrCircuitOpen = errors.New("playcore: circuit open")

	// ErrNoRefreshToken is returned when a credential refresh is requested
	// without a stored refresh token.
	ErrNoRefreshToken = errors.New("playcore: no refresh token")
)

// IsTransient reports whether an error kind represents a failure that might
// succeed on retry. Transient kinds are retried locally by the executor up to
// the configured limit; everything else is terminal on first occurrence.
func IsTransient(kind ErrorKind) bool {
	switch kind {
	case KindNetworkError, KindServerError, KindTimeout:
		return true
	default:
		return false
	}
}

// IsTransientError is the error-valued counterpart of IsTransient. It accepts
// *Error and *TransportError values.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	var resErr *Error
	if errors.As(err, &resErr) {
		return IsTransient(resErr.Kind)
	}

	var trErr *TransportError
	if errors.As(err, &trErr) {
		return trErr.Retryable()
	}

	return false
}
