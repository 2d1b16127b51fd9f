package playcore

import "fmt"

// ErrorKind classifies a failed operation. Kinds are stable strings so they
// can be logged, matched and exported as metric labels.
type ErrorKind string

const (
	KindNone            ErrorKind = "NONE"
	KindNetworkError    ErrorKind = "NETWORK_ERROR"
	KindTimeout         ErrorKind = "TIMEOUT"
	KindInvalidResponse ErrorKind = "INVALID_RESPONSE"
	KindUnauthorized    ErrorKind = "UNAUTHORIZED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindRateLimited     ErrorKind = "RATE_LIMITED"
	KindServerError     ErrorKind = "SERVER_ERROR"
	KindHTTPError       ErrorKind = "HTTP_ERROR"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindBanned          ErrorKind = "BANNED"
	KindCancelled       ErrorKind = "CANCELLED"
	KindUnknown         ErrorKind = "UNKNOWN"
)

// Error describes a failed operation. Status is 0 when the failure never
// reached the HTTP layer. Details carries an opaque diagnostic payload such as
// the decoded response body or the error of an underlying refresh attempt.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Details any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (http %d)", e.Kind, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is compares error kinds for errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Result is the envelope returned by every public operation. Exactly one of
// Data and Err is populated: Data is nil on failure, Err is nil on success.
type Result struct {
	OK   bool
	Data any
	Err  *Error
}

// Success wraps a parsed response payload in a successful Result.
func Success(data any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{OK: true, Data: data}
}

// Failure wraps an Error in a failed Result.
func Failure(err *Error) Result {
	return Result{OK: false, Err: err}
}

// NewError builds an Error. Pass status 0 for failures below the HTTP layer
// and nil details when there is no diagnostic payload.
func NewError(kind ErrorKind, message string, status int, details any) *Error {
	return &Error{Kind: kind, Message: message, Status: status, Details: details}
}

// ClassifyStatus maps an HTTP status code to an ErrorKind. The mapping is
// total: any status not matched explicitly yields KindUnknown.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServerError
	case status >= 400:
		return KindHTTPError
	default:
		return KindUnknown
	}
}

// Map returns the result data as an object, or an empty map when the payload
// is absent or not a JSON object. Convenience for callers of thin wrappers.
func (r Result) Map() map[string]any {
	if m, ok := r.Data.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
