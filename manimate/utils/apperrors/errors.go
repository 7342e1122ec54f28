// Package apperrors classifies failures so the HTTP layer can pick a status
// code and a client-safe message without inspecting error strings.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindMethodMismatch
	KindInvalidCredentials
	KindConflict
	KindUnauthorized
	KindUpstreamFormat
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindMethodMismatch:
		return "method_mismatch"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstreamFormat:
		return "upstream_format"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Status is the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindMethodMismatch, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type returned by controllers.
// Message is shown to clients; Err is the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	// Key is the JSON field carrying Message: "error" or "message".
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same Kind, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, key, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Key: key, Err: cause}
}

func Validation(msg string) *Error   { return newError(KindValidation, "error", msg, nil) }
func NotFound(msg string) *Error     { return newError(KindNotFound, "error", msg, nil) }
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, "error", msg, nil) }
func Conflict(msg string) *Error     { return newError(KindConflict, "message", msg, nil) }

func MethodMismatch(msg string) *Error {
	return newError(KindMethodMismatch, "message", msg, nil)
}

func InvalidCredentials(msg string) *Error {
	return newError(KindInvalidCredentials, "message", msg, nil)
}

func UpstreamFormat(msg string, cause error) *Error {
	return newError(KindUpstreamFormat, "error", msg, cause)
}

func Upstream(msg string, cause error) *Error {
	return newError(KindUpstream, "error", msg, cause)
}

func Internal(msg string, cause error) *Error {
	return newError(KindInternal, "error", msg, cause)
}

// AsMessage switches the JSON key to "message".
func (e *Error) AsMessage() *Error {
	e.Key = "message"
	return e
}

// WithCause attaches the underlying error for logging.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal Server Error", err)
}

// KindOf reports the kind of err; unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
