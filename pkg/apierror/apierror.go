// Package apierror defines the error taxonomy shared by every shelfd handler.
//
// Handlers return *Error values (or any error, which From maps to Internal);
// a single writer in pkg/httputil turns them into the JSON error envelope.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an API error.
type Kind int

// Error kinds.
const (
	KindInternal Kind = iota
	KindInvalidInput
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Messages used by the API.
const (
	MsgInputMustBeNumber = "Input must be a number"
	MsgBadRequest        = "Bad Request"
	MsgUnauthorized      = "Unauthorized"
	MsgNotFound          = "Not Found"
	MsgConflict          = "Conflict"
	MsgInternal          = "Internal Server Error"
	MsgTooManyRequests   = "Too Many Requests"
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "Internal"
	}
}

// StatusCode returns the HTTP status code for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput, KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status code for this error.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// Stack returns the stack trace recorded for the cause, or "" when none was captured.
func (e *Error) Stack() string {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	var st stackTracer
	if e.cause == nil || !errors.As(e.cause, &st) {
		return ""
	}
	return fmt.Sprintf("%+v", e.cause)
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// InvalidInput reports a path parameter that is not a number.
func InvalidInput() *Error {
	return New(KindInvalidInput, MsgInputMustBeNumber)
}

// BadRequest reports a body that failed key-set or schema validation.
func BadRequest(cause error) *Error {
	return Wrap(KindBadRequest, MsgBadRequest, cause)
}

// Unauthorized reports a credential or security-answer mismatch.
func Unauthorized() *Error {
	return New(KindUnauthorized, MsgUnauthorized)
}

// NotFound reports a missing record.
func NotFound(message string) *Error {
	if message == "" {
		message = MsgNotFound
	}
	return New(KindNotFound, message)
}

// Conflict reports a duplicate record.
func Conflict(message string) *Error {
	if message == "" {
		message = MsgConflict
	}
	return New(KindConflict, message)
}

// Internal wraps an unexpected fault and records a stack trace.
func Internal(cause error) *Error {
	if cause == nil {
		cause = errors.New("unknown internal error")
	}
	return Wrap(KindInternal, MsgInternal, pkgerrors.WithStack(cause))
}

// From converts any error into an *Error. Errors reporting a 404 through a
// StatusCode method (such as a collection miss) become NotFound; anything
// else that is not already an API error is treated as an internal fault.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) && coded.StatusCode() == http.StatusNotFound {
		return Wrap(KindNotFound, MsgNotFound, err)
	}
	return Internal(err)
}

// Is reports whether err is an API error of the given kind.
func Is(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
