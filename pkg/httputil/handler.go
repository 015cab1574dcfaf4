package httputil

import (
	"log/slog"
	"net/http"

	"github.com/getmockd/shelfd/pkg/apierror"
	"github.com/getmockd/shelfd/pkg/logging"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Errors is the central error writer. Every handler error goes through it.
type Errors struct {
	log         *slog.Logger
	development bool
}

// NewErrors creates the error writer. In development mode error envelopes carry stack traces.
func NewErrors(log *slog.Logger, development bool) *Errors {
	if log == nil {
		log = logging.Nop()
	}
	return &Errors{log: log, development: development}
}

// Handle adapts fn to http.Handler, writing any returned error as an envelope.
func (e *Errors) Handle(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			e.Write(w, r, err)
		}
	})
}

// Write logs err and writes its envelope.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.From(err)
	status := apiErr.StatusCode()

	attrs := []any{
		"request_id", w.Header().Get(RequestIDHeader),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", apiErr.Kind.String(),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed", attrs...)
	} else {
		e.log.Warn("request rejected", attrs...)
	}

	WriteError(w, apiErr, e.development)
}

// NotFound is the fallback for unmatched routes.
func (e *Errors) NotFound(w http.ResponseWriter, r *http.Request) {
	e.Write(w, r, apierror.NotFound(""))
}
