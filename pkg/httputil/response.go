// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/shelfd/pkg/apierror"
)

// ErrorEnvelope is the body of every error response.
type ErrorEnvelope struct {
	Type    string `json:"type"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteText writes a plain text response.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes the error envelope for err. The stack trace is included
// only when withStack is true and the error recorded one.
func WriteError(w http.ResponseWriter, err *apierror.Error, withStack bool) {
	env := ErrorEnvelope{
		Type:    "error",
		Status:  err.StatusCode(),
		Message: err.Message,
	}
	if withStack {
		env.Stack = err.Stack()
	}
	WriteJSON(w, env.Status, env)
}

// WriteStatus writes the error envelope for a bare status code, using the
// standard status text as the message.
func WriteStatus(w http.ResponseWriter, status int) {
	WriteJSON(w, status, ErrorEnvelope{
		Type:    "error",
		Status:  status,
		Message: http.StatusText(status),
	})
}
