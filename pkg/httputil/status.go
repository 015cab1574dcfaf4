package httputil

import "net/http"

// StatusWriter wraps http.ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int
}

// NewStatusWriter creates a new StatusWriter.
func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default
	}
}

// WriteHeader captures the status code and writes it to the underlying ResponseWriter.
func (w *StatusWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write writes data to the underlying ResponseWriter.
func (w *StatusWriter) Write(b []byte) (int, error) {
	w.written = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *StatusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *StatusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the captured status code.
func (w *StatusWriter) Status() int { return w.statusCode }

// Written reports whether a header or body has been written.
func (w *StatusWriter) Written() bool { return w.written }

// BytesWritten returns the number of body bytes written.
func (w *StatusWriter) BytesWritten() int { return w.bytes }
