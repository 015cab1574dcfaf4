package collection

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when no record matches a predicate.
type NotFoundError struct {
	Collection string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("collection %q: no matching item found", e.Collection)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
