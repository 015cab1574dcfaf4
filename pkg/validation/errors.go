package validation

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeSchema      = "schema"
	ErrCodeInvalidJSON = "invalid_json"
	ErrCodeEmptyBody   = "empty_body"
	ErrCodeNotObject   = "not_object"
	ErrCodeDecode      = "decode"
)

// LocationBody is the only location validated today.
const LocationBody = "body"

// FieldError describes a single validation failure.
type FieldError struct {
	// Field is the dotted path of the offending field, empty for the whole body.
	Field    string `json:"field,omitempty"`
	Location string `json:"location"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Location, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Result contains the outcome of validation.
type Result struct {
	Valid  bool          `json:"valid"`
	Errors []*FieldError `json:"errors,omitempty"`
}

func valid() *Result {
	return &Result{Valid: true}
}

func invalid(code, message string) *Result {
	r := valid()
	r.AddError(&FieldError{Location: LocationBody, Code: code, Message: message})
	return r
}

// AddError adds a validation error to the result
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// Err returns the field errors joined into one error, or nil when valid.
func (r *Result) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, fe := range r.Errors {
		errs = append(errs, fe)
	}
	if len(errs) == 0 {
		return errors.New("validation failed")
	}
	return errors.Join(errs...)
}
