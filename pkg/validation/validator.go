package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates and decodes JSON bodies against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
	raw    string
}

// Schema compiles a JSON Schema document (draft 2020-12 unless it declares
// its own $schema).
func Schema(raw string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("schema.json", strings.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: schema, raw: raw}, nil
}

// MustSchema is like Schema but panics on error. Use it for package-level schemas.
func MustSchema(raw string) *Validator {
	v, err := Schema(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the schema source.
func (v *Validator) String() string {
	return v.raw
}

// Validate checks an already decoded JSON document.
func (v *Validator) Validate(doc any) *Result {
	if _, ok := doc.(map[string]any); !ok {
		return invalid(ErrCodeNotObject, "request body must be a JSON object")
	}

	result := valid()
	if err := v.schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			parseSchemaErrors(verr, result)
		} else {
			result.AddError(&FieldError{Location: LocationBody, Code: ErrCodeSchema, Message: err.Error()})
		}
		// guard against a validation error with no leaf causes
		if result.Valid {
			result.AddError(&FieldError{Location: LocationBody, Code: ErrCodeSchema, Message: err.Error()})
		}
	}
	return result
}

// Decode validates body and, when valid, decodes it into dst.
func (v *Validator) Decode(body []byte, dst any) *Result {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return invalid(ErrCodeEmptyBody, "request body is empty")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return invalid(ErrCodeInvalidJSON, fmt.Sprintf("invalid JSON: %v", err))
	}

	result := v.Validate(doc)
	if !result.Valid || dst == nil {
		return result
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return invalid(ErrCodeDecode, err.Error())
	}
	return result
}

// parseSchemaErrors extracts leaf errors from a JSON Schema validation error.
func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(&FieldError{
			Field:    extractFieldFromPath(err.InstanceLocation),
			Location: LocationBody,
			Code:     ErrCodeSchema,
			Message:  err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// extractFieldFromPath converts a JSON Pointer to dot notation.
func extractFieldFromPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
