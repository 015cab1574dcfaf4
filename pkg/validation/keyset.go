package validation

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Type is the JSON type of a key-set field.
type Type string

// Field types.
const (
	TypeString      Type = "string"
	TypeInteger     Type = "integer"
	TypeNumber      Type = "number"
	TypeBoolean     Type = "boolean"
	TypeStringArray Type = "string[]"
)

// Field is a named, typed member of a key set.
type Field struct {
	Name string
	Type Type
}

// String declares a string field.
func String(name string) Field { return Field{Name: name, Type: TypeString} }

// Integer declares an integer field.
func Integer(name string) Field { return Field{Name: name, Type: TypeInteger} }

// StringArray declares an array-of-strings field.
func StringArray(name string) Field { return Field{Name: name, Type: TypeStringArray} }

func (t Type) schema() (map[string]any, error) {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean:
		return map[string]any{"type": string(t)}, nil
	case TypeStringArray:
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", t)
	}
}

// KeySet builds a validator that accepts exactly the named fields: none may
// be missing, none may be added, and each must have its declared type.
func KeySet(fields ...Field) (*Validator, error) {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("key set field name cannot be empty")
		}
		if _, dup := properties[f.Name]; dup {
			return nil, fmt.Errorf("duplicate key set field %q", f.Name)
		}
		s, err := f.Type.schema()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		properties[f.Name] = s
		required = append(required, f.Name)
	}
	sort.Strings(required)

	raw, err := json.Marshal(map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key set schema: %w", err)
	}
	return Schema(string(raw))
}

// MustKeySet is like KeySet but panics on error.
func MustKeySet(fields ...Field) *Validator {
	v, err := KeySet(fields...)
	if err != nil {
		panic(err)
	}
	return v
}
