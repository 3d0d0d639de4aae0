// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"math"

	"storj.io/s3-mcp/pkg/errdata"
)

// Args is a schema-conformant argument mapping. It is only ever produced by
// Schema.Validate, so handlers can rely on declared fields having their
// declared types.
type Args map[string]any

// Validate walks the schema's field list over the raw arguments: required
// fields must be present, present fields must match their declared type,
// declared defaults are filled in when absent, and unknown fields pass
// through untouched for forward compatibility.
func (s Schema) Validate(raw map[string]any) (Args, error) {
	args := make(Args, len(raw)+len(s.Fields))
	for name, value := range raw {
		args[name] = value
	}

	for _, field := range s.Fields {
		value, ok := args[field.Name]
		if !ok || value == nil {
			if field.Required {
				return nil, errMissingField(field.Name)
			}
			if field.Default != nil {
				args[field.Name] = field.Default
			}
			continue
		}

		coerced, err := field.coerce(value)
		if err != nil {
			return nil, err
		}
		args[field.Name] = coerced
	}

	return args, nil
}

func (f Field) coerce(value any) (any, error) {
	switch f.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, errTypeMismatch(f.Name, f.Type.String(), value)
		}
		if len(f.Enum) > 0 {
			for _, allowed := range f.Enum {
				if s == allowed {
					return s, nil
				}
			}
			return nil, errdata.WithKind(
				Error.New("field %q must be one of %v, got %q", f.Name, f.Enum, s),
				errdata.KindTypeMismatch)
		}
		return s, nil

	case TypeInteger:
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			if v != math.Trunc(v) {
				return nil, errTypeMismatch(f.Name, f.Type.String(), value)
			}
			n = int(v)
		default:
			return nil, errTypeMismatch(f.Name, f.Type.String(), value)
		}
		if f.Positive && n <= 0 {
			return nil, errdata.WithKind(
				Error.New("field %q must be a positive integer, got %d", f.Name, n),
				errdata.KindTypeMismatch)
		}
		return n, nil

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, errTypeMismatch(f.Name, f.Type.String(), value)
		}
		return b, nil

	case TypeObject:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, errTypeMismatch(f.Name, f.Type.String(), value)
		}
		return m, nil

	case TypeArray:
		l, ok := value.([]any)
		if !ok {
			return nil, errTypeMismatch(f.Name, f.Type.String(), value)
		}
		return l, nil

	default:
		return nil, errTypeMismatch(f.Name, f.Type.String(), value)
	}
}

func errMissingField(name string) error {
	return errdata.WithKind(
		Error.New("missing required field %q", name),
		errdata.KindMissingField)
}

func errTypeMismatch(name, expected string, actual any) error {
	return errdata.WithKind(
		Error.New("field %q must be a %s, got %T", name, expected, actual),
		errdata.KindTypeMismatch)
}

// String returns a validated string field, or empty when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns a validated integer field, or zero when absent.
func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// Bool returns a validated boolean field, or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Object returns a validated object field, or nil when absent.
func (a Args) Object(name string) map[string]any {
	m, _ := a[name].(map[string]any)
	return m
}

// Array returns a validated array field, or nil when absent.
func (a Args) Array(name string) []any {
	l, _ := a[name].([]any)
	return l
}

// Has reports whether the field is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}
