// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// FieldType is the wire shape a schema field accepts.
type FieldType int

// Supported field types. JSON numbers arrive as float64; integer fields
// accept them only when integral.
const (
	TypeString FieldType = iota
	TypeInteger
	TypeBoolean
	TypeObject
	TypeArray
)

// String returns a human-readable type name for error messages.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field declares a single schema field.
type Field struct {
	Name        string
	Description string
	Type        FieldType
	Required    bool

	// Default is filled into the validated arguments when the field is
	// absent. Its Go type must match Type.
	Default any

	// Positive requires integer values to be greater than zero.
	Positive bool

	// Enum restricts string values to the listed set.
	Enum []string
}

// Schema is the declarative input description of a tool. It drives both the
// MCP tool advertisement and request validation, so the two can never
// disagree.
type Schema struct {
	Fields []Field
}

func (f Field) toolOption() mcp.ToolOption {
	opts := []mcp.PropertyOption{mcp.Description(f.Description)}
	if f.Required {
		opts = append(opts, mcp.Required())
	}

	switch f.Type {
	case TypeString:
		if def, ok := f.Default.(string); ok {
			opts = append(opts, mcp.DefaultString(def))
		}
		if len(f.Enum) > 0 {
			opts = append(opts, mcp.Enum(f.Enum...))
		}
		return mcp.WithString(f.Name, opts...)
	case TypeInteger:
		if def, ok := f.Default.(int); ok {
			opts = append(opts, mcp.DefaultNumber(float64(def)))
		}
		if f.Positive {
			opts = append(opts, mcp.Min(1))
		}
		return mcp.WithNumber(f.Name, opts...)
	case TypeBoolean:
		if def, ok := f.Default.(bool); ok {
			opts = append(opts, mcp.DefaultBool(def))
		}
		return mcp.WithBoolean(f.Name, opts...)
	case TypeObject:
		return mcp.WithObject(f.Name, opts...)
	case TypeArray:
		return mcp.WithArray(f.Name, opts...)
	default:
		return mcp.WithString(f.Name, opts...)
	}
}
