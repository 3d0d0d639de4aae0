// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

// Handler executes one tool against the backend with validated arguments.
type Handler func(ctx context.Context, client s3client.Client, args Args) (any, error)

// Descriptor ties a tool name to its input schema and handler. Descriptors
// are registered once at startup and never mutated.
type Descriptor struct {
	Name        string
	Description string
	Schema      Schema
	Handle      Handler
}

// MCPTool renders the descriptor into an MCP tool declaration. The same
// schema that validates requests produces the advertisement.
func (d *Descriptor) MCPTool() mcp.Tool {
	opts := make([]mcp.ToolOption, 0, len(d.Schema.Fields)+1)
	opts = append(opts, mcp.WithDescription(d.Description))
	for _, field := range d.Schema.Fields {
		opts = append(opts, field.toolOption())
	}
	return mcp.NewTool(d.Name, opts...)
}

// Registry is a static name-to-descriptor mapping populated at startup.
type Registry struct {
	order       []string
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register adds a descriptor, failing when the name is already taken.
func (r *Registry) Register(desc *Descriptor) error {
	if _, ok := r.descriptors[desc.Name]; ok {
		return Error.New("duplicate tool %q", desc.Name)
	}
	r.order = append(r.order, desc.Name)
	r.descriptors[desc.Name] = desc
	return nil
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	desc, ok := r.descriptors[name]
	if !ok {
		return nil, errdata.WithKind(Error.New("unknown tool %q", name), errdata.KindUnknownTool)
	}
	return desc, nil
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	all := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.descriptors[name])
	}
	return all
}
