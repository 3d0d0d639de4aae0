// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package s3client

import (
	"context"
	"sync"
)

// BuildFunc constructs a backend client from resolved credentials. Tests
// substitute it to inject doubles.
type BuildFunc func(config Config, creds Credentials) (Client, error)

// Context owns the shared backend client. Credentials are resolved and the
// client is built on first use; concurrent callers during construction wait
// on the mutex instead of racing to build duplicate handles. Invalidate
// forces a one-shot rebuild after a transport fault.
type Context struct {
	config Config
	build  BuildFunc

	mu     sync.Mutex
	client Client
}

// NewContext creates a credential context backed by minio-go.
func NewContext(config Config) *Context {
	return NewContextWithBuilder(config, NewMinio)
}

// NewContextWithBuilder creates a credential context with a custom client
// builder.
func NewContextWithBuilder(config Config, build BuildFunc) *Context {
	return &Context{config: config, build: build}
}

// Client returns the cached backend client, constructing it on first use.
func (c *Context) Client(ctx context.Context) (Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	creds, err := ResolveCredentials()
	if err != nil {
		return nil, err
	}

	client, err := c.build(c.config, creds)
	if err != nil {
		return nil, err
	}

	c.client = client
	return client, nil
}

// Invalidate drops the cached client so the next call rebuilds it. The
// credentials themselves are immutable and re-read only from the
// environment.
func (c *Context) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = nil
}
