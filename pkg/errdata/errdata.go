// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package errdata annotates errors with classification data that survives
// wrapping, so the result normalizer can map any fault onto the closed
// error-kind taxonomy without string matching.
package errdata

import (
	"errors"

	"github.com/zeebo/errs"
)

// Kind is the classification of a fault surfaced in a result envelope.
type Kind string

// The closed set of error kinds. Anything unrecognized is coerced to
// KindInternal before it reaches a caller.
const (
	KindUnknownTool        Kind = "UnknownTool"
	KindMissingField       Kind = "MissingField"
	KindTypeMismatch       Kind = "TypeMismatch"
	KindConflictingInput   Kind = "ConflictingInput"
	KindMissingCredentials Kind = "MissingCredentials"
	KindAccessDenied       Kind = "AccessDenied"
	KindNotFound           Kind = "NotFound"
	KindAlreadyExists      Kind = "AlreadyExists"
	KindThrottled          Kind = "Throttled"
	KindTimeout            Kind = "Timeout"
	KindLocalIO            Kind = "LocalIOError"
	KindInternal           Kind = "Internal"
)

// Retryable reports whether faults of this kind may succeed if the whole
// operation is retried by the caller. Only transport-level kinds qualify;
// validation and semantic backend faults are deterministic.
func (k Kind) Retryable() bool {
	return k == KindThrottled || k == KindTimeout
}

type errSym int

const errKind errSym = 1

type errWrap struct {
	error
	key, val interface{}
}

type errWithValue interface {
	Value(key interface{}) interface{}
}

var _ errWithValue = errWrap{}
var _ errs.Namer = errWrap{}

func (e errWrap) Unwrap() error { return e.error }

func (e errWrap) Name() (string, bool) {
	for i := e.error; i != nil; i = errors.Unwrap(i) {
		if u, ok := i.(errs.Namer); ok { //nolint: errorlint // custom unwrap loop.
			if name, ok := u.Name(); ok {
				return name, true
			}
		}
	}
	return "", false
}

func (e errWrap) Value(key interface{}) interface{} {
	if e.key == key {
		return e.val
	}
	return Value(e.error, key)
}

// Value returns the most recent annotation by key on this error.
func Value(err error, key interface{}) interface{} {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if u, ok := e.(errWithValue); ok { //nolint: errorlint // custom unwrap loop.
			return u.Value(key)
		}
	}
	return nil
}

// Annotate returns a new error annotated with the provided key and value.
// If err is nil, does nothing.
func Annotate(err error, key, val interface{}) error {
	if err == nil {
		return nil
	}
	return errWrap{error: err, key: key, val: val}
}

// WithKind annotates an error with a kind. If err is nil, does nothing.
func WithKind(err error, kind Kind) error {
	return Annotate(err, errKind, kind)
}

// GetKind returns the most recent kind annotation on the error.
// If none is found, defValue is returned instead.
func GetKind(err error, defValue Kind) Kind {
	if v, ok := Value(err, errKind).(Kind); ok {
		return v
	}
	return defValue
}
