// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"
	"errors"
	"net"
	"net/http"

	minio "github.com/minio/minio-go/v7"

	"storj.io/s3-mcp/pkg/errdata"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform result wrapper returned by every dispatch.
// Exactly one of Payload and Error is set.
type Envelope struct {
	Status  string       `json:"status"`
	Payload any          `json:"payload,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a classified fault.
type ErrorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func successEnvelope(payload any) *Envelope {
	return &Envelope{Status: StatusSuccess, Payload: payload}
}

func errorEnvelope(err error) *Envelope {
	kind := Classify(err)
	return &Envelope{
		Status: StatusError,
		Error: &ErrorDetail{
			Kind:      string(kind),
			Message:   err.Error(),
			Retryable: kind.Retryable(),
		},
	}
}

// Classify maps a fault onto the closed error-kind taxonomy. Kind
// annotations attached upstream win; otherwise backend error codes,
// context state, and transport errors are inspected. Anything
// unrecognized is Internal.
func Classify(err error) errdata.Kind {
	if kind := errdata.GetKind(err, ""); kind != "" {
		return kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errdata.KindTimeout
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "AccessDenied", "AllAccessDisabled", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errdata.KindAccessDenied
		case "NoSuchBucket", "NoSuchKey", "NoSuchUpload", "NotFound":
			return errdata.KindNotFound
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			return errdata.KindAlreadyExists
		case "SlowDown", "TooManyRequests", "RequestLimitExceeded", "Throttling":
			return errdata.KindThrottled
		case "RequestTimeout":
			return errdata.KindTimeout
		}
		switch {
		case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
			return errdata.KindTimeout
		case resp.StatusCode == http.StatusTooManyRequests:
			return errdata.KindThrottled
		case resp.StatusCode >= http.StatusInternalServerError:
			// the taxonomy is closed: 5xx responses must be retried, so
			// they surface as throttling rather than Internal.
			return errdata.KindThrottled
		case resp.StatusCode == http.StatusForbidden:
			return errdata.KindAccessDenied
		case resp.StatusCode == http.StatusNotFound:
			return errdata.KindNotFound
		case resp.StatusCode == http.StatusConflict:
			return errdata.KindAlreadyExists
		}
		return errdata.KindInternal
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errdata.KindTimeout
	}

	return errdata.KindInternal
}

// isNotConfigured reports whether the backend rejected a get-configuration
// call because the bucket simply has no such configuration.
func isNotConfigured(err error) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	switch resp.Code {
	case "NoSuchBucketPolicy", "NoSuchLifecycleConfiguration", "NoSuchCORSConfiguration", "NoSuchTagSet", "NoSuchTagSetError":
		return true
	}
	return false
}
