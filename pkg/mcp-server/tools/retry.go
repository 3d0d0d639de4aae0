// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"

	"storj.io/s3-mcp/pkg/backoff"
)

// withRetry runs a single backend call, retrying transient faults
// (throttling, timeouts, 5xx) up to the configured cap with jittered
// exponential backoff. Semantic backend faults and local faults surface
// immediately. The total retry budget is additionally bounded by ctx.
func (t *Tools) withRetry(ctx context.Context, op func() error) (err error) {
	defer mon.Task()(&ctx)(&err)

	delay := backoff.ExponentialBackoff{
		Min: t.config.RetryBackoff.Min,
		Max: t.config.RetryBackoff.Max,
	}

	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || attempt >= t.config.MaxRetries || !Classify(err).Retryable() {
			return err
		}
		if waitErr := delay.Wait(ctx); waitErr != nil {
			// context gave out while backing off; surface the backend fault.
			return err
		}
	}
}
