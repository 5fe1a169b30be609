// Package retry provides a bounded, fixed-delay retry executor.
package retry

import (
	"context"
	"time"
)

// Policy names one retry budget: how many re-invocations are allowed after
// the first attempt and how long to wait between them. The delay is fixed,
// not exponential.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// Do invokes op and returns its result on success. On failure it consults
// retryable; when the error is transient and budget remains, Do waits
// Policy.InitialDelay and re-invokes op, otherwise it returns the last error
// encountered. An always-failing retryable op therefore runs exactly
// MaxRetries+1 times.
//
// Do adds no side effects of its own; callers must ensure op is safe to
// re-invoke (at-least-once semantics). The backoff wait is interrupted by
// context cancellation.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt >= p.MaxRetries || retryable == nil || !retryable(err) {
			return zero, lastErr
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(p.InitialDelay):
		}
	}
}
