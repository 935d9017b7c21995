package tsched

import (
	"context"
	"runtime"
	"testing"
	"time"
)

// fastOpts keeps test schedulers small and their retries quick.
func fastOpts(workers int) Options {
	return Options{
		Workers:        workers,
		QueueCapacity:  64,
		DefaultTimeout: 2 * time.Second,
		DefaultRetry: RetryPolicy{
			Attempts: 3,
			Initial:  2 * time.Millisecond,
			Max:      5 * time.Millisecond,
		},
	}
}

// noRetry disables retries so terminal outcomes appear after one attempt.
var noRetry = TaskConfig{MaxRetries: -1}

// instantWork returns the payload immediately.
func instantWork(payload any) WorkFunc {
	return func(context.Context) (any, error) { return payload, nil }
}

// failWork always fails with err.
func failWork(err error) WorkFunc {
	return func(context.Context) (any, error) { return nil, err }
}

// sleepWork waits for d or until the attempt context is cancelled.
func sleepWork(d time.Duration) WorkFunc {
	return func(ctx context.Context) (any, error) {
		select {
		case <-time.After(d):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}
