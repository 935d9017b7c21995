package tsched

import (
	"context"
	"fmt"
	"time"
)

// runWithTimeout drives a single task attempt under a deadline.
// See runCancellable; this is the variant without a cancellation signal.
func runWithTimeout(task Task, timeout time.Duration) Outcome {
	return runCancellable(task, timeout, nil)
}

// runCancellable drives a single task attempt, racing three events:
// completion of the work, expiry of the deadline, and the one-shot
// cancellation signal. Whichever happens first determines the Outcome.
//
// Two guarantees matter here:
//
//   - Completion wins ties. If the work has already produced a result by
//     the time a deadline or cancellation fires, that result is returned:
//     a task that finished in time is never retroactively timed out or
//     cancelled.
//   - The worker is never lost to a misbehaving task. A panic inside the
//     work func is recovered and converted to a Failure, and a work func
//     that ignores its context simply keeps running in the background
//     with its result discarded.
//
// Cancellation is cooperative: returning from here cancels the attempt
// context, which is as strong a stop signal as the runtime allows.
// Side effects the work already performed are not rolled back.
func runCancellable(task Task, timeout time.Duration, cancel <-chan struct{}) Outcome {
	type attemptResult struct {
		payload any
		err     error
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), timeout)
	defer cancelCtx()

	resCh := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resCh <- attemptResult{err: fmt.Errorf("task %q panicked: %v", task.Name, r)}
			}
		}()
		payload, err := task.Work(ctx)
		resCh <- attemptResult{payload: payload, err: err}
	}()

	select {
	case res := <-resCh:
		return attemptOutcome(res.payload, res.err)
	case <-ctx.Done():
		select {
		case res := <-resCh:
			return attemptOutcome(res.payload, res.err)
		default:
		}
		return timeoutOutcome
	case <-cancel:
		select {
		case res := <-resCh:
			return attemptOutcome(res.payload, res.err)
		default:
		}
		return cancelledOutcome
	}
}

func attemptOutcome(payload any, err error) Outcome {
	if err != nil {
		return failureOutcome(err)
	}
	return successOutcome(payload)
}
