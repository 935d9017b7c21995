package tsched

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkFunc is the unit of work executed for a task attempt.
//
// The scheduler invokes it once per attempt, so a retried task gets a
// fresh invocation rather than a re-awaited one. The supplied context is
// cancelled when the scheduler stops waiting for the attempt (deadline or
// cancellation); a cooperative implementation should observe ctx and bail
// out, but the scheduler never forcibly terminates a running WorkFunc.
type WorkFunc func(ctx context.Context) (any, error)

// Task is a single-shot unit of work submitted to the scheduler.
type Task struct {
	ID        uuid.UUID
	Name      string
	Work      WorkFunc
	CreatedAt time.Time
}

// NewTask builds a task with a fresh ID and creation timestamp.
func NewTask(name string, work WorkFunc) Task {
	return Task{
		ID:        uuid.New(),
		Name:      name,
		Work:      work,
		CreatedAt: time.Now(),
	}
}

// TaskConfig carries per-task execution parameters.
// Zero values are replaced with scheduler defaults at submit time.
type TaskConfig struct {
	// Timeout bounds a single attempt, not the whole retry sequence.
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// RetryBaseDelay is the first backoff duration.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the backoff duration.
	RetryMaxDelay time.Duration
}

// queuedTask is a task wrapped with everything the dispatcher and worker
// need: priority, tie-break sequence, config and the caller's handle.
// Ownership moves queue -> dispatcher -> worker; it is never shared.
type queuedTask struct {
	task       Task
	priority   Priority
	sequence   uint64
	config     TaskConfig
	handle     *TaskHandle
	enqueuedAt time.Time
}

// outranks reports whether q must be dequeued before other.
// Smaller priority wins; equal priorities fall back to submission order.
func (q *queuedTask) outranks(other *queuedTask) bool {
	if q.priority != other.priority {
		return q.priority < other.priority
	}
	return q.sequence < other.sequence
}
