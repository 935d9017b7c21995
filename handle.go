package tsched

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StatusKind is the lifecycle state of a submitted task.
//
// The state machine is Queued -> Running -> Completed | Cancelled, plus
// the short-circuit Queued -> Cancelled when cancellation arrives before
// the task is ever dequeued. Exactly one terminal state is reached and
// no state ever returns to Queued.
type StatusKind uint8

const (
	StatusQueued StatusKind = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
)

func (k StatusKind) String() string {
	switch k {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TaskStatus is a snapshot of a task's lifecycle state. Outcome is
// meaningful only once Terminal() reports true.
type TaskStatus struct {
	Kind    StatusKind
	Outcome Outcome
}

// Terminal reports whether the task has finished, one way or another.
func (s TaskStatus) Terminal() bool {
	return s.Kind == StatusCompleted || s.Kind == StatusCancelled
}

// TaskHandle is the caller-facing token for one submitted task. It only
// observes and signals: it does not own the task's execution, and
// dropping it does not affect the task.
type TaskHandle struct {
	id uuid.UUID

	mu     sync.Mutex
	status TaskStatus

	done       chan struct{} // closed on terminal transition
	cancelCh   chan struct{} // closed by Cancel, raced by the executor
	cancelOnce sync.Once
}

func newHandle(id uuid.UUID) *TaskHandle {
	return &TaskHandle{
		id:       id,
		status:   TaskStatus{Kind: StatusQueued},
		done:     make(chan struct{}),
		cancelCh: make(chan struct{}),
	}
}

// ID returns the identity of the submitted task.
func (h *TaskHandle) ID() uuid.UUID { return h.id }

// Cancel requests cooperative cancellation. It is idempotent: calling it
// twice, or after the task already reached a terminal state, is a no-op.
// Side effects the task performed before the signal is observed are not
// rolled back.
func (h *TaskHandle) Cancel() {
	h.cancelOnce.Do(func() { close(h.cancelCh) })
}

// Status returns a non-blocking snapshot of the task's current state.
func (h *TaskHandle) Status() TaskStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Wait blocks until the task reaches a terminal state and returns it.
func (h *TaskHandle) Wait() TaskStatus {
	<-h.done
	return h.Status()
}

// WaitContext is Wait bounded by ctx. On expiry it returns the current
// (non-terminal) snapshot along with ctx.Err().
func (h *TaskHandle) WaitContext(ctx context.Context) (TaskStatus, error) {
	select {
	case <-h.done:
		return h.Status(), nil
	case <-ctx.Done():
		return h.Status(), ctx.Err()
	}
}

// cancelRequested reports whether Cancel has been called. Workers check
// this before the first attempt so a task cancelled while still queued
// never starts running.
func (h *TaskHandle) cancelRequested() bool {
	select {
	case <-h.cancelCh:
		return true
	default:
		return false
	}
}

// cancelSignal exposes the one-shot channel raced by the executor.
func (h *TaskHandle) cancelSignal() <-chan struct{} { return h.cancelCh }

// markRunning moves Queued -> Running. Any other current state is left
// untouched.
func (h *TaskHandle) markRunning() {
	h.mu.Lock()
	if h.status.Kind == StatusQueued {
		h.status.Kind = StatusRunning
	}
	h.mu.Unlock()
}

// complete publishes the terminal outcome and wakes all waiters. The
// first terminal transition wins; later calls are no-ops.
func (h *TaskHandle) complete(o Outcome) bool {
	h.mu.Lock()
	if h.status.Terminal() {
		h.mu.Unlock()
		return false
	}
	kind := StatusCompleted
	if o.Kind == OutcomeCancelled {
		kind = StatusCancelled
	}
	h.status = TaskStatus{Kind: kind, Outcome: o}
	h.mu.Unlock()
	close(h.done)
	return true
}
