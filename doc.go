// Package tsched provides a priority-ordered asynchronous task scheduler:
// deferred units of work are ordered by priority and arrival, executed
// across a bounded pool of workers, bounded by per-task timeouts, retried
// with backoff on transient failure, and cooperatively cancellable.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - Strict, observable ordering: within a priority level tasks run in
//     submission order; across levels the most urgent pending task is
//     always dispatched next
//   - Bounded resources: a fixed worker count and a bounded ingestion
//     channel that applies backpressure instead of growing without limit
//   - Failure isolation: a misbehaving task can fail, time out or panic
//     without taking a worker down or escalating into a scheduler fault
//   - Clean lifecycle: shutdown stops intake, drains accepted work to a
//     terminal state and joins every goroutine the scheduler started
//
// Architecture overview
//
// The scheduler is composed of three loosely coupled layers:
//
//   1. Ordering (schedQueue)
//      A dedicated dispatcher goroutine exclusively owns the pending-task
//      queue. Producers reach it only through a bounded submit channel,
//      so the queue itself needs no locking. The default queue is a
//      binary heap on (priority, sequence); a FIFO ring can be selected
//      instead via Options.
//
//   2. Execution (workers)
//      Workers receive tasks from a dispatch channel and drive each one
//      to a single terminal outcome: an attempt loop races completion
//      against the configured timeout and the handle's cancellation
//      signal, and transient failures are retried in place with
//      exponential backoff. Retries never re-enter the queue, so they do
//      not compete with newly submitted tasks.
//
//   3. Observation (TaskHandle, Metrics)
//      Submit returns a handle immediately. The handle observes the task
//      lifecycle (Queued -> Running -> Completed | Cancelled), blocks in
//      Wait until a terminal state, and carries the one-shot cancel
//      signal. Atomic counters aggregate submitted/completed/failed/
//      cancelled totals, queue depth and mean latency.
//
// Ordering model
//
// Every submission is stamped with a sequence number from a single
// monotonically increasing counter; that counter is the only total-order
// synchronization point in the system. Dequeue order is strict
// (priority, sequence): a later Critical task overtakes an earlier Low
// one, while equal priorities are FIFO. Sequence numbers are never
// reused and never roll back, even when a submission is rejected.
//
// Cancellation model
//
// Cancellation is cooperative. TaskHandle.Cancel closes a one-shot
// signal that the executor races against completion; the scheduler stops
// waiting, marks the task Cancelled and moves on, while the task's own
// function observes its context and winds down on its own time. A task
// whose work has already completed when the signal fires is reported as
// completed, never retroactively cancelled, and a cancelled task is
// never retried. Side effects already performed are not rolled back.
//
// Error handling
//
// The scheduler distinguishes between two classes of errors:
//
//   - Task outcomes: failures, timeouts and panics inside the work func,
//     handled locally by the retry loop and surfaced through the handle
//   - Scheduler errors: submission rejected after shutdown began
//
// A task-level failure never escalates into a scheduler-level fault.
// Callers that keep no handle simply never learn an individual outcome;
// that is intentional fire-and-forget support.
//
// Intended use cases
//
// tsched is well suited for:
//
//   - In-process background work with urgency levels
//   - Workloads needing per-task deadlines and bounded retry
//   - Systems that must shut down without losing accepted work
//
// It is not a distributed scheduler: queued tasks live in memory and do
// not survive the process.
package tsched
