package tsched

import (
	"context"
)

// Scheduler is the facade coordinating submission, cancellation,
// shutdown and metrics for a pool of workers.
type Scheduler struct {
	pool    *pool
	metrics *Metrics
	cron    *cronRunner
}

// New creates a scheduler with the given options and starts its workers.
func New(opts Options) *Scheduler {
	m := &Metrics{}
	s := &Scheduler{
		pool:    newPool(opts, m),
		metrics: m,
	}
	s.cron = newCronRunner(s)
	return s
}

// Submit enqueues a task and returns its handle immediately; it never
// waits for execution. When the ingestion channel is full, Submit blocks
// until space frees up (backpressure). After shutdown has been initiated
// it returns ErrShuttingDown.
func (s *Scheduler) Submit(task Task, prio Priority, cfg TaskConfig) (*TaskHandle, error) {
	return s.pool.enqueue(task, prio, cfg, true)
}

// TrySubmit is the non-blocking variant of Submit: instead of waiting on
// a full ingestion channel it returns ErrQueueFull.
func (s *Scheduler) TrySubmit(task Task, prio Priority, cfg TaskConfig) (*TaskHandle, error) {
	return s.pool.enqueue(task, prio, cfg, false)
}

// Shutdown gracefully stops the scheduler: new submissions are rejected
// with ErrShuttingDown, everything already accepted is drained through
// the workers to a terminal state, and the call returns once the
// dispatcher and all workers have exited. ctx bounds only how long the
// caller waits; an early ctx error does not abort the drain.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.cron.stop()
	return s.pool.shutdown(ctx)
}

// Stop is Shutdown without a deadline.
func (s *Scheduler) Stop() { _ = s.Shutdown(context.Background()) }

// Metrics returns an eventually consistent snapshot of the scheduler
// counters.
func (s *Scheduler) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// ActiveWorkers returns the number of workers currently running a task.
func (s *Scheduler) ActiveWorkers() int32 { return s.pool.activeWorkers.Load() }

// QueueDepth returns the number of tasks accepted but not yet picked up
// by a worker.
func (s *Scheduler) QueueDepth() int64 { return s.metrics.QueueDepth() }

// OnTaskError registers a callback receiving the reason for every task
// that ends in a terminal Failure or Timeout. Must be called before any
// submissions.
func (s *Scheduler) OnTaskError(fn func(error)) { s.pool.OnTaskError = fn }

// OnInternalError registers a callback for non-task failures, such as a
// periodic trigger that could not submit. Must be called before any
// submissions.
func (s *Scheduler) OnInternalError(fn func(error)) { s.pool.OnInternalError = fn }
