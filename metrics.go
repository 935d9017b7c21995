package tsched

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Metrics is a lock-free set of scheduler counters backed by atomics.
//
// Writes happen on hot paths (submit, terminal transitions); reads are
// intended for cold-path observation. Counters are independently mutable:
// a reader may observe completed incremented slightly before the matching
// latency update. That is acceptable for monitoring, and once the queue
// is fully drained Submitted == Completed + Failed + Cancelled holds.
type Metrics struct {
	// submitted is the total number of accepted submissions.
	submitted atomic.Uint64

	_ [56]byte // padding to avoid false sharing with worker-side counters

	// completed counts tasks whose final outcome was Success.
	completed atomic.Uint64

	// failed counts tasks whose retries were exhausted on Failure or Timeout.
	failed atomic.Uint64

	// cancelled counts tasks that ended Cancelled.
	cancelled atomic.Uint64

	// queued is the current number of tasks accepted but not yet picked
	// up by a worker (submit channel plus dispatcher queue).
	queued atomic.Int64

	// totalLatency accumulates submission-to-success latency, in
	// nanoseconds, for completed tasks only.
	totalLatency atomic.Int64
}

func (m *Metrics) incSubmitted() { m.submitted.Add(1); m.queued.Add(1) }
func (m *Metrics) decQueued()    { m.queued.Add(-1) }

// observeTerminal records one terminal transition.
func (m *Metrics) observeTerminal(kind OutcomeKind, latency time.Duration) {
	switch kind {
	case OutcomeSuccess:
		m.completed.Add(1)
		m.totalLatency.Add(int64(latency))
	case OutcomeFailure, OutcomeTimeout:
		m.failed.Add(1)
	case OutcomeCancelled:
		m.cancelled.Add(1)
	}
}

// Submitted returns the total number of accepted submissions.
func (m *Metrics) Submitted() uint64 { return m.submitted.Load() }

// Completed returns the number of tasks that ended in Success.
func (m *Metrics) Completed() uint64 { return m.completed.Load() }

// Failed returns the number of tasks that exhausted their retries.
func (m *Metrics) Failed() uint64 { return m.failed.Load() }

// Cancelled returns the number of tasks that ended Cancelled.
func (m *Metrics) Cancelled() uint64 { return m.cancelled.Load() }

// QueueDepth returns the current number of pending tasks.
func (m *Metrics) QueueDepth() int64 { return m.queued.Load() }

// MetricsSnapshot is a point-in-time, eventually consistent view of the
// scheduler counters.
type MetricsSnapshot struct {
	Submitted  uint64
	Completed  uint64
	Failed     uint64
	Cancelled  uint64
	QueueDepth int64
	AvgLatency time.Duration
}

// Snapshot reads all counters. The result is consistent enough for
// monitoring, not linearizable.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Submitted:  m.submitted.Load(),
		Completed:  m.completed.Load(),
		Failed:     m.failed.Load(),
		Cancelled:  m.cancelled.Load(),
		QueueDepth: m.queued.Load(),
	}
	if s.Completed > 0 {
		s.AvgLatency = time.Duration(uint64(m.totalLatency.Load()) / s.Completed)
	}
	return s
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"submitted=%d completed=%d failed=%d cancelled=%d queue_depth=%d avg_latency=%s",
		s.Submitted, s.Completed, s.Failed, s.Cancelled, s.QueueDepth, s.AvgLatency,
	)
}
