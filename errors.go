package tsched

import "errors"

var (
	// ErrShuttingDown is returned by Submit once shutdown has been
	// initiated. Submissions must not be retried against this instance.
	ErrShuttingDown = errors.New("tsched: scheduler is shutting down")

	// ErrQueueFull is returned by TrySubmit when the ingestion channel
	// cannot accept the task without blocking.
	ErrQueueFull = errors.New("tsched: submit queue is full")

	// ErrNilWork is returned when a submitted Task has a nil Work func.
	ErrNilWork = errors.New("tsched: task work func is nil")

	// ErrInvalidPriority is returned for priorities outside the defined range.
	ErrInvalidPriority = errors.New("tsched: invalid priority")

	// ErrTaskTimeout is handed to OnTaskError when a task's final
	// outcome is a timeout, which carries no error of its own.
	ErrTaskTimeout = errors.New("tsched: task attempt timed out")
)
