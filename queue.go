package tsched

// schedQueue defines the common behavior of the internal dispatcher queues.
//
// A queue stores pending tasks and decides which one is dispatched next.
// The dispatcher goroutine is the queue's only owner: pushes and pops all
// happen there, so implementations need no internal locking. Concurrent
// producers are funneled through the pool's submit channel before they
// ever reach the queue.
type schedQueue interface {

	// Push inserts a newly submitted task into the queue.
	Push(qt *queuedTask)

	// Pop retrieves and removes the next task to dispatch.
	//
	// It returns the selected task and a boolean flag indicating
	// whether a task was available. If false, the queue is empty.
	Pop() (*queuedTask, bool)

	// Len returns the current number of tasks waiting in the queue.
	Len() int
}

func (p *pool) newQueue() schedQueue {
	switch p.opts.Queue {
	case QueuePriority:
		return newPrioQueue(prioCap)
	case QueueFifo:
		return newFifoQueue(initialFifoCapacity)
	default:
		return newPrioQueue(prioCap)
	}
}
