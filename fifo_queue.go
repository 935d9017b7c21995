// fifo_queue.go
package tsched

const (
	initialFifoCapacity = 1024
)

// fifoQueue implements a simple first-in-first-out dispatcher queue.
//
// It satisfies the schedQueue interface used by the dispatcher. Tasks are
// processed strictly in submission order. No priorities, no reordering.
// Unlike a fixed ring, the buffer doubles when full: tasks carry caller
// handles that must eventually see a terminal state, so dropping on
// overflow is not an option. Backpressure is applied upstream by the
// bounded submit channel.
type fifoQueue struct {
	buf        []*queuedTask // circular buffer
	head, tail int           // read/write indices
	size       int           // number of tasks currently buffered
	capacity   int
}

// newFifoQueue creates a FIFO queue with the given initial capacity.
func newFifoQueue(capacity int) *fifoQueue {
	return &fifoQueue{
		buf:      make([]*queuedTask, capacity),
		capacity: capacity,
	}
}

// Len returns the number of tasks currently waiting in the queue.
func (q *fifoQueue) Len() int { return q.size }

// Push inserts a task at the tail, growing the buffer when full.
func (q *fifoQueue) Push(qt *queuedTask) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = qt
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest task.
//
// If the queue is empty, returns nil and false.
func (q *fifoQueue) Pop() (*queuedTask, bool) {
	if q.size == 0 {
		return nil, false
	}
	qt := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return qt, true
}

// grow doubles the buffer, unwrapping the circular layout in the process.
func (q *fifoQueue) grow() {
	next := make([]*queuedTask, q.capacity*2)
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)%q.capacity]
	}
	q.buf = next
	q.head = 0
	q.tail = q.size
	q.capacity = len(next)
}
