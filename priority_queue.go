package tsched

import (
	"container/heap"
)

const (
	prioCap = 2048
)

// prioQueue is the default dispatcher queue: a binary min-heap ordered by
// (priority, sequence). Priorities never age or change after insertion,
// so the ordering invariant is exact: for any two queued tasks A and B,
// A is popped before B iff A.outranks(B). Push and Pop are O(log n).
type prioQueue struct {
	pq taskHeap
}

// newPrioQueue creates a priority queue preallocated to the given capacity.
func newPrioQueue(capacity int) *prioQueue {
	q := &prioQueue{}
	q.pq = make(taskHeap, 0, capacity)
	heap.Init(&q.pq)
	return q
}

// Push inserts a task into the heap.
func (p *prioQueue) Push(qt *queuedTask) {
	heap.Push(&p.pq, qt)
}

// Pop removes and returns the most urgent task: the one with the smallest
// (priority, sequence) pair. Returns false when the heap is empty.
func (p *prioQueue) Pop() (*queuedTask, bool) {
	if p.pq.Len() == 0 {
		return nil, false
	}
	qt := heap.Pop(&p.pq).(*queuedTask)
	return qt, true
}

// Len returns the number of tasks currently stored in the queue.
func (p *prioQueue) Len() int {
	return p.pq.Len()
}

// taskHeap — min-heap on (priority, sequence)
type taskHeap []*queuedTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	return h[i].outranks(h[j])
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*queuedTask))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	qt := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return qt
}
