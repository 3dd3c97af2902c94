// Package queue provides the pool's shared task queue: an unbounded FIFO
// guarded by a single mutex.
package queue

import (
	"sync"

	"github.com/eapache/queue"
)

// TaskQueue is a thread-safe unbounded FIFO of T.
//
// Push never fails and Pop never blocks; waiting for work is the caller's
// responsibility. Items pushed by a single goroutine are popped in the order
// they were pushed. Across goroutines the order is the order in which their
// Push calls acquired the lock.
type TaskQueue[T any] struct {
	mu    sync.Mutex
	items *queue.Queue
}

// New creates an empty TaskQueue.
func New[T any]() *TaskQueue[T] {
	return &TaskQueue[T]{
		items: queue.New(),
	}
}

// Push appends item to the tail of the queue.
func (q *TaskQueue[T]) Push(item T) {
	q.mu.Lock()
	q.items.Add(item)
	q.mu.Unlock()
}

// Pop removes and returns the head of the queue.
// It returns (zero, false) when the queue is empty.
func (q *TaskQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.items.Length() == 0 {
		return zero, false
	}

	item, ok := q.items.Remove().(T)
	if !ok {
		return zero, false
	}
	return item, true
}

// Len returns the number of queued items at the time of the call.
func (q *TaskQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}
