package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrWaitCancelled is returned by Pop when CancelWait wakes the caller
// before an item arrives.
var ErrWaitCancelled = errors.New("queue: wait cancelled")

// Queue is a thread-safe unbounded FIFO queue. The ring buffer doubles
// its capacity when it reaches 70% full, so Push never blocks.
type Queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []T
	head     int // read position
	tail     int // write position
	count    int
	capacity int

	// Wait generation. CancelWait bumps it; a Pop that entered under an
	// older generation returns ErrWaitCancelled instead of an item.
	gen uint64

	// Stats
	totalPushed int64
	totalPopped int64
	resizeCount int
}

// New creates a queue with the given initial capacity.
func New[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &Queue[T]{
		buf:      make([]T, initialCapacity),
		capacity: initialCapacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item. Grows the buffer if at 70% capacity.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	threshold := (q.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if q.count+1 >= threshold {
		q.grow()
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.totalPushed++

	q.cond.Signal()
}

// Pop removes and returns the oldest item. Blocks until an item is
// available or the wait is cancelled, in which case it returns
// ErrWaitCancelled and leaves the queue contents untouched.
func (q *Queue[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	start := q.gen
	for q.count == 0 && q.gen == start {
		q.cond.Wait()
	}

	if q.gen != start {
		var zero T
		return zero, ErrWaitCancelled
	}

	return q.popLocked(), nil
}

// PopCtx is Pop with a context. It returns the context error as soon as
// ctx is done, even if ctx was already done when the wait would have
// started. CancelWait still wakes it with ErrWaitCancelled.
func (q *Queue[T]) PopCtx(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	start := q.gen
	for q.count == 0 && q.gen == start && ctx.Err() == nil {
		q.cond.Wait()
	}

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if q.gen != start {
		return zero, ErrWaitCancelled
	}

	return q.popLocked(), nil
}

// popLocked removes the head item. Must be called with lock held and
// count > 0.
func (q *Queue[T]) popLocked() T {
	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalPopped++
	return item
}

// TryPop attempts to pop without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}

	return q.popLocked(), true
}

// CancelWait wakes every Pop currently blocked on the queue with
// ErrWaitCancelled. Idempotent in effect: with no blocked waiters it
// does nothing observable, and queued items remain queued.
func (q *Queue[T]) CancelWait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.gen++
	q.cond.Broadcast()
}

// Len returns the current number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the current capacity of the ring buffer.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Count:       q.count,
		Capacity:    q.capacity,
		TotalPushed: q.totalPushed,
		TotalPopped: q.totalPopped,
		ResizeCount: q.resizeCount,
	}
}

// Stats contains queue statistics.
type Stats struct {
	Count       int
	Capacity    int
	TotalPushed int64
	TotalPopped int64
	ResizeCount int
}

// grow doubles the ring capacity. Must be called with lock held.
func (q *Queue[T]) grow() {
	newCapacity := q.capacity * 2
	newBuf := make([]T, newCapacity)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity = newCapacity
	q.resizeCount++
}
