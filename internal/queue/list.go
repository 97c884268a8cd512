package queue

import "sync"

const (
	defaultListCap      = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// listQueue is the lock-based backend: a single mutex guarding a slice FIFO,
// with condition variables for the two wait directions. capacity 0 means
// unbounded, in which case Send never waits for space.
type listQueue[E any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []E
	capacity int
	closed   bool
}

func newListQueue[E any](capacity int) *listQueue[E] {
	q := &listQueue[E]{
		items:    make([]E, 0, defaultListCap),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

func (q *listQueue[E]) TrySend(e E) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return ErrFull
	}

	q.items = append(q.items, e)
	q.notEmpty.Signal()
	return nil
}

func (q *listQueue[E]) Send(e E) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.capacity > 0 && len(q.items) >= q.capacity {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, e)
	q.notEmpty.Signal()
	return nil
}

func (q *listQueue[E]) Recv() (E, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		var zero E
		return zero, ErrClosed
	}

	return q.popLocked(), nil
}

func (q *listQueue[E]) TryRecv() (E, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero E
		return zero, false
	}
	return q.popLocked(), true
}

func (q *listQueue[E]) popLocked() E {
	var zero E
	e := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = zero
	q.items = q.items[1:]
	q.maybeCompactLocked()
	q.notFull.Signal()
	return e
}

func (q *listQueue[E]) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]E, 0, defaultListCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultListCap), n)
	newSlice := make([]E, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

func (q *listQueue[E]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

func (q *listQueue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *listQueue[E]) Cap() int { return q.capacity }
