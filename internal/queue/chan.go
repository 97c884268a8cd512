package queue

import "sync/atomic"

// chanQueue adapts a buffered Go channel to the Queue contract. The channel
// itself is never closed; closeC signals closure so that senders fail fast
// while receivers drain whatever is still buffered.
type chanQueue[E any] struct {
	ch     chan E
	closeC chan struct{}
	closed atomic.Bool
}

func newChanQueue[E any](capacity int) *chanQueue[E] {
	return &chanQueue[E]{
		ch:     make(chan E, capacity),
		closeC: make(chan struct{}),
	}
}

func (q *chanQueue[E]) TrySend(e E) error {
	if q.closed.Load() {
		return ErrClosed
	}

	select {
	case q.ch <- e:
		return nil
	default:
		return ErrFull
	}
}

func (q *chanQueue[E]) Send(e E) error {
	if q.closed.Load() {
		return ErrClosed
	}

	select {
	case q.ch <- e:
		return nil
	case <-q.closeC:
		return ErrClosed
	}
}

func (q *chanQueue[E]) Recv() (E, error) {
	// Fast path: buffered element, no closure check needed.
	select {
	case e := <-q.ch:
		return e, nil
	default:
	}

	select {
	case e := <-q.ch:
		return e, nil
	case <-q.closeC:
		// Closed: drain anything that landed before the close won the race.
		select {
		case e := <-q.ch:
			return e, nil
		default:
			var zero E
			return zero, ErrClosed
		}
	}
}

func (q *chanQueue[E]) TryRecv() (E, bool) {
	select {
	case e := <-q.ch:
		return e, true
	default:
		var zero E
		return zero, false
	}
}

func (q *chanQueue[E]) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.closeC)
	}
}

func (q *chanQueue[E]) Len() int { return len(q.ch) }

func (q *chanQueue[E]) Cap() int { return cap(q.ch) }
