package queue

import (
	"runtime"
	"sync/atomic"
	"time"
)

// parkTimeout bounds how long a parked goroutine waits before re-polling the
// ring. The single-token notify channels can lose a wakeup under contention;
// the timeout turns that into bounded extra latency instead of a stall.
const parkTimeout = time.Millisecond

// hybridQueue keeps the lock-free ring on the fast path but parks idle
// goroutines on notification channels instead of burning CPU. Producers
// signal notifyC after a send, consumers signal spaceC after a receive, and
// closeC wakes everyone on shutdown.
type hybridQueue[E any] struct {
	ring *mpmcQueue[E]

	// Notification channels (BUFFERED, NEVER CLOSED)
	notifyC chan struct{}
	spaceC  chan struct{}

	// Shutdown channel (UNBUFFERED, CLOSED ON SHUTDOWN)
	closeC chan struct{}
	closed atomic.Bool
}

func newHybridQueue[E any](capacity int) *hybridQueue[E] {
	return &hybridQueue[E]{
		ring:    newMPMCQueue[E](capacity),
		notifyC: make(chan struct{}, 1),
		spaceC:  make(chan struct{}, 1),
		closeC:  make(chan struct{}),
	}
}

func (q *hybridQueue[E]) signal(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (q *hybridQueue[E]) TrySend(e E) error {
	err := q.ring.TrySend(e)
	if err == nil {
		q.signal(q.notifyC)
	}
	return err
}

func (q *hybridQueue[E]) Send(e E) error {
	spinCount := 0
	for {
		err := q.TrySend(e)
		if err != ErrFull {
			return err
		}

		spinCount++
		if spinCount <= maxSpinAttempts {
			runtime.Gosched()
			continue
		}

		select {
		case <-q.spaceC:
		case <-q.closeC:
			return ErrClosed
		case <-time.After(parkTimeout):
		}
		spinCount = 0
	}
}

func (q *hybridQueue[E]) TryRecv() (E, bool) {
	e, ok := q.ring.TryRecv()
	if ok {
		q.signal(q.spaceC)
		// Wake chaining: if more elements remain, pass the token on so a
		// second parked consumer is not left waiting on a consumed signal.
		if q.ring.Len() > 0 {
			q.signal(q.notifyC)
		}
	}
	return e, ok
}

func (q *hybridQueue[E]) Recv() (E, error) {
	spinCount := 0
	for {
		if e, ok := q.TryRecv(); ok {
			return e, nil
		}

		if q.ring.drained() {
			var zero E
			return zero, ErrClosed
		}

		spinCount++
		if spinCount <= maxSpinAttempts {
			runtime.Gosched()
			continue
		}

		select {
		case <-q.notifyC:
		case <-q.closeC:
			// Closed: loop once more to drain, drained() exits.
		case <-time.After(parkTimeout):
		}
		spinCount = 0
	}
}

func (q *hybridQueue[E]) Close() {
	if q.closed.CompareAndSwap(false, true) {
		q.ring.Close()
		close(q.closeC)
	}
}

func (q *hybridQueue[E]) Len() int { return q.ring.Len() }

func (q *hybridQueue[E]) Cap() int { return q.ring.Cap() }
