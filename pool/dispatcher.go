package pool

import (
	"sync"

	"github.com/utkarsh5026/taskpool/internal/queue"
)

// dispatcher funnels submissions into the queue and arbitrates the race
// between submit and shutdown: once close wins, no task can reach the queue,
// so a worker drain after close is guaranteed to see every accepted task.
type dispatcher[E any] struct {
	q           queue.Queue[E]
	blockOnFull bool

	mu     sync.RWMutex
	closed bool
}

func newDispatcher[E any](q queue.Queue[E], blockOnFull bool) *dispatcher[E] {
	return &dispatcher[E]{q: q, blockOnFull: blockOnFull}
}

// submit enqueues under a read lock. Blocking sends hold the lock while
// waiting for space; that is deliberate: close takes the write lock and so
// cannot complete until every in-flight submission has landed in the queue.
func (d *dispatcher[E]) submit(e E) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrPoolClosed
	}

	if !d.blockOnFull {
		switch err := d.q.TrySend(e); err {
		case nil:
			return nil
		case queue.ErrFull:
			return ErrQueueFull
		default:
			return ErrPoolClosed
		}
	}

	if err := d.q.Send(e); err != nil {
		return ErrPoolClosed
	}
	return nil
}

// close rejects future submissions, waits out in-flight ones, then closes the
// queue so workers drain and exit. Idempotent.
func (d *dispatcher[E]) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.q.Close()
}
