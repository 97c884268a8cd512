package queue

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	// Cache line size for padding to prevent false sharing
	cacheLinePadding = 128
	// Maximum spin attempts before yielding
	maxSpinAttempts = 10
	// Sleep applied once spinning and yielding both come up empty
	idleSleep = 50 * time.Microsecond
)

// mpmcSlot represents a single slot in the ring buffer
type mpmcSlot[E any] struct {
	// Sequence number for synchronization
	sequence uint64
	// The actual data
	value E
	// Padding to prevent false sharing between slots
	_ [cacheLinePadding - 16]byte
}

// mpmcQueue is the lock-free backend: a bounded multi-producer multi-consumer
// ring where each slot carries a sequence number that tells producers and
// consumers whose turn it is. Blocking operations spin, yield, then sleep;
// no mutex or channel is involved.
type mpmcQueue[E any] struct {
	ring []mpmcSlot[E]
	// Capacity mask (capacity - 1) for fast modulo
	mask uint64

	// Head and tail positions with padding to prevent false sharing
	_    [cacheLinePadding]byte
	head uint64
	_    [cacheLinePadding - 8]byte
	tail uint64
	_    [cacheLinePadding - 8]byte

	closed   atomic.Bool
	capacity int
}

func newMPMCQueue[E any](capacity int) *mpmcQueue[E] {
	capacity = nextPowerOfTwo(capacity)
	ring := make([]mpmcSlot[E], capacity)

	for i := range ring {
		ring[i].sequence = uint64(i) // #nosec G115 -- i is loop index within valid ring bounds
	}

	return &mpmcQueue[E]{
		ring:     ring,
		mask:     uint64(capacity - 1), // #nosec G115 -- capacity is validated positive
		capacity: capacity,
	}
}

func (q *mpmcQueue[E]) TrySend(e E) error {
	for {
		if q.closed.Load() {
			return ErrClosed
		}

		tail := atomic.LoadUint64(&q.tail)
		slot := &q.ring[tail&q.mask]
		seq := atomic.LoadUint64(&slot.sequence)
		diff := int64(seq) - int64(tail) // #nosec G115 -- intentional conversion for sequence comparison

		if diff == 0 {
			if atomic.CompareAndSwapUint64(&q.tail, tail, tail+1) {
				slot.value = e
				atomic.StoreUint64(&slot.sequence, tail+1)
				return nil
			}
			continue // lost the CAS race, reload
		}

		if diff < 0 {
			return ErrFull
		}
		// Stale view of tail; reload.
	}
}

func (q *mpmcQueue[E]) Send(e E) error {
	spinCount := 0
	for {
		err := q.TrySend(e)
		if err != ErrFull {
			return err
		}

		spinCount++
		switch {
		case spinCount <= maxSpinAttempts:
			// keep spinning
		case spinCount <= 2*maxSpinAttempts:
			runtime.Gosched()
		default:
			time.Sleep(idleSleep)
		}
	}
}

func (q *mpmcQueue[E]) TryRecv() (E, bool) {
	var zero E
	for {
		head := atomic.LoadUint64(&q.head)
		slot := &q.ring[head&q.mask]
		seq := atomic.LoadUint64(&slot.sequence)
		diff := int64(seq) - int64(head+1) // #nosec G115 -- intentional conversion for sequence comparison

		if diff == 0 {
			if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
				e := slot.value
				slot.value = zero
				// Release the slot to producers: next expected sequence
				// for this slot is head + capacity.
				atomic.StoreUint64(&slot.sequence, head+q.mask+1)
				return e, true
			}
			continue
		}

		if diff < 0 {
			return zero, false
		}
	}
}

func (q *mpmcQueue[E]) Recv() (E, error) {
	spinCount := 0
	for {
		if e, ok := q.TryRecv(); ok {
			return e, nil
		}

		if q.drained() {
			var zero E
			return zero, ErrClosed
		}

		spinCount++
		switch {
		case spinCount <= maxSpinAttempts:
			// keep spinning
		case spinCount <= 2*maxSpinAttempts:
			runtime.Gosched()
		default:
			time.Sleep(idleSleep)
		}
	}
}

// drained reports closed-and-empty. A producer that has claimed a tail slot
// but not yet published its sequence keeps tail ahead of head, so the element
// in flight is never missed.
func (q *mpmcQueue[E]) drained() bool {
	if !q.closed.Load() {
		return false
	}
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	return head >= tail
}

func (q *mpmcQueue[E]) Close() {
	q.closed.Store(true)
}

// Len returns the approximate number of items in the queue
func (q *mpmcQueue[E]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)

	if tail > head {
		return int(tail - head) // #nosec G115 -- tail > head guarantees result fits in int
	}
	return 0
}

func (q *mpmcQueue[E]) Cap() int { return q.capacity }
