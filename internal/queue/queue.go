// Package queue provides the task conduit between submitters and workers.
//
// All backends satisfy the same contract: elements are delivered to at most
// one receiver, nothing is dropped while the queue is open, and enqueue order
// is preserved per producer. The engine above is written against Queue only;
// backends differ solely in their internal synchronization strategy.
package queue

import "errors"

var (
	ErrFull   = errors.New("queue is full")
	ErrClosed = errors.New("queue is closed")
)

// Backend identifies one of the interchangeable queue implementations.
type Backend int

const (
	// BackendChan is the default: a buffered Go channel.
	BackendChan Backend = iota
	// BackendMPMC is a lock-free ring buffer with per-slot sequence numbers.
	BackendMPMC
	// BackendList is a mutex+condvar slice FIFO; the only truly unbounded backend.
	BackendList
	// BackendHybrid is a lock-free ring fast path with channel-based parking.
	BackendHybrid
)

func (b Backend) String() string {
	switch b {
	case BackendChan:
		return "chan"
	case BackendMPMC:
		return "mpmc"
	case BackendList:
		return "list"
	case BackendHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Queue is an ordered, possibly bounded conduit of elements with cloneable
// send access and any number of receivers.
type Queue[E any] interface {
	// TrySend enqueues without blocking. Returns ErrFull only when the queue
	// is bounded and at capacity, ErrClosed after Close.
	TrySend(e E) error

	// Send enqueues, blocking until space is available or the queue closes.
	Send(e E) error

	// Recv dequeues, blocking until an element arrives. After Close it keeps
	// draining queued elements and returns ErrClosed only once empty.
	Recv() (E, error)

	// TryRecv dequeues without blocking.
	TryRecv() (E, bool)

	// Close rejects further sends. Queued elements remain receivable.
	Close()

	// Len is the approximate number of queued elements.
	Len() int

	// Cap is the capacity, or 0 when unbounded.
	Cap() int
}

// New builds a queue of the requested backend. capacity <= 0 requests an
// unbounded queue; since neither a Go channel nor a fixed ring can represent
// one, unbounded requests always get the list backend.
func New[E any](b Backend, capacity int) Queue[E] {
	if capacity <= 0 {
		return newListQueue[E](0)
	}

	switch b {
	case BackendMPMC:
		return newMPMCQueue[E](capacity)
	case BackendList:
		return newListQueue[E](capacity)
	case BackendHybrid:
		return newHybridQueue[E](capacity)
	case BackendChan:
		fallthrough
	default:
		return newChanQueue[E](capacity)
	}
}

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}
