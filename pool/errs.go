package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned by Submit when the queue is at capacity and
	// the pool was configured with WithNonBlockingSubmit.
	ErrQueueFull = errors.New("pool: queue is full")

	// ErrPoolClosed is returned by Submit once shutdown has begun.
	ErrPoolClosed = errors.New("pool: pool is closed")

	// ErrTaskCancelled is carried by OutcomeCancelled outcomes for tasks
	// discarded during an immediate shutdown.
	ErrTaskCancelled = errors.New("pool: task cancelled before execution")
)

// ConfigError reports an invalid pool configuration detected at construction.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pool: invalid configuration: %s", e.Reason)
}

// AffinityWarning reports that a worker could not be pinned to its assigned
// CPU core. It is advisory: the worker runs unpinned. Collected warnings are
// available through Pool.Warnings.
type AffinityWarning struct {
	Worker int
	Core   int
	Cause  error
}

func (w *AffinityWarning) Error() string {
	return fmt.Sprintf("pool: worker %d could not be pinned to core %d: %v", w.Worker, w.Core, w.Cause)
}

func (w *AffinityWarning) Unwrap() error {
	return w.Cause
}
