package pool

import (
	"context"
	"sync/atomic"
)

// ResultHandle is a one-shot slot holding the outcome of a submitted task.
// It is written exactly once, by the worker that finishes the task (or by the
// shutdown path for cancelled tasks), and may be read from any number of
// goroutines.
type ResultHandle[R any] struct {
	taskID    uint64
	outcome   Outcome[R]
	fulfilled atomic.Bool
	done      chan struct{}
}

func newResultHandle[R any](taskID uint64) *ResultHandle[R] {
	return &ResultHandle[R]{
		taskID: taskID,
		done:   make(chan struct{}),
	}
}

// fulfill stores the outcome and wakes all waiters. Only the first call wins;
// later calls are no-ops. Returns whether this call was the winning one.
func (h *ResultHandle[R]) fulfill(out Outcome[R]) bool {
	if !h.fulfilled.CompareAndSwap(false, true) {
		return false
	}
	h.outcome = out
	close(h.done)
	return true
}

// TaskID returns the submission sequence number of the task this handle
// tracks.
func (h *ResultHandle[R]) TaskID() uint64 {
	return h.taskID
}

// AwaitOutcome blocks until the task's outcome is available and returns it.
// Safe to call repeatedly and from multiple goroutines; every call returns
// the same outcome.
func (h *ResultHandle[R]) AwaitOutcome() Outcome[R] {
	<-h.done
	return h.outcome
}

// AwaitContext is AwaitOutcome with a deadline: it returns ctx.Err() if the
// context ends before the outcome arrives. The task itself is unaffected and
// the handle can still be awaited later.
func (h *ResultHandle[R]) AwaitContext(ctx context.Context) (Outcome[R], error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return Outcome[R]{}, ctx.Err()
	}
}

// Poll returns the outcome without blocking. The boolean reports whether the
// outcome was available; when false, the returned outcome is the zero value.
func (h *ResultHandle[R]) Poll() (Outcome[R], bool) {
	select {
	case <-h.done:
		return h.outcome, true
	default:
		return Outcome[R]{}, false
	}
}

// Done returns a channel closed when the outcome becomes available, for use
// in select statements alongside other events.
func (h *ResultHandle[R]) Done() <-chan struct{} {
	return h.done
}
