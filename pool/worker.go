package pool

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/utkarsh5026/taskpool/internal/cpu"
	"github.com/utkarsh5026/taskpool/internal/retry"
)

// task is the envelope carried through the queue: the input, its submission
// sequence number, and the handle its outcome is delivered through.
type task[T, R any] struct {
	input  T
	seq    uint64
	handle *ResultHandle[R]
}

type panicInfo struct {
	value any
	stack []byte
}

// worker is the main loop of one pool worker. It signals readiness on ready
// (nil, or an AffinityWarning when pinning failed), then pulls tasks until
// the queue closes and drains. Each worker owns its backoff strategy, so the
// stateful strategies never need locking.
func (p *Pool[T, R]) worker(id int, ready chan<- error) error {
	if p.plan != nil {
		core := p.plan.CoreFor(id)
		cleanup, err := cpu.SetupWorkerAffinity(core)
		defer cleanup()
		if err != nil {
			ready <- &AffinityWarning{Worker: id, Core: core, Cause: err}
		} else {
			ready <- nil
		}
	} else {
		ready <- nil
	}

	backoff := p.conf.buildBackoff()
	log := p.log.WithField("worker", id)
	log.Debug("worker started")

	for {
		t, err := p.q.Recv()
		if err != nil {
			log.Debug("worker exiting")
			return nil
		}

		p.stats.active.Add(1)
		out := p.execute(t, backoff)
		p.stats.active.Add(-1)

		p.deliver(t, out)
	}
}

// deliver fulfills the task's handle and bumps the outcome counters. The
// handle decides races with the cancellation path; counters only move for
// the winning delivery.
func (p *Pool[T, R]) deliver(t *task[T, R], out Outcome[R]) {
	if !t.handle.fulfill(out) {
		return
	}
	switch out.Kind {
	case OutcomeSuccess:
		p.stats.succeeded.Add(1)
	case OutcomeFailure:
		p.stats.failed.Add(1)
	case OutcomePanic:
		p.stats.panicked.Add(1)
		p.log.WithField("task", t.seq).WithError(out.Err).Error("task panicked")
	case OutcomeCancelled:
		p.stats.cancelled.Add(1)
	}
}

// defaultRetryable is the classifier used when none is configured: errors are
// retried, panics are not.
func defaultRetryable(err error, panicked bool) bool {
	return !panicked
}

// execute runs one task to a terminal outcome, including the in-place retry
// loop. The attempt that produced the returned outcome is counted in
// Attempts.
func (p *Pool[T, R]) execute(t *task[T, R], backoff retry.Strategy) Outcome[R] {
	ctx := p.conf.baseCtx

	maxAttempts := 1
	classify := defaultRetryable
	if rc := p.conf.retry; rc != nil {
		maxAttempts = rc.maxAttempts
		if rc.classify != nil {
			classify = rc.classify
		}
	}
	if backoff != nil {
		backoff.Reset()
	}

	for attempt := 1; ; attempt++ {
		if p.conf.rateLimiter != nil {
			if err := p.conf.rateLimiter.Wait(ctx); err != nil {
				return Outcome[R]{Kind: OutcomeFailure, Err: err, Attempts: attempt, TaskID: t.seq}
			}
		}

		value, err, pi := runGuarded(ctx, p.processFn, t.input)

		var out Outcome[R]
		switch {
		case pi != nil:
			out = Outcome[R]{
				Kind:     OutcomePanic,
				Err:      fmt.Errorf("task panic: %v\nstack trace:\n%s", pi.value, pi.stack),
				Attempts: attempt,
				TaskID:   t.seq,
			}
		case err != nil:
			out = Outcome[R]{Kind: OutcomeFailure, Err: err, Attempts: attempt, TaskID: t.seq}
		default:
			return Outcome[R]{Kind: OutcomeSuccess, Value: value, Attempts: attempt, TaskID: t.seq}
		}

		if attempt >= maxAttempts || !classify(out.Err, pi != nil) {
			return out
		}

		p.stats.retries.Add(1)
		if p.conf.onRetry != nil {
			p.conf.onRetry(t.seq, attempt, out.Err)
		}

		if backoff != nil {
			if delay := backoff.NextDelay(attempt-1, out.Err); delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return Outcome[R]{Kind: OutcomeFailure, Err: ctx.Err(), Attempts: attempt, TaskID: t.seq}
				}
			}
		}
	}
}

// runGuarded invokes the process function with panic capture. A panic is
// reported through pi together with the goroutine's stack at recovery time.
func runGuarded[T, R any](ctx context.Context, fn ProcessFunc[T, R], input T) (result R, err error, pi *panicInfo) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			pi = &panicInfo{value: r, stack: buf[:n]}
		}
	}()
	result, err = fn(ctx, input)
	return
}
