package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/taskpool/internal/cpu"
	"github.com/utkarsh5026/taskpool/internal/queue"
)

// ProcessFunc is the function every worker applies to submitted inputs.
type ProcessFunc[T, R any] func(ctx context.Context, input T) (R, error)

// TaskFunc is a self-contained unit of work, for pools built with NewFunc.
type TaskFunc[R any] func(ctx context.Context) (R, error)

// State is the lifecycle phase of a pool. Transitions are one-way:
// Created -> Running -> Draining -> Terminated.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Pool is a fixed-size worker pool processing inputs of type T into results
// of type R. All methods are safe for concurrent use.
type Pool[T, R any] struct {
	conf      *config
	processFn ProcessFunc[T, R]
	q         queue.Queue[*task[T, R]]
	disp      *dispatcher[*task[T, R]]
	plan      *cpu.Plan
	log       *logrus.Entry

	seq      atomic.Uint64
	state    atomic.Int32
	stats    counters
	done     chan struct{}
	warnings []error

	shutdownMu sync.Mutex
	termOnce   sync.Once
}

// New builds and starts a pool. All workers are spawned and have reported
// readiness before New returns; affinity pinning failures do not fail
// construction and are retrievable through Warnings. Configuration errors
// return a *ConfigError.
func New[T, R any](processFn ProcessFunc[T, R], opts ...Option) (*Pool[T, R], error) {
	if processFn == nil {
		return nil, &ConfigError{Reason: "process function must not be nil"}
	}

	cfg := newConfig(opts...)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	q := queue.New[*task[T, R]](cfg.backend, cfg.queueCapacity())
	p := &Pool[T, R]{
		conf:      cfg,
		processFn: processFn,
		q:         q,
		disp:      newDispatcher(q, cfg.blockOnFull),
		log:       cfg.logger.WithField("component", "pool"),
		done:      make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))

	if cfg.pinWorkers {
		p.plan = cpu.NewPlan(cfg.affinity)
	}

	ready := make(chan error, cfg.workerCount)
	g := new(errgroup.Group)
	for i := 0; i < cfg.workerCount; i++ {
		i := i
		g.Go(func() error {
			return p.worker(i, ready)
		})
	}
	go func() {
		_ = g.Wait()
		close(p.done)
	}()

	for i := 0; i < cfg.workerCount; i++ {
		if warn := <-ready; warn != nil {
			p.warnings = append(p.warnings, warn)
			p.log.WithError(warn).Warn("worker running unpinned")
		}
	}

	p.state.Store(int32(StateRunning))
	p.log.WithFields(logrus.Fields{
		"workers":  cfg.workerCount,
		"backend":  cfg.backend.String(),
		"capacity": q.Cap(),
	}).Debug("pool running")
	return p, nil
}

// NewFunc builds a pool whose tasks are closures, removing the need for a
// shared process function.
func NewFunc[R any](opts ...Option) (*Pool[TaskFunc[R], R], error) {
	run := func(ctx context.Context, fn TaskFunc[R]) (R, error) {
		return fn(ctx)
	}
	return New(run, opts...)
}

// Submit hands an input to the pool and returns a handle to its eventual
// outcome. With the default blocking policy it waits for queue space; with
// WithNonBlockingSubmit it returns ErrQueueFull instead. After shutdown has
// begun it returns ErrPoolClosed.
func (p *Pool[T, R]) Submit(input T) (*ResultHandle[R], error) {
	if p.State() != StateRunning {
		return nil, ErrPoolClosed
	}

	seq := p.seq.Add(1)
	t := &task[T, R]{
		input:  input,
		seq:    seq,
		handle: newResultHandle[R](seq),
	}
	if err := p.disp.submit(t); err != nil {
		return nil, err
	}

	p.stats.submitted.Add(1)
	return t.handle, nil
}

// State returns the pool's current lifecycle phase.
func (p *Pool[T, R]) State() State {
	return State(p.state.Load())
}

// Warnings returns the advisory conditions collected at startup, currently
// affinity pinning failures. The slice is a copy.
func (p *Pool[T, R]) Warnings() []error {
	out := make([]error, len(p.warnings))
	copy(out, p.warnings)
	return out
}

// ShutdownGraceful stops accepting submissions, lets the workers drain every
// queued task (retries included), and returns once all of them are done.
// Idempotent; concurrent calls all block until termination.
func (p *Pool[T, R]) ShutdownGraceful() error {
	return p.shutdown(false)
}

// ShutdownImmediate stops accepting submissions and discards tasks no worker
// has picked up yet, fulfilling their handles with OutcomeCancelled. Tasks
// already executing still run to completion and deliver normally.
func (p *Pool[T, R]) ShutdownImmediate() error {
	return p.shutdown(true)
}

// Close implements io.Closer as a graceful shutdown.
func (p *Pool[T, R]) Close() error {
	return p.shutdown(false)
}

func (p *Pool[T, R]) shutdown(immediate bool) error {
	p.shutdownMu.Lock()
	if p.State() >= StateDraining {
		p.shutdownMu.Unlock()
		p.awaitTermination()
		return nil
	}

	p.state.Store(int32(StateDraining))
	p.log.WithField("immediate", immediate).Debug("pool draining")
	p.disp.close()

	if immediate {
		p.cancelQueued()
	}
	p.shutdownMu.Unlock()

	p.awaitTermination()
	return nil
}

// cancelQueued pulls whatever is still queued and fulfills it as cancelled.
// It races with workers draining the same queue; the handle's one-shot
// fulfill makes the race benign, each task lands exactly one outcome.
func (p *Pool[T, R]) cancelQueued() {
	n := 0
	for {
		t, ok := p.q.TryRecv()
		if !ok {
			break
		}
		out := Outcome[R]{Kind: OutcomeCancelled, Err: ErrTaskCancelled, TaskID: t.seq}
		if t.handle.fulfill(out) {
			p.stats.cancelled.Add(1)
			n++
		}
	}
	if n > 0 {
		p.log.WithField("cancelled", n).Info("discarded queued tasks")
	}
}

func (p *Pool[T, R]) awaitTermination() {
	<-p.done
	p.termOnce.Do(func() {
		p.state.Store(int32(StateTerminated))
		p.log.Debug("pool terminated")
	})
}
