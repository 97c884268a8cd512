package pool

import "sync/atomic"

// counters are the pool's live counters, bumped lock-free by workers and the
// submit/shutdown paths.
type counters struct {
	submitted atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	cancelled atomic.Uint64
	retries   atomic.Uint64
	active    atomic.Int64
}

// Stats is a point-in-time snapshot of the pool. Individual fields are read
// atomically but the snapshot as a whole is not; counts taken while tasks
// are in flight may be momentarily inconsistent with each other.
type Stats struct {
	// State is the lifecycle phase at snapshot time.
	State State
	// Workers is the configured worker count.
	Workers int
	// QueueDepth is the approximate number of tasks waiting in the queue.
	QueueDepth int
	// Active is the number of tasks currently executing.
	Active int64

	// Submitted counts tasks accepted by Submit.
	Submitted uint64
	// Succeeded, Failed, Panicked and Cancelled count terminal outcomes by kind.
	Succeeded uint64
	Failed    uint64
	Panicked  uint64
	Cancelled uint64
	// Retries counts individual re-executions, not tasks.
	Retries uint64
}

// Completed is the number of tasks that reached a terminal outcome.
func (s Stats) Completed() uint64 {
	return s.Succeeded + s.Failed + s.Panicked + s.Cancelled
}

// Stats snapshots the pool's counters. Valid at any lifecycle phase,
// including after termination, where it serves as the pool's final tally.
func (p *Pool[T, R]) Stats() Stats {
	return Stats{
		State:      p.State(),
		Workers:    p.conf.workerCount,
		QueueDepth: p.q.Len(),
		Active:     p.stats.active.Load(),
		Submitted:  p.stats.submitted.Load(),
		Succeeded:  p.stats.succeeded.Load(),
		Failed:     p.stats.failed.Load(),
		Panicked:   p.stats.panicked.Load(),
		Cancelled:  p.stats.cancelled.Load(),
		Retries:    p.stats.retries.Load(),
	}
}
