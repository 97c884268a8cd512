// Package pool provides a generic worker pool for concurrent task processing.
//
// The primary type is Pool[T, R]: a fixed set of workers pulling tasks of
// type T from a pluggable queue backend, executing them through a process
// function, and delivering an Outcome[R] per task through a one-shot
// ResultHandle. Panics inside a task are captured and reported as an outcome;
// they never take down a worker or the pool.
//
// # Basic Usage
//
//	p, err := pool.New[int, int](func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	}, pool.WithWorkerCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	handle, _ := p.Submit(21)
//	out := handle.AwaitOutcome()
//	fmt.Println(out.Value) // 42
//
// For self-contained units of work, NewFunc builds a pool whose tasks are
// closures:
//
//	p, _ := pool.NewFunc[string]()
//	handle, _ := p.Submit(func(ctx context.Context) (string, error) {
//	    return "done", nil
//	})
//
// # Queue Backends
//
// Submissions flow through one of four interchangeable queue backends,
// selected once at construction with WithBackend: a buffered Go channel
// (default), a lock-free MPMC ring, a mutex-based list queue, and a hybrid
// ring with channel parking. All honor the same contract — per-producer FIFO,
// no duplication, no drops while open — so the choice is purely a
// throughput/latency tradeoff.
//
// Bounded capacity plus the default blocking policy makes Submit wait for
// space; WithNonBlockingSubmit makes it return ErrQueueFull instead.
// WithUnboundedQueue removes the capacity limit entirely.
//
// # Retry
//
// With retry enabled, a failed attempt is re-executed in place on the same
// worker, after a configurable backoff, up to the attempt limit:
//
//	p, _ := pool.New[string, string](fetch,
//	    pool.WithRetryPolicy(3, 100*time.Millisecond),
//	)
//
// The terminal outcome carries the total number of attempts made. A
// classifier (WithRetryClassifier) decides which failures are worth
// retrying; by default failures are retried and panics are not.
//
// # CPU Affinity
//
// WithAffinity pins worker threads to CPU cores, round-robin over the given
// core list (or all cores when the list is empty). Pinning failure is
// advisory: the pool still starts, the worker runs unpinned, and the
// condition is reported through Warnings.
//
// # Shutdown
//
// ShutdownGraceful drains every queued task (including retries) before
// returning; ShutdownImmediate cancels tasks not yet picked up by a worker,
// fulfilling their handles with OutcomeCancelled. In-flight tasks always run
// to completion. Both are idempotent, and Close (io.Closer) aliases the
// graceful path so `defer p.Close()` never leaks workers.
package pool
