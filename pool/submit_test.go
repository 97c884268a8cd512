package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

// gatedPool builds a single-worker pool whose tasks block until the gate is
// closed, so tests can control queue occupancy precisely.
func gatedPool(t *testing.T, opts ...Option) (*Pool[int, int], chan struct{}, chan struct{}) {
	t.Helper()
	gate := make(chan struct{})
	started := make(chan struct{}, 8192)

	all := append([]Option{WithWorkerCount(1)}, opts...)
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		started <- struct{}{}
		<-gate
		return n, nil
	}, all...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p, gate, started
}

func TestPool_Submit_NonBlocking_QueueFull(t *testing.T) {
	runBackendTest(t, func(t *testing.T, backend Backend) {
		p, gate, started := gatedPool(t,
			WithBackend(backend),
			WithQueueCapacity(2),
			WithNonBlockingSubmit(),
		)
		defer func() {
			close(gate)
			p.Close()
		}()

		// First task occupies the worker.
		if _, err := p.Submit(0); err != nil {
			t.Fatalf("submit: %v", err)
		}
		<-started

		// Fill the queue until it rejects. Ring backends may round the
		// capacity up, so loop rather than assume an exact fill count.
		var lastErr error
		for i := 0; i < 100; i++ {
			if _, lastErr = p.Submit(i); lastErr != nil {
				break
			}
		}
		if !errors.Is(lastErr, ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", lastErr)
		}
	})
}

func TestPool_Submit_Blocking_WaitsForSpace(t *testing.T) {
	p, gate, started := gatedPool(t, WithQueueCapacity(1))
	defer p.Close()

	if _, err := p.Submit(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	// Fill the queue, then verify the next submit blocks.
	if _, err := p.Submit(1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	submitted := make(chan error, 1)
	go func() {
		_, err := p.Submit(2)
		submitted <- err
	}()

	select {
	case err := <-submitted:
		t.Fatalf("submit returned early with %v on a full queue", err)
	case <-time.After(50 * time.Millisecond):
	}

	// Releasing the gate lets the worker drain the queue; the blocked
	// submit must complete.
	close(gate)
	select {
	case err := <-submitted:
		if err != nil {
			t.Fatalf("blocked submit failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked submit never completed")
	}
}

func TestPool_Submit_AfterClose_ReturnsErrPoolClosed(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := p.Submit(1); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_Submit_Unbounded_NeverBlocks(t *testing.T) {
	p, gate, started := gatedPool(t, WithUnboundedQueue())
	defer func() {
		close(gate)
		p.Close()
	}()

	if _, err := p.Submit(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	// With the single worker stuck, thousands of submissions must still
	// be accepted immediately.
	for i := 0; i < 5000; i++ {
		if _, err := p.Submit(i); err != nil {
			t.Fatalf("submit %d on unbounded pool: %v", i, err)
		}
	}
	if depth := p.Stats().QueueDepth; depth != 5000 {
		t.Errorf("expected queue depth 5000, got %d", depth)
	}
}
