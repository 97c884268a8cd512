package pool

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestResultHandle_Poll_BeforeAndAfter(t *testing.T) {
	gate := make(chan struct{})
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		<-gate
		return n, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	h, err := p.Submit(5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if out, ready := h.Poll(); ready {
		t.Fatalf("poll before completion returned %v", out)
	}

	close(gate)
	out := h.AwaitOutcome()

	// After completion every poll returns the same outcome.
	for i := 0; i < 3; i++ {
		polled, ready := h.Poll()
		if !ready {
			t.Fatal("poll after completion returned not-ready")
		}
		if polled != out {
			t.Fatalf("poll %d returned %v, await returned %v", i, polled, out)
		}
	}
}

func TestResultHandle_AwaitOutcome_MultipleWaiters(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		time.Sleep(10 * time.Millisecond)
		return n * 3, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	h, err := p.Submit(4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	const waiters = 8
	results := make([]Outcome[int], waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.AwaitOutcome()
		}(i)
	}
	wg.Wait()

	for i, out := range results {
		if !out.Success() || out.Value != 12 {
			t.Errorf("waiter %d: got %v", i, out)
		}
	}
}

func TestResultHandle_AwaitContext_Timeout(t *testing.T) {
	gate := make(chan struct{})
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		<-gate
		return n, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		close(gate)
		p.Close()
	}()

	h, err := p.Submit(1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := h.AwaitContext(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestResultHandle_AwaitContext_StillUsableAfterTimeout(t *testing.T) {
	gate := make(chan struct{})
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		<-gate
		return n + 1, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	h, _ := p.Submit(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.AwaitContext(ctx); err == nil {
		t.Fatal("expected timeout")
	}

	// A timed-out wait abandons nothing: the task still runs and the
	// handle still delivers.
	close(gate)
	if out := h.AwaitOutcome(); !out.Success() || out.Value != 2 {
		t.Fatalf("expected success 2 after timed-out wait, got %v", out)
	}
}

func TestResultHandle_Done_SelectIntegration(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithWorkerCount(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	h, _ := p.Submit(9)
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done channel never closed")
	}
	if out, ready := h.Poll(); !ready || out.Value != 9 {
		t.Fatalf("expected ready outcome 9, got %v (ready=%v)", out, ready)
	}
}

func TestResultHandle_Fulfill_OnlyFirstWins(t *testing.T) {
	h := newResultHandle[int](1)
	if !h.fulfill(Outcome[int]{Kind: OutcomeSuccess, Value: 1, TaskID: 1}) {
		t.Fatal("first fulfill rejected")
	}
	if h.fulfill(Outcome[int]{Kind: OutcomeCancelled, TaskID: 1}) {
		t.Fatal("second fulfill accepted")
	}
	if out := h.AwaitOutcome(); out.Kind != OutcomeSuccess || out.Value != 1 {
		t.Fatalf("outcome overwritten: %v", out)
	}
}
