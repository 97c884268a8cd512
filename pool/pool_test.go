package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var testBackends = []Backend{BackendChan, BackendMPMC, BackendList, BackendHybrid}

// runBackendTest runs the same pool test against every queue backend.
func runBackendTest(t *testing.T, test func(t *testing.T, backend Backend)) {
	t.Helper()
	for _, b := range testBackends {
		t.Run(b.String(), func(t *testing.T) {
			test(t, b)
		})
	}
}

func TestPool_Submit_BasicFunctionality(t *testing.T) {
	runBackendTest(t, func(t *testing.T, backend Backend) {
		p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
			return n * 2, nil
		}, WithWorkerCount(4), WithBackend(backend), WithQueueCapacity(8))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		const numTasks = 100
		handles := make([]*ResultHandle[int], 0, numTasks)
		for i := 0; i < numTasks; i++ {
			h, err := p.Submit(i)
			if err != nil {
				t.Fatalf("submit %d: %v", i, err)
			}
			handles = append(handles, h)
		}

		seen := make(map[int]bool, numTasks)
		for i, h := range handles {
			out := h.AwaitOutcome()
			if !out.Success() {
				t.Fatalf("task %d: expected success, got %s (%v)", i, out.Kind, out.Err)
			}
			if out.Value != i*2 {
				t.Errorf("task %d: expected %d, got %d", i, i*2, out.Value)
			}
			if seen[out.Value] {
				t.Errorf("duplicate result %d", out.Value)
			}
			seen[out.Value] = true
		}
		if len(seen) != numTasks {
			t.Fatalf("expected %d distinct results, got %d", numTasks, len(seen))
		}
	})
}

func TestPool_Submit_UnboundedHundredTasks(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithWorkerCount(4), WithUnboundedQueue())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	handles := make([]*ResultHandle[int], 0, 100)
	for i := 0; i < 100; i++ {
		h, err := p.Submit(i)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		handles = append(handles, h)
	}

	// Completion order is unspecified; the set of values must be exactly
	// {0..99} with no duplicates or omissions.
	seen := make(map[int]bool, 100)
	for _, h := range handles {
		out := h.AwaitOutcome()
		if !out.Success() {
			t.Fatalf("expected success, got %s (%v)", out.Kind, out.Err)
		}
		if seen[out.Value] {
			t.Fatalf("duplicate value %d", out.Value)
		}
		seen[out.Value] = true
	}
	for i := 0; i < 100; i++ {
		if !seen[i] {
			t.Errorf("missing value %d", i)
		}
	}
}

func TestPool_New_DefaultWorkerCount(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	if got := p.Stats().Workers; got != runtime.GOMAXPROCS(0) {
		t.Errorf("expected %d workers by default, got %d", runtime.GOMAXPROCS(0), got)
	}
}

func TestPool_New_ConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
	}{
		{"zero workers", []Option{WithWorkerCount(0)}},
		{"negative workers", []Option{WithWorkerCount(-1)}},
		{"zero capacity", []Option{WithQueueCapacity(0)}},
		{"negative capacity", []Option{WithQueueCapacity(-5)}},
		{"zero retry attempts", []Option{WithRetryPolicy(0, time.Millisecond)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New[int, int](func(ctx context.Context, n int) (int, error) {
				return n, nil
			}, c.opts...)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
		})
	}
}

func TestPool_New_NilProcessFunc(t *testing.T) {
	_, err := New[int, int](nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError for nil process function, got %v", err)
	}
}

func TestPool_PanicIsolation(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		if n%2 == 0 {
			panic(fmt.Sprintf("bad input %d", n))
		}
		return n * 10, nil
	}, WithWorkerCount(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	handles := make([]*ResultHandle[int], 0, 20)
	for i := 0; i < 20; i++ {
		h, err := p.Submit(i)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		handles = append(handles, h)
	}

	for i, h := range handles {
		out := h.AwaitOutcome()
		if i%2 == 0 {
			if out.Kind != OutcomePanic {
				t.Fatalf("task %d: expected panic outcome, got %s", i, out.Kind)
			}
			if out.Err == nil || !strings.Contains(out.Err.Error(), "task panic") {
				t.Errorf("task %d: panic error missing message: %v", i, out.Err)
			}
			if !strings.Contains(out.Err.Error(), "stack trace") {
				t.Errorf("task %d: panic error missing stack trace", i)
			}
		} else {
			if !out.Success() || out.Value != i*10 {
				t.Fatalf("task %d: expected success %d, got %s (%v)", i, i*10, out.Kind, out.Err)
			}
		}
	}

	stats := p.Stats()
	if stats.Panicked != 10 || stats.Succeeded != 10 {
		t.Errorf("expected 10 panicked / 10 succeeded, got %d / %d", stats.Panicked, stats.Succeeded)
	}
}

func TestPool_TaskIDs_Monotonic(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithWorkerCount(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	var prev uint64
	for i := 0; i < 10; i++ {
		h, err := p.Submit(i)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if h.TaskID() <= prev {
			t.Fatalf("task id %d not greater than previous %d", h.TaskID(), prev)
		}
		prev = h.TaskID()
		out := h.AwaitOutcome()
		if out.TaskID != h.TaskID() {
			t.Errorf("outcome task id %d does not match handle %d", out.TaskID, h.TaskID())
		}
	}
	if prev != 10 {
		t.Errorf("expected final task id 10, got %d", prev)
	}
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	runBackendTest(t, func(t *testing.T, backend Backend) {
		p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
			return n + 1, nil
		}, WithWorkerCount(4), WithBackend(backend), WithQueueCapacity(16))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		const (
			submitters = 8
			perSub     = 100
		)
		var wg sync.WaitGroup
		errs := make(chan error, submitters)
		for s := 0; s < submitters; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perSub; i++ {
					h, err := p.Submit(i)
					if err != nil {
						errs <- err
						return
					}
					out := h.AwaitOutcome()
					if !out.Success() || out.Value != i+1 {
						errs <- fmt.Errorf("bad outcome for %d: %v", i, out)
						return
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatal(err)
		}

		if got := p.Stats().Submitted; got != submitters*perSub {
			t.Errorf("expected %d submitted, got %d", submitters*perSub, got)
		}
	})
}

func TestPool_NewFunc_Closures(t *testing.T) {
	p, err := NewFunc[string](WithWorkerCount(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	h, err := p.Submit(func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out := h.AwaitOutcome(); !out.Success() || out.Value != "hello" {
		t.Fatalf("expected hello, got %v", out)
	}
}

func TestPool_RateLimit_ThrottlesExecution(t *testing.T) {
	p, err := New[int, int](func(ctx context.Context, n int) (int, error) {
		return n, nil
	}, WithWorkerCount(4), WithRateLimit(100, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()

	const numTasks = 6
	start := time.Now()
	handles := make([]*ResultHandle[int], 0, numTasks)
	for i := 0; i < numTasks; i++ {
		h, err := p.Submit(i)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		handles = append(handles, h)
	}
	for _, h := range handles {
		h.AwaitOutcome()
	}

	// 6 tasks at 100/s with burst 1 need at least ~50ms.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected rate limiting to slow execution, finished in %v", elapsed)
	}
}
