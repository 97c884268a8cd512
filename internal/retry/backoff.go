package retry

import (
	"math/rand"
	"sync"
	"time"
)

const (
	maxShiftAttempts = 63 // Prevent overflow in backoff calculation
)

// noBackoff retries immediately.
type noBackoff struct{}

// None returns a strategy with no delay between attempts.
func None() Strategy { return noBackoff{} }

func (noBackoff) NextDelay(int, error) time.Duration { return 0 }

func (noBackoff) Reset() {}

// fixedBackoff waits the same delay before every retry.
type fixedBackoff struct {
	delay time.Duration
}

// NewFixed returns a strategy with a constant delay between attempts.
func NewFixed(delay time.Duration) Strategy {
	return &fixedBackoff{delay: delay}
}

func (fb *fixedBackoff) NextDelay(int, error) time.Duration { return fb.delay }

func (fb *fixedBackoff) Reset() {}

// exponentialBackoff implements simple exponential backoff.
// Delay formula: initialDelay * 2^attemptNumber, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewExponential returns exponential backoff capped at maxDelay.
func NewExponential(initialDelay, maxDelay time.Duration) Strategy {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

// NextDelay calculates the exponential backoff delay for the given attempt number.
// Uses bit shifting (2^n) for performance instead of math.Pow.
func (eb *exponentialBackoff) NextDelay(attemptNumber int, lastError error) time.Duration {
	return calcExponentialDelay(attemptNumber, eb.initialDelay, eb.maxDelay)
}

func (eb *exponentialBackoff) Reset() {
	// No state to reset
}

// jitteredBackoff adds randomization to exponential backoff to prevent
// thundering herd. Delay formula: exponentialDelay * (1 ± jitterFactor).
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64 // 0.0 to 1.0 (e.g., 0.1 = ±10% jitter)
	rng                    *rand.Rand
	mu                     sync.Mutex // Protect RNG access for thread-safety
}

func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for backoff jitter
	}
}

func (jb *jitteredBackoff) NextDelay(attemptNumber int, lastError error) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	baseDelay := calcExponentialDelay(attemptNumber, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	jitterMultiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	actualDelay := time.Duration(float64(baseDelay) * jitterMultiplier)
	return clamp(actualDelay, 0, jb.maxDelay)
}

func (jb *jitteredBackoff) Reset() {
	// No state to reset (RNG state doesn't need reset)
}

// decorrelatedJitterBackoff implements AWS-style decorrelated jitter backoff.
// Algorithm: sleep = min(maxDelay, random(initialDelay, prevSleep * 3)).
// Each retry's delay depends on the previous delay, not just the attempt
// number, which naturally decorrelates concurrent failures.
type decorrelatedJitterBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	prevDelay    time.Duration
	rng          *rand.Rand
	mu           sync.Mutex
}

func newDecorrelatedJitterBackoff(initialDelay, maxDelay time.Duration) *decorrelatedJitterBackoff {
	return &decorrelatedJitterBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		prevDelay:    initialDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for backoff jitter
	}
}

func (djb *decorrelatedJitterBackoff) NextDelay(attemptNumber int, lastError error) time.Duration {
	djb.mu.Lock()
	defer djb.mu.Unlock()

	if attemptNumber == 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	upperBound := min(time.Duration(float64(djb.prevDelay)*3), djb.maxDelay)

	delayRange := upperBound - djb.initialDelay
	if delayRange <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	randomOffset := time.Duration(djb.rng.Int63n(int64(delayRange)))
	delay := djb.initialDelay + randomOffset

	djb.prevDelay = delay
	return delay
}

// Reset resets the previous delay to initial delay.
func (djb *decorrelatedJitterBackoff) Reset() {
	djb.mu.Lock()
	defer djb.mu.Unlock()
	djb.prevDelay = djb.initialDelay
}

func calcExponentialDelay(attemptNumber int, initialDelay, maxDelay time.Duration) time.Duration {
	if attemptNumber < 0 {
		return 0
	}

	if attemptNumber >= maxShiftAttempts {
		return maxDelay
	}

	backoffFactor := int64(1) << uint(attemptNumber)
	delay := time.Duration(backoffFactor) * initialDelay

	if delay > maxDelay || delay < 0 {
		return maxDelay
	}

	return delay
}

func clamp[T ~int64 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
