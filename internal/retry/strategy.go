// Package retry provides the backoff strategies used between task attempts.
package retry

import "time"

// Strategy defines how retry delays are calculated.
type Strategy interface {
	// NextDelay calculates the delay before the next retry attempt.
	// attemptNumber is 0-indexed (0 = first retry after initial failure).
	// lastError can be used by adaptive strategies to adjust delays based on error type.
	NextDelay(attemptNumber int, lastError error) time.Duration

	// Reset resets any internal state (for stateful strategies like decorrelated jitter).
	// This should be called when starting a new task.
	Reset()
}

// Type selects the backoff algorithm.
type Type int

const (
	// TypeNone applies no delay between attempts.
	TypeNone Type = iota
	// TypeFixed waits the same delay before every retry.
	TypeFixed
	// TypeExponential doubles the delay each retry up to a cap (default).
	TypeExponential
	// TypeJittered adds random jitter to exponential backoff to prevent thundering herd.
	TypeJittered
	// TypeDecorrelated uses AWS-style decorrelated jitter.
	TypeDecorrelated
)

// New creates a backoff strategy. initialDelay seeds the first retry delay,
// maxDelay caps growth, jitterFactor only applies to TypeJittered.
func New(t Type, initialDelay, maxDelay time.Duration, jitterFactor float64) Strategy {
	switch t {
	case TypeNone:
		return None()
	case TypeFixed:
		return NewFixed(initialDelay)
	case TypeJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)
	case TypeDecorrelated:
		return newDecorrelatedJitterBackoff(initialDelay, maxDelay)
	default:
		return NewExponential(initialDelay, maxDelay)
	}
}
