package pool

import "fmt"

// OutcomeKind classifies how a task run ended.
type OutcomeKind int

const (
	// OutcomeSuccess means the process function returned a value and no error.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailure means the process function returned an error (after
	// exhausting any configured retries).
	OutcomeFailure
	// OutcomePanic means the process function panicked; the recovered value
	// and stack trace are wrapped in the outcome's Err.
	OutcomePanic
	// OutcomeCancelled means the task was discarded before any worker picked
	// it up, during an immediate shutdown.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomePanic:
		return "panic"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Outcome is the terminal result of a single task. Exactly one outcome is
// produced per submitted task, regardless of how many attempts it took.
type Outcome[R any] struct {
	// Kind says how the task ended.
	Kind OutcomeKind

	// Value is the process function's return value. Only meaningful when
	// Kind is OutcomeSuccess; otherwise it is the zero value of R.
	Value R

	// Err carries the failure for OutcomeFailure, OutcomePanic and
	// OutcomeCancelled outcomes. Nil on success.
	Err error

	// Attempts is the number of times the task was executed, counting the
	// final one. Zero for cancelled tasks, which never ran.
	Attempts int

	// TaskID is the submission sequence number assigned by Submit, starting
	// at 1 and strictly increasing per pool.
	TaskID uint64
}

// Success reports whether the task completed without error.
func (o Outcome[R]) Success() bool {
	return o.Kind == OutcomeSuccess
}

// Result unpacks the outcome into the usual (value, error) pair.
func (o Outcome[R]) Result() (R, error) {
	return o.Value, o.Err
}
