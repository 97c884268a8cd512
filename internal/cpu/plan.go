// Package cpu provides worker-to-core assignment and per-platform thread pinning.
package cpu

import (
	"errors"
	"runtime"
)

// ErrUnsupported reports that thread pinning is not available on this platform.
var ErrUnsupported = errors.New("cpu affinity not supported on this platform")

// Plan assigns CPU cores to workers in round-robin order. The assignment is a
// pure function of the worker index, resolved once at spawn time.
type Plan struct {
	cores []int
}

// NewPlan builds a plan over the given core ids. An empty list means
// "use all available cores". Core ids are not validated here: pinning an
// invalid id fails at spawn time and is reported as a warning, not an error.
func NewPlan(cores []int) *Plan {
	if len(cores) == 0 {
		n := runtime.NumCPU()
		cores = make([]int, n)
		for i := range cores {
			cores[i] = i
		}
	} else {
		owned := make([]int, len(cores))
		copy(owned, cores)
		cores = owned
	}
	return &Plan{cores: cores}
}

// CoreFor returns the core id assigned to the given worker index.
func (p *Plan) CoreFor(workerIdx int) int {
	if workerIdx < 0 {
		workerIdx = -workerIdx
	}
	return p.cores[workerIdx%len(p.cores)]
}

// Cores returns the cores covered by the plan.
func (p *Plan) Cores() []int {
	out := make([]int, len(p.cores))
	copy(out, p.cores)
	return out
}

// GetNumCPU returns the number of logical CPUs available.
func GetNumCPU() int {
	return runtime.NumCPU()
}
