// recorder.go provides an in-memory Runner for tests. It records every
// invocation in order and can be scripted to fail at a given position,
// which is how the fail-fast behavior of the pipeline is exercised without
// spawning real processes.
package runner

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/crateci/internal/model"
)

// Recorder is a Runner test double. The zero value records invocations
// and succeeds on every one of them.
type Recorder struct {
	// Invocations holds every invocation passed to Run, in call order.
	Invocations []model.Invocation

	// FailAt makes the FailAt-th call (1-indexed) return a CommandError.
	// Zero means never fail.
	FailAt int

	// FailStatus is the exit status reported by the scripted failure.
	// Defaults to 1 when unset.
	FailStatus int
}

// Run records the invocation and returns the scripted outcome.
func (r *Recorder) Run(_ context.Context, inv model.Invocation) error {
	r.Invocations = append(r.Invocations, inv)

	if r.FailAt != 0 && len(r.Invocations) == r.FailAt {
		status := r.FailStatus
		if status == 0 {
			status = 1
		}
		return &model.CommandError{
			Invocation: inv,
			Status:     status,
			Err:        fmt.Errorf("scripted failure at invocation %d", r.FailAt),
		}
	}
	return nil
}

// CommandLines returns the recorded invocations rendered as command lines,
// in call order. Convenient for asserting whole sequences in one compare.
func (r *Recorder) CommandLines() []string {
	lines := make([]string, len(r.Invocations))
	for i, inv := range r.Invocations {
		lines[i] = inv.CommandLine()
	}
	return lines
}
