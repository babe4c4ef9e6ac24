package engine

import (
	"fmt"

	"github.com/roach88/metronome/internal/routine"
)

// inserter decides how an enqueued routine joins the scheduler: queued for
// the addition phase (the default, via Engine.Add) or processed
// synchronously right where the call occurs (Engine.AddNow).
//
// Immediate insertion fires the routine's enter hooks at the call site,
// which is what makes it reachable the same frame - and what makes
// runaway same-frame recursive insertion possible. The nesting-depth
// guard bounds that: an immediately-added routine inherits the inserting
// context's depth plus one, and a chain exceeding maxDepth is rejected
// with a validation error. Depth falls back to zero once a routine begins
// its own normal queued execution.
type inserter struct {
	depth    int
	maxDepth int
}

// addImmediate processes one immediate insertion.
func (ins *inserter) addImmediate(e *Engine, r *routine.Routine) error {
	depth := ins.depth + 1
	if depth > ins.maxDepth {
		return newValidationError(ErrCodeDepthExceeded, "AddNow",
			fmt.Sprintf("immediate insertion depth %d exceeds maximum %d", depth, ins.maxDepth), nil)
	}
	r.SetDepth(depth)

	if !e.processRoutineAddition(PhaseImmediate, r) {
		// Dropped by block list or skip predicate: a normal outcome,
		// not a validation failure.
		return nil
	}

	ins.depth = depth
	defer func() { ins.depth = depth - 1 }()

	// Enter at the call site so the routine is live for the rest of this
	// frame. An enter hook that calls AddNow again deepens the chain.
	if !e.guard(PhaseImmediate, r.ID(), r.Enter) {
		r.Stop(false, false)
		return nil
	}
	e.record(PhaseImmediate, EventUnitEntered, r.ID(), "", "", "")
	return nil
}
