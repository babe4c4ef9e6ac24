package harness

import (
	"fmt"

	"github.com/roach88/metronome/internal/engine"
	"github.com/roach88/metronome/internal/tag"
	"github.com/roach88/metronome/internal/trace"
)

// Result captures everything a scenario's assertions can see.
type Result struct {
	// Trace is the full frame trace in seq order.
	Trace []engine.TraceEvent

	// Counters are the probe counters at script end.
	Counters map[string]int

	// Snapshot is the final registry tag -> count snapshot.
	Snapshot []tag.TagCount
}

// Run executes a scenario on a fresh engine and checks its assertions.
//
// The engine uses a sequential ID generator ("unit-1", "unit-2", ...) and
// an in-memory recorder, so two runs of the same scenario produce
// identical traces. Probe routines are inserted immediately, in
// declaration order, before the script runs.
func Run(s *Scenario, opts ...engine.Option) (*Result, error) {
	recorder := trace.NewMemory()
	eng := engine.New(append([]engine.Option{
		engine.WithIDGenerator(&engine.SequentialGenerator{}),
		engine.WithRecorder(recorder),
	}, opts...)...)

	env := &probeEnv{
		eng:      eng,
		counters: make(map[string]int),
	}

	for i, spec := range s.Routines {
		build := probes[spec.Behavior]
		if build == nil {
			return nil, fmt.Errorf("routines[%d]: unknown behavior %q", i, spec.Behavior)
		}
		r, err := build(env, spec)
		if err != nil {
			return nil, fmt.Errorf("routines[%d] (%s): %w", i, spec.Behavior, err)
		}
		if _, err := eng.AddNow(r); err != nil {
			return nil, fmt.Errorf("routines[%d] (%s): add: %w", i, spec.Behavior, err)
		}
	}

	for i, step := range s.Script {
		if err := runStep(eng, step); err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
	}

	result := &Result{
		Trace:    recorder.Events(),
		Counters: env.counters,
		Snapshot: eng.Snapshot(),
	}

	if err := Check(result, s.Assertions); err != nil {
		return result, err
	}
	return result, nil
}

func runStep(eng *engine.Engine, step ScriptStep) error {
	switch {
	case step.Update != nil:
		return eng.Update(*step.Update)
	case step.Send != nil:
		stage, err := parseStage(step.Send.Stage)
		if err != nil {
			return err
		}
		return eng.Send(step.Send.Tag, step.Send.Name, "script", nil, stage)
	case step.Pause != "":
		return eng.Pause(step.Pause)
	case step.Resume != "":
		return eng.Resume(step.Resume)
	case step.Block != "":
		return eng.Block(step.Block)
	case step.Stop != nil:
		return eng.Remove(step.Stop.Tag, step.Stop.Children)
	default:
		return fmt.Errorf("empty script step")
	}
}
