package harness

import (
	"fmt"

	"github.com/roach88/metronome/internal/engine"
	"github.com/roach88/metronome/internal/message"
	"github.com/roach88/metronome/internal/routine"
)

// probeEnv gives probe builders access to the scenario's engine and the
// shared counter map they report through.
type probeEnv struct {
	eng      *engine.Engine
	counters map[string]int
}

func (env *probeEnv) bump(counter string) {
	env.counters[counter]++
}

// probeBuilder constructs one probe routine from its spec.
type probeBuilder func(env *probeEnv, spec RoutineSpec) (*routine.Routine, error)

// probes is the registry of named probe behaviors available to scenarios.
var probes = map[string]probeBuilder{
	"counter":  buildCounter,
	"pinger":   buildPinger,
	"listener": buildListener,
	"spawner":  buildSpawner,
}

func counterName(spec RoutineSpec) string {
	if spec.Counter == "" {
		return "count"
	}
	return spec.Counter
}

func parseStage(s string) (message.Stage, error) {
	switch s {
	case "", "after":
		return message.StageAfterRoutines, nil
	case "before":
		return message.StageBeforeRoutines, nil
	case "soonest":
		return message.StageSoonestPossible, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", s)
	}
}

// buildCounter makes a routine that bumps its counter once per update.
func buildCounter(env *probeEnv, spec RoutineSpec) (*routine.Routine, error) {
	cycles := spec.Cycles
	if cycles == 0 {
		cycles = 1
	}
	name := counterName(spec)
	return routine.Do(spec.Period, cycles, func(float64) {
		env.bump(name)
	}, routine.WithTags(spec.Tags...))
}

// buildPinger makes a single-shot routine that sends one message.
func buildPinger(env *probeEnv, spec RoutineSpec) (*routine.Routine, error) {
	if spec.Target == "" || spec.Message == "" {
		return nil, fmt.Errorf("pinger requires target and message")
	}
	stage, err := parseStage(spec.Stage)
	if err != nil {
		return nil, err
	}
	return routine.Once(func() {
		// The probe itself is the sender; never nil.
		if err := env.eng.Send(spec.Target, spec.Message, spec.Behavior, nil, stage); err != nil {
			panic(err)
		}
	}, routine.WithTags(spec.Tags...))
}

// buildListener makes a wait-for-message routine: its counter bumps on
// match, and "<counter>_failed" bumps if it times out unmatched.
func buildListener(env *probeEnv, spec RoutineSpec) (*routine.Routine, error) {
	if spec.Target == "" || spec.Message == "" {
		return nil, fmt.Errorf("listener requires target and message")
	}
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = 1
	}
	name := counterName(spec)
	return routine.WaitForMessage(spec.Target, spec.Message, timeout,
		func(message.Message) { env.bump(name) },
		append([]routine.Option{
			routine.OnFailure(func() { env.bump(name + "_failed") }),
		}, tagOptions(spec.Tags)...)...)
}

// buildSpawner makes a single-shot routine carrying one child counter;
// the child runs only after the parent is disposed and promoted.
func buildSpawner(env *probeEnv, spec RoutineSpec) (*routine.Routine, error) {
	name := counterName(spec)
	parent, err := routine.Once(func() {}, routine.WithTags(spec.Tags...))
	if err != nil {
		return nil, err
	}
	child, err := routine.Once(func() { env.bump(name) })
	if err != nil {
		return nil, err
	}
	parent.Add(child)
	return parent, nil
}

func tagOptions(tags []string) []routine.Option {
	if len(tags) == 0 {
		return nil
	}
	return []routine.Option{routine.WithTags(tags...)}
}
