package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/metronome/internal/engine"
)

func TestRunWithGolden_SingleShot(t *testing.T) {
	s := &Scenario{
		Name:        "single-shot",
		Description: "one frame-locked cycle, added immediately, disposed next frame",
		Routines: []RoutineSpec{
			{Behavior: "counter", Counter: "ticks"},
		},
		Script: []ScriptStep{update(0.25), update(0.25)},
		Assertions: []Assertion{
			{Type: AssertCounterEquals, Counter: "ticks", Value: 1},
			{Type: AssertTraceCount, Kind: engine.EventFrameStart, Count: 2},
		},
	}

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters["ticks"])
}

func TestRunWithGolden_MessageHandoff(t *testing.T) {
	s := &Scenario{
		Name:        "message-handoff",
		Description: "pinger's after-stage message reaches the waiting listener",
		Routines: []RoutineSpec{
			{Behavior: "listener", Target: "door", Message: "open", Counter: "heard", Timeout: 10},
			{Behavior: "pinger", Target: "door", Message: "open"},
		},
		Script: []ScriptStep{update(0.25), update(0.25)},
		Assertions: []Assertion{
			{Type: AssertCounterEquals, Counter: "heard", Value: 1},
			{Type: AssertTraceContains, Kind: engine.EventMessageDelivered, Tag: "door", Name: "open"},
			{Type: AssertTraceOrder, Kinds: []string{
				engine.EventMessageDelivered, engine.EventUnitDisposed,
			}},
		},
	}

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters["heard"])
	assert.Zero(t, result.Counters["heard_failed"])
}
