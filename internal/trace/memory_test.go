package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/metronome/internal/engine"
)

func TestMemory_RecordAndEvents(t *testing.T) {
	m := NewMemory()
	m.Record(engine.TraceEvent{Seq: 1, Kind: engine.EventFrameStart})
	m.Record(engine.TraceEvent{Seq: 2, Kind: engine.EventUnitAdded, Unit: "unit-1"})

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, engine.EventFrameStart, events[0].Kind)
	assert.Equal(t, "unit-1", events[1].Unit)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_EventsIsCopy(t *testing.T) {
	m := NewMemory()
	m.Record(engine.TraceEvent{Seq: 1})

	events := m.Events()
	m.Record(engine.TraceEvent{Seq: 2})

	assert.Len(t, events, 1)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	m.Record(engine.TraceEvent{Seq: 1})
	m.Reset()

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Events())
}
