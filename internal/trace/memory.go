package trace

import "github.com/roach88/metronome/internal/engine"

// Memory buffers trace events in-process. Used by the harness, the CLI's
// scenario runner, and tests; no durability.
type Memory struct {
	events []engine.TraceEvent
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record implements engine.Recorder.
func (m *Memory) Record(ev engine.TraceEvent) {
	m.events = append(m.events, ev)
}

// Events returns the recorded events in order. The slice is a copy.
func (m *Memory) Events() []engine.TraceEvent {
	out := make([]engine.TraceEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the number of recorded events.
func (m *Memory) Len() int {
	return len(m.events)
}

// Reset drops all recorded events.
func (m *Memory) Reset() {
	m.events = m.events[:0]
}
