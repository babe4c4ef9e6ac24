package engine

// Phase names a step of the per-frame pipeline for traces and faults.
type Phase string

const (
	PhaseFrame          Phase = "frame"
	PhaseMessagesBefore Phase = "messages_before"
	PhaseExecute        Phase = "execute"
	PhaseMessagesAfter  Phase = "messages_after"
	PhaseStops          Phase = "stops"
	PhaseRemovals       Phase = "removals"
	PhaseAdditions      Phase = "additions"
	PhaseMessagesFinal  Phase = "messages_final"
	PhasePauseResume    Phase = "pause_resume"
	PhaseImmediate      Phase = "immediate_add"
	PhaseRequest        Phase = "request"
	PhaseTeardown       Phase = "teardown"
)

// Trace event kinds emitted by the engine.
const (
	EventFrameStart       = "frame_start"
	EventMessageDelivered = "message_delivered"
	EventUnitAdded        = "unit_added"
	EventUnitEntered      = "unit_entered"
	EventUnitStopped      = "unit_stopped"
	EventUnitPromoted     = "unit_promoted"
	EventUnitDisposed     = "unit_disposed"
	EventUnitDropped      = "unit_dropped"
	EventUnitFault        = "unit_fault"
	EventTagPaused        = "tag_paused"
	EventTagResumed       = "tag_resumed"
	EventTagBlocked       = "tag_blocked"
)

// TraceEvent is one structured entry of the frame trace. Every event is
// stamped by the logical clock, so a recorded trace totally orders the
// frame's side effects.
type TraceEvent struct {
	Frame  int64  `json:"frame"`
	Seq    int64  `json:"seq"`
	Phase  string `json:"phase"`
	Kind   string `json:"kind"`
	Unit   string `json:"unit,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Recorder consumes trace events. Implementations must not call back into
// the engine; they run synchronously inside frame phases.
type Recorder interface {
	Record(TraceEvent)
}

// record emits a trace event if a recorder is configured.
func (e *Engine) record(phase Phase, kind, unit, tagName, name, detail string) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(TraceEvent{
		Frame:  e.clock.Frame(),
		Seq:    e.clock.NextSeq(),
		Phase:  string(phase),
		Kind:   kind,
		Unit:   unit,
		Tag:    tagName,
		Name:   name,
		Detail: detail,
	})
}
