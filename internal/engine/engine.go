package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/metronome/internal/message"
	"github.com/roach88/metronome/internal/routine"
	"github.com/roach88/metronome/internal/tag"
)

// DefaultMaxDelta is the clamp applied to Update's deltaTime, bounding
// worst-case catch-up work after a long host stall.
const DefaultMaxDelta = 0.25

// DefaultMaxNestingDepth bounds same-frame recursive immediate insertion.
const DefaultMaxNestingDepth = 8

// Engine is the frame scheduler. One logical frame owner drives it through
// Update; independent instances on other goroutines never share state.
//
// INVARIANTS:
//   - Execution order of active routines is addition order (FIFO) and is
//     preserved across pause/resume cycles.
//   - The registry and all queues are mutated only inside frame phases.
//   - A routine is removed (and its children promoted) only at the removal
//     phase, never mid-iteration.
type Engine struct {
	registry *tag.Registry
	clock    *Clock
	idGen    IDGenerator
	recorder Recorder

	// active is the execution queue; next is the double buffer filled
	// during the execution phase and swapped in at its end.
	active    []*routine.Routine
	next      []*routine.Routine
	executing bool

	pending  []addCandidate
	stops    []stopRequest
	detaches []tag.Taggable
	pauses   []string
	resumes  []string
	blocked  map[string]struct{}

	messages *messageQueue
	inserter inserter

	maxDelta float64
	onFault  FaultHandler
	tornDown bool
}

// addCandidate is one entry of the addition queue. Either a routine or a
// plain taggable (listener objects that only intercept messages).
type addCandidate struct {
	unit *routine.Routine
	obj  tag.Taggable
}

// stopRequest targets either a tag bucket or a specific routine.
// Consumed once, at the next stop phase.
type stopRequest struct {
	tag          string
	unit         *routine.Routine
	stopChildren bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMaxDelta sets the per-frame deltaTime clamp in seconds.
func WithMaxDelta(maxDelta float64) Option {
	return func(e *Engine) {
		e.maxDelta = maxDelta
	}
}

// WithMaxNestingDepth sets the immediate-insertion depth limit.
func WithMaxNestingDepth(depth int) Option {
	return func(e *Engine) {
		e.inserter.maxDepth = depth
	}
}

// WithFaultHandler sets the receiver for per-routine runtime faults.
// The default handler logs the fault.
func WithFaultHandler(fn FaultHandler) Option {
	return func(e *Engine) {
		e.onFault = fn
	}
}

// WithRecorder attaches a frame-trace recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithIDGenerator overrides the routine ID generator.
// Tests and the harness use SequentialGenerator for stable traces.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: tag.NewRegistry(),
		clock:    NewClock(),
		idGen:    UUIDv7Generator{},
		blocked:  make(map[string]struct{}),
		messages: newMessageQueue(),
		maxDelta: DefaultMaxDelta,
	}
	e.inserter.maxDepth = DefaultMaxNestingDepth
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add enqueues a routine for the next addition phase. The routine is
// returned for chaining configuration calls.
//
// Deferred is the default insertion mode: the routine is registered at this
// frame's addition phase if Add was called mid-frame, or at the next
// frame's if called between frames, and first executes on the execution
// phase after that. Use AddNow for same-frame immediate insertion.
func (e *Engine) Add(r *routine.Routine) (*routine.Routine, error) {
	if r == nil {
		return nil, newValidationError(ErrCodeNilRoutine, "Add", "nil routine", nil)
	}
	e.pending = append(e.pending, addCandidate{unit: r})
	return r, nil
}

// AddTagged is Add with an extra tag applied first.
func (e *Engine) AddTagged(t string, r *routine.Routine) (*routine.Routine, error) {
	if r == nil {
		return nil, newValidationError(ErrCodeNilRoutine, "AddTagged", "nil routine", nil)
	}
	if err := r.AddTag(t); err != nil {
		return nil, newValidationError(ErrCodeBadTag, "AddTagged", "invalid tag", err)
	}
	return e.Add(r)
}

// AddNow processes a routine for addition synchronously at the call site:
// it is registered, enqueued for the current frame, and its enter hooks
// fire immediately. Subject to the nesting-depth guard: an enter hook that
// immediately adds another routine deepens the chain by one, and a chain
// exceeding the configured maximum is rejected with a validation error
// rather than silently processed.
func (e *Engine) AddNow(r *routine.Routine) (*routine.Routine, error) {
	if r == nil {
		return nil, newValidationError(ErrCodeNilRoutine, "AddNow", "nil routine", nil)
	}
	if err := e.inserter.addImmediate(e, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Attach enqueues a non-routine taggable (e.g. a plain message listener)
// for registration at the next addition phase. Skip predicates do not
// apply, but the block list does.
func (e *Engine) Attach(obj tag.Taggable) error {
	if obj == nil {
		return newValidationError(ErrCodeNilRoutine, "Attach", "nil taggable", nil)
	}
	if err := validateTags(obj); err != nil {
		return newValidationError(ErrCodeBadTag, "Attach", "invalid tags", err)
	}
	e.pending = append(e.pending, addCandidate{obj: obj})
	return nil
}

// Detach unregisters a previously attached taggable at the next removal
// phase.
func (e *Engine) Detach(obj tag.Taggable) {
	if obj == nil {
		return
	}
	e.detaches = append(e.detaches, obj)
}

// Send validates and enqueues a message. A zero stage defaults to
// AfterRoutines. The sender must be non-nil.
func (e *Engine) Send(receiverTag, name string, sender, data any, stage message.Stage) error {
	if stage == 0 {
		stage = message.StageAfterRoutines
	}
	m, err := message.New(receiverTag, name, sender, data, stage)
	if err != nil {
		return newValidationError(ErrCodeBadMessage, "Send", "invalid message", err)
	}
	e.messages.push(m)
	return nil
}

// Remove requests a stop of every object tracked under the tag, applied at
// this frame's stop phase (or the next frame's, between frames). With
// stopChildren, the stopped routines' queued children are discarded
// instead of promoted.
func (e *Engine) Remove(t string, stopChildren bool) error {
	if err := tag.Validate(t); err != nil {
		return newValidationError(ErrCodeBadTag, "Remove", "invalid tag", err)
	}
	e.stops = append(e.stops, stopRequest{tag: tag.Canonical(t), stopChildren: stopChildren})
	return nil
}

// RemoveRoutine requests a stop of one specific routine, children promoted.
func (e *Engine) RemoveRoutine(r *routine.Routine) error {
	if r == nil {
		return newValidationError(ErrCodeNilRoutine, "RemoveRoutine", "nil routine", nil)
	}
	e.stops = append(e.stops, stopRequest{unit: r})
	return nil
}

// Pause requests a freeze of every routine currently tracked under the tag.
// Paused routines keep their queue slot and their timers do not advance.
func (e *Engine) Pause(t string) error {
	if err := tag.Validate(t); err != nil {
		return newValidationError(ErrCodeBadTag, "Pause", "invalid tag", err)
	}
	e.pauses = append(e.pauses, tag.Canonical(t))
	return nil
}

// Resume lifts a pause. Resume requests apply before pause requests, so a
// routine resumed and paused in the same frame ends up paused.
func (e *Engine) Resume(t string) error {
	if err := tag.Validate(t); err != nil {
		return newValidationError(ErrCodeBadTag, "Resume", "invalid tag", err)
	}
	e.resumes = append(e.resumes, tag.Canonical(t))
	return nil
}

// Block rejects, for exactly one frame, every addition (queued candidate or
// promoted child) whose tags intersect the blocked tag.
func (e *Engine) Block(t string) error {
	if err := tag.Validate(t); err != nil {
		return newValidationError(ErrCodeBadTag, "Block", "invalid tag", err)
	}
	e.blocked[tag.Canonical(t)] = struct{}{}
	e.record(PhaseRequest, EventTagBlocked, "", tag.Canonical(t), "", "")
	return nil
}

// Count returns the number of objects tracked under a tag.
// Tolerant of unknown tags: returns 0.
func (e *Engine) Count(t string) int {
	return e.registry.Count(t)
}

// Exists reports whether any object is tracked under a tag.
func (e *Engine) Exists(t string) bool {
	return e.registry.Exists(t)
}

// Snapshot returns a copy of the current tag -> count pairs, sorted with
// the wildcard first. Diagnostics only, never control flow.
func (e *Engine) Snapshot() []tag.TagCount {
	return e.registry.Snapshot()
}

// Active returns a snapshot copy of the execution queue in order.
// Diagnostics only.
func (e *Engine) Active() []*routine.Routine {
	out := make([]*routine.Routine, len(e.active))
	copy(out, e.active)
	return out
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// PendingCount returns the number of queued addition candidates.
// Useful for monitoring and testing.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

// QueuedMessages returns the number of undelivered messages.
func (e *Engine) QueuedMessages() int {
	return e.messages.len()
}

// Teardown forcefully stops every tracked routine, bypassing the deferred
// removal phase, and clears all queues. The engine must not be updated
// afterwards. This is the only sanctioned immediate stop.
func (e *Engine) Teardown() {
	if e.tornDown {
		return
	}
	e.tornDown = true
	for _, u := range e.active {
		e.safeStop(PhaseTeardown, u, false, true)
		e.registry.Unregister(u)
	}
	for _, c := range e.pending {
		if c.unit != nil {
			e.safeStop(PhaseTeardown, c.unit, false, false)
		}
	}
	e.active = nil
	e.next = nil
	e.pending = nil
	e.stops = nil
	e.detaches = nil
	e.pauses = nil
	e.resumes = nil
	e.blocked = make(map[string]struct{})
	e.messages.clear()
	slog.Info("engine torn down")
}

// reportFault routes a recovered panic to the fault handler and trace.
func (e *Engine) reportFault(phase Phase, unitID string, value any) {
	f := Fault{
		Frame: e.clock.Frame(),
		Phase: phase,
		Unit:  unitID,
		Value: value,
	}
	e.record(phase, EventUnitFault, unitID, "", "", fmt.Sprintf("%v", value))
	if e.onFault != nil {
		e.onFault(f)
		return
	}
	slog.Error("routine fault",
		"frame", f.Frame,
		"phase", string(f.Phase),
		"unit", f.Unit,
		"value", f.Value,
	)
}

// validateTags checks that a taggable carries at least one well-formed tag.
func validateTags(obj tag.Taggable) error {
	tags := obj.Tags()
	if len(tags) == 0 {
		return fmt.Errorf("%w: object has no tags", tag.ErrInvalid)
	}
	for _, t := range tags {
		if err := tag.Validate(t); err != nil {
			return err
		}
	}
	return nil
}
