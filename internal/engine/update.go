package engine

import (
	"log/slog"
	"math"

	"github.com/roach88/metronome/internal/message"
	"github.com/roach88/metronome/internal/routine"
	"github.com/roach88/metronome/internal/tag"
)

// Update advances one frame. It is the sole driving entry point.
//
// deltaTime must be finite and positive; anything else is rejected with a
// validation error before any state mutation. Valid values are clamped to
// the configured maximum step. All phases always run, even when their
// queues are empty.
func (e *Engine) Update(deltaTime float64) error {
	if e.tornDown {
		return newValidationError(ErrCodeTornDown, "Update", "engine has been torn down", nil)
	}
	if math.IsNaN(deltaTime) || math.IsInf(deltaTime, 0) || deltaTime <= 0 {
		return newValidationError(ErrCodeBadDelta, "Update",
			"deltaTime must be finite and positive", nil)
	}
	if deltaTime > e.maxDelta {
		deltaTime = e.maxDelta
	}

	frame := e.clock.NextFrame()
	e.record(PhaseFrame, EventFrameStart, "", "", "", "")
	slog.Debug("frame start", "frame", frame, "dt", deltaTime, "active", len(e.active))

	e.deliver(PhaseMessagesBefore, message.StageBeforeRoutines)
	e.execute(deltaTime)
	e.deliver(PhaseMessagesAfter, message.StageAfterRoutines)
	e.applyStops()
	e.applyRemovals()
	e.applyAdditions()
	e.deliver(PhaseMessagesFinal, message.StageSoonestPossible)
	e.applyResumes()
	e.applyPauses()
	clear(e.blocked)

	return nil
}

// deliver runs one message-delivery pass for the given stage.
// SoonestPossible messages are eligible in every pass; all other messages
// are requeued until a pass for their stage runs. The pass visits the
// queue exactly its starting length.
func (e *Engine) deliver(phase Phase, stage message.Stage) {
	n := e.messages.len()
	for i := 0; i < n; i++ {
		m, ok := e.messages.pop()
		if !ok {
			return
		}
		if m.Stage != stage && m.Stage != message.StageSoonestPossible {
			e.messages.push(m)
			continue
		}
		e.fanOut(phase, m)
	}
}

// fanOut delivers one message to every interceptor in its tag bucket.
// Each matching receiver is visited exactly once; delivery order within a
// bucket is contractually unspecified (the registry keeps it stable for
// trace reproducibility).
func (e *Engine) fanOut(phase Phase, m message.Message) {
	for _, obj := range e.registry.Members(m.ReceiverTag) {
		ic, ok := obj.(message.Interceptor)
		if !ok {
			continue
		}
		unitID := ""
		u, isRoutine := obj.(*routine.Routine)
		if isRoutine {
			unitID = u.ID()
		}
		if !e.guard(phase, unitID, func() { ic.Intercept(m) }) && isRoutine {
			u.Stop(false, false)
		}
		e.record(phase, EventMessageDelivered, unitID, m.ReceiverTag, m.Name, "")
	}
}

// execute advances every active routine once, double-buffered: routines
// added during the pass land in the next buffer and are not updated this
// pass, and paused routines keep their queue slot so deterministic order
// survives pause/resume. Buffers swap at the end.
func (e *Engine) execute(deltaTime float64) {
	e.executing = true
	e.next = e.next[:0]

	for i := 0; i < len(e.active); i++ {
		u := e.active[i]
		// The unit keeps its slot before running, so immediate insertions
		// made from its hooks land after it in next frame's order.
		e.next = append(e.next, u)
		if !u.Active() || u.Paused() {
			continue
		}
		// Normal queued execution resets the immediate-insertion depth.
		u.SetDepth(0)
		entered := u.Entered()
		if !e.guard(PhaseExecute, u.ID(), func() { u.Update(deltaTime) }) {
			u.Stop(false, false)
		} else if !entered {
			e.record(PhaseExecute, EventUnitEntered, u.ID(), "", "", "")
		}
	}

	e.active, e.next = e.next, e.active[:0]
	e.executing = false
}

// applyStops consumes this frame's stop requests. Tag requests stop every
// tracked routine in the bucket; stopChildren flags their queued children
// for discarding at the removal phase.
func (e *Engine) applyStops() {
	reqs := e.stops
	e.stops = nil
	for _, req := range reqs {
		if req.unit != nil {
			e.stopRoutine(req.unit, req.stopChildren)
			continue
		}
		for _, obj := range e.registry.Members(req.tag) {
			if u, ok := obj.(*routine.Routine); ok {
				e.stopRoutine(u, req.stopChildren)
			}
		}
	}
}

func (e *Engine) stopRoutine(u *routine.Routine, stopChildren bool) {
	if !u.Active() {
		return
	}
	u.SetDiscardChildren(stopChildren)
	e.safeStop(PhaseStops, u, false, true)
	e.record(PhaseStops, EventUnitStopped, u.ID(), "", "", "")
}

// applyRemovals unregisters every routine that finished this frame,
// promotes its children into the addition queue (inheriting the parent's
// cascading tags, filtered against the block list), and disposes it.
// Detached taggables are unregistered here too.
func (e *Engine) applyRemovals() {
	for _, obj := range e.detaches {
		e.registry.Unregister(obj)
	}
	e.detaches = nil

	kept := e.active[:0]
	for _, u := range e.active {
		if u.Active() {
			kept = append(kept, u)
			continue
		}
		e.registry.Unregister(u)
		children := u.TakeChildren()
		if u.DiscardChildren() {
			for _, child := range children {
				e.record(PhaseRemovals, EventUnitDropped, child.ID(), "", "", "children discarded")
			}
		} else {
			for _, child := range children {
				e.promote(u, child)
			}
		}
		e.record(PhaseRemovals, EventUnitDisposed, u.ID(), "", "", "")
	}
	e.active = kept
}

// promote moves one child of a disposed parent into the addition queue,
// unless a block rule drops it.
func (e *Engine) promote(parent, child *routine.Routine) {
	for _, t := range parent.Tags() {
		if tag.Cascades(t) {
			// Children never inherit non-cascading tags.
			_ = child.AddTag(t)
		}
	}
	if child.ID() == "" {
		child.SetID(e.idGen.Generate())
	}
	if e.isBlocked(child.Tags()) {
		e.record(PhaseRemovals, EventUnitDropped, child.ID(), "", "", "blocked")
		return
	}
	e.pending = append(e.pending, addCandidate{unit: child})
	e.record(PhaseRemovals, EventUnitPromoted, child.ID(), "", "", "")
}

// applyAdditions drains the addition queue. Candidates whose tags
// intersect the block list are dropped; a routine whose skip predicate
// evaluates true is dropped unregistered; non-routine taggables are
// registered regardless of skip semantics.
func (e *Engine) applyAdditions() {
	candidates := e.pending
	e.pending = nil
	for _, c := range candidates {
		if c.obj != nil {
			if e.isBlocked(c.obj.Tags()) {
				e.record(PhaseAdditions, EventUnitDropped, "", "", "", "listener blocked")
				continue
			}
			if err := e.registry.Register(c.obj); err != nil {
				slog.Error("listener registration failed", "error", err)
			}
			continue
		}
		e.processRoutineAddition(PhaseAdditions, c.unit)
	}
}

// processRoutineAddition registers one routine and enqueues it for
// execution. Returns false if the routine was dropped (blocked, skipped,
// already stopped, or already tracked).
func (e *Engine) processRoutineAddition(phase Phase, r *routine.Routine) bool {
	if r.ID() == "" {
		r.SetID(e.idGen.Generate())
	}
	if r.Tracked() {
		e.record(phase, EventUnitDropped, r.ID(), "", "", "duplicate addition")
		return false
	}
	if !r.Active() {
		e.record(phase, EventUnitDropped, r.ID(), "", "", "stopped before addition")
		return false
	}
	if len(r.Tags()) == 0 {
		// Every tracked object carries at least one tag; the fallback is
		// non-cascading so it never leaks onto promoted children.
		_ = r.AddTag(tag.Untagged)
	}
	if e.isBlocked(r.Tags()) {
		e.record(phase, EventUnitDropped, r.ID(), "", "", "blocked")
		return false
	}

	skipped := false
	if !e.guard(phase, r.ID(), func() { skipped = r.SkipNow() }) {
		return false
	}
	if skipped {
		e.record(phase, EventUnitDropped, r.ID(), "", "", "skip predicate")
		return false
	}

	if err := e.registry.Register(r); err != nil {
		slog.Error("routine registration failed", "unit", r.ID(), "error", err)
		return false
	}
	r.MarkTracked()
	if e.executing {
		e.next = append(e.next, r)
	} else {
		e.active = append(e.active, r)
	}
	e.record(phase, EventUnitAdded, r.ID(), "", "", "")
	return true
}

// applyResumes lifts pauses. Runs before applyPauses so something resumed
// this frame remains eligible to be paused again in the same frame.
func (e *Engine) applyResumes() {
	tags := e.resumes
	e.resumes = nil
	for _, t := range tags {
		for _, obj := range e.registry.Members(t) {
			if u, ok := obj.(*routine.Routine); ok {
				u.SetPaused(false)
			}
		}
		e.record(PhasePauseResume, EventTagResumed, "", t, "", "")
	}
}

// applyPauses freezes every tracked routine under each requested tag.
func (e *Engine) applyPauses() {
	tags := e.pauses
	e.pauses = nil
	for _, t := range tags {
		for _, obj := range e.registry.Members(t) {
			if u, ok := obj.(*routine.Routine); ok {
				u.SetPaused(true)
			}
		}
		e.record(PhasePauseResume, EventTagPaused, "", t, "", "")
	}
}

// isBlocked reports whether any tag intersects this frame's block list.
func (e *Engine) isBlocked(tags []string) bool {
	if len(e.blocked) == 0 {
		return false
	}
	for _, t := range tags {
		if _, hit := e.blocked[tag.Canonical(t)]; hit {
			return true
		}
	}
	return false
}

// guard runs fn, recovering a panic from user-supplied code and reporting
// it as a Fault. Returns false if fn panicked.
func (e *Engine) guard(phase Phase, unitID string, fn func()) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			e.reportFault(phase, unitID, v)
			ok = false
		}
	}()
	fn()
	return true
}

// safeStop stops a routine with its hooks under fault isolation. The
// routine is inactive afterwards even if a hook panicked.
func (e *Engine) safeStop(phase Phase, u *routine.Routine, callLastFrame, callExit bool) {
	e.guard(phase, u.ID(), func() { u.Stop(callLastFrame, callExit) })
}
