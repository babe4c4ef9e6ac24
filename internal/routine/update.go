package routine

// Enter fires the enter and first-frame hooks (and the sync-at-start update)
// exactly once. The scheduler calls it either synchronously at an immediate
// insertion site or implicitly on the routine's first Update.
func (r *Routine) Enter() {
	if r.entered || !r.active {
		return
	}
	r.entered = true
	if r.enterFn != nil {
		r.enterFn()
	}
	if r.firstFrameFn != nil {
		r.firstFrameFn()
	}
	if r.syncStart && r.updateFn != nil {
		r.updateFn(r.biased(0))
	}
}

// Update advances the routine by one frame step. No-op if inactive.
//
// The terminal update hook call is guaranteed to receive t == 1 exactly:
// age is clamped against maxCycles and the in-cycle position is end-clamped,
// never compared for equality against accumulated floats.
func (r *Routine) Update(deltaTime float64) {
	if !r.active {
		return
	}
	r.Enter()
	if !r.active {
		// An enter hook may stop the routine.
		return
	}

	if r.age >= r.maxCycles {
		// Forced past the end (StepForward) or resumed on the boundary.
		r.Stop(true, true)
		return
	}

	if r.period == 0 {
		r.age++
	} else {
		r.age += (deltaTime * r.speed) / r.period
	}
	if r.age > r.maxCycles {
		r.age = r.maxCycles
	}

	if r.updateFn != nil {
		r.updateFn(r.biased(r.Position()))
	}

	if r.age-float64(r.cycle) >= 1 {
		// Last frame of the cycle fires before the counter advances.
		if r.lastFrameFn != nil {
			r.lastFrameFn()
		}
		r.cycle++
		if float64(r.cycle) >= r.maxCycles {
			r.Stop(false, true)
			return
		}
		if r.firstFrameFn != nil {
			r.firstFrameFn()
		}
	}

	if r.active && r.stoppage != nil && r.stoppage() {
		r.Stop(r.lastFrameOnStopIf, true)
	}
}

// Stop deactivates the routine. Idempotent: it only has an effect while the
// routine is active, so hooks fire at most once. The actual removal from
// the scheduler happens at the next removal phase.
func (r *Routine) Stop(callLastFrame, callExit bool) {
	if !r.active {
		return
	}
	r.active = false
	if callLastFrame && r.lastFrameFn != nil {
		r.lastFrameFn()
	}
	if callExit && r.exitFn != nil {
		r.exitFn()
	}
}

// Fail reports a timeout-style logical failure: it invokes the failure
// handler, clears queued children, and stops the routine. Wait-style
// routines call it from their exit hook when they time out unmatched.
func (r *Routine) Fail() {
	if r.failed {
		return
	}
	r.failed = true
	if r.onFailure != nil {
		r.onFailure()
	}
	r.children = nil
	r.Stop(false, true)
}

// StepForward forces the current cycle to complete on the next update call.
// Wait-style routines call it when their condition is met.
func (r *Routine) StepForward() {
	if !r.active {
		return
	}
	r.age = float64(r.cycle) + 1
}

func (r *Routine) biased(t float64) float64 {
	if r.bias == nil {
		return t
	}
	return r.bias(t)
}
