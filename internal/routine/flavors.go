package routine

import (
	"github.com/roach88/metronome/internal/message"
)

// Do builds a routine that invokes fn with the bias-mapped position every
// frame for maxCycles cycles of the given period.
func Do(period, maxCycles float64, fn func(t float64), opts ...Option) (*Routine, error) {
	return New(period, maxCycles, append([]Option{OnUpdate(fn)}, opts...)...)
}

// Once builds a single-shot routine: one frame-locked cycle that invokes fn
// exactly once and finishes.
func Once(fn func(), opts ...Option) (*Routine, error) {
	return New(0, 1, append([]Option{OnUpdate(func(float64) { fn() })}, opts...)...)
}

// WaitForMessage builds a routine that waits up to timeout seconds for a
// message named name on receiverTag.
//
// The routine registers under receiverTag, so it intercepts matching
// deliveries. On the first match it records success, invokes onMatch, and
// forces its cycle to complete. If it times out unmatched, Fail runs from
// the exit hook, reporting through the failure handler (OnFailure option).
//
// This is the primary consumer of the delivery contract: match-then-step,
// fail-on-timeout.
func WaitForMessage(receiverTag, name string, timeout float64, onMatch func(message.Message), opts ...Option) (*Routine, error) {
	var r *Routine
	matched := false

	base := []Option{
		WithTags(receiverTag),
		OnIntercept(func(m message.Message) {
			if matched || m.Name != name {
				return
			}
			matched = true
			if onMatch != nil {
				onMatch(m)
			}
			r.StepForward()
		}),
		OnExit(func() {
			if !matched {
				r.Fail()
			}
		}),
	}
	built, err := New(timeout, 1, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	r = built
	return r, nil
}

// WaitUntil builds a routine that waits up to timeout seconds for cond to
// become true, checking once per update. Success forces cycle completion;
// timing out unmatched runs the Fail path.
func WaitUntil(cond func() bool, timeout float64, opts ...Option) (*Routine, error) {
	var r *Routine
	matched := false

	base := []Option{
		OnUpdate(func(float64) {
			if !matched && cond() {
				matched = true
				r.StepForward()
			}
		}),
		OnExit(func() {
			if !matched {
				r.Fail()
			}
		}),
	}
	built, err := New(timeout, 1, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	r = built
	return r, nil
}
