package routine

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/metronome/internal/message"
	"github.com/roach88/metronome/internal/tag"
)

// Forever is the documented sentinel for "unbounded cycles".
// It is the only non-finite value New accepts for maxCycles.
var Forever = math.Inf(1)

// Timing validation errors. All wrap ErrInvalidTiming so callers can
// classify with errors.Is.
var (
	ErrInvalidTiming = errors.New("invalid timing value")
)

// Routine is a resumable, timed, cycle-based task.
//
// The scheduler exclusively owns tracked routines: user callbacks may
// configure a routine before it is registered and may call Stop/Fail/
// StepForward at any time, but structural mutations (tags, children)
// are sealed once the scheduler registers it.
type Routine struct {
	id string

	age       float64
	period    float64
	maxCycles float64
	speed     float64
	cycle     int

	active  bool
	paused  bool
	entered bool
	tracked bool
	failed  bool

	tags     []string
	children []*Routine

	// depth is the immediate-insertion nesting depth; reset to 0 once the
	// routine begins normal queued execution.
	depth int

	// discardChildren is set by a stop request with stopChildren=true;
	// the removal phase then drops queued children instead of promoting them.
	discardChildren bool

	syncStart         bool
	lastFrameOnStopIf bool

	bias      func(float64) float64
	skip      func() bool
	stoppage  func() bool
	onFailure func()

	enterFn      func()
	firstFrameFn func()
	updateFn     func(t float64)
	lastFrameFn  func()
	exitFn       func()
	interceptFn  func(message.Message)
}

// Option configures a routine at construction time.
type Option func(*Routine) error

// New validates timing values and builds an active routine.
//
// period is seconds per cycle; 0 means one cycle per update call. Negative,
// NaN, or infinite periods are rejected. maxCycles must be positive and not
// NaN; Forever is the only accepted non-finite sentinel.
func New(period, maxCycles float64, opts ...Option) (*Routine, error) {
	if math.IsNaN(period) || math.IsInf(period, 0) || period < 0 {
		return nil, fmt.Errorf("%w: period %v", ErrInvalidTiming, period)
	}
	if math.IsNaN(maxCycles) || maxCycles <= 0 || math.IsInf(maxCycles, -1) {
		return nil, fmt.Errorf("%w: maxCycles %v", ErrInvalidTiming, maxCycles)
	}
	r := &Routine{
		period:    period,
		maxCycles: maxCycles,
		speed:     1,
		active:    true,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Must is New for statically-known-good arguments; it panics on error.
func Must(period, maxCycles float64, opts ...Option) *Routine {
	r, err := New(period, maxCycles, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithTags appends validated tags.
func WithTags(tags ...string) Option {
	return func(r *Routine) error {
		for _, t := range tags {
			if err := r.AddTag(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithSpeed sets the multiplier applied to elapsed real time.
// Must be finite.
func WithSpeed(speed float64) Option {
	return func(r *Routine) error {
		if math.IsNaN(speed) || math.IsInf(speed, 0) {
			return fmt.Errorf("%w: speed %v", ErrInvalidTiming, speed)
		}
		r.speed = speed
		return nil
	}
}

// WithBias maps the in-cycle position t before the update hook sees it.
func WithBias(fn func(float64) float64) Option {
	return func(r *Routine) error {
		r.bias = fn
		return nil
	}
}

// WithSyncAtStart fires an immediate update(bias(0)) right after the enter
// hooks, so visual state driven by the routine does not pop on frame one.
func WithSyncAtStart() Option {
	return func(r *Routine) error {
		r.syncStart = true
		return nil
	}
}

// WithSkipIf discards the routine unadded when the predicate is true at
// addition-processing time.
func WithSkipIf(fn func() bool) Option {
	return func(r *Routine) error {
		r.skip = fn
		return nil
	}
}

// WithStopIf stops the routine when the predicate evaluates true after an
// update. callLastFrame controls whether the last-frame hook still fires.
func WithStopIf(fn func() bool, callLastFrame bool) Option {
	return func(r *Routine) error {
		r.stoppage = fn
		r.lastFrameOnStopIf = callLastFrame
		return nil
	}
}

// OnEnter sets the hook fired once, before the routine's first frame.
func OnEnter(fn func()) Option {
	return func(r *Routine) error {
		r.enterFn = fn
		return nil
	}
}

// OnFirstFrame sets the hook fired at the start of every cycle.
func OnFirstFrame(fn func()) Option {
	return func(r *Routine) error {
		r.firstFrameFn = fn
		return nil
	}
}

// OnUpdate sets the per-frame hook. t is the bias-mapped in-cycle position
// in [0, 1]; the terminal call receives exactly 1.
func OnUpdate(fn func(t float64)) Option {
	return func(r *Routine) error {
		r.updateFn = fn
		return nil
	}
}

// OnLastFrame sets the hook fired when a cycle boundary is crossed, before
// the cycle counter increments.
func OnLastFrame(fn func()) Option {
	return func(r *Routine) error {
		r.lastFrameFn = fn
		return nil
	}
}

// OnExit sets the hook fired exactly once when the routine goes inactive.
func OnExit(fn func()) Option {
	return func(r *Routine) error {
		r.exitFn = fn
		return nil
	}
}

// OnFailure sets the handler invoked by Fail. Timeout-driven logical
// failure is an expected outcome, reported here rather than as an error.
func OnFailure(fn func()) Option {
	return func(r *Routine) error {
		r.onFailure = fn
		return nil
	}
}

// OnIntercept sets the message-interception hook. A routine with this hook
// receives every message delivered to any of its tags.
func OnIntercept(fn func(message.Message)) Option {
	return func(r *Routine) error {
		r.interceptFn = fn
		return nil
	}
}

// AddTag validates and appends a tag. Tags are sealed once the scheduler
// registers the routine; late additions would desynchronize the registry.
func (r *Routine) AddTag(t string) error {
	if err := tag.Validate(t); err != nil {
		return err
	}
	if r.tracked {
		return fmt.Errorf("%w: routine already registered", tag.ErrInvalid)
	}
	c := tag.Canonical(t)
	for _, have := range r.tags {
		if have == c {
			return nil
		}
	}
	r.tags = append(r.tags, c)
	return nil
}

// Tags implements tag.Taggable.
func (r *Routine) Tags() []string {
	return r.tags
}

// Add appends a child. Children are owned by this routine and become
// schedulable only when it is disposed; this is NOT a scheduler enqueue.
func (r *Routine) Add(child *Routine) *Routine {
	if child != nil {
		r.children = append(r.children, child)
	}
	return r
}

// Children returns the currently queued children.
func (r *Routine) Children() []*Routine {
	return r.children
}

// TakeChildren detaches and returns the queued children.
// Used by the scheduler's removal phase during promotion.
func (r *Routine) TakeChildren() []*Routine {
	children := r.children
	r.children = nil
	return children
}

// Intercept implements message.Interceptor.
func (r *Routine) Intercept(m message.Message) {
	if r.interceptFn != nil {
		r.interceptFn(m)
	}
}

// ID returns the scheduler-assigned identifier, empty until registration.
func (r *Routine) ID() string { return r.id }

// SetID assigns the identifier. Scheduler use only.
func (r *Routine) SetID(id string) { r.id = id }

// Depth returns the immediate-insertion nesting depth.
func (r *Routine) Depth() int { return r.depth }

// SetDepth records the nesting depth. Scheduler use only.
func (r *Routine) SetDepth(d int) { r.depth = d }

// MarkTracked seals tags; the scheduler calls it at registration.
func (r *Routine) MarkTracked() { r.tracked = true }

// Tracked reports whether the scheduler has registered this routine.
func (r *Routine) Tracked() bool { return r.tracked }

// Entered reports whether the enter hooks have fired.
func (r *Routine) Entered() bool { return r.entered }

// Active reports whether the routine has not yet stopped.
func (r *Routine) Active() bool { return r.active }

// Paused reports whether the routine is frozen in its queue slot.
func (r *Routine) Paused() bool { return r.paused }

// SetPaused freezes or resumes the routine. A paused routine keeps its
// queue position; its timer does not advance.
func (r *Routine) SetPaused(p bool) { r.paused = p }

// DiscardChildren reports whether a stop request asked for queued children
// to be dropped instead of promoted.
func (r *Routine) DiscardChildren() bool { return r.discardChildren }

// SetDiscardChildren flags the routine for child discarding at removal.
func (r *Routine) SetDiscardChildren(discard bool) { r.discardChildren = discard }

// SkipNow evaluates the skip predicate, if any, at addition time.
func (r *Routine) SkipNow() bool {
	return r.skip != nil && r.skip()
}

// Age returns time elapsed in cycle units.
func (r *Routine) Age() float64 { return r.age }

// Cycle returns the completed-cycle counter.
func (r *Routine) Cycle() int { return r.cycle }

// Position returns the in-cycle position, end-clamped to 1.
func (r *Routine) Position() float64 {
	return math.Min(r.age-float64(r.cycle), 1)
}
