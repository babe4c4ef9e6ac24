// Package routine implements the timed cycle unit: a short-lived, resumable
// task that the scheduler advances once per frame.
//
// A routine owns its own age/cycle/period state machine and exposes five
// lifecycle hooks: enter, first-frame, update, last-frame, exit. Concrete
// behaviors (actions, waits) are plain constructors over the same struct
// configured with functional options; there is no subclass hierarchy.
//
// TIMING MODEL:
//   - period == 0 means one cycle per update call (frame-locked cadence).
//   - period > 0 advances age by deltaTime*speed/period per update.
//   - The in-cycle position t is end-clamped: the terminal update hook call
//     always receives exactly 1, never a float-drift neighbor.
//   - A routine goes inactive exactly once and cannot be reactivated.
//
// Routines added to another routine (children) become schedulable only when
// the parent is disposed, inheriting the parent's cascading tags.
package routine
