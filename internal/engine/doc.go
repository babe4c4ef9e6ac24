// Package engine implements the metronome frame scheduler.
//
// The engine is the heart of metronome: a host drives it with sequential
// Update(dt) calls, and it runs a population of timed cycle routines,
// delivers tag-addressed messages between them, and applies tag-based bulk
// commands, all in a fixed per-frame phase order.
//
// ARCHITECTURE:
//
// Single frame owner:
// One logical thread drives a scheduler instance. All registry and queue
// mutation happens inside Update's phases; user callbacks may only request
// mutations (send, stop, pause, add) through the public API, which defers
// them to the correct phase. That indirection is what lets a callback
// running mid-iteration stop another routine without corrupting the pass.
//
// Phase order per Update(dt):
//  1. Validate dt (finite, > 0), clamp to the maximum step.
//  2. Deliver BeforeRoutines + SoonestPossible messages.
//  3. Execute every active routine once, double-buffered: routines added
//     during the pass land in the next buffer and are not updated this
//     pass; paused routines keep their queue slot.
//  4. Deliver AfterRoutines + SoonestPossible messages.
//  5. Apply stop requests by tag or by reference.
//  6. Apply removals: unregister finished routines, promote their children
//     (inheriting cascading tags, filtered by the block list), dispose.
//  7. Apply pending additions (skip predicates, block list).
//  8. Deliver SoonestPossible messages again so listeners added this frame
//     are reachable before it ends.
//  9. Apply resume requests, then pause requests.
// 10. Clear the block set (block requests last exactly one frame).
//
// CRITICAL PATTERNS:
//
// Execution order of active routines matches addition order (FIFO) and is
// preserved across pause/resume. Messages are delivered at most once per
// pass per message; a pass visits the queue exactly its starting length, so
// requeued messages are never redelivered within the same pass.
//
// Validation failures (bad tag, bad timing, nil sender, nesting depth) are
// contract violations and come back as *ValidationError. Panics escaping a
// user hook are recovered per-routine, reported as a Fault, and stop only
// that routine; the remaining phases still run.
package engine
