// Package trace records the scheduler's frame trace.
//
// The engine emits one structured event per observable side effect (frame
// start, message delivery, routine lifecycle transitions, faults), stamped
// by the logical clock. Two recorders are provided: Store persists events
// to SQLite for post-hoc inspection via the CLI, and Memory buffers them
// in-process for the harness and tests.
//
// Recording is diagnostics-only; the engine never reads a trace back to
// make control-flow decisions.
package trace
