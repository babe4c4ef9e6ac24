// Package harness runs declarative scheduler scenarios.
//
// A scenario YAML file names a set of probe routines, a frame script
// (updates, sends, bulk tag commands), and assertions over the resulting
// frame trace and probe counters. Scenarios execute on a real engine with
// a sequential ID generator and an in-memory trace recorder, so the trace
// is bit-for-bit reproducible and can be pinned with golden files.
//
// The harness exists to validate scheduler semantics end to end - phase
// order, delivery staging, promotion, blocking - without hand-writing an
// engine setup per test.
package harness
