// Package sequencer executes enabled modules strictly in initialization
// order, one at a time, with the initialize/execute/cleanup lifecycle per
// module. Cleanup is guaranteed on every exit path for any module that was
// initialized. A module's execution failure never blocks independent
// modules; modules transitively depending on a failed one are skipped with
// a reason citing the upstream failure by name.
//
// Scheduling is deliberately single-threaded: execute steps may mutate the
// same shared on-disk document state, and no locking discipline is
// justified at current scale. Cancellation and the optional deadline are
// cooperative, checked only between module executions.
package sequencer
