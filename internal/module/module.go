// Package module defines the capability contract that every processing
// unit implements, together with the shared run state the sequencer
// threads through them.
//
// Why a single three-phase interface?
//
// Processing units come from two generations of the toolkit: current units
// written against this engine, and legacy units that expose a single
// entry-point function. Dispatching across both through one
// Initialize/Execute/Cleanup interface keeps the sequencer free of
// per-generation branching; the legacy shape is adapted once, at the
// boundary, by WrapLegacy.
package module

import "context"

// Handler is the lifecycle contract for a processing unit. The sequencer
// calls the three phases strictly in order and guarantees Cleanup runs for
// every handler whose Initialize completed, on every exit path.
type Handler interface {
	// Initialize receives the module's merged settings bag (manifest
	// defaults overlaid by the developer document and user overrides).
	Initialize(ctx context.Context, options map[string]any) error

	// Execute performs the module's transformation against the shared run
	// state. Modules may mutate run; they execute one at a time.
	Execute(ctx context.Context, run *RunContext) error

	// Cleanup releases anything Initialize or Execute acquired.
	Cleanup(ctx context.Context) error
}

// Factory constructs a fresh Handler for one invocation. Handlers are not
// reused across runs, so factories must not return shared instances.
type Factory func() Handler

// RunContext is the document state shared by all modules within one run.
// The scoping module populates Files; transform modules rewrite them.
type RunContext struct {
	// Root is the documentation tree the invocation operates on.
	Root string

	// Files is the set of documents in scope, as paths under Root.
	Files []string
}
