package module

import "context"

// LegacyFunc is the original single entry point exposed by pre-engine
// processing units: one call receiving the run state and the raw settings.
type LegacyFunc func(ctx context.Context, run *RunContext, options map[string]any) error

// WrapLegacy adapts a legacy entry point to the Handler lifecycle. The
// settings bag is captured at Initialize and handed to the entry point at
// Execute; Cleanup is a no-op because legacy units hold no resources
// between calls.
func WrapLegacy(fn LegacyFunc) Factory {
	return func() Handler {
		return &legacyAdapter{fn: fn}
	}
}

type legacyAdapter struct {
	fn      LegacyFunc
	options map[string]any
}

func (a *legacyAdapter) Initialize(_ context.Context, options map[string]any) error {
	a.options = options
	return nil
}

func (a *legacyAdapter) Execute(ctx context.Context, run *RunContext) error {
	return a.fn(ctx, run, a.options)
}

func (a *legacyAdapter) Cleanup(context.Context) error {
	return nil
}
