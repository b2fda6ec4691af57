package sequencer

import "fmt"

// ModuleError records a failure raised inside a module's own lifecycle:
// caught, attributed to that module, and propagated to its transitive
// dependents as skip-with-reason.
type ModuleError struct {
	Module string
	Phase  string
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %q: %s: %v", e.Module, e.Phase, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}
