package resolver

import "fmt"

// MissingDependencyError reports a dependency name that does not match any
// discovered module. It is fatal for the dependent and its transitive
// dependents, and harmless for unrelated modules.
type MissingDependencyError struct {
	Module     string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("module %q depends on unknown module %q", e.Module, e.Dependency)
}
