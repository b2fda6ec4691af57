package registry

import "fmt"

// LoadError records that a module's implementation could not be bound:
// its manifest names a handler no registered factory provides. The module
// degrades to a failed resolution; it never aborts discovery.
type LoadError struct {
	Module  string
	Handler string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("module %q: handler %q is not registered", e.Module, e.Handler)
}
