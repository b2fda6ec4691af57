package registry

import (
	"fmt"
	"log/slog"

	"github.com/rolfedh/adtgo/internal/module"
)

// Registrar is the interface that all built-in modules implement to be
// registered with an application instance.
type Registrar interface {
	Register(r *Registry)
}

// Registry holds the registered handler factories for a single application
// instance.
type Registry struct {
	factories map[string]module.Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{factories: make(map[string]module.Factory)}
}

// RegisterHandler registers a factory under a handler name. Registering
// the same name twice is a programmer error and panics.
func (r *Registry) RegisterHandler(name string, factory module.Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering module handler.", "name", name)
	r.factories[name] = factory
}

// Handler looks up a registered factory by handler name.
func (r *Registry) Handler(name string) (module.Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}
