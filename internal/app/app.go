package app

import (
	"io"
	"log/slog"

	"github.com/rolfedh/adtgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no registrars are given, the compiled-in core module set is used.
func NewApp(outW io.Writer, cfg *Config, registrars ...registry.Registrar) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(registrars) == 0 {
		registrars = coreModules
	}
	for _, r := range registrars {
		r.Register(reg)
	}
	logger.Debug("All module handlers registered.", "count", len(registrars))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
