package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestsPath is the directory scanned for module manifests.
	ManifestsPath string
	// DevConfigPath is the required developer module configuration document.
	DevConfigPath string
	// UserConfigPath is the optional user override document; absence of the
	// file is tolerated.
	UserConfigPath string
	// DocsRoot is the documentation tree modules operate on.
	DocsRoot string

	LogFormat string
	LogLevel  string

	// Enable and Disable collect the per-invocation module overrides.
	Enable  []string
	Disable []string

	// ExcludeLegacy disables legacy-generation modules for this run.
	ExcludeLegacy bool

	// StatusOnly reports resolution without executing any module.
	StatusOnly bool

	// Deadline bounds the whole sequence; zero means no deadline.
	Deadline time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DevConfigPath == "" {
		return nil, errors.New("DevConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.ManifestsPath == "" {
		return nil, errors.New("ManifestsPath is a required configuration field and cannot be empty")
	}
	if !cfg.StatusOnly && cfg.DocsRoot == "" {
		return nil, errors.New("DocsRoot is required unless running in status-only mode")
	}
	return &cfg, nil
}

// Invocation flattens the Enable/Disable lists into the override map the
// resolver consumes. Disables are applied after enables, mirroring the
// order flags are validated in; the CLI rejects a name in both lists.
func (c *Config) Invocation() map[string]bool {
	overrides := make(map[string]bool, len(c.Enable)+len(c.Disable))
	for _, name := range c.Enable {
		overrides[name] = true
	}
	for _, name := range c.Disable {
		overrides[name] = false
	}
	return overrides
}
