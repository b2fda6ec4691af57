package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rolfedh/adtgo/internal/ctxlog"
)

// ModuleConfig is one developer-authored module entry: whether the module
// is required, whether it is enabled by default, and the dependencies and
// settings the developer declares for it. Config-declared dependencies
// augment the ones in the module's own manifest; they never replace them.
type ModuleConfig struct {
	Name           string
	Required       bool
	DefaultEnabled bool
	Dependencies   []string
	InitOrderHint  *int
	Settings       map[string]any
}

// DeveloperConfig is the authoritative module configuration shipped with
// the content repository.
type DeveloperConfig struct {
	Version string
	Modules []ModuleConfig
}

// UserOverride carries a user's optional adjustments on top of the
// developer defaults.
type UserOverride struct {
	EnabledModules  []string
	DisabledModules []string
	ModuleOverrides map[string]map[string]any
}

// Wire structs use pointer fields so that "field absent" is
// distinguishable from a zero value during validation.
type developerDocument struct {
	Version *string       `json:"version"`
	Modules []moduleEntry `json:"modules"`
}

type moduleEntry struct {
	Name           *string        `json:"name"`
	Required       *bool          `json:"required"`
	DefaultEnabled *bool          `json:"defaultEnabled"`
	Dependencies   []string       `json:"dependencies"`
	InitOrderHint  *int           `json:"initOrderHint"`
	Config         map[string]any `json:"config"`
}

type userDocument struct {
	EnabledModules  []string                  `json:"enabledModules"`
	DisabledModules []string                  `json:"disabledModules"`
	ModuleOverrides map[string]map[string]any `json:"moduleOverrides"`
}

// Load reads and validates both configuration documents. The developer
// document is mandatory: its absence is a fatal ConfigurationError, since
// required and default-enabled status cannot otherwise be determined. The
// user document is optional; absence means "no overrides".
func Load(ctx context.Context, devPath, userPath string) (*DeveloperConfig, *UserOverride, error) {
	logger := ctxlog.FromContext(ctx)

	dev, err := loadDeveloper(devPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Developer configuration loaded.", "path", devPath, "modules", len(dev.Modules))

	if userPath == "" {
		return dev, nil, nil
	}
	user, err := loadUser(userPath)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		logger.Debug("No user configuration present.", "path", userPath)
	} else {
		logger.Debug("User configuration loaded.", "path", userPath,
			"enabled", len(user.EnabledModules), "disabled", len(user.DisabledModules))
	}
	return dev, user, nil
}

func loadDeveloper(path string) (*DeveloperConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("developer module configuration could not be read: %v", err)}
	}

	var doc developerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if doc.Version == nil || *doc.Version == "" {
		return nil, &ConfigurationError{Path: path, Detail: `missing required field "version"`}
	}

	dev := &DeveloperConfig{Version: *doc.Version}
	seen := make(map[string]bool, len(doc.Modules))
	for i, entry := range doc.Modules {
		name := "?"
		if entry.Name != nil {
			name = *entry.Name
		}
		if entry.Name == nil || *entry.Name == "" {
			return nil, entryError(path, i, name, "name")
		}
		if entry.Required == nil {
			return nil, entryError(path, i, name, "required")
		}
		if entry.DefaultEnabled == nil {
			return nil, entryError(path, i, name, "defaultEnabled")
		}
		if seen[*entry.Name] {
			return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("module entry %d: duplicate module name %q", i, *entry.Name)}
		}
		seen[*entry.Name] = true

		dev.Modules = append(dev.Modules, ModuleConfig{
			Name:           *entry.Name,
			Required:       *entry.Required,
			DefaultEnabled: *entry.DefaultEnabled,
			Dependencies:   entry.Dependencies,
			InitOrderHint:  entry.InitOrderHint,
			Settings:       entry.Config,
		})
	}

	return dev, nil
}

func loadUser(path string) (*UserOverride, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // Absence of user overrides is not an error.
		}
		return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("user configuration could not be read: %v", err)}
	}

	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	disabled := make(map[string]bool, len(doc.DisabledModules))
	for _, name := range doc.DisabledModules {
		disabled[name] = true
	}
	for _, name := range doc.EnabledModules {
		if disabled[name] {
			return nil, &ConfigurationError{Path: path, Detail: fmt.Sprintf("module %q appears in both enabledModules and disabledModules", name)}
		}
	}

	return &UserOverride{
		EnabledModules:  doc.EnabledModules,
		DisabledModules: doc.DisabledModules,
		ModuleOverrides: doc.ModuleOverrides,
	}, nil
}

func entryError(path string, index int, name, field string) *ConfigurationError {
	return &ConfigurationError{
		Path:   path,
		Detail: fmt.Sprintf("module entry %d (%q): missing required field %q", index, name, field),
	}
}
