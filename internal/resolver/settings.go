package resolver

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty/convert"

	"github.com/rolfedh/adtgo/internal/config"
	"github.com/rolfedh/adtgo/internal/manifest"
	"github.com/rolfedh/adtgo/internal/registry"
)

// mergeSettings builds a module's effective settings bag: manifest option
// defaults, overlaid by the developer document's config bag, overlaid by
// the user's per-module overrides.
func mergeSettings(d *registry.Descriptor, cfg *config.ModuleConfig, user *config.UserOverride) map[string]any {
	merged := make(map[string]any)
	for name, opt := range d.Options {
		if opt.Default != nil {
			merged[name] = manifest.GoValue(*opt.Default)
		}
	}
	if cfg != nil {
		for k, v := range cfg.Settings {
			merged[k] = v
		}
	}
	if user != nil {
		for k, v := range user.ModuleOverrides[d.Name] {
			merged[k] = v
		}
	}
	return merged
}

// checkSettings validates a merged settings bag against the option types
// the module's manifest declares. Keys without a declared option pass
// through untouched for forward compatibility.
func checkSettings(d *registry.Descriptor, settings map[string]any) error {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		opt, declared := d.Options[key]
		if !declared {
			continue
		}
		val, err := manifest.CtyValue(settings[key])
		if err != nil {
			return fmt.Errorf("option %q: %w", key, err)
		}
		if _, err := convert.Convert(val, opt.Type); err != nil {
			return fmt.Errorf("option %q: expected %s: %w", key, opt.Type.FriendlyName(), err)
		}
	}
	return nil
}
