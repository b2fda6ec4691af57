package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/rolfedh/adtgo/internal/config"
	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/dag"
	"github.com/rolfedh/adtgo/internal/registry"
)

// Input carries everything one resolution pass needs. Legacy exclusion is
// an explicit parameter rather than package state so callers (and tests)
// can vary it per invocation.
type Input struct {
	Descriptors []registry.Descriptor
	DevModules  []config.ModuleConfig
	User        *config.UserOverride
	// Invocation maps module name to an enable/disable decision collected
	// from command-line flags. It is the highest-precedence source and
	// lives only for this invocation.
	Invocation    map[string]bool
	ExcludeLegacy bool
}

// Resolution is the per-invocation computed state of one module.
type Resolution struct {
	Name         string
	State        State
	Version      string
	Required     bool
	Legacy       bool
	Dependencies []string
	// InitOrder is the module's position in the strict topological order,
	// or -1 for modules excluded from ordering (failed resolution).
	InitOrder int
	// Reason explains a failed or explicitly disabled state.
	Reason string
	// Settings is the merged bag handed to the module at initialize time:
	// manifest option defaults, overlaid by the developer document's
	// config bag, overlaid by user overrides.
	Settings map[string]any
}

// Result is a resolution batch: every known module's resolution plus the
// structural errors and advisory warnings encountered computing them.
type Result struct {
	Resolutions []Resolution
	Errors      []error
	Warnings    []string
}

// Enabled returns the enabled resolutions in initialization order.
func (r *Result) Enabled() []Resolution {
	var out []Resolution
	for _, res := range r.Resolutions {
		if res.State == StateEnabled {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InitOrder < out[j].InitOrder })
	return out
}

// Get returns the resolution for a module by name.
func (r *Result) Get(name string) (Resolution, bool) {
	for _, res := range r.Resolutions {
		if res.Name == name {
			return res, true
		}
	}
	return Resolution{}, false
}

// Fatal reports whether the batch contains an error the caller must abort
// on: any configuration error, or a required module that failed to
// resolve. Optional-module failures are not fatal.
func (r *Result) Fatal() bool {
	for _, err := range r.Errors {
		if _, ok := err.(*config.ConfigurationError); ok {
			return true
		}
	}
	for _, res := range r.Resolutions {
		if res.Required && res.State == StateFailed {
			return true
		}
	}
	return false
}

// FirstFatal returns the error Fatal is reporting, if any.
func (r *Result) FirstFatal() error {
	for _, err := range r.Errors {
		if _, ok := err.(*config.ConfigurationError); ok {
			return err
		}
	}
	for _, res := range r.Resolutions {
		if res.Required && res.State == StateFailed {
			return fmt.Errorf("required module %q failed to resolve: %s", res.Name, res.Reason)
		}
	}
	return nil
}

// Resolve computes the resolution batch for one invocation.
func Resolve(ctx context.Context, in Input) *Result {
	logger := ctxlog.FromContext(ctx)
	result := &Result{}

	descByName := make(map[string]*registry.Descriptor, len(in.Descriptors))
	names := make([]string, 0, len(in.Descriptors))
	for i := range in.Descriptors {
		d := &in.Descriptors[i]
		descByName[d.Name] = d
		names = append(names, d.Name)
	}

	cfgByName := make(map[string]*config.ModuleConfig, len(in.DevModules))
	for i := range in.DevModules {
		c := &in.DevModules[i]
		if _, known := descByName[c.Name]; !known {
			// An undiscovered optional module is ignorable; an undiscovered
			// required one means the invocation cannot honor its guarantee.
			if c.Required {
				result.Errors = append(result.Errors, &config.ConfigurationError{
					Detail: fmt.Sprintf("required module %q is not among the discovered modules", c.Name),
				})
			} else {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("developer configuration names unknown module %q; entry ignored", c.Name))
			}
			continue
		}
		cfgByName[c.Name] = c
	}

	// Seed one resolution per discovered module, with the dependency union
	// of manifest-declared and config-declared names. Config dependencies
	// augment the declared ones; they never replace them.
	res := make(map[string]*Resolution, len(names))
	for _, name := range names {
		d := descByName[name]
		r := &Resolution{
			Name:         name,
			State:        StatePending,
			Version:      d.Version,
			Legacy:       d.Legacy,
			Dependencies: unionDeps(d, cfgByName[name]),
			InitOrder:    -1,
		}
		if cfg := cfgByName[name]; cfg != nil {
			r.Required = cfg.Required
		}
		res[name] = r
	}

	fail := func(name, reason string) {
		r := res[name]
		if r.State == StateFailed {
			return
		}
		r.State = StateFailed
		r.Reason = reason
	}

	// Implementation binding failures surface here so "known but broken"
	// modules are diagnosable rather than silently absent.
	for _, name := range names {
		if bindErr := descByName[name].BindErr; bindErr != nil {
			result.Errors = append(result.Errors, bindErr)
			fail(name, bindErr.Error())
		}
	}

	// Referential integrity: an unknown dependency fails the dependent,
	// never the rest of the batch.
	for _, name := range names {
		for _, dep := range res[name].Dependencies {
			if _, known := descByName[dep]; !known {
				err := &MissingDependencyError{Module: name, Dependency: dep}
				result.Errors = append(result.Errors, err)
				fail(name, err.Error())
				break
			}
		}
	}

	// Settings merge and manifest type checks happen before ordering so a
	// module with unusable settings is excluded like any other failure.
	for _, name := range names {
		r := res[name]
		if r.State == StateFailed {
			continue
		}
		r.Settings = mergeSettings(descByName[name], cfgByName[name], in.User)
		if err := checkSettings(descByName[name], r.Settings); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("module %q: %w", name, err))
			fail(name, err.Error())
		}
	}

	// Cycle detection and ordering. Each pass propagates failures to
	// transitive dependents, rebuilds the graph from the survivors, and
	// retries until a cycle-free graph yields a topological order. Kahn's
	// algorithm doubles as a cross-check: nodes that never reach in-degree
	// zero are cycle members the DFS walk already reported.
	var order []string
	for {
		propagateFailures(names, res, fail)

		g := dag.New()
		for _, name := range names {
			if res[name].State != StateFailed {
				g.AddNode(name, orderHint(cfgByName[name]))
			}
		}
		for _, name := range names {
			if res[name].State == StateFailed {
				continue
			}
			for _, dep := range res[name].Dependencies {
				if res[dep].State != StateFailed {
					// Nodes are pre-added; self-edges cannot occur because a
					// module never lists itself.
					_ = g.AddEdge(dep, name)
				}
			}
		}

		if cycleErr := g.DetectCycles(); cycleErr != nil {
			result.Errors = append(result.Errors, cycleErr)
			for _, member := range uniqueNames(cycleErr.Path) {
				fail(member, cycleErr.Error())
			}
			continue
		}

		order, _ = g.TopoOrder()
		break
	}

	for i, name := range order {
		res[name].InitOrder = i
	}

	// Enablement precedence: invocation > user > developer defaults, with
	// legacy exclusion acting as a developer-level disable. Disabling a
	// required module through any source is a validation error, not a
	// silent override.
	for _, name := range names {
		r := res[name]
		if r.State == StateFailed {
			continue
		}

		cfg := cfgByName[name]
		enabled := false
		source := "developer configuration default"
		if cfg == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("module %q has no developer configuration entry; disabled by default", name))
		} else {
			enabled = cfg.DefaultEnabled
		}

		if in.ExcludeLegacy && r.Legacy {
			enabled = false
			source = "legacy module exclusion"
		}
		if in.User != nil {
			if containsName(in.User.DisabledModules, name) {
				enabled = false
				source = "user configuration"
			}
			if containsName(in.User.EnabledModules, name) {
				enabled = true
				source = "user configuration"
			}
		}
		if v, ok := in.Invocation[name]; ok {
			enabled = v
			source = "command-line override"
		}

		if r.Required && !enabled {
			result.Errors = append(result.Errors, &config.ConfigurationError{
				Detail: fmt.Sprintf("required module %q cannot be disabled (%s)", name, source),
			})
			continue // Leaves the module pending; the caller aborts.
		}

		if enabled {
			r.State = StateEnabled
		} else {
			r.State = StateDisabled
			if source != "developer configuration default" {
				r.Reason = fmt.Sprintf("disabled by %s", source)
			}
		}
	}

	// A disabled module still participates in graph validation for its
	// dependents: the dependent stays enabled, with a warning instead of
	// silent success.
	for _, name := range order {
		r := res[name]
		if r.State != StateEnabled {
			continue
		}
		for _, dep := range r.Dependencies {
			if res[dep].State == StateDisabled {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("module %q depends on disabled module %q", name, dep))
			}
		}
	}

	// Ordered modules first, then failed and pending ones by name, so the
	// batch itself is deterministic.
	for _, name := range order {
		result.Resolutions = append(result.Resolutions, *res[name])
	}
	var excluded []string
	for _, name := range names {
		if res[name].InitOrder < 0 {
			excluded = append(excluded, name)
		}
	}
	sort.Strings(excluded)
	for _, name := range excluded {
		result.Resolutions = append(result.Resolutions, *res[name])
	}

	logger.Debug("Resolution complete.",
		"modules", len(result.Resolutions), "errors", len(result.Errors), "warnings", len(result.Warnings))
	return result
}

// propagateFailures marks every transitive dependent of a failed module as
// failed, citing the upstream module by name. Runs to a fixpoint.
func propagateFailures(names []string, res map[string]*Resolution, fail func(name, reason string)) {
	for changed := true; changed; {
		changed = false
		for _, name := range names {
			if res[name].State == StateFailed {
				continue
			}
			for _, dep := range res[name].Dependencies {
				if r, known := res[dep]; known && r.State == StateFailed {
					fail(name, fmt.Sprintf("dependency %q failed to resolve", dep))
					changed = true
					break
				}
			}
		}
	}
}

// unionDeps merges manifest-declared and config-declared dependencies,
// preserving declaration order and dropping duplicates.
func unionDeps(d *registry.Descriptor, cfg *config.ModuleConfig) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(d.Dependencies)
	if cfg != nil {
		add(cfg.Dependencies)
	}
	return out
}

func orderHint(cfg *config.ModuleConfig) int {
	if cfg != nil && cfg.InitOrderHint != nil {
		return *cfg.InitOrderHint
	}
	return 0
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
