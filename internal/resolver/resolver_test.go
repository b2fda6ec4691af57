package resolver

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/rolfedh/adtgo/internal/config"
	"github.com/rolfedh/adtgo/internal/dag"
	"github.com/rolfedh/adtgo/internal/manifest"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
)

type nopHandler struct{}

func (nopHandler) Initialize(context.Context, map[string]any) error  { return nil }
func (nopHandler) Execute(context.Context, *module.RunContext) error { return nil }
func (nopHandler) Cleanup(context.Context) error                     { return nil }

func desc(name string, deps ...string) registry.Descriptor {
	return registry.Descriptor{
		Name:         name,
		Version:      "1.0.0",
		Dependencies: deps,
		Factory:      func() module.Handler { return nopHandler{} },
	}
}

func enabledCfg(name string, deps ...string) config.ModuleConfig {
	return config.ModuleConfig{Name: name, DefaultEnabled: true, Dependencies: deps}
}

func TestResolveOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("dependencies precede dependents", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{
				desc("a"),
				desc("d"),
				desc("b", "a"),
				desc("c", "b"),
			},
			DevModules: []config.ModuleConfig{
				enabledCfg("a"), enabledCfg("b"), enabledCfg("c"), enabledCfg("d"),
			},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		order := map[string]int{}
		for _, r := range result.Enabled() {
			order[r.Name] = r.InitOrder
		}
		require.Len(t, order, 4)
		assert.Less(t, order["a"], order["b"])
		assert.Less(t, order["b"], order["c"])
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("zeta"), desc("alpha"), desc("mid")},
			DevModules: []config.ModuleConfig{
				enabledCfg("zeta"), enabledCfg("alpha"), enabledCfg("mid"),
			},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		var names []string
		for _, r := range result.Enabled() {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	})

	t.Run("order hints outrank names", func(t *testing.T) {
		early := -1
		in := Input{
			Descriptors: []registry.Descriptor{desc("alpha"), desc("zeta")},
			DevModules: []config.ModuleConfig{
				enabledCfg("alpha"),
				{Name: "zeta", DefaultEnabled: true, InitOrderHint: &early},
			},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		var names []string
		for _, r := range result.Enabled() {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"zeta", "alpha"}, names)
	})

	t.Run("resolution is deterministic across runs", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{
				desc("w"), desc("x", "w"), desc("y", "w"), desc("z", "x", "y"),
			},
			DevModules: []config.ModuleConfig{
				enabledCfg("w"), enabledCfg("x"), enabledCfg("y"), enabledCfg("z"),
			},
		}

		first := Resolve(ctx, in)
		for i := 0; i < 20; i++ {
			again := Resolve(ctx, in)
			if diff := cmp.Diff(first.Resolutions, again.Resolutions); diff != "" {
				t.Fatalf("resolution changed between runs (-first +again):\n%s", diff)
			}
		}
	})
}

func TestResolveCycles(t *testing.T) {
	ctx := context.Background()

	in := Input{
		Descriptors: []registry.Descriptor{
			desc("a", "b"),
			desc("b", "a"),
			desc("c", "a"),
			desc("solo"),
		},
		DevModules: []config.ModuleConfig{
			enabledCfg("a"), enabledCfg("b"), enabledCfg("c"), enabledCfg("solo"),
		},
	}

	result := Resolve(ctx, in)

	var cycleErr *dag.CycleError
	require.NotEmpty(t, result.Errors)
	require.ErrorAs(t, result.Errors[0], &cycleErr)
	assert.Contains(t, cycleErr.Error(), "a -> b -> a")

	a, _ := result.Get("a")
	b, _ := result.Get("b")
	assert.Equal(t, StateFailed, a.State)
	assert.Equal(t, StateFailed, b.State)
	assert.Equal(t, -1, a.InitOrder)

	// c is not a cycle member but depends on one.
	c, _ := result.Get("c")
	assert.Equal(t, StateFailed, c.State)
	assert.Contains(t, c.Reason, `dependency "a" failed to resolve`)

	// Unrelated modules still resolve and order.
	solo, _ := result.Get("solo")
	assert.Equal(t, StateEnabled, solo.State)
	assert.Equal(t, 0, solo.InitOrder)
}

func TestResolveMissingDependency(t *testing.T) {
	ctx := context.Background()

	in := Input{
		Descriptors: []registry.Descriptor{desc("a", "ghost"), desc("b", "a")},
		DevModules:  []config.ModuleConfig{enabledCfg("a"), enabledCfg("b")},
	}

	result := Resolve(ctx, in)

	var missing *MissingDependencyError
	require.NotEmpty(t, result.Errors)
	require.ErrorAs(t, result.Errors[0], &missing)
	assert.Equal(t, "a", missing.Module)
	assert.Equal(t, "ghost", missing.Dependency)

	a, _ := result.Get("a")
	b, _ := result.Get("b")
	assert.Equal(t, StateFailed, a.State)
	assert.Equal(t, StateFailed, b.State)
	assert.Contains(t, b.Reason, `dependency "a" failed to resolve`)
}

func TestResolveEnablement(t *testing.T) {
	ctx := context.Background()

	t.Run("required module cannot be disabled", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
			DevModules: []config.ModuleConfig{
				{Name: "a", Required: true, DefaultEnabled: true},
			},
			Invocation: map[string]bool{"a": false},
		}

		result := Resolve(ctx, in)
		require.True(t, result.Fatal())

		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, result.FirstFatal(), &cfgErr)
		assert.Contains(t, cfgErr.Error(), `required module "a"`)
		assert.Contains(t, cfgErr.Error(), "command-line override")

		a, _ := result.Get("a")
		assert.Equal(t, StatePending, a.State)
	})

	t.Run("user override beats developer default", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
			DevModules:  []config.ModuleConfig{{Name: "a", DefaultEnabled: false}},
			User:        &config.UserOverride{EnabledModules: []string{"a"}},
		}

		result := Resolve(ctx, in)
		a, _ := result.Get("a")
		assert.Equal(t, StateEnabled, a.State)
	})

	t.Run("invocation beats user override", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
			DevModules:  []config.ModuleConfig{{Name: "a", DefaultEnabled: false}},
			User:        &config.UserOverride{EnabledModules: []string{"a"}},
			Invocation:  map[string]bool{"a": false},
		}

		result := Resolve(ctx, in)
		a, _ := result.Get("a")
		assert.Equal(t, StateDisabled, a.State)
		assert.Equal(t, "disabled by command-line override", a.Reason)
	})

	t.Run("legacy exclusion disables legacy modules only", func(t *testing.T) {
		legacy := desc("old")
		legacy.Legacy = true

		in := Input{
			Descriptors:   []registry.Descriptor{legacy, desc("new")},
			DevModules:    []config.ModuleConfig{enabledCfg("old"), enabledCfg("new")},
			ExcludeLegacy: true,
		}

		result := Resolve(ctx, in)
		old, _ := result.Get("old")
		fresh, _ := result.Get("new")
		assert.Equal(t, StateDisabled, old.State)
		assert.Equal(t, "disabled by legacy module exclusion", old.Reason)
		assert.Equal(t, StateEnabled, fresh.State)
	})

	t.Run("invocation re-enables an excluded legacy module", func(t *testing.T) {
		legacy := desc("old")
		legacy.Legacy = true

		in := Input{
			Descriptors:   []registry.Descriptor{legacy},
			DevModules:    []config.ModuleConfig{enabledCfg("old")},
			ExcludeLegacy: true,
			Invocation:    map[string]bool{"old": true},
		}

		result := Resolve(ctx, in)
		old, _ := result.Get("old")
		assert.Equal(t, StateEnabled, old.State)
	})

	t.Run("module without config entry is disabled with a warning", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
		}

		result := Resolve(ctx, in)
		a, _ := result.Get("a")
		assert.Equal(t, StateDisabled, a.State)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], `module "a" has no developer configuration entry`)
	})

	t.Run("enabled module depending on a disabled one warns", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a"), desc("b", "a")},
			DevModules: []config.ModuleConfig{
				{Name: "a", DefaultEnabled: false},
				enabledCfg("b"),
			},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		b, _ := result.Get("b")
		assert.Equal(t, StateEnabled, b.State)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], `module "b" depends on disabled module "a"`)
	})

	t.Run("required module absent from discovery is a configuration error", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
			DevModules: []config.ModuleConfig{
				enabledCfg("a"),
				{Name: "ghost", Required: true, DefaultEnabled: true},
			},
		}

		result := Resolve(ctx, in)
		require.True(t, result.Fatal())

		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, result.FirstFatal(), &cfgErr)
		assert.Contains(t, cfgErr.Error(), `required module "ghost"`)
		assert.Empty(t, result.Warnings)

		// Discovered modules still resolve.
		a, _ := result.Get("a")
		assert.Equal(t, StateEnabled, a.State)
	})

	t.Run("unknown module in developer config warns", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{desc("a")},
			DevModules:  []config.ModuleConfig{enabledCfg("a"), enabledCfg("phantom")},
		}

		result := Resolve(ctx, in)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], `unknown module "phantom"`)
	})
}

func TestResolveBindFailure(t *testing.T) {
	ctx := context.Background()

	broken := registry.Descriptor{
		Name:    "broken",
		Version: "1.0.0",
		BindErr: &registry.LoadError{Module: "broken", Handler: "Gone"},
	}

	t.Run("optional bind failure is not fatal", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{broken, desc("ok")},
			DevModules:  []config.ModuleConfig{enabledCfg("broken"), enabledCfg("ok")},
		}

		result := Resolve(ctx, in)
		require.Len(t, result.Errors, 1)
		assert.False(t, result.Fatal())

		b, _ := result.Get("broken")
		assert.Equal(t, StateFailed, b.State)
		ok, _ := result.Get("ok")
		assert.Equal(t, StateEnabled, ok.State)
	})

	t.Run("required bind failure is fatal", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{broken},
			DevModules: []config.ModuleConfig{
				{Name: "broken", Required: true, DefaultEnabled: true},
			},
		}

		result := Resolve(ctx, in)
		require.True(t, result.Fatal())
		assert.ErrorContains(t, result.FirstFatal(), `required module "broken"`)
	})
}

func TestResolveSettings(t *testing.T) {
	ctx := context.Background()

	withOptions := func() registry.Descriptor {
		d := desc("a")
		depth := cty.NumberIntVal(3)
		d.Options = map[string]manifest.Option{
			"depth": {Name: "depth", Type: cty.Number, Default: &depth},
			"label": {Name: "label", Type: cty.String},
		}
		return d
	}

	t.Run("defaults, developer settings, user overrides layer in order", func(t *testing.T) {
		cfg := enabledCfg("a")
		cfg.Settings = map[string]any{"depth": float64(5), "label": "dev"}

		in := Input{
			Descriptors: []registry.Descriptor{withOptions()},
			DevModules:  []config.ModuleConfig{cfg},
			User: &config.UserOverride{
				ModuleOverrides: map[string]map[string]any{
					"a": {"label": "user"},
				},
			},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		a, _ := result.Get("a")
		assert.Equal(t, float64(5), a.Settings["depth"])
		assert.Equal(t, "user", a.Settings["label"])
	})

	t.Run("manifest default survives when nothing overrides it", func(t *testing.T) {
		in := Input{
			Descriptors: []registry.Descriptor{withOptions()},
			DevModules:  []config.ModuleConfig{enabledCfg("a")},
		}

		result := Resolve(ctx, in)
		a, _ := result.Get("a")
		assert.Equal(t, int64(3), a.Settings["depth"])
	})

	t.Run("type mismatch fails the module", func(t *testing.T) {
		cfg := enabledCfg("a")
		cfg.Settings = map[string]any{"depth": "not a number"}

		in := Input{
			Descriptors: []registry.Descriptor{withOptions()},
			DevModules:  []config.ModuleConfig{cfg},
		}

		result := Resolve(ctx, in)
		require.Len(t, result.Errors, 1)
		assert.ErrorContains(t, result.Errors[0], `option "depth"`)

		a, _ := result.Get("a")
		assert.Equal(t, StateFailed, a.State)
		assert.Equal(t, -1, a.InitOrder)
	})

	t.Run("undeclared keys pass through", func(t *testing.T) {
		cfg := enabledCfg("a")
		cfg.Settings = map[string]any{"future_knob": true}

		in := Input{
			Descriptors: []registry.Descriptor{withOptions()},
			DevModules:  []config.ModuleConfig{cfg},
		}

		result := Resolve(ctx, in)
		require.Empty(t, result.Errors)

		a, _ := result.Get("a")
		assert.Equal(t, true, a.Settings["future_knob"])
	})
}

func TestResolveDependencyUnion(t *testing.T) {
	ctx := context.Background()

	cfg := enabledCfg("b", "extra")
	in := Input{
		Descriptors: []registry.Descriptor{desc("a"), desc("extra"), desc("b", "a")},
		DevModules:  []config.ModuleConfig{enabledCfg("a"), enabledCfg("extra"), cfg},
	}

	result := Resolve(ctx, in)
	require.Empty(t, result.Errors)

	b, _ := result.Get("b")
	assert.Equal(t, []string{"a", "extra"}, b.Dependencies)

	order := map[string]int{}
	for _, r := range result.Enabled() {
		order[r.Name] = r.InitOrder
	}
	assert.Less(t, order["extra"], order["b"])
}
