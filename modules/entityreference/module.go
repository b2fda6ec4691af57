// Package entityreference replaces HTML character entity references in
// AsciiDoc files with the equivalent AsciiDoc attribute references, since
// DITA 1.3 only supports the five XML character entities.
package entityreference

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
)

// Module implements the registry.Registrar interface for this package.
type Module struct{}

// Options are the settings this module accepts.
type Options struct {
	// WarnUnknown logs entities that have no AsciiDoc attribute
	// equivalent; they are left untouched either way.
	WarnUnknown bool `mapstructure:"warn_unknown"`
}

// entityPattern matches an HTML character entity reference like &nbsp;.
var entityPattern = regexp.MustCompile(`&([a-zA-Z][a-zA-Z0-9]*);`)

// supported are the XML character entities DITA keeps; they are never
// rewritten.
var supported = map[string]bool{
	"amp":  true,
	"lt":   true,
	"gt":   true,
	"apos": true,
	"quot": true,
}

// replacements maps entity names to AsciiDoc attribute references.
var replacements = map[string]string{
	"nbsp":   "{nbsp}",
	"ensp":   "{ensp}",
	"emsp":   "{emsp}",
	"thinsp": "{thinsp}",
	"zwsp":   "{zwsp}",
	"ndash":  "{ndash}",
	"mdash":  "{mdash}",
	"hellip": "{hellip}",
	"lsquo":  "{lsquo}",
	"rsquo":  "{rsquo}",
	"ldquo":  "{ldquo}",
	"rdquo":  "{rdquo}",
	"deg":    "{deg}",
	"plusmn": "{plusmn}",
	"copy":   "{copy}",
	"reg":    "{reg}",
	"trade":  "{trade}",
}

// Handler rewrites entity references file by file.
type Handler struct {
	opts Options
}

func (h *Handler) Initialize(_ context.Context, options map[string]any) error {
	h.opts = Options{WarnUnknown: true}
	return module.DecodeOptions(options, &h.opts)
}

func (h *Handler) Execute(ctx context.Context, run *module.RunContext) error {
	logger := ctxlog.FromContext(ctx)

	changed := 0
	for _, path := range run.Files {
		rewritten, err := h.processFile(ctx, path)
		if err != nil {
			return fmt.Errorf("replacing entities in %s: %w", path, err)
		}
		if rewritten {
			changed++
		}
	}

	logger.Info("Entity references processed.", "files", len(run.Files), "changed", changed)
	return nil
}

func (h *Handler) Cleanup(context.Context) error {
	return nil
}

func (h *Handler) processFile(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	content := string(raw)
	out := entityPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := entityPattern.FindStringSubmatch(match)[1]
		if supported[name] {
			return match
		}
		if replacement, ok := replacements[name]; ok {
			return replacement
		}
		if h.opts.WarnUnknown {
			ctxlog.FromContext(ctx).Warn("Unknown entity reference left as is.", "entity", match, "file", path)
		}
		return match
	})

	if out == content {
		return false, nil
	}
	return true, os.WriteFile(path, []byte(out), info.Mode().Perm())
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("EntityReference", func() module.Handler { return &Handler{} })
}
