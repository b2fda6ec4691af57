// Package directoryconfig scopes a run to the configured parts of the
// documentation tree. It walks the docs root for AsciiDoc files and
// publishes the in-scope set on the shared run context; every transform
// module downstream operates on that set.
package directoryconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/fsutil"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
)

// Module implements the registry.Registrar interface for this package.
type Module struct{}

// Options are the settings this module accepts.
type Options struct {
	// Include restricts processing to these directories, relative to the
	// docs root. Empty means the whole tree.
	Include []string `mapstructure:"include"`
	// Exclude removes directories from scope after Include is applied.
	Exclude []string `mapstructure:"exclude"`
}

// Handler scopes the run to the configured directories.
type Handler struct {
	opts Options
}

func (h *Handler) Initialize(_ context.Context, options map[string]any) error {
	return module.DecodeOptions(options, &h.opts)
}

func (h *Handler) Execute(ctx context.Context, run *module.RunContext) error {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(run.Root, ".adoc")
	if err != nil {
		return fmt.Errorf("walking docs root %s: %w", run.Root, err)
	}

	var kept []string
	for _, path := range files {
		rel, err := filepath.Rel(run.Root, path)
		if err != nil {
			return err
		}
		if h.inScope(filepath.ToSlash(rel)) {
			kept = append(kept, path)
		}
	}

	run.Files = kept
	logger.Info("Directory scope established.", "found", len(files), "in_scope", len(kept))
	return nil
}

func (h *Handler) Cleanup(context.Context) error {
	return nil
}

// inScope applies the include list, then the exclude list, to a
// slash-separated path relative to the docs root.
func (h *Handler) inScope(rel string) bool {
	if len(h.opts.Include) > 0 {
		matched := false
		for _, dir := range h.opts.Include {
			if underDir(rel, dir) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, dir := range h.opts.Exclude {
		if underDir(rel, dir) {
			return false
		}
	}
	return true
}

func underDir(rel, dir string) bool {
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" || dir == "." {
		return true
	}
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("DirectoryConfig", func() module.Handler { return &Handler{} })
}
