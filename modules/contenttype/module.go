// Package contenttype ensures every in-scope AsciiDoc file carries a
// :_mod-docs-content-type: attribute, inferring the value from the
// module-type prefix in the filename where possible.
package contenttype

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
)

// Module implements the registry.Registrar interface for this package.
type Module struct{}

// Options are the settings this module accepts.
type Options struct {
	// DefaultType is used for files whose name carries no recognizable
	// prefix. Empty leaves such files untouched, with a warning.
	DefaultType string `mapstructure:"default_type"`
}

const attributeName = ":_mod-docs-content-type:"

// prefixTypes maps filename prefixes to module-docs content types.
var prefixTypes = []struct {
	prefix      string
	contentType string
}{
	{"assembly_", "ASSEMBLY"},
	{"assembly-", "ASSEMBLY"},
	{"con_", "CONCEPT"},
	{"con-", "CONCEPT"},
	{"proc_", "PROCEDURE"},
	{"proc-", "PROCEDURE"},
	{"ref_", "REFERENCE"},
	{"ref-", "REFERENCE"},
	{"snip_", "SNIPPET"},
	{"snip-", "SNIPPET"},
}

// Handler inserts the content-type attribute file by file.
type Handler struct {
	opts Options
}

func (h *Handler) Initialize(_ context.Context, options map[string]any) error {
	return module.DecodeOptions(options, &h.opts)
}

func (h *Handler) Execute(ctx context.Context, run *module.RunContext) error {
	logger := ctxlog.FromContext(ctx)

	labeled := 0
	for _, path := range run.Files {
		inserted, err := h.processFile(ctx, path)
		if err != nil {
			return fmt.Errorf("labeling %s: %w", path, err)
		}
		if inserted {
			labeled++
		}
	}

	logger.Info("Content types ensured.", "files", len(run.Files), "labeled", labeled)
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

	if strings.Contains(content, attributeName) {
		return false, nil
	}

	contentType := inferType(filepath.Base(path))
	if contentType == "" {
		contentType = strings.ToUpper(h.opts.DefaultType)
	}
	if contentType == "" {
		ctxlog.FromContext(ctx).Warn("Could not infer content type; file left unlabeled.", "file", path)
		return false, nil
	}

	out := fmt.Sprintf("%s %s\n\n%s", attributeName, contentType, content)
	return true, os.WriteFile(path, []byte(out), info.Mode().Perm())
}

func inferType(base string) string {
	for _, pt := range prefixTypes {
		if strings.HasPrefix(base, pt.prefix) {
			return pt.contentType
		}
	}
	return ""
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("ContentType", func() module.Handler { return &Handler{} })
}
