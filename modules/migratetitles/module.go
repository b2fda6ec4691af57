// Package migratetitles demotes setext-style (underlined) section titles
// to ATX-style '=' headings, which the DITA conversion requires.
//
// This is a pre-engine unit: it keeps its original single entry point and
// is adapted to the lifecycle interface by module.WrapLegacy. Its manifest
// marks it legacy so runs can exclude that generation wholesale.
package migratetitles

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/module"
	"github.com/rolfedh/adtgo/internal/registry"
)

// Module implements the registry.Registrar interface for this package.
type Module struct{}

// underlineLevels maps setext underline characters to heading levels.
var underlineLevels = map[byte]string{
	'=': "=",
	'-': "==",
	'~': "===",
	'^': "====",
}

// Run is the module's original entry point.
func Run(ctx context.Context, run *module.RunContext, _ map[string]any) error {
	logger := ctxlog.FromContext(ctx)

	changed := 0
	for _, path := range run.Files {
		rewritten, err := processFile(path)
		if err != nil {
			return fmt.Errorf("migrating titles in %s: %w", path, err)
		}
		if rewritten {
			changed++
		}
	}

	logger.Info("Title migration complete.", "files", len(run.Files), "changed", changed)
	return nil
}

func processFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	lines := strings.Split(string(raw), "\n")
	var out []string
	changed := false

	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) && isUnderlineFor(lines[i], lines[i+1]) {
			marker := underlineLevels[lines[i+1][0]]
			out = append(out, marker+" "+strings.TrimSpace(lines[i]))
			i++ // Swallow the underline.
			changed = true
			continue
		}
		out = append(out, lines[i])
	}

	if !changed {
		return false, nil
	}
	return true, os.WriteFile(path, []byte(strings.Join(out, "\n")), info.Mode().Perm())
}

// isUnderlineFor reports whether next is a setext underline for title. The
// underline must repeat a single marker character and match the title's
// length within one column, the tolerance the old toolkit allowed.
func isUnderlineFor(title, next string) bool {
	title = strings.TrimRight(title, " \t")
	next = strings.TrimRight(next, " \t")
	if title == "" || next == "" || strings.HasPrefix(title, "=") || strings.HasPrefix(title, "//") {
		return false
	}
	marker := next[0]
	if _, ok := underlineLevels[marker]; !ok {
		return false
	}
	for i := 0; i < len(next); i++ {
		if next[i] != marker {
			return false
		}
	}
	diff := len(next) - len(title)
	return diff >= -1 && diff <= 1
}

// Register registers the wrapped legacy entry point with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("MigrateTitles", module.WrapLegacy(Run))
}
