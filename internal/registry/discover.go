package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/rolfedh/adtgo/internal/ctxlog"
	"github.com/rolfedh/adtgo/internal/fsutil"
	"github.com/rolfedh/adtgo/internal/manifest"
	"github.com/rolfedh/adtgo/internal/module"
)

// Descriptor is the immutable identity of a discovered module: its
// manifest-declared metadata plus the lazily bound implementation handle.
// Descriptors are created once per discovery and never mutated.
type Descriptor struct {
	Name         string
	Version      string
	Description  string
	Dependencies []string
	Legacy       bool
	Options      map[string]manifest.Option

	// Factory is the bound implementation handle. It is nil exactly when
	// BindErr is set.
	Factory module.Factory

	// BindErr records a failed binding (*LoadError); the module is known
	// but cannot execute.
	BindErr error
}

// Discover scans the manifests path for module declarations and binds each
// one to its registered handler factory without invoking it. Discovery is
// idempotent and side-effect free.
//
// A single broken manifest file or unbound handler never aborts the scan:
// unparseable files are reported in the returned error slice and skipped,
// and bind failures are recorded on the descriptor so resolution can
// surface them per module. Duplicate module names across manifests are an
// error; the later declaration is ignored.
func (r *Registry) Discover(ctx context.Context, manifestsPath string) ([]Descriptor, []error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Discovering module manifests...", "path", manifestsPath)

	filePaths, err := fsutil.FindFilesByExtension(manifestsPath, ".hcl")
	if err != nil {
		return nil, []error{fmt.Errorf("walking manifests path %s: %w", manifestsPath, err)}
	}
	if len(filePaths) == 0 {
		logger.Warn("No manifest files found in path.", "path", manifestsPath)
		return nil, nil
	}

	parser := hclparse.NewParser()
	var descriptors []Descriptor
	var errs []error
	seen := make(map[string]string) // module name -> source file

	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			errs = append(errs, fmt.Errorf("parsing manifest %s: %w", filePath, diags))
			continue
		}

		// ParseFile drops only the offending blocks; surviving declarations
		// from the same file still become descriptors.
		mods, diags := manifest.ParseFile(ctx, hclFile, filePath)
		if diags.HasErrors() {
			errs = append(errs, fmt.Errorf("reading module declarations in %s: %w", filePath, diags))
		}

		for _, m := range mods {
			if prev, dup := seen[m.Name]; dup {
				errs = append(errs, fmt.Errorf("duplicate module %q in %s: already declared in %s", m.Name, filePath, prev))
				continue
			}
			seen[m.Name] = filePath

			desc := Descriptor{
				Name:         m.Name,
				Version:      m.Version,
				Description:  m.Description,
				Dependencies: m.DependsOn,
				Legacy:       m.Legacy,
				Options:      m.Options,
			}
			if factory, ok := r.Handler(m.Handler); ok {
				desc.Factory = factory
			} else {
				desc.BindErr = &LoadError{Module: m.Name, Handler: m.Handler}
				logger.Warn("Module handler could not be bound.", "module", m.Name, "handler", m.Handler)
			}
			descriptors = append(descriptors, desc)
		}
	}

	logger.Info("Module discovery complete.", "modules", len(descriptors), "errors", len(errs))
	return descriptors, errs
}
