// SPDX-License-Identifier: MIT
//
// This file defines the Module manifest, the declared identity of a
// processing unit.
//
// Why manifests instead of reflection-based discovery?
//
// Each unit ships a small HCL document next to its Go code declaring its
// name, version, dependencies, and the handler that implements it. The
// engine resolves manifests against registered handler factories once at
// startup, so the set of known modules is an explicit, inspectable input
// rather than whatever reflection happens to find in the process. A
// manifest whose handler is absent is still a known module; it simply
// fails to bind, which downstream resolution reports instead of silently
// dropping it.
package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/rolfedh/adtgo/internal/ctxlog"
)

// Module is the parsed manifest of a single processing unit. It is created
// once at discovery and never mutated afterwards.
type Module struct {
	Name        string
	Version     string
	Description string
	Handler     string
	Legacy      bool
	DependsOn   []string
	Options     map[string]Option
	SourceFile  string
}

// rootSchema defines the top-level structure of a manifest file, expecting
// one or more 'module' blocks.
type rootSchema struct {
	Modules []*hclModule `hcl:"module,block"`
}

// hclModule represents a single 'module' block for decoding purposes.
type hclModule struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// moduleBodySchema is the HCL schema for the body of a 'module' block.
var moduleBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "version"},
		{Name: "description"},
		{Name: "handler"},
		{Name: "legacy"},
		{Name: "depends_on"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "option", LabelNames: []string{"name"}},
	},
}

// ParseFile decodes an HCL file that contains one or more 'module' blocks.
// A block that fails to decode is skipped so the remaining blocks in the
// file still parse; the accumulated diagnostics report every problem.
func ParseFile(ctx context.Context, hclFile *hcl.File, filePath string) ([]*Module, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing module manifests from file", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	schema := &rootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, schema)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	modules := make([]*Module, 0, len(schema.Modules))
	for _, parsed := range schema.Modules {
		// Diagnostics for this block are collected separately so one bad
		// declaration drops only itself, never its siblings.
		var modDiags hcl.Diagnostics
		bodyContent, contentDiags := parsed.Body.Content(moduleBodySchema)
		if contentDiags.HasErrors() {
			allDiags = append(allDiags, contentDiags...)
			continue
		}
		modDiags = append(modDiags, contentDiags...)

		def := &Module{
			Name:       parsed.Name,
			SourceFile: filePath,
			Options:    make(map[string]Option),
		}

		if attr, exists := bodyContent.Attributes["version"]; exists {
			modDiags = append(modDiags, gohcl.DecodeExpression(attr.Expr, nil, &def.Version)...)
		}
		if attr, exists := bodyContent.Attributes["description"]; exists {
			modDiags = append(modDiags, gohcl.DecodeExpression(attr.Expr, nil, &def.Description)...)
		}
		if attr, exists := bodyContent.Attributes["handler"]; exists {
			modDiags = append(modDiags, gohcl.DecodeExpression(attr.Expr, nil, &def.Handler)...)
		}
		if attr, exists := bodyContent.Attributes["legacy"]; exists {
			modDiags = append(modDiags, gohcl.DecodeExpression(attr.Expr, nil, &def.Legacy)...)
		}
		if attr, exists := bodyContent.Attributes["depends_on"]; exists {
			modDiags = append(modDiags, gohcl.DecodeExpression(attr.Expr, nil, &def.DependsOn)...)
		}

		var optionDiags hcl.Diagnostics
		def.Options, optionDiags = parseOptions(bodyContent.Blocks)
		modDiags = append(modDiags, optionDiags...)

		for field, value := range map[string]string{"version": def.Version, "handler": def.Handler} {
			if value == "" {
				missingItemRange := parsed.Body.MissingItemRange()
				modDiags = append(modDiags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  fmt.Sprintf("Missing '%s' attribute", field),
					Detail:   fmt.Sprintf("Module %q must declare a '%s' attribute.", parsed.Name, field),
					Subject:  &missingItemRange,
				})
			}
		}

		allDiags = append(allDiags, modDiags...)
		if modDiags.HasErrors() {
			continue
		}
		modules = append(modules, def)
	}

	logger.Debug("Parsed module manifests", "count", len(modules), "diagnostics", len(allDiags))
	return modules, allDiags
}
