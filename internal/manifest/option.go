// SPDX-License-Identifier: MIT
//
// This file defines the structure of a module's declared settings and the
// logic for parsing them from HCL.
//
// Why have a formal Option definition?
//
// Declaring each setting's type and default in the manifest establishes a
// contract the engine can validate before any module runs. Values arriving
// from the developer document or user overrides are checked against the
// declared type at resolution time, shifting error detection from the
// middle of a document pass to startup, where the feedback names the
// module, the option, and both types.
package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Option holds the fully parsed definition of one module setting.
type Option struct {
	// Name is taken from the HCL block label: option "timeout" {} has the
	// name "timeout".
	Name string

	// Type is the value type this setting must carry.
	Type cty.Type

	// Description is an optional string describing the setting's purpose.
	Description string

	// Default is applied when no configuration source supplies a value.
	// A nil Default means the setting is simply absent when unset.
	Default *cty.Value
}

// optionBodySchema is the HCL schema for the body of an 'option' block.
var optionBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
	},
}

// parseOptions finds and decodes all 'option' blocks from a module's body.
func parseOptions(blocks hcl.Blocks) (map[string]Option, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	options := make(map[string]Option)

	for _, block := range blocks.OfType("option") {
		// The schema guarantees us one label.
		name := block.Labels[0]

		if _, exists := options[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate option definition",
				Detail:   fmt.Sprintf("An option named %q has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}

		bodyContent, contentDiags := block.Body.Content(optionBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := bodyContent.Attributes["type"]
		if !exists {
			missingItemRange := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all option blocks.",
				Subject:  &missingItemRange,
			})
			continue
		}

		ctyType, typeDiags := typeexpr.Type(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		opt := Option{Name: name, Type: ctyType}

		if descAttr, exists := bodyContent.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(descAttr.Expr, nil, &opt.Description)...)
		}

		if defaultAttr, exists := bodyContent.Attributes["default"]; exists {
			// A nil eval context is used because defaults must be literal values.
			val, valDiags := defaultAttr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			converted, err := convert.Convert(val, ctyType)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value",
					Detail:   fmt.Sprintf("The default for option %q does not match its declared type: %s.", name, err),
					Subject:  defaultAttr.Expr.Range().Ptr(),
				})
				continue
			}
			opt.Default = &converted
		}

		options[name] = opt
	}

	return options, diags
}
