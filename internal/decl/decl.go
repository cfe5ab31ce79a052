// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package decl reads plugin declaration files into raw, unresolved item
// records. Only structural problems are reported here; type resolution and
// semantic rules belong to the builder.
package decl

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Kind is the kind of a top-level item.
type Kind int

const (
	KindFunction Kind = iota
	KindObject
	KindEvent
	KindConstructor
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindObject:
		return "object"
	case KindEvent:
		return "event"
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// File is the raw content of one declaration file.
type File struct {
	// Module is the plugin name.
	Module      string
	ModuleRange hcl.Range
	Doc         string

	// Items holds functions, objects and events in declaration order.
	Items []*Item

	// Sources maps file names to parsed files, for diagnostic rendering.
	Sources map[string]*hcl.File
}

// Item is a raw function, object, event, constructor or method.
type Item struct {
	Kind    Kind
	Name    string
	Doc     string
	Params  []*Param
	Returns *Returns

	// Constructor and Methods are only set on objects.
	Constructor *Item
	Methods     []*Item

	// Range is the block header range, used as diagnostic subject.
	Range hcl.Range
}

// Param is a raw parameter.
type Param struct {
	Name string
	Doc  string
	Type *TypeExpr

	SharedPerTask bool
	SharedPerVCL  bool
	VCLName       bool

	// Required is only meaningful on nullable values such as *netip.AddrPort.
	Required bool

	// Default is the literal default value, if any.
	Default      *cty.Value
	DefaultRange hcl.Range

	Range hcl.Range
}

var fileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "module", Required: true},
		{Name: "doc"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "function", LabelNames: []string{"name"}},
		{Type: "object", LabelNames: []string{"name"}},
		{Type: "event", LabelNames: []string{"name"}},
	},
}

var callableSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "doc"},
		{Name: "returns"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "arg", LabelNames: []string{"name"}},
	},
}

var objectSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "doc"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "constructor"},
		{Type: "method", LabelNames: []string{"name"}},
	},
}

var argSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but checked by hand for a better message.
		{Name: "type"},
		{Name: "doc"},
		{Name: "default"},
		{Name: "shared_per_task"},
		{Name: "shared_per_vcl"},
		{Name: "required"},
		{Name: "vcl_name"},
	},
}

// ParseFile reads and parses the declaration file at path.
func ParseFile(path string) (*File, hcl.Diagnostics) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read declaration file",
			Detail:   err.Error(),
		}}
	}
	return ParseSource(src, path)
}

// ParseSource parses declaration source. filename is only used in ranges.
// The returned File is partial when the Diagnostics contain errors.
func ParseSource(src []byte, filename string) (*File, hcl.Diagnostics) {
	p := hclparse.NewParser()
	hf, diags := p.ParseHCL(src, filename)
	if diags.HasErrors() {
		return &File{Sources: p.Files()}, diags
	}

	f := &File{Sources: p.Files()}
	content, contentDiags := hf.Body.Content(fileSchema)
	diags = append(diags, contentDiags...)
	if content == nil {
		return f, diags
	}

	if attr, ok := content.Attributes["module"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &f.Module)...)
		f.ModuleRange = attr.Expr.Range()
	}
	diags = append(diags, decodeAttr(content.Attributes, "doc", &f.Doc)...)

	for _, block := range content.Blocks {
		var (
			item      *Item
			itemDiags hcl.Diagnostics
		)
		switch block.Type {
		case "function":
			item, itemDiags = parseCallable(block, KindFunction)
		case "event":
			item, itemDiags = parseCallable(block, KindEvent)
		case "object":
			item, itemDiags = parseObject(block)
		}
		diags = append(diags, itemDiags...)
		if item != nil {
			f.Items = append(f.Items, item)
		}
	}
	return f, diags
}

func parseObject(block *hcl.Block) (*Item, hcl.Diagnostics) {
	item := &Item{Kind: KindObject, Name: block.Labels[0], Range: block.DefRange}
	content, diags := block.Body.Content(objectSchema)
	if content == nil {
		return item, diags
	}
	diags = append(diags, decodeAttr(content.Attributes, "doc", &item.Doc)...)

	for _, b := range content.Blocks {
		switch b.Type {
		case "constructor":
			if item.Constructor != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate constructor",
					Detail:   fmt.Sprintf("Object %q already has a constructor defined at %s.", item.Name, item.Constructor.Range),
					Subject:  b.DefRange.Ptr(),
				})
				continue
			}
			ctor, ctorDiags := parseCallable(b, KindConstructor)
			diags = append(diags, ctorDiags...)
			item.Constructor = ctor
		case "method":
			m, mDiags := parseCallable(b, KindMethod)
			diags = append(diags, mDiags...)
			item.Methods = append(item.Methods, m)
		}
	}
	return item, diags
}

// parseCallable handles function, event, constructor and method blocks.
func parseCallable(block *hcl.Block, kind Kind) (*Item, hcl.Diagnostics) {
	item := &Item{Kind: kind, Range: block.DefRange}
	if len(block.Labels) > 0 {
		item.Name = block.Labels[0]
	}
	content, diags := block.Body.Content(callableSchema)
	if content == nil {
		return item, diags
	}
	diags = append(diags, decodeAttr(content.Attributes, "doc", &item.Doc)...)

	if attr, ok := content.Attributes["returns"]; ok {
		var text string
		d := gohcl.DecodeExpression(attr.Expr, nil, &text)
		diags = append(diags, d...)
		if !d.HasErrors() {
			ret, diag := parseReturns(text, attr.Expr.Range())
			if diag != nil {
				diags = append(diags, diag)
			} else {
				item.Returns = ret
			}
		}
	}

	for _, b := range content.Blocks.OfType("arg") {
		p, pDiags := parseParam(b)
		diags = append(diags, pDiags...)
		if p != nil {
			item.Params = append(item.Params, p)
		}
	}
	return item, diags
}

func parseParam(block *hcl.Block) (*Param, hcl.Diagnostics) {
	p := &Param{Name: block.Labels[0], Range: block.DefRange}
	content, diags := block.Body.Content(argSchema)
	if content == nil {
		return nil, diags
	}

	typeAttr, ok := content.Attributes["type"]
	if !ok {
		missing := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   fmt.Sprintf("Argument %q must declare its type.", p.Name),
			Subject:  &missing,
		})
		return nil, diags
	}
	var text string
	d := gohcl.DecodeExpression(typeAttr.Expr, nil, &text)
	diags = append(diags, d...)
	if d.HasErrors() {
		return nil, diags
	}
	te, diag := parseTypeExpr(text, typeAttr.Expr.Range())
	if diag != nil {
		return nil, append(diags, diag)
	}
	p.Type = te

	diags = append(diags, decodeAttr(content.Attributes, "doc", &p.Doc)...)
	diags = append(diags, decodeAttr(content.Attributes, "shared_per_task", &p.SharedPerTask)...)
	diags = append(diags, decodeAttr(content.Attributes, "shared_per_vcl", &p.SharedPerVCL)...)
	diags = append(diags, decodeAttr(content.Attributes, "vcl_name", &p.VCLName)...)
	diags = append(diags, decodeAttr(content.Attributes, "required", &p.Required)...)

	if attr, ok := content.Attributes["default"]; ok {
		// Defaults must be literals, so no evaluation context is provided.
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() {
			if val.IsNull() || !val.IsWhollyKnown() {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value",
					Detail:   fmt.Sprintf("The default value of argument %q must be a non-null literal.", p.Name),
					Subject:  attr.Expr.Range().Ptr(),
				})
			} else {
				p.Default = &val
				p.DefaultRange = attr.Expr.Range()
			}
		}
	}
	return p, diags
}

func decodeAttr(attrs hcl.Attributes, name string, dst any) hcl.Diagnostics {
	attr, ok := attrs[name]
	if !ok {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, dst)
}
