// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package docs renders human-readable reference documentation for a module.
package docs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/model"
)

// Markdown renders the module reference as Markdown.
func Markdown(m *model.Module) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# vmod_%s\n\n", m.Name)
	if doc := strings.TrimSpace(m.Doc); doc != "" {
		b.WriteString(doc)
		b.WriteString("\n\n")
	}

	if m.Event != nil {
		b.WriteString("## Event handler\n\n")
		fmt.Fprintf(&b, "### `%s`\n\n", m.Event.Name)
		writeDoc(&b, m.Event.Doc)
		b.WriteString("Called on every VCL lifecycle event (load, warm, cold, discard). A failure reported while loading prevents the VCL from being used.\n\n")
	}

	if len(m.Functions) > 0 {
		b.WriteString("## Functions\n\n")
		for _, fn := range m.Functions {
			writeCallable(&b, Signature(m, fn), fn)
		}
	}

	if len(m.Objects) > 0 {
		b.WriteString("## Objects\n\n")
		for _, obj := range m.Objects {
			fmt.Fprintf(&b, "### Object `%s`\n\n", obj.Name)
			writeDoc(&b, obj.Doc)
			writeCallable(&b, Signature(m, obj.Constructor), obj.Constructor)
			for _, meth := range obj.Methods {
				writeCallable(&b, Signature(m, meth), meth)
			}
		}
	}
	return bytes.TrimRight(b.Bytes(), "\n")
}

// HTML renders the Markdown reference to an HTML fragment.
func HTML(m *model.Module) []byte {
	return blackfriday.Run(Markdown(m), blackfriday.WithExtensions(blackfriday.CommonExtensions))
}

// Signature is the VCL-style call form of fn. Optional arguments are
// bracketed; arguments the host supplies implicitly are omitted.
func Signature(m *model.Module, fn *model.Function) string {
	args := visibleArgs(fn)
	parts := make([]string, 0, len(args))
	for _, a := range args {
		p := catalog.MustLookup(a.Type).VCC + " " + a.Name
		if a.Default != "" {
			p += " = " + a.Default
		}
		if a.Optional {
			p = "[" + p + "]"
		}
		parts = append(parts, p)
	}
	list := strings.Join(parts, ", ")

	switch fn.Kind {
	case model.KindConstructor:
		return fmt.Sprintf("new x%s = %s.%s(%s)", fn.Object, m.Name, fn.Object, list)
	case model.KindMethod:
		return fmt.Sprintf("%s x%s.%s(%s)", retVCC(fn), fn.Object, fn.Name, list)
	}
	return fmt.Sprintf("%s %s.%s(%s)", retVCC(fn), m.Name, fn.Name, list)
}

func retVCC(fn *model.Function) string {
	return catalog.MustLookup(fn.Return.Type).VCC
}

// visibleArgs are the arguments a VCL caller passes.
func visibleArgs(fn *model.Function) []*model.Argument {
	var out []*model.Argument
	for _, a := range descriptor.WireArgs(fn) {
		if !a.Mode.IsSlot() {
			out = append(out, a)
		}
	}
	return out
}

func writeCallable(b *bytes.Buffer, sig string, fn *model.Function) {
	heading := "####"
	if fn.Kind == model.KindFunction {
		heading = "###"
	}
	fmt.Fprintf(b, "%s `%s`\n\n", heading, sig)
	writeDoc(b, fn.Doc)

	args := visibleArgs(fn)
	if len(args) > 0 {
		b.WriteString("| Argument | Type | Optional | Default | Description |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, a := range args {
			opt := "no"
			switch {
			case a.Optional:
				opt = "yes"
			case a.Required:
				opt = "no, may be NULL"
			}
			def := ""
			if a.Default != "" {
				def = "`" + a.Default + "`"
			}
			fmt.Fprintf(b, "| `%s` | `%s` | %s | %s | %s |\n",
				a.Name, catalog.MustLookup(a.Type).VCC, opt, def, cell(a.Doc))
		}
		b.WriteString("\n")
	}

	if fn.Return.Fallible {
		b.WriteString("Failures are reported to VCL and abort the current task.\n\n")
	}
}

func writeDoc(b *bytes.Buffer, doc string) {
	if doc = strings.TrimSpace(doc); doc != "" {
		b.WriteString(doc)
		b.WriteString("\n\n")
	}
}

// cell flattens text into a single table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
