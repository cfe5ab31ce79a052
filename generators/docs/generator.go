// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package docs

import (
	"context"
	"fmt"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/model"
)

// Output formats selected with the "format" option.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Generator implements [generator.Generator] for reference documentation.
type Generator struct{}

// NewGenerator creates a new docs generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Metadata returns information about this generator.
func (g *Generator) Metadata() generator.Metadata {
	return generator.Metadata{
		Name:           "docs",
		Version:        "1.0.0",
		Description:    "Generate Markdown or HTML reference documentation",
		FileExtensions: []string{".md", ".html"},
	}
}

// Generate renders vmod_<mod>.md, or vmod_<mod>.html with format=html.
func (g *Generator) Generate(ctx context.Context, m *model.Module, cfg generator.Config) (*generator.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format := cfg.Option("format", FormatMarkdown); format {
	case FormatMarkdown, "md":
		return generator.Single("vmod_"+m.Name+".md", Markdown(m)), nil
	case FormatHTML:
		return generator.Single("vmod_"+m.Name+".html", HTML(m)), nil
	default:
		return nil, fmt.Errorf("unknown docs format %q (want %s or %s)", format, FormatMarkdown, FormatHTML)
	}
}
