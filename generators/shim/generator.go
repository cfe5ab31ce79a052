// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package shim

import (
	"context"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/model"
)

// Generator implements [generator.Generator] for the cgo shim.
type Generator struct{}

// NewGenerator creates a new shim generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Metadata returns information about this generator.
func (g *Generator) Metadata() generator.Metadata {
	return generator.Metadata{
		Name:           "shim",
		Version:        "1.0.0",
		Description:    "Generate the cgo wrappers, C header and module data for a Go implementation",
		FileExtensions: []string{".go", ".h", ".c"},
		Core:           true,
	}
}

// Generate renders the Go wrapper file, the header and the C source.
func (g *Generator) Generate(ctx context.Context, m *model.Module, cfg generator.Config) (*generator.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := Render(m, Options{
		Package: cfg.PackageName(),
		Runtime: cfg.Runtime(),
		ABI:     cfg.ABIString(m.Host),
		Source:  cfg.Source,
		Version: cfg.ToolVersion,
	})
	if err != nil {
		return nil, err
	}

	out := generator.NewOutput()
	out.Add(GoFile(m), files.Go)
	out.Add(HeaderFile(m), files.Header)
	out.Add(CFile(m), files.C)
	return out, nil
}
