// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package descriptor

import (
	"context"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/model"
)

// Generator implements [generator.Generator] for the interface descriptor.
type Generator struct{}

// NewGenerator creates a new descriptor generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Metadata returns information about this generator.
func (g *Generator) Metadata() generator.Metadata {
	return generator.Metadata{
		Name:           "descriptor",
		Version:        "1.0.0",
		Description:    "Generate the JSON interface descriptor read by the VCL compiler",
		FileExtensions: []string{".json"},
		Core:           true,
	}
}

// Generate renders vmod_<mod>.json.
func (g *Generator) Generate(ctx context.Context, m *model.Module, cfg generator.Config) (*generator.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := Render(m, Options{ABI: cfg.ABIString(m.Host)})
	if err != nil {
		return nil, err
	}
	return generator.Single(FileName(m), out), nil
}

// FileName is the descriptor artifact name.
func FileName(m *model.Module) string {
	return "vmod_" + m.Name + ".json"
}
