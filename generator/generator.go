// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package generator defines the interface for output backends.
//
// Every backend receives the same immutable Module and returns its files;
// backends never write to disk themselves.
package generator

import (
	"context"

	"github.com/albertocavalcante/vmodgen/model"
)

// Generator is the interface that all output backends must implement.
type Generator interface {
	// Metadata returns information about this generator.
	Metadata() Metadata

	// Generate produces output files for the module.
	Generate(ctx context.Context, m *model.Module, cfg Config) (*Output, error)
}

// Metadata describes a generator.
type Metadata struct {
	// Name is the short identifier (e.g., "shim", "descriptor", "docs").
	Name string

	// Version is the generator version (semver).
	Version string

	// Description is a human-readable description.
	Description string

	// FileExtensions lists typical output extensions (e.g., [".go", ".c"]).
	FileExtensions []string

	// Core generators produce artifacts the plugin cannot be built without.
	// A failing core generator prevents every artifact from being written;
	// other failures are reported as warnings.
	Core bool
}
