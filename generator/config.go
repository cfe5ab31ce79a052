// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import "github.com/albertocavalcante/vmodgen/internal/catalog"

// Defaults used when the configuration leaves a field empty.
const (
	DefaultPackage       = "main"
	DefaultRuntimeImport = "github.com/albertocavalcante/vmodgen/vrt"
)

// Config contains generator configuration.
type Config struct {
	// OutputDir is the output directory.
	OutputDir string

	// Package is the Go package of the generated shim; it must be the
	// package holding the implementation functions.
	Package string

	// RuntimeImport is the import path of the runtime support package.
	RuntimeImport string

	// ABI is the host ABI string recorded in the descriptor.
	ABI string

	// Source is the declaration file (for headers).
	Source string

	// ToolVersion is the vmodgen version (for headers).
	ToolVersion string

	// Options contains target-specific options.
	Options map[string]string
}

// Option returns a target-specific option with default.
func (c Config) Option(key, defaultValue string) string {
	if v, ok := c.Options[key]; ok {
		return v
	}
	return defaultValue
}

// PackageName returns Package or DefaultPackage.
func (c Config) PackageName() string {
	if c.Package == "" {
		return DefaultPackage
	}
	return c.Package
}

// Runtime returns RuntimeImport or DefaultRuntimeImport.
func (c Config) Runtime() string {
	if c.RuntimeImport == "" {
		return DefaultRuntimeImport
	}
	return c.RuntimeImport
}

// ABIString returns ABI, or a string naming the host release.
func (c Config) ABIString(host catalog.Version) string {
	if c.ABI != "" {
		return c.ABI
	}
	return "Varnish " + host.String() + ".0"
}
