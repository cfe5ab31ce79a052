// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

//go:build vmodgen_minimal

package main

import (
	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/generators/shim"
)

func init() {
	// Minimal build: only the backends a plugin build needs
	generator.Register(descriptor.NewGenerator())
	generator.Register(shim.NewGenerator())
}
