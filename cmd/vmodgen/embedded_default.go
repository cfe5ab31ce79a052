// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

//go:build !vmodgen_minimal

package main

import (
	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/generators/docs"
	"github.com/albertocavalcante/vmodgen/generators/shim"
)

func init() {
	// Default build: every backend embedded
	generator.Register(descriptor.NewGenerator())
	generator.Register(shim.NewGenerator())
	generator.Register(docs.NewGenerator())
}
