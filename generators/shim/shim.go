// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package shim generates the boundary layer between the host's native
// calling convention and a Go implementation package.
//
// Three files are produced per module: a cgo Go file with one exported
// wrapper per callable, a C header with the prototypes and helper
// declarations, and a C source holding the function table, the slot
// methods descriptors, the embedded interface descriptor and the module
// data symbol the host loads.
package shim

import (
	"fmt"

	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/model"
)

// Options configures shim generation.
type Options struct {
	// Package is the Go package of the implementation.
	Package string

	// Runtime is the import path of the runtime support package.
	Runtime string

	// ABI is the host ABI string embedded in the descriptor.
	ABI string

	// Source names the declaration file in generated headers.
	Source string

	// Version is the vmodgen version named in generated headers.
	Version string
}

// Files is the rendered shim.
type Files struct {
	Go     []byte
	Header []byte
	C      []byte
}

// Render generates all shim files for m.
func Render(m *model.Module, opts Options) (*Files, error) {
	goSrc, err := RenderGo(m, opts)
	if err != nil {
		return nil, fmt.Errorf("render go wrappers: %w", err)
	}
	desc, err := descriptor.Render(m, descriptor.Options{ABI: opts.ABI})
	if err != nil {
		return nil, err
	}
	return &Files{
		Go:     goSrc,
		Header: RenderHeader(m, opts),
		C:      RenderC(m, desc, opts),
	}, nil
}

// File names, relative to the output directory.
func GoFile(m *model.Module) string     { return "vmod_" + m.Name + ".go" }
func HeaderFile(m *model.Module) string { return "vmod_" + m.Name + "_if.h" }
func CFile(m *model.Module) string      { return "vmod_" + m.Name + "_if.c" }

// usage records which optional helpers a module needs.
type usage struct {
	ip, boolRet, stringRet, blobRet bool
}

func scan(m *model.Module) usage {
	var u usage
	for _, fn := range m.Callables() {
		for _, a := range fn.Args {
			if a.Type == catalog.IP {
				u.ip = true
			}
		}
		switch fn.Return.Type {
		case catalog.Bool:
			u.boolRet = true
		case catalog.String:
			u.stringRet = true
		case catalog.Blob:
			u.blobRet = true
		}
	}
	return u
}
