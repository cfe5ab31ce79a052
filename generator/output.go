// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"fmt"
	"path/filepath"
	"slices"
)

// Output contains generated files.
type Output struct {
	// Files maps artifact names, relative to the output directory, to
	// their content.
	Files map[string][]byte
}

// NewOutput creates a new Output.
func NewOutput() *Output {
	return &Output{Files: make(map[string][]byte)}
}

// Add adds a file to the output.
func (o *Output) Add(name string, content []byte) {
	o.Files[name] = content
}

// Single returns an Output with a single file.
func Single(name string, content []byte) *Output {
	return &Output{Files: map[string][]byte{name: content}}
}

// Names returns the file names, sorted.
func (o *Output) Names() []string {
	names := make([]string, 0, len(o.Files))
	for name := range o.Files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Combine merges the outputs of several generators, keyed by generator
// name. Nil outputs are skipped. A name that escapes the output directory,
// or a file produced by two generators, is an error.
func Combine(outputs map[string]*Output) (*Output, error) {
	gens := make([]string, 0, len(outputs))
	for name := range outputs {
		gens = append(gens, name)
	}
	slices.Sort(gens)

	merged := NewOutput()
	owner := make(map[string]string)
	for _, gen := range gens {
		out := outputs[gen]
		if out == nil {
			continue
		}
		for _, file := range out.Names() {
			if !filepath.IsLocal(file) {
				return nil, fmt.Errorf("generator %s: artifact name %q is not local to the output directory", gen, file)
			}
			if prev, dup := owner[file]; dup {
				return nil, fmt.Errorf("generators %s and %s both produce %s", prev, gen, file)
			}
			owner[file] = gen
			merged.Add(file, out.Files[file])
		}
	}
	return merged, nil
}
