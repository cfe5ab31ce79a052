// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry is a set of backends addressed by name.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// NewRegistry returns a registry holding gens. It panics on an invalid or
// repeated name, like Register.
func NewRegistry(gens ...Generator) *Registry {
	r := &Registry{gens: make(map[string]Generator, len(gens))}
	for _, g := range gens {
		if err := r.Add(g); err != nil {
			panic(err)
		}
	}
	return r
}

// Default is populated at init time by the command's build variant.
var Default = NewRegistry()

// Add registers g. The name must be non-empty and unused.
func (r *Registry) Add(g Generator) error {
	meta := g.Metadata()
	if meta.Name == "" {
		return errors.New("generator registered without a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.gens[meta.Name]; exists {
		return fmt.Errorf("generator %q already registered", meta.Name)
	}
	r.gens[meta.Name] = g
	return nil
}

// Get returns a generator by name.
func (r *Registry) Get(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gens[name]
	return g, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gens))
	for name := range r.gens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns the registered generators in name order.
func (r *Registry) All() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gens := make([]Generator, 0, len(r.gens))
	for _, g := range r.gens {
		gens = append(gens, g)
	}
	slices.SortFunc(gens, func(a, b Generator) int {
		return strings.Compare(a.Metadata().Name, b.Metadata().Name)
	})
	return gens
}

// Resolve returns the generators selected by names, in the order given. An
// empty selection means every registered generator, in name order. Unknown
// and repeated names are errors.
func (r *Registry) Resolve(names []string) ([]Generator, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	var (
		gens    []Generator
		unknown []string
		seen    = make(map[string]bool, len(names))
	)
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("generator %q selected twice", name)
		}
		seen[name] = true
		g, ok := r.Get(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		gens = append(gens, g)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown generator(s) %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(r.Names(), ", "))
	}
	return gens, nil
}

// Register adds g to Default. Registering a name twice panics.
func Register(g Generator) {
	if err := Default.Add(g); err != nil {
		panic(err)
	}
}

// Get looks name up in Default.
func Get(name string) (Generator, bool) { return Default.Get(name) }

// List returns the names registered in Default, sorted.
func List() []string { return Default.Names() }

// All returns the generators of Default in name order.
func All() []Generator { return Default.All() }

// Resolve selects generators from Default.
func Resolve(names []string) ([]Generator, error) { return Default.Resolve(names) }

// Reset empties Default (for testing).
func Reset() {
	Default.mu.Lock()
	defer Default.mu.Unlock()
	Default.gens = make(map[string]Generator)
}
