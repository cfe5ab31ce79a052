// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/vmodgen/model"
)

// mockGenerator is a test implementation of Generator.
type mockGenerator struct {
	name string
	core bool
}

func (m *mockGenerator) Metadata() Metadata {
	return Metadata{
		Name:           m.name,
		Version:        "1.0.0",
		Description:    "Mock generator for testing",
		FileExtensions: []string{".mock"},
		Core:           m.core,
	}
}

func (m *mockGenerator) Generate(_ context.Context, mod *model.Module, _ Config) (*Output, error) {
	return Single("vmod_"+mod.Name+".mock", []byte(m.name)), nil
}

func names(gens []Generator) []string {
	var out []string
	for _, g := range gens {
		out = append(out, g.Metadata().Name)
	}
	return out
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(&mockGenerator{name: "shim", core: true}, &mockGenerator{name: "docs"})

	t.Run("Get", func(t *testing.T) {
		g, ok := r.Get("shim")
		require.True(t, ok)
		assert.True(t, g.Metadata().Core)

		_, ok = r.Get("nonexistent")
		assert.False(t, ok)
	})

	t.Run("Names sorted", func(t *testing.T) {
		require.NoError(t, r.Add(&mockGenerator{name: "descriptor", core: true}))
		assert.Equal(t, []string{"descriptor", "docs", "shim"}, r.Names())
		assert.Equal(t, []string{"descriptor", "docs", "shim"}, names(r.All()))
	})

	t.Run("Add rejects duplicates and empty names", func(t *testing.T) {
		assert.EqualError(t, r.Add(&mockGenerator{name: "docs"}), `generator "docs" already registered`)
		assert.EqualError(t, r.Add(&mockGenerator{}), "generator registered without a name")
	})

	t.Run("NewRegistry panics on duplicates", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRegistry(&mockGenerator{name: "dup"}, &mockGenerator{name: "dup"})
		})
	})
}

func TestResolve(t *testing.T) {
	r := NewRegistry(
		&mockGenerator{name: "shim"},
		&mockGenerator{name: "docs"},
		&mockGenerator{name: "descriptor"},
	)

	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr string
	}{
		{name: "empty selects all sorted", names: nil, want: []string{"descriptor", "docs", "shim"}},
		{name: "keeps order", names: []string{"shim", "descriptor"}, want: []string{"shim", "descriptor"}},
		{name: "unknown", names: []string{"shim", "rust"}, wantErr: `unknown generator(s) rust (available: descriptor, docs, shim)`},
		{name: "repeated", names: []string{"docs", "docs"}, wantErr: `generator "docs" selected twice`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gens, err := r.Resolve(tc.names)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(gens))
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register(&mockGenerator{name: "zebra"})
	Register(&mockGenerator{name: "alpha"})
	assert.Equal(t, []string{"alpha", "zebra"}, List())
	assert.Len(t, All(), 2)

	g, ok := Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", g.Metadata().Name)

	gens, err := Resolve([]string{"zebra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra"}, names(gens))

	assert.Panics(t, func() { Register(&mockGenerator{name: "alpha"}) })
}
