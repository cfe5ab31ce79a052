// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
)

func TestConfigOption(t *testing.T) {
	cfg := Config{Options: map[string]string{"format": "html"}}
	assert.Equal(t, "html", cfg.Option("format", "markdown"))
	assert.Equal(t, "default", cfg.Option("missing", "default"))
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultPackage, cfg.PackageName())
	assert.Equal(t, DefaultRuntimeImport, cfg.Runtime())
	assert.Equal(t, "Varnish 7.6.0", cfg.ABIString(catalog.Version{Major: 7, Minor: 6}))

	cfg = Config{Package: "vmod", RuntimeImport: "example.com/vrt", ABI: "Varnish 7.6.1 abc"}
	assert.Equal(t, "vmod", cfg.PackageName())
	assert.Equal(t, "example.com/vrt", cfg.Runtime())
	assert.Equal(t, "Varnish 7.6.1 abc", cfg.ABIString(catalog.DefaultHost))
}

func TestOutput(t *testing.T) {
	out := NewOutput()
	out.Add("vmod_m_if.h", []byte("h"))
	out.Add("vmod_m.go", []byte("go"))
	assert.Equal(t, []string{"vmod_m.go", "vmod_m_if.h"}, out.Names())

	single := Single("vmod_m.json", []byte("{}"))
	assert.Equal(t, map[string][]byte{"vmod_m.json": []byte("{}")}, single.Files)
}

func TestCombine(t *testing.T) {
	t.Run("merges and skips nil", func(t *testing.T) {
		shim := NewOutput()
		shim.Add("vmod_m.go", []byte("go"))
		shim.Add("vmod_m_if.c", []byte("c"))

		got, err := Combine(map[string]*Output{
			"shim":       shim,
			"descriptor": Single("vmod_m.json", []byte("{}")),
			"docs":       nil,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"vmod_m.go", "vmod_m.json", "vmod_m_if.c"}, got.Names())
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := Combine(map[string]*Output{
			"b": Single("same.txt", nil),
			"a": Single("same.txt", nil),
		})
		assert.EqualError(t, err, "generators a and b both produce same.txt")
	})

	t.Run("escaping names", func(t *testing.T) {
		for _, name := range []string{"../x.go", "/abs/x.go", ""} {
			_, err := Combine(map[string]*Output{"shim": Single(name, nil)})
			require.Error(t, err, name)
			assert.Contains(t, err.Error(), "not local to the output directory")
		}
	})
}
