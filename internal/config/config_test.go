// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())

	host, err := cfg.Host()
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultHost, host)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
input: decl/vmod.hcl
output_dir: gen
host_version: "7.5"
abi: Varnish 7.5.0 abc123
package: plugin
generators: [shim, descriptor]
options:
  format: html
log_level: debug
log_format: json
`))
	require.NoError(t, err)
	assert.Equal(t, "decl/vmod.hcl", cfg.Input)
	assert.Equal(t, "gen", cfg.OutputDir)
	assert.Equal(t, []string{"shim", "descriptor"}, cfg.Generators)
	assert.Equal(t, "html", cfg.Options["format"])
	assert.Empty(t, cfg.Validate())

	host, err := cfg.Host()
	require.NoError(t, err)
	assert.Equal(t, catalog.Version{Major: 7, Minor: 5}, host)

	gc := cfg.Generator("v1.2.3")
	assert.Equal(t, "vmod.hcl", gc.Source)
	assert.Equal(t, "plugin", gc.PackageName())
	assert.Equal(t, "Varnish 7.5.0 abc123", gc.ABI)
	assert.Equal(t, "v1.2.3", gc.ToolVersion)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("output_dir: out\n"))
	require.NoError(t, err)
	assert.Equal(t, "vmod.hcl", cfg.Input)
	assert.Equal(t, "out", cfg.OutputDir)

	cfg, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("inptu: vmod.hcl\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inptu")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HostVersion: "seven",
		Package:     "my-plugin",
		Generators:  []string{"shim", "shim"},
		LogLevel:    "loud",
		LogFormat:   "xml",
	}
	errs := cfg.Validate()

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"input", "output_dir", "host_version", "package", "generators", "log_level", "log_format"}, fields)
	assert.Equal(t, `package: "my-plugin" is not a valid Go package name`, errs[3].Error())
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vmodgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: vmod.hcl\noutput_dir: out\n"), 0o644))

	cfg, found, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, path, found)
	assert.Equal(t, filepath.Join(dir, "vmod.hcl"), cfg.Input)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
}

func TestLoadFromDirMissing(t *testing.T) {
	cfg, found, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, Default(), cfg)
}

func TestLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
