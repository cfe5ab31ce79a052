// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/generators/docs"
	"github.com/albertocavalcante/vmodgen/generators/shim"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/model"
)

const validDecl = `
module = "tsk"
function "per_tsk_val" {
  returns = "int64"
  arg "tsk" {
    type            = "**PerTask"
    shared_per_task = true
  }
}
`

// fakeGenerator emits one file or fails.
type fakeGenerator struct {
	name string
	core bool
	file string
	err  error
}

func (f *fakeGenerator) Metadata() generator.Metadata {
	return generator.Metadata{Name: f.name, Core: f.core}
}

func (f *fakeGenerator) Generate(ctx context.Context, m *model.Module, cfg generator.Config) (*generator.Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	return generator.Single(f.file, []byte(m.Name)), nil
}

func writeDecl(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vmod.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRun(t *testing.T) {
	reg := generator.NewRegistry(descriptor.NewGenerator(), shim.NewGenerator(), docs.NewGenerator())
	out := t.TempDir()

	res, err := Run(context.Background(), Options{
		Registry: reg,
		Input:    writeDecl(t, validDecl),
		Config:   generator.Config{OutputDir: out, Source: "vmod.hcl"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tsk", res.Module.Name)
	assert.Empty(t, res.Warnings)

	want := []string{"vmod_tsk.go", "vmod_tsk.json", "vmod_tsk.md", "vmod_tsk_if.c", "vmod_tsk_if.h"}
	var wantPaths []string
	for _, name := range want {
		wantPaths = append(wantPaths, filepath.Join(out, name))
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Equal(t, res.Files[name], data)
	}
	assert.Equal(t, wantPaths, res.Written)
}

func TestRunSelectedGenerators(t *testing.T) {
	reg := generator.NewRegistry(descriptor.NewGenerator(), shim.NewGenerator(), docs.NewGenerator())

	res, err := Run(context.Background(), Options{
		Registry:   reg,
		Input:      writeDecl(t, validDecl),
		Generators: []string{"descriptor"},
		DryRun:     true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Contains(t, res.Files, "vmod_tsk.json")
	assert.Empty(t, res.Written)
}

func TestRunDiagnostics(t *testing.T) {
	reg := generator.NewRegistry(descriptor.NewGenerator())
	out := t.TempDir()
	input := writeDecl(t, `
module = "bad"
function "f" {
  arg "a" { type = "uint8" }
  arg "b" { type = "int" }
}
`)

	_, err := Run(context.Background(), Options{
		Registry: reg,
		Input:    input,
		Config:   generator.Config{OutputDir: out},
	})
	var derr *DiagnosticsError
	require.ErrorAs(t, err, &derr)
	assert.Len(t, derr.Diags.Errs(), 2)
	assert.Equal(t, "declaration has 2 errors", derr.Error())
	assert.NotEmpty(t, derr.Files)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written on diagnostics")
}

func TestCheckMissingFile(t *testing.T) {
	_, err := Check(filepath.Join(t.TempDir(), "missing.hcl"), catalog.Version{})
	var derr *DiagnosticsError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Error(), "Failed to read declaration file")
}

func TestRunCoreFailure(t *testing.T) {
	boom := errors.New("boom")
	reg := generator.NewRegistry(
		&fakeGenerator{name: "a", core: true, file: "a.txt"},
		&fakeGenerator{name: "b", core: true, err: boom},
	)
	out := t.TempDir()

	_, err := Run(context.Background(), Options{
		Registry: reg,
		Input:    writeDecl(t, validDecl),
		Config:   generator.Config{OutputDir: out},
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "generator b")

	_, statErr := os.Stat(filepath.Join(out, "a.txt"))
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no artifact is written when a core generator fails")
}

func TestRunNonCoreFailure(t *testing.T) {
	boom := errors.New("boom")
	reg := generator.NewRegistry(
		&fakeGenerator{name: "a", core: true, file: "a.txt"},
		&fakeGenerator{name: "docs", err: boom},
	)
	out := t.TempDir()

	res, err := Run(context.Background(), Options{
		Registry: reg,
		Input:    writeDecl(t, validDecl),
		Config:   generator.Config{OutputDir: out},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], boom)

	data, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "tsk", string(data))
}

func TestRunDuplicateFile(t *testing.T) {
	reg := generator.NewRegistry(
		&fakeGenerator{name: "a", core: true, file: "same.txt"},
		&fakeGenerator{name: "b", core: true, file: "same.txt"},
	)
	_, err := Run(context.Background(), Options{Registry: reg, Input: writeDecl(t, validDecl), DryRun: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both produce same.txt")
}

func TestRunUnknownGenerator(t *testing.T) {
	reg := generator.NewRegistry(descriptor.NewGenerator())
	_, err := Run(context.Background(), Options{
		Registry:   reg,
		Input:      writeDecl(t, validDecl),
		Generators: []string{"nope"},
		DryRun:     true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown generator")
}

func TestWriteJoinsErrors(t *testing.T) {
	dir := t.TempDir()
	// A directory where a file should go makes that write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b.txt"), 0o755))

	written, err := Write(dir, map[string][]byte{
		"a.txt": []byte("a"),
		"b.txt": []byte("b"),
		"c.txt": []byte("c"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write b.txt")
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "c.txt")}, written)
}
