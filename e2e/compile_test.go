// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

//go:build e2e

// Package e2e provides end-to-end compile verification tests.
// These tests build a generated shim into a loadable plugin, so they need
// a C toolchain and the host's development headers.
//
// Run with: go test -tags e2e ./e2e/... -v
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/albertocavalcante/vmodgen/generators/descriptor"
)

// Tool installation instructions
var installInstructions = map[string]string{
	"go":         "Go is required. Install from https://go.dev/dl/",
	"cc":         "A C compiler is required for cgo. Install gcc or clang.",
	"pkg-config": "pkg-config is required to locate the host headers. Install pkg-config and varnish development headers (e.g. varnish-dev).",
}

// requireTool fails the test if the tool is not available.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		instruction := installInstructions[name]
		if instruction == "" {
			instruction = fmt.Sprintf("Install %s and ensure it's in PATH", name)
		}
		t.Fatalf("%s not found in PATH.\n%s", name, instruction)
	}
}

// hostCFlags returns the compiler flags for the host headers.
func hostCFlags(ctx context.Context, t *testing.T) string {
	t.Helper()
	requireTool(t, "pkg-config")
	out, err := exec.CommandContext(ctx, "pkg-config", "--cflags", "varnishapi").Output()
	if err != nil {
		t.Fatalf("pkg-config varnishapi: %v\n%s", err, installInstructions["pkg-config"])
	}
	return strings.TrimSpace(string(out))
}

const pluginImpl = `package main

type PerTask struct {
	n int64
}

func PerTskVal(tsk **PerTask) int64 {
	if *tsk == nil {
		*tsk = &PerTask{}
	}
	(*tsk).n++
	return (*tsk).n
}

type Counter struct {
	n int64
}

func NewCounter(start *int64) *Counter {
	c := &Counter{}
	if start != nil {
		c.n = *start
	}
	return c
}

func (c *Counter) Incr(by int64) int64 {
	c.n += by
	return c.n
}

func main() {}
`

// TestShimBuilds generates a shim and builds it into a shared object with
// cgo. The descriptor must be embedded in the result.
func TestShimBuilds(t *testing.T) {
	requireTool(t, "go")
	requireTool(t, "cc")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	moduleRoot, err := findModuleRoot()
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	cflags := hostCFlags(ctx, t)

	// Create isolated Go module
	pluginDir := filepath.Join(t.TempDir(), "plugin")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	goMod := fmt.Sprintf(`module vmodtest

go 1.25

require github.com/albertocavalcante/vmodgen v0.0.0

replace github.com/albertocavalcante/vmodgen => %s
`, moduleRoot)
	files := map[string]string{
		"go.mod":   goMod,
		"impl.go":  pluginImpl,
		"vmod.hcl": taskDecl,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(pluginDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	_, stderr, err := vmodgen(t, "generate", "-i", filepath.Join(pluginDir, "vmod.hcl"), "-o", pluginDir, "-g", "shim")
	if err != nil {
		t.Fatalf("vmodgen generate: %v\n%s", err, stderr)
	}

	run := func(t *testing.T, args ...string) {
		t.Helper()
		start := time.Now()
		cmd := exec.CommandContext(ctx, "go", args...)
		cmd.Dir = pluginDir
		cmd.Env = append(os.Environ(), "CGO_ENABLED=1", "CGO_CFLAGS="+cflags)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			t.Fatalf("go %s failed: %v\n%s", args[0], err, stderr.String())
		}
		t.Logf("go %s: %v", args[0], time.Since(start))
	}

	run(t, "mod", "tidy")

	lib := filepath.Join(pluginDir, "libvmod_tsk.so")
	t.Run("go_build", func(t *testing.T) {
		run(t, "build", "-buildmode=c-shared", "-o", lib, ".")

		data, err := os.ReadFile(lib)
		if err != nil {
			t.Fatalf("read plugin: %v", err)
		}
		if !bytes.Contains(data, []byte(descriptor.Start)) {
			t.Errorf("plugin does not embed the interface descriptor")
		}
	})

	t.Run("go_vet", func(t *testing.T) {
		run(t, "vet", ".")
	})
}
