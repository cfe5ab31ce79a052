// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package pipeline runs one generation: parse the declarations, build the
// Module, fan out to the selected backends and write their artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/internal/builder"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/decl"
	"github.com/albertocavalcante/vmodgen/internal/logging"
	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
	"github.com/albertocavalcante/vmodgen/model"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "pipeline")

// DiagnosticsError carries declaration diagnostics as an error.
type DiagnosticsError struct {
	Diags hcl.Diagnostics

	// Files holds the parsed sources, for rendering snippets.
	Files map[string]*hcl.File
}

func (e *DiagnosticsError) Error() string {
	n := 0
	for _, d := range e.Diags {
		if d.Severity == hcl.DiagError {
			n++
		}
	}
	if n == 1 {
		return "declaration has 1 error: " + e.Diags.Errs()[0].Error()
	}
	return fmt.Sprintf("declaration has %d errors", n)
}

// Options configures a run.
type Options struct {
	// Input is the declaration file.
	Input string

	// Host is the targeted host version. Zero means catalog.DefaultHost.
	Host catalog.Version

	// Registry supplies the backends. Nil means generator.Default.
	Registry *generator.Registry

	// Generators selects backends by name; empty means all registered.
	Generators []string

	// Config is passed to every backend.
	Config generator.Config

	// DryRun skips writing.
	DryRun bool
}

// Result is the outcome of a run.
type Result struct {
	Module *model.Module

	// Files maps artifact names, relative to the output directory, to
	// their content.
	Files map[string][]byte

	// Warnings are failures of non-core backends.
	Warnings []error

	// Written lists the paths written, sorted.
	Written []string
}

// Check parses and builds the declaration file without generating.
func Check(path string, host catalog.Version) (*model.Module, error) {
	f, diags := decl.ParseFile(path)
	if diags.HasErrors() {
		var sources map[string]*hcl.File
		if f != nil {
			sources = f.Sources
		}
		return nil, &DiagnosticsError{Diags: diags, Files: sources}
	}
	m, buildDiags := builder.Build(f, builder.Options{Host: host})
	diags = append(diags, buildDiags...)
	if diags.HasErrors() {
		return nil, &DiagnosticsError{Diags: diags, Files: f.Sources}
	}
	return m, nil
}

// Run executes the full pipeline. Artifacts are written only after every
// core backend succeeded; a failing non-core backend is reported as a
// warning and its output is skipped.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	m, err := Check(opts.Input, opts.Host)
	if err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = generator.Default
	}
	gens, err := reg.Resolve(opts.Generators)
	if err != nil {
		return nil, err
	}

	outputs, warnings, err := generate(ctx, m, gens, opts.Config)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*generator.Output, len(gens))
	for i, g := range gens {
		byName[g.Metadata().Name] = outputs[i]
	}
	merged, err := generator.Combine(byName)
	if err != nil {
		return nil, err
	}
	files := merged.Files

	res := &Result{Module: m, Files: files, Warnings: warnings}
	if !opts.DryRun {
		res.Written, err = Write(opts.Config.OutputDir, files)
		if err != nil {
			return res, err
		}
	}

	log.WithFields(logrus.Fields{
		logfields.Module:   m.Name,
		logfields.Count:    len(files),
		logfields.Duration: time.Since(start),
	}).Info("Generation complete")
	return res, nil
}

// generate runs the backends concurrently over m. outputs is indexed like
// gens; a skipped non-core backend leaves a nil entry.
func generate(ctx context.Context, m *model.Module, gens []generator.Generator, cfg generator.Config) ([]*generator.Output, []error, error) {
	outputs := make([]*generator.Output, len(gens))
	warnings := make([]error, len(gens))

	g, gctx := errgroup.WithContext(ctx)
	for i, gen := range gens {
		meta := gen.Metadata()
		g.Go(func() error {
			glog := log.WithField(logfields.Generator, meta.Name)
			glog.Debug("Generating")

			out, err := gen.Generate(gctx, m, cfg)
			if err != nil {
				err = fmt.Errorf("generator %s: %w", meta.Name, err)
				if meta.Core {
					return err
				}
				glog.WithError(err).Warn("Generator failed, skipping its output")
				warnings[i] = err
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warns []error
	for _, w := range warnings {
		if w != nil {
			warns = append(warns, w)
		}
	}
	return outputs, warns, nil
}

// Write writes files under dir and returns the written paths, sorted. It
// attempts every file and joins the errors.
func Write(dir string, files map[string][]byte) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		written []string
		errs    []error
	)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", name, err))
			continue
		}
		log.WithField(logfields.File, path).Debug("Wrote artifact")
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}
