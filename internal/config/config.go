// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package config loads the vmodgen.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/logging"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
)

// FileNames are searched, in order, by LoadFromDir.
var FileNames = []string{"vmodgen.yaml", "vmodgen.yml", ".vmodgen.yaml", ".vmodgen.yml"}

// Config is the project configuration.
type Config struct {
	// Input is the declaration file.
	Input string `yaml:"input"`

	// OutputDir receives the generated artifacts.
	OutputDir string `yaml:"output_dir"`

	// HostVersion is the targeted host release, e.g. "7.6".
	HostVersion string `yaml:"host_version"`

	// ABI overrides the ABI string recorded in the descriptor.
	ABI string `yaml:"abi"`

	Package       string `yaml:"package"`
	RuntimeImport string `yaml:"runtime_import"`

	// Generators selects backends by name; empty means all registered.
	Generators []string `yaml:"generators"`

	// Options are passed to every backend.
	Options map[string]string `yaml:"options"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Input:       "vmod.hcl",
		OutputDir:   ".",
		HostVersion: catalog.DefaultHost.String(),
		Package:     generator.DefaultPackage,
		LogLevel:    logrus.InfoLevel.String(),
		LogFormat:   logging.FormatText,
	}
}

// Load reads path over the defaults. Unknown keys are rejected. Relative
// input and output paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if cfg.Input != "" && !filepath.IsAbs(cfg.Input) {
		cfg.Input = filepath.Join(dir, cfg.Input)
	}
	if cfg.OutputDir != "" && !filepath.IsAbs(cfg.OutputDir) {
		cfg.OutputDir = filepath.Join(dir, cfg.OutputDir)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFromDir loads the first config file found in dir, or the defaults.
// The returned path is empty when no file was found.
func LoadFromDir(dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

// Validate checks every field and returns all problems found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Input) == "" {
		add("input", "is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		add("output_dir", "is required")
	}
	if _, err := c.Host(); err != nil {
		add("host_version", "%v", err)
	}
	if c.Package != "" && !symbols.IsIdent(c.Package) {
		add("package", "%q is not a valid Go package name", c.Package)
	}
	if c.RuntimeImport != "" && strings.ContainsAny(c.RuntimeImport, " \t\"\\") {
		add("runtime_import", "%q is not a valid import path", c.RuntimeImport)
	}
	seen := make(map[string]bool)
	for _, name := range c.Generators {
		if seen[name] {
			add("generators", "%q is listed twice", name)
		}
		seen[name] = true
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			add("log_level", "%v", err)
		}
	}
	switch c.LogFormat {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		add("log_format", "must be %q or %q, got %q", logging.FormatText, logging.FormatJSON, c.LogFormat)
	}
	return errs
}

// Host returns the parsed host version, or catalog.DefaultHost when unset.
func (c *Config) Host() (catalog.Version, error) {
	if c.HostVersion == "" {
		return catalog.DefaultHost, nil
	}
	return catalog.ParseVersion(c.HostVersion)
}

// Generator returns the backend configuration.
func (c *Config) Generator(toolVersion string) generator.Config {
	return generator.Config{
		OutputDir:     c.OutputDir,
		Package:       c.Package,
		RuntimeImport: c.RuntimeImport,
		ABI:           c.ABI,
		Source:        filepath.Base(c.Input),
		ToolVersion:   toolVersion,
		Options:       c.Options,
	}
}

// ApplyLogging configures the default logger from LogLevel and LogFormat.
func (c *Config) ApplyLogging() error {
	if err := logging.SetLevel(c.LogLevel); err != nil {
		return err
	}
	return logging.SetFormat(c.LogFormat)
}
