// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/albertocavalcante/vmodgen/internal/config"
	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
)

// projectFlags are the flags that override vmodgen.yaml.
type projectFlags struct {
	configPath string
	input      string
	output     string
	host       string
	abi        string
	pkg        string
	runtime    string
	generators []string
	options    map[string]string
	logLevel   string
	logFormat  string
}

func (f *projectFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to vmodgen.yaml (default: search the working directory)")
	fs.StringVarP(&f.input, "input", "i", "", "Declaration file (default: vmod.hcl)")
	fs.StringVarP(&f.output, "output", "o", "", "Output directory (default: .)")
	fs.StringVar(&f.host, "host", "", "Targeted host version, e.g. 7.6")
	fs.StringVar(&f.abi, "abi", "", "ABI string recorded in the descriptor")
	fs.StringVarP(&f.pkg, "package", "p", "", "Go package of the generated shim (default: main)")
	fs.StringVar(&f.runtime, "runtime", "", "Import path of the runtime support package")
	fs.StringSliceVarP(&f.generators, "generators", "g", nil, "Comma-separated backends (default: all)")
	fs.StringToStringVar(&f.options, "option", nil, "Backend option as key=value (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: text or json")
}

// load reads the project file and applies the flags the user set over it.
// The merged configuration is validated and its logging applied.
func (f *projectFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	var (
		cfg  *config.Config
		path = f.configPath
		err  error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, err
		}
		cfg, path, err = config.LoadFromDir(wd)
	}
	if err != nil {
		return nil, err
	}

	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("input", &cfg.Input, f.input)
	set("output", &cfg.OutputDir, f.output)
	set("host", &cfg.HostVersion, f.host)
	set("abi", &cfg.ABI, f.abi)
	set("package", &cfg.Package, f.pkg)
	set("runtime", &cfg.RuntimeImport, f.runtime)
	set("log-level", &cfg.LogLevel, f.logLevel)
	set("log-format", &cfg.LogFormat, f.logFormat)
	if fs.Changed("generators") {
		cfg.Generators = f.generators
	}
	if len(f.options) > 0 {
		if cfg.Options == nil {
			cfg.Options = make(map[string]string, len(f.options))
		}
		for k, v := range f.options {
			cfg.Options[k] = v
		}
	}

	if verrs := cfg.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	if err := cfg.ApplyLogging(); err != nil {
		return nil, err
	}
	if path != "" {
		log.WithField(logfields.File, path).Debug("Loaded config")
	}
	return cfg, nil
}
