// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/vmodgen/internal/config"
	"github.com/albertocavalcante/vmodgen/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	var (
		flags  projectFlags
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Validate the declarations and write the generated artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := runOptions(cfg)
			if err != nil {
				return err
			}
			opts.DryRun = dryRun

			res, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}
			if dryRun {
				printFiles(cmd.OutOrStdout(), res.Files)
				return nil
			}
			for _, path := range res.Written {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generated: %s\n", path)
			}
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the artifacts to stdout without writing files")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the declarations without generating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			host, err := cfg.Host()
			if err != nil {
				return err
			}
			m, err := pipeline.Check(cfg.Input, host)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: module %s ok (%d callables)\n", cfg.Input, m.Name, len(m.Callables()))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// runOptions translates the configuration into pipeline options.
func runOptions(cfg *config.Config) (pipeline.Options, error) {
	host, err := cfg.Host()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Input:      cfg.Input,
		Host:       host,
		Generators: cfg.Generators,
		Config:     cfg.Generator(version),
	}, nil
}

// printFiles writes every artifact, in name order, under a header line.
func printFiles(w io.Writer, files map[string][]byte) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "// ==== %s ====\n", name)
		w.Write(files[name])
		if n := len(files[name]); n > 0 && files[name][n-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
}
