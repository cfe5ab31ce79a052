// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Command vmodgen generates plugin shims, the interface descriptor and
// reference documentation from a declaration file.
//
// Usage:
//
//	vmodgen generate [flags]
//	vmodgen check [flags]
//	vmodgen watch [flags]
//	vmodgen generators
//	vmodgen version
//
// Flags shared by generate, check and watch:
//
//	-c, --config       Path to vmodgen.yaml (default: search the working directory)
//	-i, --input        Declaration file (default: vmod.hcl)
//	-o, --output       Output directory (default: .)
//	    --host         Targeted host version (default: 7.6)
//	-g, --generators   Comma-separated backends (default: all)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/hcl/v2"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/vmodgen/internal/logging"
	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
	"github.com/albertocavalcante/vmodgen/internal/pipeline"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "vmodgen")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		report(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vmodgen",
		Short:         "Generate Varnish plugin shims from declarations",
		Long:          "vmodgen validates a plugin declaration file and generates the cgo shims, the JSON interface descriptor\nand reference documentation for a Go implementation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newGeneratorsCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vmodgen %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// report prints err. Declaration diagnostics are rendered with source
// snippets.
func report(w io.Writer, err error) {
	var derr *pipeline.DiagnosticsError
	if errors.As(err, &derr) {
		writeDiagnostics(w, derr.Files, derr.Diags)
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// diagnosticWidth is the wrap width for rendered diagnostics.
const diagnosticWidth = 78

func writeDiagnostics(w io.Writer, files map[string]*hcl.File, diags hcl.Diagnostics) {
	dw := hcl.NewDiagnosticTextWriter(w, files, diagnosticWidth, false)
	_ = dw.WriteDiagnostics(diags)
}
