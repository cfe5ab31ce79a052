// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
	"github.com/albertocavalcante/vmodgen/internal/pipeline"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the declaration file changes",
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
			return watch(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// watch runs the pipeline once and then after every change to opts.Input
// until ctx is done. Failed runs are reported and watching continues.
func watch(ctx context.Context, opts pipeline.Options, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	input, err := filepath.Abs(opts.Input)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(input), err)
	}
	log.WithField(logfields.File, input).Info("Watching for changes")

	regenerate := func() {
		res, err := pipeline.Run(ctx, opts)
		if err != nil {
			report(w, err)
			return
		}
		for _, warn := range res.Warnings {
			fmt.Fprintf(w, "warning: %v\n", warn)
		}
	}
	regenerate()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.WithField(logfields.File, event.Name).Debugf("Change detected: %s", event.Op)
			timer.Reset(watchDebounce)
		case <-timer.C:
			regenerate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watcher error")
		}
	}
}
