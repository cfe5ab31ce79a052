// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package logging holds the process-wide logrus logger used by vmodgen.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultLogLevel is the level used until SetLevel is called.
const DefaultLogLevel = logrus.InfoLevel

// DefaultLogger is the logger every package derives its subsystem logger from.
var DefaultLogger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(DefaultLogLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetLevel parses level ("debug", "info", "warn", ...) and applies it to DefaultLogger.
func SetLevel(level string) error {
	if level == "" {
		DefaultLogger.SetLevel(DefaultLogLevel)
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	DefaultLogger.SetLevel(lvl)
	return nil
}

// SetFormat switches DefaultLogger between text and JSON output.
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		DefaultLogger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		DefaultLogger.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q (want %q or %q)", format, FormatText, FormatJSON)
	}
	return nil
}

// SetOutput redirects DefaultLogger.
func SetOutput(w io.Writer) {
	DefaultLogger.SetOutput(w)
}
