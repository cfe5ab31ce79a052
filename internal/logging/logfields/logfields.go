// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package logfields defines the logging field keys shared across packages.
package logfields

const (
	// LogSubsys is the field denoting the subsystem when logging.
	LogSubsys = "subsys"

	// Module is the name of the plugin module being generated.
	Module = "module"

	// Generator is the name of an output backend.
	Generator = "generator"

	// File is a path read or written by the generator.
	File = "file"

	// Count is a generic item count.
	Count = "count"

	// Host is the targeted host version.
	Host = "host"

	// Duration is how long an operation took.
	Duration = "duration"
)
