// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package vrt is the runtime support linked into generated plugin shims.
//
// Go values never cross into host memory. Objects and shared-state payloads
// are kept in a process-wide handle table and the host only stores the
// integer handle, in an object out-parameter or in a slot's priv field.
// Everything here is plain Go; the shims own all cgo conversions.
package vrt

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/albertocavalcante/vmodgen/internal/logging"
	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "vrt")

var (
	handles    sync.Map // uintptr -> any
	nextHandle atomic.Uintptr
)

// NewHandle stores v and returns a non-zero handle for it.
func NewHandle(v any) uintptr {
	h := nextHandle.Add(1)
	handles.Store(h, v)
	return h
}

// Value returns the value stored under h, if it has type T.
func Value[T any](h uintptr) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}
	v, ok := handles.Load(h)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Release drops the value stored under h. Values implementing io.Closer are
// closed; a Close error is logged since the host has no way to receive it.
func Release(h uintptr) {
	if h == 0 {
		return
	}
	if v, ok := handles.LoadAndDelete(h); ok {
		dispose(v)
	}
}

func dispose(v any) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("Closing released value failed")
		}
	}
}

// Live returns the number of values currently held.
func Live() int {
	n := 0
	handles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
