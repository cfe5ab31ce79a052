// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package vrt

import (
	"fmt"
	"runtime/debug"
	"unsafe"
)

// FailFunc reports a failure to the host for the request behind raw.
type FailFunc func(raw unsafe.Pointer, msg string)

// Ctx is the request context handed to implementations.
type Ctx struct {
	raw    unsafe.Pointer
	fail   FailFunc
	failed bool
}

// NewCtx wraps a host context. fail may be nil in tests.
func NewCtx(raw unsafe.Pointer, fail FailFunc) *Ctx {
	return &Ctx{raw: raw, fail: fail}
}

// Raw returns the host context pointer.
func (c *Ctx) Raw() unsafe.Pointer {
	if c == nil {
		return nil
	}
	return c.raw
}

// Fail reports err to the host. The current request fails once the
// implementation returns.
func (c *Ctx) Fail(err error) {
	if err == nil {
		return
	}
	c.Failf("%v", err)
}

// Failf is Fail with a formatted message.
func (c *Ctx) Failf(format string, args ...any) {
	if c == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.failed = true
	if c.fail != nil {
		c.fail(c.raw, msg)
		return
	}
	log.Warn(msg)
}

// Failed reports whether a failure was reported through c.
func (c *Ctx) Failed() bool {
	return c != nil && c.failed
}

// Recover turns a panic in an implementation into a reported failure. It
// must be deferred directly by the shim.
func Recover(c *Ctx) {
	r := recover()
	if r == nil {
		return
	}
	log.WithField("stack", string(debug.Stack())).Errorf("Recovered panic: %v", r)
	c.Failf("panic: %v", r)
}
