// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package vrt

import (
	"slices"
	"sync"
	"unsafe"
)

// Priv mirrors the host's struct vmod_priv. Handle occupies the priv
// pointer field and holds a handle, never a Go pointer.
type Priv struct {
	Handle  uintptr
	Len     int
	Methods unsafe.Pointer
}

// PrivOf converts a host slot pointer.
func PrivOf(p unsafe.Pointer) *Priv {
	return (*Priv)(p)
}

// Take moves the payload out of the slot and leaves the slot empty. It
// returns nil for an empty slot. A payload of another type is disposed of
// and nil returned.
func Take[T any](p *Priv) *T {
	if p == nil || p.Handle == 0 {
		return nil
	}
	v, _ := handles.LoadAndDelete(p.Handle)
	p.Handle = 0
	t, ok := v.(*T)
	if !ok {
		dispose(v)
	}
	return t
}

// Put stores v in the slot together with the methods descriptor the host
// uses to free it. A nil v leaves the slot empty.
func Put[T any](p *Priv, v *T, methods unsafe.Pointer) {
	if p == nil {
		return
	}
	if p.Handle != 0 {
		Release(p.Handle)
		p.Handle = 0
	}
	if v == nil {
		p.Methods = nil
		return
	}
	p.Handle = NewHandle(v)
	p.Methods = methods
}

// Restore puts v back into the slot after a call that was handed taken.
// When the call replaced or cleared the value, taken is disposed of the way
// the slot's destructor would have.
func Restore[T any](p *Priv, taken, v *T, methods unsafe.Pointer) {
	Put(p, v, methods)
	if taken != nil && taken != v {
		dispose(taken)
	}
}

// Peek returns the payload without taking it.
func Peek[T any](p *Priv) *T {
	if p == nil {
		return nil
	}
	t, _ := Value[*T](p.Handle)
	return t
}

// Free releases whatever the slot holds. Shims call it from the methods
// descriptor's fini callback.
func Free(h uintptr) {
	Release(h)
}

const slotStripes = 64

var slotLocks [slotStripes]sync.Mutex

func stripe(p *Priv) int {
	return int((uintptr(unsafe.Pointer(p)) >> 4) % slotStripes)
}

// LockSlots serializes take/put-back on the given slots and returns the
// unlock function. Slots are striped by address. Each stripe is locked once
// and stripes are taken in ascending order, so two slots sharing a stripe
// or concurrent calls naming the same slots in another order do not deadlock.
func LockSlots(ps ...*Priv) func() {
	idx := make([]int, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			idx = append(idx, stripe(p))
		}
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for _, i := range idx {
		slotLocks[i].Lock()
	}
	return func() {
		for _, i := range slices.Backward(idx) {
			slotLocks[i].Unlock()
		}
	}
}
