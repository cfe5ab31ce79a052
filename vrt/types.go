// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package vrt

import (
	"fmt"
	"math"
	"net/netip"
	"time"
	"unsafe"
)

// Event is a VCL lifecycle event.
type Event int

// Lifecycle events, numbered as the host's enum vcl_event_e.
const (
	EventLoad Event = iota
	EventWarm
	EventCold
	EventDiscard
)

func (e Event) String() string {
	switch e {
	case EventLoad:
		return "load"
	case EventWarm:
		return "warm"
	case EventCold:
		return "cold"
	case EventDiscard:
		return "discard"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Backend is an opaque host backend reference.
type Backend struct {
	p unsafe.Pointer
}

// BackendOf wraps a host backend pointer.
func BackendOf(p unsafe.Pointer) Backend { return Backend{p: p} }

// Raw returns the host pointer.
func (b Backend) Raw() unsafe.Pointer { return b.p }

// IsNil reports whether b refers to no backend.
func (b Backend) IsNil() bool { return b.p == nil }

// Probe is an opaque host probe reference.
type Probe struct {
	p unsafe.Pointer
}

// ProbeOf wraps a host probe pointer; nil stays nil.
func ProbeOf(p unsafe.Pointer) *Probe {
	if p == nil {
		return nil
	}
	return &Probe{p: p}
}

// Raw returns the host pointer.
func (p *Probe) Raw() unsafe.Pointer {
	if p == nil {
		return nil
	}
	return p.p
}

// BorrowString views a NUL-terminated host string without copying. The
// result is only valid for the duration of the call.
func BorrowString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return unsafe.String((*byte)(p), n)
}

// blob mirrors struct vrt_blob.
type blob struct {
	typ  uint32
	len  uintptr
	data unsafe.Pointer
}

// BorrowBlob views a host blob without copying. A NULL blob is nil.
func BorrowBlob(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	b := (*blob)(p)
	if b.data == nil || b.len == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(b.data), b.len)
}

// Seconds converts d to the host's duration representation.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// FromSeconds converts a host duration, saturating at the int64 range.
func FromSeconds(s float64) time.Duration {
	ns := s * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

// Address families reported by the shim's address helper.
const (
	FamilyNone = 0
	FamilyIPv4 = 4
	FamilyIPv6 = 6
)

// AddrPortOf builds an address from the raw parts extracted by the shim.
// It returns nil for FamilyNone.
func AddrPortOf(family int, addr *[16]byte, port uint16) *netip.AddrPort {
	var ip netip.Addr
	switch family {
	case FamilyIPv4:
		ip = netip.AddrFrom4([4]byte(addr[:4]))
	case FamilyIPv6:
		ip = netip.AddrFrom16(*addr)
	default:
		return nil
	}
	ap := netip.AddrPortFrom(ip, port)
	return &ap
}

// Opt returns &v when valid, nil otherwise. Shims use it to rebuild optional
// arguments from their validity flag.
func Opt[T any](valid bool, v T) *T {
	if !valid {
		return nil
	}
	return &v
}

// When returns p when valid, nil otherwise.
func When[T any](valid bool, p *T) *T {
	if !valid {
		return nil
	}
	return p
}
