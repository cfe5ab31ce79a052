// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package catalog is the closed table of interface types a plugin may use,
// together with their native representation and the host versions that
// understand them.
package catalog

import "fmt"

// Logical is an abstract interface type.
type Logical int

// Logical types.
const (
	Void Logical = iota
	Bool
	Int
	Real
	Duration
	String
	Blob
	IP
	Probe
	Backend
	TaskState
	VCLState
	Event
	VCLName
	Context
)

var logicalNames = [...]string{
	Void:      "void",
	Bool:      "bool",
	Int:       "int",
	Real:      "real",
	Duration:  "duration",
	String:    "string",
	Blob:      "blob",
	IP:        "ip",
	Probe:     "probe",
	Backend:   "backend",
	TaskState: "task-state",
	VCLState:  "vcl-state",
	Event:     "event",
	VCLName:   "vcl-name",
	Context:   "context",
}

func (l Logical) String() string {
	if l < 0 || int(l) >= len(logicalNames) {
		return fmt.Sprintf("Logical(%d)", int(l))
	}
	return logicalNames[l]
}

// Pass is how a value crosses the boundary.
type Pass int

const (
	// PassValue converts by representation change.
	PassValue Pass = iota
	// PassBorrowed wraps native memory as a view valid for one call.
	PassBorrowed
	// PassHandle is an opaque host resource pointer.
	PassHandle
	// PassSlot is a host-owned shared-state container.
	PassSlot
	// PassImplicit is supplied by the calling convention itself.
	PassImplicit
)

// Entry describes one logical type.
type Entry struct {
	Logical Logical

	// GoType is the implementation-side type token that selects this entry.
	// Empty for kinds chosen by modifiers or by shape.
	GoType string

	// VCC is the type name used in the interface descriptor.
	VCC string

	// CType is the native type in generated prototypes.
	CType string

	Pass Pass

	// MustBeOptional is set for types whose native value may be NULL and
	// therefore has to be declared optional.
	MustBeOptional bool

	// Returnable reports whether implementations may return this type.
	Returnable bool

	// Since is the first host version providing the type.
	Since Version

	// Until is the first host version no longer providing it; zero means open.
	Until Version
}

// Supports reports whether host falls inside the entry's version range.
func (e Entry) Supports(host Version) bool {
	if host.Less(e.Since) {
		return false
	}
	return e.Until.IsZero() || host.Less(e.Until)
}

var (
	v60 = Version{Major: 6}
	v66 = Version{Major: 6, Minor: 6}
)

var entries = []Entry{
	{Logical: Void, VCC: "VOID", CType: "VCL_VOID", Pass: PassValue, Returnable: true, Since: v60},
	{Logical: Bool, GoType: "bool", VCC: "BOOL", CType: "VCL_BOOL", Pass: PassValue, Returnable: true, Since: v60},
	{Logical: Int, GoType: "int64", VCC: "INT", CType: "VCL_INT", Pass: PassValue, Returnable: true, Since: v60},
	{Logical: Real, GoType: "float64", VCC: "REAL", CType: "VCL_REAL", Pass: PassValue, Returnable: true, Since: v60},
	{Logical: Duration, GoType: "time.Duration", VCC: "DURATION", CType: "VCL_DURATION", Pass: PassValue, Returnable: true, Since: v60},
	{Logical: String, GoType: "string", VCC: "STRING", CType: "VCL_STRING", Pass: PassBorrowed, Returnable: true, Since: v60},
	{Logical: Blob, GoType: "[]byte", VCC: "BLOB", CType: "VCL_BLOB", Pass: PassBorrowed, Returnable: true, Since: v60},
	{Logical: IP, GoType: "netip.AddrPort", VCC: "IP", CType: "VCL_IP", Pass: PassBorrowed, MustBeOptional: true, Since: v60},
	{Logical: Probe, GoType: "vrt.Probe", VCC: "PROBE", CType: "VCL_PROBE", Pass: PassHandle, MustBeOptional: true, Since: v60},
	{Logical: Backend, GoType: "vrt.Backend", VCC: "BACKEND", CType: "VCL_BACKEND", Pass: PassHandle, Returnable: true, Since: v60},
	{Logical: TaskState, VCC: "PRIV_TASK", CType: "struct vmod_priv *", Pass: PassSlot, Since: v66},
	{Logical: VCLState, VCC: "PRIV_VCL", CType: "struct vmod_priv *", Pass: PassSlot, Since: v66},
	{Logical: Event, GoType: "vrt.Event", VCC: "EVENT", CType: "enum vcl_event_e", Pass: PassImplicit, Since: v60},
	{Logical: VCLName, CType: "const char *", Pass: PassImplicit, Since: v60},
	{Logical: Context, GoType: "*vrt.Ctx", CType: "VRT_CTX", Pass: PassImplicit, Since: v60},
}

var (
	byLogical = make(map[Logical]Entry, len(entries))
	byGoType  = make(map[string]Logical, len(entries))
)

func init() {
	for _, e := range entries {
		byLogical[e.Logical] = e
		if e.GoType != "" {
			byGoType[e.GoType] = e.Logical
		}
	}
}

// UnsupportedError reports a logical type the host version does not provide.
type UnsupportedError struct {
	Logical Logical
	Host    Version
	Entry   Entry
}

func (e *UnsupportedError) Error() string {
	if e.Entry.Until.IsZero() {
		return fmt.Sprintf("type %s requires host version %s or newer (targeting %s)", e.Logical, e.Entry.Since, e.Host)
	}
	return fmt.Sprintf("type %s is only available for host versions %s to %s (targeting %s)",
		e.Logical, e.Entry.Since, e.Entry.Until, e.Host)
}

// Lookup returns the entry for l as understood by host.
func Lookup(l Logical, host Version) (Entry, error) {
	e, ok := byLogical[l]
	if !ok {
		return Entry{}, fmt.Errorf("unknown logical type %s", l)
	}
	if !e.Supports(host) {
		return Entry{}, &UnsupportedError{Logical: l, Host: host, Entry: e}
	}
	return e, nil
}

// MustLookup is Lookup for callers that hold an already validated model.
// It ignores the host version.
func MustLookup(l Logical) Entry {
	e, ok := byLogical[l]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown logical type %d", int(l)))
	}
	return e
}

// ByGoType resolves an implementation type token to its logical type.
func ByGoType(token string) (Logical, bool) {
	l, ok := byGoType[token]
	return l, ok
}

// IsValue reports whether l is an ordinary argument type (not a slot, not a
// calling-convention kind).
func IsValue(l Logical) bool {
	switch l {
	case Bool, Int, Real, Duration, String, Blob, IP, Probe, Backend:
		return true
	}
	return false
}
