// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package model defines the validated, resolved representation of a plugin
// module. A Module is built once by the builder and only read afterwards;
// every output backend consumes the same value.
package model

import (
	"fmt"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
)

// Module is the top-level unit of generation.
type Module struct {
	// Name is the plugin name; it prefixes every generated symbol.
	Name string

	// Doc is the module documentation.
	Doc string

	// Host is the host version the module was validated against.
	Host catalog.Version

	// Functions are the free-standing functions, in declaration order.
	Functions []*Function

	// Objects are the declared objects, in declaration order.
	Objects []*Object

	// Event is the event handler, or nil.
	Event *Function

	// TaskState is the payload type shared by all task-scoped slots.
	// Empty when no task-scoped slot is declared.
	TaskState string

	// VCLState is the payload type shared by all vcl-scoped slots.
	VCLState string
}

// Kind classifies a Function.
type Kind int

const (
	KindFunction Kind = iota
	KindMethod
	KindConstructor
	KindDestructor
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindDestructor:
		return "destructor"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Function is a callable item: a free function, a method, an object's
// constructor or destructor, or the event handler.
type Function struct {
	Kind Kind

	// Name is the declared name. Constructors and destructors carry the
	// object name.
	Name string

	// Object is the owning object name for methods, constructors and
	// destructors.
	Object string

	Doc    string
	Args   []*Argument
	Return Return

	// Implicit marks constructors and destructors that were not declared.
	Implicit bool

	Pos Pos
}

// HasOptionalArgs reports whether any argument carries a validity flag.
func (f *Function) HasOptionalArgs() bool {
	for _, a := range f.Args {
		if a.Optional {
			return true
		}
	}
	return false
}

// UsesArgStruct reports whether the native signature passes a single
// argument record instead of positional parameters.
func (f *Function) UsesArgStruct() bool {
	switch f.Kind {
	case KindEvent, KindDestructor:
		return false
	}
	return f.HasOptionalArgs()
}

// Arg returns the first argument with the given mode, or nil.
func (f *Function) Arg(mode Mode) *Argument {
	for _, a := range f.Args {
		if a.Mode == mode {
			return a
		}
	}
	return nil
}

// Object is a declared object type.
type Object struct {
	Name string
	Doc  string

	// Constructor is always set; it is Implicit when not declared.
	Constructor *Function

	// Destructor is always set and always Implicit.
	Destructor *Function

	Methods []*Function

	Pos Pos
}

// Funcs returns the constructor, the destructor and the methods, in that order.
func (o *Object) Funcs() []*Function {
	out := make([]*Function, 0, len(o.Methods)+2)
	out = append(out, o.Constructor, o.Destructor)
	return append(out, o.Methods...)
}

// Mode is how an argument is passed across the boundary.
type Mode int

const (
	// ModeValue converts by representation change.
	ModeValue Mode = iota
	// ModeBorrowed is a read-only view valid for the duration of the call.
	ModeBorrowed
	// ModeHandle is an opaque host resource.
	ModeHandle
	// ModeContext receives the request context handle.
	ModeContext
	// ModeEvent receives the lifecycle event.
	ModeEvent
	// ModeVCLName receives the name the object instance was declared with.
	ModeVCLName
	// ModeTaskState is a task-scoped slot, taken and put back around the call.
	ModeTaskState
	// ModeVCLStateRef is a read-only view of the vcl-scoped slot.
	ModeVCLStateRef
	// ModeVCLStateMut is the vcl-scoped slot, taken and put back.
	ModeVCLStateMut
)

func (m Mode) String() string {
	switch m {
	case ModeValue:
		return "value"
	case ModeBorrowed:
		return "borrowed"
	case ModeHandle:
		return "handle"
	case ModeContext:
		return "context"
	case ModeEvent:
		return "event"
	case ModeVCLName:
		return "vcl-name"
	case ModeTaskState:
		return "task-state"
	case ModeVCLStateRef:
		return "vcl-state-ref"
	case ModeVCLStateMut:
		return "vcl-state-mut"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsSlot reports whether the mode passes a shared-state slot.
func (m Mode) IsSlot() bool {
	return m == ModeTaskState || m == ModeVCLStateRef || m == ModeVCLStateMut
}

// IsImplicit reports whether the argument is supplied by the calling
// convention and therefore absent from argument descriptors.
func (m Mode) IsImplicit() bool {
	return m == ModeContext || m == ModeVCLName
}

// Argument is a resolved function argument.
type Argument struct {
	Name string
	Type catalog.Logical
	Mode Mode

	// Optional arguments travel with a validity flag.
	Optional bool

	// Required marks a nullable value the caller must pass. It has no
	// validity flag, but the implementation may still receive nil.
	Required bool

	// Default is the JSON rendering of the literal default, or empty.
	Default string

	// GoType is the parameter type of the implementation function.
	GoType string

	// StateType is the slot payload type for slot modes.
	StateType string

	Doc string
	Pos Pos
}

// Return is a resolved return type.
type Return struct {
	Type catalog.Logical

	// GoType is the implementation's value result, empty for Void.
	GoType string

	// Fallible implementations also return an error.
	Fallible bool
}

// Pos is a source position.
type Pos struct {
	Filename string
	Line     int
	Column   int
}

func (p Pos) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Callables returns every Function of the module in native table order:
// the event handler, the free functions, then each object's constructor,
// destructor and methods.
func (m *Module) Callables() []*Function {
	var out []*Function
	if m.Event != nil {
		out = append(out, m.Event)
	}
	out = append(out, m.Functions...)
	for _, o := range m.Objects {
		out = append(out, o.Funcs()...)
	}
	return out
}

// HasSlots reports whether any callable takes a shared-state slot.
func (m *Module) HasSlots() bool {
	return m.TaskState != "" || m.VCLState != ""
}
