// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package symbols derives every generated native symbol name from module,
// object and function names, plus the Go names implementations must use.
package symbols

import "regexp"

// Function-name parts used for constructors and destructors.
const (
	Init = "_init"
	Fini = "_fini"
)

// Names builds symbol names for one module, object or function scope.
type Names struct {
	mod string
	obj string
	fn  string
}

// New returns the module-level Names for mod.
func New(mod string) Names {
	return Names{mod: mod}
}

// Object returns Names scoped to object obj.
func (n Names) Object(obj string) Names {
	return Names{mod: n.mod, obj: obj}
}

// Func returns Names scoped to function fn. Constructors and destructors pass
// Init and Fini.
func (n Names) Func(fn string) Names {
	return Names{mod: n.mod, obj: n.obj, fn: fn}
}

// Module returns the module name.
func (n Names) Module() string { return n.mod }

// FuncStruct is the name of the function table struct, "Vmod_vmod_<mod>_Func".
func (n Names) FuncStruct() string {
	return "Vmod_vmod_" + n.mod + "_Func"
}

// DataStruct is the exported module data symbol, "Vmod_<mod>_Data".
func (n Names) DataStruct() string {
	return "Vmod_" + n.mod + "_Data"
}

// ObjStruct is the opaque C struct of an object, "struct vmod_<mod>_<obj>".
func (n Names) ObjStruct() string {
	return "struct vmod_" + n.mod + "_" + n.obj
}

// ObjStructTag is ObjStruct without the "struct " keyword, as cgo spells it
// after "C.struct_".
func (n Names) ObjStructTag() string {
	return "vmod_" + n.mod + "_" + n.obj
}

// Wrapper is the exported shim symbol, "vmod_c[_<obj>]_<fn>".
func (n Names) Wrapper() string {
	return "vmod_c" + n.objPart() + "_" + n.fn
}

// ArgStruct is the argument record tag, "arg_vmod_<mod>[_<obj>]_<fn>".
func (n Names) ArgStruct() string {
	return "arg_vmod_" + n.mod + n.objPart() + "_" + n.fn
}

// Typedef is the prototype typedef, "td_vmod_<mod>[_<obj>]_<fn>".
func (n Names) Typedef() string {
	return "td_vmod_" + n.mod + n.objPart() + "_" + n.fn
}

// Member is the function table member, "f[_<obj>]_<fn>".
func (n Names) Member() string {
	return "f" + n.objPart() + "_" + n.fn
}

// Callback is the descriptor reference to the function table member.
func (n Names) Callback() string {
	return n.FuncStruct() + "." + n.Member()
}

func (n Names) objPart() string {
	if n.obj == "" {
		return ""
	}
	return "_" + n.obj
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdent reports whether name is usable in generated C and Go symbols.
func IsIdent(name string) bool {
	return identRe.MatchString(name)
}
