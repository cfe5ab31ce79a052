// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package descriptor

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
	"github.com/albertocavalcante/vmodgen/model"
)

// EventCallbackType is the host's event callback typedef.
const EventCallbackType = "vmod_event_f"

// CProto returns the native prototype block: object forward declarations,
// argument records and typedefs, the function table struct and its static
// declaration.
func CProto(m *model.Module) string {
	names := symbols.New(m.Name)
	return Prototypes(m) + fmt.Sprintf("\nstatic struct %[1]s %[1]s;", names.FuncStruct())
}

// Prototypes is CProto without the static table declaration. It holds
// declarations only and can be included from several translation units.
func Prototypes(m *model.Module) string {
	names := symbols.New(m.Name)
	var b strings.Builder

	for _, obj := range m.Objects {
		fmt.Fprintf(&b, "\n%s;\n", names.Object(obj.Name).ObjStruct())
	}

	callables := m.Callables()
	for _, fn := range callables {
		b.WriteString(Typedef(m, fn))
	}

	fmt.Fprintf(&b, "\nstruct %s {\n", names.FuncStruct())
	for _, fn := range callables {
		fmt.Fprintf(&b, "  %s *%s;\n", TableType(m, fn), scope(names, fn).Member())
	}
	b.WriteString("};\n")
	return b.String()
}

// TableType is the function pointer type of fn's table member.
func TableType(m *model.Module, fn *model.Function) string {
	if fn.Kind == model.KindEvent {
		return EventCallbackType
	}
	return scope(symbols.New(m.Name), fn).Typedef()
}

// Typedef returns the argument record (when used) and the typedef of fn.
// Event handlers use the host typedef and render nothing.
func Typedef(m *model.Module, fn *model.Function) string {
	if fn.Kind == model.KindEvent {
		return ""
	}
	fnNames := scope(symbols.New(m.Name), fn)

	var b strings.Builder
	b.WriteString("\n")
	if fn.UsesArgStruct() {
		fmt.Fprintf(&b, "struct %s {\n", fnNames.ArgStruct())
		for _, field := range RecordFields(fn) {
			fmt.Fprintf(&b, "  %s;\n", field)
		}
		b.WriteString("};\n\n")
	}

	fmt.Fprintf(&b, "typedef %s %s(", ReturnCType(fn), fnNames.Typedef())
	for i, p := range Params(m, fn) {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n    ")
		b.WriteString(p)
	}
	b.WriteString("\n);\n")
	return b.String()
}

// ReturnCType is the native return type of fn.
func ReturnCType(fn *model.Function) string {
	switch fn.Kind {
	case model.KindEvent:
		return "int"
	case model.KindConstructor, model.KindDestructor:
		return catalog.MustLookup(catalog.Void).CType
	}
	return catalog.MustLookup(fn.Return.Type).CType
}

// Params lists the native parameter types of fn in calling order: the
// convention-supplied leading parameters, then either the argument record
// or one parameter per argument.
func Params(m *model.Module, fn *model.Function) []string {
	objStruct := symbols.New(m.Name).Object(fn.Object).ObjStruct()

	var out []string
	switch fn.Kind {
	case model.KindDestructor:
		return []string{objStruct + " **"}
	case model.KindEvent:
		return []string{
			catalog.MustLookup(catalog.Context).CType,
			catalog.MustLookup(catalog.VCLState).CType,
			catalog.MustLookup(catalog.Event).CType,
		}
	case model.KindConstructor:
		out = append(out,
			catalog.MustLookup(catalog.Context).CType,
			objStruct+" **",
			catalog.MustLookup(catalog.VCLName).CType,
		)
	case model.KindMethod:
		out = append(out, catalog.MustLookup(catalog.Context).CType, objStruct+" *")
	default:
		out = append(out, catalog.MustLookup(catalog.Context).CType)
	}

	if fn.UsesArgStruct() {
		return append(out, "struct "+scope(symbols.New(m.Name), fn).ArgStruct()+" *")
	}
	for _, a := range WireArgs(fn) {
		out = append(out, catalog.MustLookup(a.Type).CType)
	}
	return out
}

// RecordFields lists the argument record fields of fn. Optional arguments
// are preceded by their validity flag.
func RecordFields(fn *model.Function) []string {
	var out []string
	for _, a := range WireArgs(fn) {
		if a.Optional {
			out = append(out, "char valid_"+a.Name)
		}
		out = append(out, catalog.MustLookup(a.Type).CType+" "+a.Name)
	}
	return out
}

// WireArgs returns the arguments passed by the caller, either positionally
// or in the argument record.
func WireArgs(fn *model.Function) []*model.Argument {
	var out []*model.Argument
	for _, a := range fn.Args {
		if a.Mode.IsImplicit() || a.Mode == model.ModeEvent {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Names returns the symbol scope of fn within module mod.
func Names(mod string, fn *model.Function) symbols.Names {
	return scope(symbols.New(mod), fn)
}

func scope(names symbols.Names, fn *model.Function) symbols.Names {
	if fn.Object != "" {
		names = names.Object(fn.Object)
	}
	return FuncNames(names, fn)
}
