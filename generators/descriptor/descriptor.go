// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package descriptor renders the interface descriptor the host's VCL
// compiler reads from a plugin, and the native prototype block embedded in
// it.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
	"github.com/albertocavalcante/vmodgen/model"
)

// Descriptor framing. The host locates the descriptor in the shared object
// by scanning for Start.
const (
	Start = "VMOD_JSON_SPEC\x02\n"
	End   = "\n\x03"

	// FormatVersion is the descriptor format understood by the host.
	FormatVersion = "1.0"
)

// Options configures descriptor rendering.
type Options struct {
	// ABI is the host ABI string.
	ABI string
}

// Render returns the framed descriptor for m. Identical Modules render to
// identical bytes.
func Render(m *model.Module, opts Options) ([]byte, error) {
	entries := Entries(m, opts)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}

	out := make([]byte, 0, buf.Len()+len(Start)+len(End))
	out = append(out, Start...)
	out = append(out, bytes.TrimRight(buf.Bytes(), "\n")...)
	out = append(out, End...)
	return out, nil
}

// Entries returns the top-level descriptor array.
func Entries(m *model.Module, opts Options) []any {
	names := symbols.New(m.Name)
	entries := []any{
		[]any{"$VMOD", FormatVersion, m.Name, names.FuncStruct(), model.Fingerprint(m), opts.ABI, "0", "0"},
		[]any{"$CPROTO", CProto(m)},
	}

	if m.Event != nil {
		entries = append(entries, []any{"$EVENT", names.Func(m.Event.Name).Callback()})
	}

	for _, fn := range m.Functions {
		entries = append(entries, []any{"$FUNC", fn.Name, funcDecl(names, fn)})
	}

	for _, obj := range m.Objects {
		on := names.Object(obj.Name)
		entry := []any{"$OBJ", obj.Name, map[string]bool{"NULL_OK": false}, on.ObjStruct()}

		entry = append(entry,
			[]any{"$INIT", funcDecl(on, obj.Constructor)},
			[]any{"$FINI", funcDecl(on, obj.Destructor)},
		)
		for _, meth := range obj.Methods {
			entry = append(entry, []any{"$METHOD", meth.Name, funcDecl(on, meth)})
		}
		entries = append(entries, entry)
	}
	return entries
}

// FuncNames returns the symbol scope of fn.
func FuncNames(names symbols.Names, fn *model.Function) symbols.Names {
	switch fn.Kind {
	case model.KindConstructor:
		return names.Func(symbols.Init)
	case model.KindDestructor:
		return names.Func(symbols.Fini)
	}
	return names.Func(fn.Name)
}

// funcDecl renders [[ret], callback, argStruct, args...].
func funcDecl(names symbols.Names, fn *model.Function) []any {
	fnNames := FuncNames(names, fn)
	ret := catalog.MustLookup(fn.Return.Type)

	argStruct := ""
	if fn.UsesArgStruct() {
		argStruct = "struct " + fnNames.ArgStruct()
	}
	decl := []any{[]any{ret.VCC}, fnNames.Callback(), argStruct}

	for _, a := range fn.Args {
		if a.Mode.IsImplicit() {
			continue
		}
		entry := catalog.MustLookup(a.Type)
		decl = append(decl, argJSON(entry.VCC, a))
	}
	return decl
}

// argJSON renders [VCC, name, default, spec, optional]. Trailing nulls are
// trimmed unless the argument is optional.
func argJSON(vcc string, a *model.Argument) []any {
	var def any
	if a.Default != "" {
		def = a.Default
	}
	out := []any{vcc, a.Name, def, nil}
	if a.Optional {
		return append(out, true)
	}
	for len(out) > 0 && out[len(out)-1] == nil {
		out = out[:len(out)-1]
	}
	return out
}
