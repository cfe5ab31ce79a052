// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package builder validates raw declarations against the type catalog and
// the structural rules of the plugin ABI, and assembles the Model.
//
// Validation is batched: every item and every argument is checked, and all
// diagnostics of a run are returned together. A Model is only returned when
// no error diagnostic was produced.
package builder

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/sirupsen/logrus"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/decl"
	"github.com/albertocavalcante/vmodgen/internal/logging"
	"github.com/albertocavalcante/vmodgen/internal/logging/logfields"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
	"github.com/albertocavalcante/vmodgen/model"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "builder")

// Options configures a build.
type Options struct {
	// Host is the targeted host version. Zero means catalog.DefaultHost.
	Host catalog.Version
}

// symbolUse records the declaration that first generated a symbol.
type symbolUse struct {
	owner string
	rng   hcl.Range
}

// stateUse records the first declaration of a shared-state payload type.
type stateUse struct {
	typ string
	rng hcl.Range
}

type builder struct {
	opts  Options
	diags hcl.Diagnostics
	mod   *model.Module

	// names holds every top-level name; functions, objects and the event
	// handler share one symbol namespace.
	names map[string]hcl.Range
	// symbols holds the flattened native symbols and Go names generated
	// for each declaration.
	symbols map[string]symbolUse

	task, vcl  *stateUse
	vclMut     bool
	vclReads   []hcl.Range
	eventRange hcl.Range
}

// Build validates f and returns the resulting Module. When the returned
// diagnostics contain errors the Module is nil.
func Build(f *decl.File, opts Options) (*model.Module, hcl.Diagnostics) {
	if opts.Host.IsZero() {
		opts.Host = catalog.DefaultHost
	}
	b := &builder{
		opts:    opts,
		mod:     &model.Module{Name: f.Module, Doc: f.Doc, Host: opts.Host},
		names:   make(map[string]hcl.Range),
		symbols: make(map[string]symbolUse),
	}

	if !symbols.IsIdent(f.Module) {
		b.errorf(f.ModuleRange, "Invalid module name",
			"Module name %q must start with a letter or underscore and contain only letters, digits and underscores.", f.Module)
	}

	for _, item := range f.Items {
		switch item.Kind {
		case decl.KindFunction:
			if fn := b.callable(item, model.KindFunction, ""); fn != nil {
				b.mod.Functions = append(b.mod.Functions, fn)
			}
		case decl.KindObject:
			if obj := b.object(item); obj != nil {
				b.mod.Objects = append(b.mod.Objects, obj)
			}
		case decl.KindEvent:
			if b.mod.Event != nil {
				b.errorf(item.Range, "Duplicate event handler",
					"Only one event handler is allowed per module; %q is already declared at %s.", b.mod.Event.Name, b.eventRange)
				continue
			}
			if fn := b.callable(item, model.KindEvent, ""); fn != nil {
				b.mod.Event = fn
				b.eventRange = item.Range
			}
		}
	}

	if len(f.Items) == 0 {
		b.errorf(f.ModuleRange, "Empty module", "No functions or objects found in this module.")
	}

	if len(b.vclReads) > 0 && !b.vclMut {
		b.errorf(b.vclReads[0], "VCL-scoped state is never initialized",
			"A shared_per_vcl value is read here, but no constructor or event handler declares a mutable **%s shared_per_vcl argument to initialize it.",
			b.vcl.typ)
	}

	if b.task != nil {
		b.mod.TaskState = b.task.typ
	}
	if b.vcl != nil {
		b.mod.VCLState = b.vcl.typ
	}

	if b.diags.HasErrors() {
		log.WithField(logfields.Count, len(b.diags)).Debug("Declaration validation failed")
		return nil, b.diags
	}
	log.WithFields(logrus.Fields{
		logfields.Module: b.mod.Name,
		logfields.Host:   b.mod.Host.String(),
	}).Debug("Model built")
	return b.mod, b.diags
}

func (b *builder) errorf(rng hcl.Range, summary, format string, args ...any) {
	b.diags = append(b.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  rng.Ptr(),
	})
}

// claimName reserves a top-level name.
func (b *builder) claimName(name string, rng hcl.Range) bool {
	if prev, ok := b.names[name]; ok {
		b.errorf(rng, "Duplicate name", "%q is already declared at %s.", name, prev)
		return false
	}
	b.names[name] = rng
	return true
}

// claimSymbols reserves the native wrapper symbol and the Go name fn
// generates. Distinct declarations can flatten to the same symbol, for
// instance function "kv_get" and method "get" of object "kv".
func (b *builder) claimSymbols(fn *model.Function, rng hcl.Range) bool {
	n := symbols.New(b.mod.Name)
	if fn.Object != "" {
		n = n.Object(fn.Object)
	}

	var (
		owner  string
		native string
		goName string
	)
	switch fn.Kind {
	case model.KindConstructor:
		owner = fmt.Sprintf("constructor of object %q", fn.Object)
		native = n.Func(symbols.Init).Wrapper()
		if !fn.Implicit {
			goName = symbols.ConstructorName(fn.Object)
		}
	case model.KindDestructor:
		owner = fmt.Sprintf("destructor of object %q", fn.Object)
		native = n.Func(symbols.Fini).Wrapper()
	case model.KindMethod:
		owner = fmt.Sprintf("method %q of object %q", fn.Name, fn.Object)
		native = n.Func(fn.Name).Wrapper()
		goName = symbols.ExportName(fn.Object) + "." + symbols.ExportName(fn.Name)
	default:
		owner = fmt.Sprintf("%s %q", fn.Kind, fn.Name)
		native = n.Func(fn.Name).Wrapper()
		goName = symbols.ExportName(fn.Name)
	}

	if !b.claimSymbol("the symbol "+native, owner, rng) {
		return false
	}
	return goName == "" || b.claimSymbol("the Go name "+goName, owner, rng)
}

func (b *builder) claimSymbol(sym, owner string, rng hcl.Range) bool {
	if prev, taken := b.symbols[sym]; taken {
		b.errorf(rng, "Generated name collision",
			"%s generates %s, which is also generated by %s declared at %s.",
			symbols.Capitalize(owner), sym, prev.owner, prev.rng)
		return false
	}
	b.symbols[sym] = symbolUse{owner: owner, rng: rng}
	return true
}

func (b *builder) checkIdent(what, name string, rng hcl.Range) bool {
	if !symbols.IsIdent(name) || reserved[name] {
		b.errorf(rng, "Invalid "+what+" name",
			"%q cannot be used as a %s name: it must be a C and Go identifier and not a keyword.", name, what)
		return false
	}
	return true
}

func (b *builder) object(item *decl.Item) *model.Object {
	okName := b.checkIdent("object", item.Name, item.Range)
	if okName {
		okName = b.claimName(item.Name, item.Range)
	}
	if okName {
		okName = b.claimSymbol("the Go name "+symbols.ExportName(item.Name),
			fmt.Sprintf("object %q", item.Name), item.Range)
	}

	obj := &model.Object{
		Name: item.Name,
		Doc:  item.Doc,
		Pos:  pos(item.Range),
	}
	if item.Constructor != nil {
		item.Constructor.Name = item.Name
		obj.Constructor = b.callable(item.Constructor, model.KindConstructor, item.Name)
	} else {
		obj.Constructor = &model.Function{
			Kind:     model.KindConstructor,
			Name:     item.Name,
			Object:   item.Name,
			Implicit: true,
			Pos:      pos(item.Range),
		}
	}
	obj.Destructor = &model.Function{
		Kind:     model.KindDestructor,
		Name:     item.Name,
		Object:   item.Name,
		Implicit: true,
		Pos:      pos(item.Range),
	}
	if okName {
		if item.Constructor == nil && !b.claimSymbols(obj.Constructor, item.Range) {
			okName = false
		}
		if !b.claimSymbols(obj.Destructor, item.Range) {
			okName = false
		}
	}

	methods := make(map[string]hcl.Range)
	for _, m := range item.Methods {
		if prev, dup := methods[m.Name]; dup {
			b.errorf(m.Range, "Duplicate method", "Object %q already has a method %q declared at %s.", item.Name, m.Name, prev)
			continue
		}
		methods[m.Name] = m.Range
		if fn := b.callable(m, model.KindMethod, item.Name); fn != nil {
			obj.Methods = append(obj.Methods, fn)
		}
	}

	if !okName || obj.Constructor == nil {
		return nil
	}
	return obj
}

// callable builds a function, method, constructor or event handler.
func (b *builder) callable(item *decl.Item, kind model.Kind, objName string) *model.Function {
	valid := true
	if kind != model.KindConstructor {
		valid = b.checkIdent(kind.String(), item.Name, item.Range)
		if valid && kind != model.KindMethod {
			valid = b.claimName(item.Name, item.Range)
		}
	}

	fn := &model.Function{
		Kind:   kind,
		Name:   item.Name,
		Object: objName,
		Doc:    item.Doc,
		Pos:    pos(item.Range),
	}

	ret, ok := b.returns(item, kind)
	valid = valid && ok
	fn.Return = ret

	argNames := make(map[string]hcl.Range)
	kinds := make(map[string]hcl.Range)
	for _, p := range item.Params {
		if prev, dup := argNames[p.Name]; dup {
			b.errorf(p.Range, "Duplicate argument", "Argument %q is already declared at %s.", p.Name, prev)
			valid = false
			continue
		}
		argNames[p.Name] = p.Range

		if !b.checkIdent("argument", p.Name, p.Range) {
			valid = false
			continue
		}

		arg := b.param(p, kind)
		if arg == nil {
			valid = false
			continue
		}
		if group := onceGroup(arg.Mode); group != "" {
			if prev, dup := kinds[group]; dup {
				b.errorf(p.Range, "Argument kind allowed only once",
					"A %s argument is allowed only once in an argument list; another one is declared at %s.", group, prev)
				valid = false
				continue
			}
			kinds[group] = p.Range
		}
		fn.Args = append(fn.Args, arg)
	}

	if !valid || !b.claimSymbols(fn, item.Range) {
		return nil
	}
	return fn
}

// onceGroup names the argument kinds that may appear at most once per
// function. Both vcl-scoped modes share one group.
func onceGroup(m model.Mode) string {
	switch m {
	case model.ModeContext:
		return "context"
	case model.ModeEvent:
		return "event"
	case model.ModeVCLName:
		return "vcl_name"
	case model.ModeTaskState:
		return "shared_per_task"
	case model.ModeVCLStateRef, model.ModeVCLStateMut:
		return "shared_per_vcl"
	}
	return ""
}

func pos(rng hcl.Range) model.Pos {
	return model.Pos{Filename: rng.Filename, Line: rng.Start.Line, Column: rng.Start.Column}
}

// reserved are Go and C keywords that cannot name generated symbols or
// record fields.
var reserved = map[string]bool{
	// Go
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	// C
	"auto": true, "char": true, "do": true, "double": true, "enum": true,
	"extern": true, "float": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
}
