// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package builder

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/decl"
	"github.com/albertocavalcante/vmodgen/model"
)

const (
	ctxType   = "*vrt.Ctx"
	eventType = "vrt.Event"
)

// param resolves one raw parameter. It reports at most one diagnostic and
// returns nil when it did.
func (b *builder) param(p *decl.Param, kind model.Kind) *model.Argument {
	t := p.Type
	arg := &model.Argument{
		Name:   p.Name,
		Doc:    p.Doc,
		GoType: t.String(),
		Pos:    pos(p.Range),
	}

	if n := countTrue(p.SharedPerTask, p.SharedPerVCL, p.VCLName); n > 1 {
		b.errorf(p.Range, "Conflicting argument modifiers",
			"At most one of shared_per_task, shared_per_vcl or vcl_name may be set on argument %q.", p.Name)
		return nil
	}

	notValue := kind == model.KindEvent || p.SharedPerTask || p.SharedPerVCL || p.VCLName ||
		t.Stars == 2 || t.String() == ctxType
	if p.Required && notValue {
		b.errorf(p.Range, "Invalid required argument",
			"Argument %q is marked required, which only applies to optional values the host may pass as NULL.", p.Name)
		return nil
	}

	if kind == model.KindEvent {
		return b.eventParam(p, arg)
	}

	switch {
	case p.SharedPerTask:
		return b.taskParam(p, arg)
	case p.SharedPerVCL:
		return b.vclParam(p, arg, kind)
	case p.VCLName:
		return b.vclNameParam(p, arg, kind)
	}

	if t.Stars == 2 {
		b.errorf(t.Range, "Shared state must be declared as mutable optional owned reference",
			"Argument %q has the slot shape %s but is not marked shared_per_task or shared_per_vcl.", p.Name, t)
		return nil
	}

	switch t.String() {
	case ctxType:
		if !b.noDefault(p) {
			return nil
		}
		arg.Type, arg.Mode = catalog.Context, model.ModeContext
		return arg
	case eventType, "*" + eventType:
		b.errorf(t.Range, "Event arguments are only allowed in event handlers",
			"Argument %q has type %s, which can only be received by the event handler.", p.Name, t)
		return nil
	}

	return b.valueParam(p, arg)
}

// eventParam accepts the three shapes an event handler can receive: the
// request context, the event and the mutable vcl-scoped slot.
func (b *builder) eventParam(p *decl.Param, arg *model.Argument) *model.Argument {
	t := p.Type
	switch {
	case !p.SharedPerTask && !p.SharedPerVCL && !p.VCLName && t.String() == ctxType:
		arg.Type, arg.Mode = catalog.Context, model.ModeContext
	case !p.SharedPerTask && !p.SharedPerVCL && !p.VCLName && t.String() == eventType:
		arg.Type, arg.Mode = catalog.Event, model.ModeEvent
	case p.SharedPerVCL && t.Stars == 2:
		if !b.lookup(catalog.VCLState, t.Range) {
			return nil
		}
		arg.Type, arg.Mode, arg.StateType = catalog.VCLState, model.ModeVCLStateMut, t.Base
		b.recordState(&b.vcl, "shared_per_vcl", t)
		b.vclMut = true
	default:
		b.errorf(t.Range, "Invalid event handler argument",
			"Event functions can only have context, event, and vcl-scoped-state arguments. Argument %q of type %s is none of those.",
			p.Name, t)
		return nil
	}
	if !b.noDefault(p) {
		return nil
	}
	return arg
}

func (b *builder) taskParam(p *decl.Param, arg *model.Argument) *model.Argument {
	t := p.Type
	if t.Stars != 2 {
		b.errorf(t.Range, "Task-scoped state must be declared as mutable optional owned reference",
			"Argument %q is declared as %s; declare it as **%s.", p.Name, t, t.Base)
		return nil
	}
	if !b.noDefault(p) || !b.lookup(catalog.TaskState, t.Range) {
		return nil
	}
	arg.Type, arg.Mode, arg.StateType = catalog.TaskState, model.ModeTaskState, t.Base
	b.recordState(&b.task, "shared_per_task", t)
	return arg
}

func (b *builder) vclParam(p *decl.Param, arg *model.Argument, kind model.Kind) *model.Argument {
	t := p.Type
	switch t.Stars {
	case 2:
		if kind != model.KindConstructor {
			b.errorf(t.Range, "Mutable vcl-scoped state is only allowed in object constructors and event handlers",
				"Argument %q takes the vcl-scoped slot as %s in a %s; declare it as *%s to read it.",
				p.Name, t, kind, t.Base)
			return nil
		}
		arg.Mode = model.ModeVCLStateMut
	case 1:
		arg.Mode = model.ModeVCLStateRef
	default:
		b.errorf(t.Range, "VCL-scoped state must be declared as optional reference",
			"Argument %q is declared as %s; declare it as *%s, or as **%s in constructors and event handlers.",
			p.Name, t, t.Base, t.Base)
		return nil
	}
	if !b.noDefault(p) || !b.lookup(catalog.VCLState, t.Range) {
		return nil
	}
	arg.Type, arg.StateType = catalog.VCLState, t.Base
	b.recordState(&b.vcl, "shared_per_vcl", t)
	if arg.Mode == model.ModeVCLStateMut {
		b.vclMut = true
	} else {
		b.vclReads = append(b.vclReads, t.Range)
	}
	return arg
}

func (b *builder) vclNameParam(p *decl.Param, arg *model.Argument, kind model.Kind) *model.Argument {
	t := p.Type
	if kind != model.KindConstructor {
		b.errorf(p.Range, "VCL name arguments are only allowed in object constructors",
			"Argument %q is marked vcl_name, but only constructors receive the instance name.", p.Name)
		return nil
	}
	if t.String() != "string" {
		b.errorf(t.Range, "Invalid vcl_name argument type",
			"Argument %q is marked vcl_name and must be declared as string, not %s.", p.Name, t)
		return nil
	}
	if !b.noDefault(p) {
		return nil
	}
	arg.Type, arg.Mode = catalog.VCLName, model.ModeVCLName
	return arg
}

func (b *builder) valueParam(p *decl.Param, arg *model.Argument) *model.Argument {
	t := p.Type
	l, ok := catalog.ByGoType(t.Base)
	if !ok || !catalog.IsValue(l) || t.Stars > 1 {
		b.errorf(t.Range, "Unsupported argument type",
			"Argument %q has type %s, which has no native representation.", p.Name, t)
		return nil
	}
	entry, err := catalog.Lookup(l, b.opts.Host)
	if err != nil {
		b.errorf(t.Range, "Unsupported argument type", "Argument %q: %s.", p.Name, err)
		return nil
	}
	if entry.MustBeOptional && t.Stars == 0 {
		b.errorf(t.Range, "Argument must be declared as optional",
			"The host may pass a NULL %s; declare %q as *%s.", entry.VCC, p.Name, t.Base)
		return nil
	}

	arg.Type = l
	arg.Mode = passMode(entry.Pass)
	arg.Optional = t.Stars == 1

	if p.Required {
		switch {
		case !arg.Optional:
			b.errorf(p.Range, "Invalid required argument",
				"Argument %q is marked required but is not optional; declare it as *%s.", p.Name, t.Base)
			return nil
		case !entry.MustBeOptional:
			b.errorf(p.Range, "Invalid required argument",
				"The required attribute is only allowed on IP and PROBE arguments; %q is %s.", p.Name, entry.VCC)
			return nil
		}
		arg.Optional, arg.Required = false, true
	}

	if p.Default != nil {
		if arg.Optional {
			b.errorf(p.DefaultRange, "Optional arguments cannot have a default value",
				"Argument %q is optional; drop the default or declare it as %s.", p.Name, t.Base)
			return nil
		}
		lit, msg := defaultLiteral(l, *p.Default)
		if msg != "" {
			b.errorf(p.DefaultRange, "Invalid default value", "Argument %q: %s.", p.Name, msg)
			return nil
		}
		arg.Default = lit
	}
	return arg
}

func passMode(p catalog.Pass) model.Mode {
	switch p {
	case catalog.PassBorrowed:
		return model.ModeBorrowed
	case catalog.PassHandle:
		return model.ModeHandle
	}
	return model.ModeValue
}

// noDefault rejects defaults on arguments the caller never supplies.
func (b *builder) noDefault(p *decl.Param) bool {
	if p.Default == nil {
		return true
	}
	b.errorf(p.DefaultRange, "Default value not allowed",
		"Argument %q is not supplied by the caller and cannot have a default value.", p.Name)
	return false
}

func (b *builder) lookup(l catalog.Logical, rng hcl.Range) bool {
	if _, err := catalog.Lookup(l, b.opts.Host); err != nil {
		b.errorf(rng, "Unsupported argument type", "%s.", err)
		return false
	}
	return true
}

// recordState checks that every slot of one scope carries the same payload.
func (b *builder) recordState(use **stateUse, flag string, t *decl.TypeExpr) {
	if *use == nil {
		*use = &stateUse{typ: t.Base, rng: t.Range}
		return
	}
	if (*use).typ != t.Base {
		b.errorf(t.Range, "Inconsistent shared state type",
			"All %s arguments must use the same type: %s was declared at %s, got %s here.",
			flag, (*use).typ, (*use).rng, t.Base)
	}
}

// returns resolves the result list of a callable.
func (b *builder) returns(item *decl.Item, kind model.Kind) (model.Return, bool) {
	ret := model.Return{Type: catalog.Void}
	r := item.Returns
	if r == nil || len(r.Types) == 0 {
		return ret, true
	}

	types := r.Types
	if last := types[len(types)-1]; last.String() == "error" {
		ret.Fallible = true
		types = types[:len(types)-1]
	}
	if len(types) == 0 {
		return ret, true
	}

	switch {
	case len(types) > 1:
		b.errorf(r.Range, "Unsupported return type",
			"%q returns %s; at most one value and a trailing error are supported.", item.Name, r.Text)
		return ret, false
	case kind == model.KindConstructor:
		b.errorf(r.Range, "Constructors cannot return a value",
			"The constructor of %q returns its object implicitly; only error may be declared.", item.Name)
		return ret, false
	case kind == model.KindEvent:
		b.errorf(r.Range, "Event handlers cannot return a value",
			"Event handler %q may only return error.", item.Name)
		return ret, false
	}

	t := types[0]
	l, ok := catalog.ByGoType(t.String())
	if !ok {
		b.errorf(t.Range, "Unsupported return type", "%q returns %s, which has no native representation.", item.Name, t)
		return ret, false
	}
	entry, err := catalog.Lookup(l, b.opts.Host)
	if err != nil {
		b.errorf(t.Range, "Unsupported return type", "%q: %s.", item.Name, err)
		return ret, false
	}
	if !entry.Returnable {
		b.errorf(t.Range, "Unsupported return type", "%s values cannot be returned.", entry.VCC)
		return ret, false
	}
	ret.Type = l
	ret.GoType = t.String()
	return ret, true
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
