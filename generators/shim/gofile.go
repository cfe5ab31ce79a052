// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package shim

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/internal/catalog"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
	"github.com/albertocavalcante/vmodgen/model"
)

// RenderGo returns the gofmt'ed cgo wrapper file.
func RenderGo(m *model.Module, opts Options) ([]byte, error) {
	w := &goWriter{m: m, opts: opts, use: scan(m)}
	w.file()

	out, err := format.Source(w.buf.Bytes())
	if err != nil {
		return w.buf.Bytes(), fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

type goWriter struct {
	m    *model.Module
	opts Options
	use  usage
	buf  bytes.Buffer
}

func (w *goWriter) p(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *goWriter) file() {
	pkg := w.opts.Package
	if pkg == "" {
		pkg = generator.DefaultPackage
	}
	runtime := w.opts.Runtime
	if runtime == "" {
		runtime = generator.DefaultRuntimeImport
	}
	w.p("// Code generated by %s. DO NOT EDIT.", generatedBy(w.opts))
	w.p("")
	w.p("package %s", pkg)
	w.p("")
	w.p("/*")
	w.p("#cgo pkg-config: varnishapi")
	w.p("#include <stdlib.h>")
	w.p("#include %q", HeaderFile(w.m))
	w.p("*/")
	w.p(`import "C"`)
	w.p("")
	w.p("import (")
	if w.use.ip {
		w.p(`"net/netip"`)
	}
	w.p(`"unsafe"`)
	w.p("")
	w.p("vrt %q", runtime)
	w.p(")")

	w.helpers()
	for _, fn := range w.m.Callables() {
		w.p("")
		w.wrapper(fn)
	}
}

func (w *goWriter) helpers() {
	w.p(`
func vmodgenFail(raw unsafe.Pointer, msg string) {
	cs := C.CString(msg)
	defer C.free(unsafe.Pointer(cs))
	C.vmodgen_fail((*C.struct_vrt_ctx)(raw), cs)
}`)

	if w.use.boolRet {
		w.p(`
func vmodgenBool(b bool) C.VCL_BOOL {
	if b {
		return 1
	}
	return 0
}`)
	}
	if w.use.stringRet {
		w.p(`
func vmodgenString(ctx *C.struct_vrt_ctx, s string) C.VCL_STRING {
	return C.vmodgen_ws_strdup(ctx, (*C.char)(unsafe.Pointer(unsafe.StringData(s))), C.size_t(len(s)))
}`)
	}
	if w.use.blobRet {
		w.p(`
func vmodgenBlob(ctx *C.struct_vrt_ctx, b []byte) C.VCL_BLOB {
	if b == nil {
		return nil
	}
	return C.vmodgen_ws_blob(ctx, unsafe.Pointer(unsafe.SliceData(b)), C.size_t(len(b)))
}`)
	}
	if w.use.ip {
		w.p(`
func vmodgenIP(ip C.VCL_IP) *netip.AddrPort {
	var addr [16]byte
	var port C.uint
	family := C.vmodgen_ip(ip, (*C.uchar)(unsafe.Pointer(&addr[0])), &port)
	return vrt.AddrPortOf(int(family), &addr, uint16(port))
}`)
	}
	if w.m.HasSlots() {
		w.p(`
//export vmodgen_priv_free
func vmodgen_priv_free(h C.uintptr_t) {
	vrt.Free(uintptr(h))
}`)
	}
}

// call is the state of one wrapper being rendered.
type call struct {
	fn    *model.Function
	names symbols.Names
	body  []string
	args  []string
	slots []string
	takes []string
}

func (c *call) line(format string, args ...any) {
	c.body = append(c.body, fmt.Sprintf(format, args...))
}

func (w *goWriter) wrapper(fn *model.Function) {
	c := &call{fn: fn, names: descriptor.Names(w.m.Name, fn)}
	objTag := symbols.New(w.m.Name).Object(fn.Object).ObjStructTag()

	var params []string
	switch fn.Kind {
	case model.KindDestructor:
		params = []string{"objp **C.struct_" + objTag}
	case model.KindEvent:
		params = []string{"ctx *C.struct_vrt_ctx", "vp *C.struct_vmod_priv", "ev C.enum_vcl_event_e"}
	case model.KindConstructor:
		params = []string{"ctx *C.struct_vrt_ctx", "objp **C.struct_" + objTag, "vclName *C.char"}
	case model.KindMethod:
		// The object pointer carries a handle, not an address.
		params = []string{"ctx *C.struct_vrt_ctx", "obj C.uintptr_t"}
	default:
		params = []string{"ctx *C.struct_vrt_ctx"}
	}
	wire := descriptor.WireArgs(fn)
	if fn.Kind != model.KindEvent && fn.Kind != model.KindDestructor {
		if fn.UsesArgStruct() {
			params = append(params, "args *C.struct_"+c.names.ArgStruct())
		} else {
			for i, a := range wire {
				params = append(params, fmt.Sprintf("a%d %s", i, cgoType(a)))
			}
		}
	}

	result := ""
	switch {
	case fn.Kind == model.KindEvent:
		result = " (ret C.int)"
	case fn.Kind == model.KindFunction || fn.Kind == model.KindMethod:
		if fn.Return.Type != catalog.Void {
			result = " (ret C." + catalog.MustLookup(fn.Return.Type).CType + ")"
		}
	}

	if fn.Kind == model.KindDestructor {
		w.destructor(c, params)
		return
	}

	c.line("vctx := vrt.NewCtx(unsafe.Pointer(ctx), vmodgenFail)")
	if fn.Kind == model.KindEvent {
		c.line("defer func() {\nif vctx.Failed() {\nret = 1\n}\n}()")
	}
	c.line("defer vrt.Recover(vctx)")

	if fn.Kind == model.KindMethod {
		typ := symbols.ExportName(fn.Object)
		c.line("o, ok := vrt.Value[*%s](uintptr(obj))", typ)
		c.line("if !ok {\nvctx.Failf(\"vmod_%s: invalid %s object\")\nreturn\n}", w.m.Name, fn.Object)
	}

	wi := 0
	for _, a := range fn.Args {
		var src string
		if a.Mode != model.ModeContext && a.Mode != model.ModeEvent && a.Mode != model.ModeVCLName {
			if fn.Kind == model.KindEvent {
				src = "vp"
			} else if fn.UsesArgStruct() {
				src = "args." + a.Name
			} else {
				src = fmt.Sprintf("a%d", wi)
			}
			wi++
		}
		c.args = append(c.args, w.argExpr(c, a, src))
	}
	if len(c.slots) > 0 {
		// One lock call per wrapper covers every slot it takes.
		c.line("unlock := vrt.LockSlots(%s)", strings.Join(c.slots, ", "))
		c.line("defer unlock()")
		c.body = append(c.body, c.takes...)
	}

	w.invoke(c)

	w.p("//export %s", c.names.Wrapper())
	w.p("func %s(%s)%s {", c.names.Wrapper(), strings.Join(params, ", "), result)
	for _, l := range c.body {
		w.p("%s", l)
	}
	w.p("}")
}

func (w *goWriter) destructor(c *call, params []string) {
	w.p("//export %s", c.names.Wrapper())
	w.p("func %s(%s) {", c.names.Wrapper(), strings.Join(params, ", "))
	w.p("if objp == nil {\nreturn\n}")
	w.p("h := *(*uintptr)(unsafe.Pointer(objp))")
	w.p("*(*uintptr)(unsafe.Pointer(objp)) = 0")
	w.p("vrt.Release(h)")
	w.p("}")
}

// argExpr returns the Go expression passed for a, emitting any setup the
// argument needs into c.
func (w *goWriter) argExpr(c *call, a *model.Argument, src string) string {
	switch a.Mode {
	case model.ModeContext:
		return "vctx"
	case model.ModeEvent:
		return "vrt.Event(ev)"
	case model.ModeVCLName:
		return "C.GoString(vclName)"
	case model.ModeVCLStateRef:
		return fmt.Sprintf("vrt.Peek[%s](vrt.PrivOf(unsafe.Pointer(%s)))", a.StateType, src)
	case model.ModeTaskState, model.ModeVCLStateMut:
		methods := TaskMethods
		if a.Mode == model.ModeVCLStateMut {
			methods = VCLMethods
		}
		n := len(c.slots)
		c.slots = append(c.slots, fmt.Sprintf("p%d", n))
		c.line("p%d := vrt.PrivOf(unsafe.Pointer(%s))", n, src)
		c.takes = append(c.takes,
			fmt.Sprintf("v%d := vrt.Take[%s](p%d)", n, a.StateType, n),
			fmt.Sprintf("taken%d := v%d", n, n),
			fmt.Sprintf("defer func() {\nvrt.Restore(p%d, taken%d, v%d, unsafe.Pointer(&C.%s))\n}()", n, n, n, methods))
		return fmt.Sprintf("&v%d", n)
	}

	conv, isPtr := valueIn(a.Type, src)
	if !a.Optional {
		return conv
	}
	valid := "args.valid_" + a.Name + " != 0"
	if isPtr {
		return fmt.Sprintf("vrt.When(%s, %s)", valid, conv)
	}
	return fmt.Sprintf("vrt.Opt(%s, %s)", valid, conv)
}

// valueIn converts a native argument value. isPtr reports whether the
// conversion already yields a pointer.
func valueIn(l catalog.Logical, x string) (expr string, isPtr bool) {
	switch l {
	case catalog.Bool:
		return x + " != 0", false
	case catalog.Int:
		return "int64(" + x + ")", false
	case catalog.Real:
		return "float64(" + x + ")", false
	case catalog.Duration:
		return "vrt.FromSeconds(float64(" + x + "))", false
	case catalog.String:
		return "vrt.BorrowString(unsafe.Pointer(" + x + "))", false
	case catalog.Blob:
		return "vrt.BorrowBlob(unsafe.Pointer(" + x + "))", false
	case catalog.IP:
		return "vmodgenIP(" + x + ")", true
	case catalog.Probe:
		return "vrt.ProbeOf(unsafe.Pointer(" + x + "))", true
	case catalog.Backend:
		return "vrt.BackendOf(unsafe.Pointer(" + x + "))", false
	}
	panic(fmt.Sprintf("shim: no argument conversion for %s", l))
}

// valueOut converts an implementation result to its native value.
func valueOut(l catalog.Logical, x string) string {
	switch l {
	case catalog.Bool:
		return "vmodgenBool(" + x + ")"
	case catalog.Int:
		return "C.VCL_INT(" + x + ")"
	case catalog.Real:
		return "C.VCL_REAL(" + x + ")"
	case catalog.Duration:
		return "C.VCL_DURATION(vrt.Seconds(" + x + "))"
	case catalog.String:
		return "vmodgenString(ctx, " + x + ")"
	case catalog.Blob:
		return "vmodgenBlob(ctx, " + x + ")"
	case catalog.Backend:
		return "C.VCL_BACKEND(" + x + ".Raw())"
	}
	panic(fmt.Sprintf("shim: no result conversion for %s", l))
}

// cgoType is the cgo spelling of a positional parameter.
func cgoType(a *model.Argument) string {
	if a.Mode.IsSlot() {
		return "*C.struct_vmod_priv"
	}
	return "C." + catalog.MustLookup(a.Type).CType
}

// invoke emits the call to the implementation and the result handling.
func (w *goWriter) invoke(c *call) {
	fn := c.fn
	args := strings.Join(c.args, ", ")

	if fn.Kind == model.KindConstructor {
		typ := symbols.ExportName(fn.Object)
		switch {
		case fn.Implicit:
			c.line("o := new(%s)", typ)
		case fn.Return.Fallible:
			c.line("o, err := %s(%s)", symbols.ConstructorName(fn.Object), args)
			c.line("if err != nil {\nvctx.Fail(err)\nreturn\n}")
		default:
			c.line("o := %s(%s)", symbols.ConstructorName(fn.Object), args)
		}
		c.line("if o == nil {\nvctx.Failf(\"vmod_%s: %s constructor returned nil\")\nreturn\n}", w.m.Name, fn.Object)
		c.line("*(*uintptr)(unsafe.Pointer(objp)) = vrt.NewHandle(o)")
		return
	}

	target := symbols.ExportName(fn.Name)
	if fn.Kind == model.KindMethod {
		target = "o." + target
	}
	expr := target + "(" + args + ")"

	hasValue := fn.Return.Type != catalog.Void
	switch {
	case hasValue && fn.Return.Fallible:
		c.line("r, err := %s", expr)
		c.line("if err != nil {\nvctx.Fail(err)\nreturn\n}")
		c.line("ret = %s", valueOut(fn.Return.Type, "r"))
	case hasValue:
		c.line("ret = %s", valueOut(fn.Return.Type, expr))
	case fn.Return.Fallible:
		c.line("if err := %s; err != nil {\nvctx.Fail(err)\n}", expr)
	default:
		c.line("%s", expr)
	}
}
