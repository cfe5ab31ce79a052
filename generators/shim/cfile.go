// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package shim

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/albertocavalcante/vmodgen/generators/descriptor"
	"github.com/albertocavalcante/vmodgen/internal/symbols"
	"github.com/albertocavalcante/vmodgen/model"
)

// Slot methods descriptors defined by the C source.
const (
	TaskMethods = "vmodgen_priv_task_methods"
	VCLMethods  = "vmodgen_priv_vcl_methods"
)

// RenderHeader returns the C header shared by the cgo preamble and the C
// source. It holds declarations only.
func RenderHeader(m *model.Module, opts Options) []byte {
	var b bytes.Buffer
	guard := "VMOD_" + strings.ToUpper(m.Name) + "_IF_H"

	fmt.Fprintf(&b, "/* Code generated by %s. DO NOT EDIT. */\n\n", generatedBy(opts))
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)
	b.WriteString("#include <stddef.h>\n#include <stdint.h>\n\n")
	b.WriteString("#include \"cache/cache.h\"\n#include \"vcl.h\"\n")
	b.WriteString(descriptor.Prototypes(m))
	b.WriteString("\n")

	if m.TaskState != "" {
		fmt.Fprintf(&b, "extern const struct vmod_priv_methods %s;\n", TaskMethods)
	}
	if m.VCLState != "" {
		fmt.Fprintf(&b, "extern const struct vmod_priv_methods %s;\n", VCLMethods)
	}
	b.WriteString(`void vmodgen_fail(VRT_CTX, const char *msg);
VCL_STRING vmodgen_ws_strdup(VRT_CTX, const char *s, size_t len);
VCL_BLOB vmodgen_ws_blob(VRT_CTX, const void *data, size_t len);
int vmodgen_ip(VCL_IP ip, unsigned char *addr, unsigned *port);
`)
	fmt.Fprintf(&b, "\n#endif /* %s */\n", guard)
	return b.Bytes()
}

const helpers = `
void
vmodgen_fail(VRT_CTX, const char *msg)
{
	VRT_fail(ctx, "%s", msg);
}

VCL_STRING
vmodgen_ws_strdup(VRT_CTX, const char *s, size_t len)
{
	char *p;

	p = WS_Alloc(ctx->ws, len + 1);
	if (p == NULL) {
		VRT_fail(ctx, "vmod_@MOD@: workspace overflow");
		return (NULL);
	}
	if (len > 0)
		memcpy(p, s, len);
	p[len] = '\0';
	return (p);
}

VCL_BLOB
vmodgen_ws_blob(VRT_CTX, const void *data, size_t len)
{
	void *p = NULL;

	if (len > 0) {
		p = WS_Alloc(ctx->ws, len);
		if (p == NULL) {
			VRT_fail(ctx, "vmod_@MOD@: workspace overflow");
			return (NULL);
		}
		memcpy(p, data, len);
	}
	return (VRT_blob(ctx, "vmod_@MOD@", p, len, 0));
}

int
vmodgen_ip(VCL_IP ip, unsigned char *addr, unsigned *port)
{
	const unsigned char *p;

	if (ip == NULL)
		return (0);
	switch (VSA_GetPtr(ip, &p)) {
	case PF_INET:
		memcpy(addr, p, 4);
		*port = VSA_Port(ip);
		return (4);
	case PF_INET6:
		memcpy(addr, p, 16);
		*port = VSA_Port(ip);
		return (6);
	}
	return (0);
}
`

// RenderC returns the C source: runtime helpers, slot methods, the function
// table, the embedded descriptor and the module data symbol.
func RenderC(m *model.Module, desc []byte, opts Options) []byte {
	names := symbols.New(m.Name)
	var b bytes.Buffer

	fmt.Fprintf(&b, "/* Code generated by %s. DO NOT EDIT. */\n\n", generatedBy(opts))
	b.WriteString("#include <string.h>\n#include <sys/socket.h>\n\n")
	fmt.Fprintf(&b, "#include %q\n", HeaderFile(m))
	b.WriteString("#include \"vsa.h\"\n#include \"vmod_abi.h\"\n#include \"_cgo_export.h\"\n")
	b.WriteString(strings.ReplaceAll(helpers, "@MOD@", m.Name))

	if m.HasSlots() {
		b.WriteString(`
static void
vmodgen_priv_fini(VRT_CTX, void *p)
{
	(void)ctx;
	vmodgen_priv_free((uintptr_t)p);
}
`)
		if m.TaskState != "" {
			privMethods(&b, TaskMethods, m.TaskState)
		}
		if m.VCLState != "" {
			privMethods(&b, VCLMethods, m.VCLState)
		}
	}

	fmt.Fprintf(&b, "\nstatic struct %[1]s %[1]s = {\n", names.FuncStruct())
	for _, fn := range m.Callables() {
		fnNames := descriptor.Names(m.Name, fn)
		fmt.Fprintf(&b, "\t.%s = (%s *)%s,\n", fnNames.Member(), descriptor.TableType(m, fn), fnNames.Wrapper())
	}
	b.WriteString("};\n")

	b.WriteString("\nstatic const char vmod_json[] =\n")
	b.WriteString(cStringLines(desc))
	b.WriteString(";\n")

	fmt.Fprintf(&b, `
const struct vmod_data %s = {
	.vrt_major = 0,
	.vrt_minor = 0,
	.file_id = %q,
	.name = %q,
	.func_name = %q,
	.func = &%s,
	.func_len = sizeof(%s),
	.json = vmod_json,
	.abi = VMOD_ABI_Version,
};
`, names.DataStruct(), model.Fingerprint(m), m.Name, names.FuncStruct(), names.FuncStruct(), names.FuncStruct())
	return b.Bytes()
}

func privMethods(b *bytes.Buffer, sym, typ string) {
	fmt.Fprintf(b, `
const struct vmod_priv_methods %s = {
	.magic = VMOD_PRIV_METHODS_MAGIC,
	.type = %s,
	.fini = vmodgen_priv_fini,
};
`, sym, cQuote([]byte(typ)))
}

// cStringLines renders data as adjacent C string literals, one per line of
// input.
func cStringLines(data []byte) string {
	var b strings.Builder
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line = data[:i+1]
		}
		data = data[len(line):]
		b.WriteString("\t")
		b.WriteString(cQuote(line))
		if len(data) > 0 {
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return "\t\"\""
	}
	return b.String()
}

// cQuote returns a C string literal for s. Control and non-ASCII bytes use
// three-digit octal escapes.
func cQuote(s []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch {
		case c == '\\', c == '"', c == '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// generatedBy names the tool, and the version and declaration file when
// known, for the generated-code marker.
func generatedBy(opts Options) string {
	s := "vmodgen"
	if opts.Version != "" {
		s += " " + opts.Version
	}
	if opts.Source != "" {
		s += " from " + opts.Source
	}
	return s
}
