// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package descriptor

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/vmodgen/generator"
	"github.com/albertocavalcante/vmodgen/internal/builder"
	"github.com/albertocavalcante/vmodgen/internal/decl"
	"github.com/albertocavalcante/vmodgen/model"
)

func mustModule(t *testing.T, src string) *model.Module {
	t.Helper()
	f, diags := decl.ParseSource([]byte(src), "test.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	m, diags := builder.Build(f, builder.Options{})
	require.False(t, diags.HasErrors(), diags.Error())
	return m
}

// decode strips the framing and decodes the descriptor array.
func decode(t *testing.T, out []byte) []any {
	t.Helper()
	require.True(t, bytes.HasPrefix(out, []byte(Start)), "missing start marker")
	require.True(t, bytes.HasSuffix(out, []byte(End)), "missing end marker")
	body := out[len(Start) : len(out)-len(End)]

	var entries []any
	require.NoError(t, json.Unmarshal(body, &entries))
	return entries
}

const taskSrc = `
module = "tsk"
function "per_tsk_val" {
  returns = "int64"
  arg "tsk" {
    type            = "**PerTask"
    shared_per_task = true
  }
}`

const objectSrc = `
module = "object"
object "kv1" {
  constructor {
    arg "cap" { type = "*int64" }
    arg "perm" {
      type           = "**PerVcl"
      shared_per_vcl = true
    }
    arg "name" {
      type     = "string"
      vcl_name = true
    }
  }
  method "set" {
    arg "key" { type = "string" }
    arg "value" { type = "string" }
  }
  method "get" {
    returns = "(string, error)"
    arg "key" { type = "string" }
  }
}
object "kv2" {}
`

const eventSrc = `
module = "event"
function "count" {
  returns = "int64"
  arg "vcl" {
    type           = "*Pair[PerVcl, Counter]"
    shared_per_vcl = true
  }
}
event "on_event" {
  arg "ctx" { type = "*vrt.Ctx" }
  arg "evt" { type = "vrt.Event" }
  arg "vcl" {
    type           = "**Pair[PerVcl, Counter]"
    shared_per_vcl = true
  }
}`

func TestRenderHeader(t *testing.T) {
	m := mustModule(t, taskSrc)
	out, err := Render(m, Options{ABI: "Varnish 7.6.1 abc"})
	require.NoError(t, err)

	entries := decode(t, out)
	require.Len(t, entries, 3)
	want := []any{"$VMOD", "1.0", "tsk", "Vmod_vmod_tsk_Func", model.Fingerprint(m), "Varnish 7.6.1 abc", "0", "0"}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Errorf("$VMOD mismatch (-want +got):\n%s", diff)
	}

	want = []any{"$FUNC", "per_tsk_val", []any{
		[]any{"INT"},
		"Vmod_vmod_tsk_Func.f_per_tsk_val",
		"",
		[]any{"PRIV_TASK", "tsk"},
	}}
	if diff := cmp.Diff(want, entries[2]); diff != "" {
		t.Errorf("$FUNC mismatch (-want +got):\n%s", diff)
	}
}

func TestCProto(t *testing.T) {
	m := mustModule(t, taskSrc)
	want := "\ntypedef VCL_INT td_vmod_tsk_per_tsk_val(\n" +
		"    VRT_CTX,\n" +
		"    struct vmod_priv *\n" +
		");\n" +
		"\nstruct Vmod_vmod_tsk_Func {\n" +
		"  td_vmod_tsk_per_tsk_val *f_per_tsk_val;\n" +
		"};\n" +
		"\nstatic struct Vmod_vmod_tsk_Func Vmod_vmod_tsk_Func;"
	if diff := cmp.Diff(want, CProto(m)); diff != "" {
		t.Errorf("CProto mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedefArgRecord(t *testing.T) {
	m := mustModule(t, `
module = "m"
function "greet" {
  returns = "string"
  arg "n" { type = "*int64" }
  arg "name" { type = "string" }
}`)
	want := "\nstruct arg_vmod_m_greet {\n" +
		"  char valid_n;\n" +
		"  VCL_INT n;\n" +
		"  VCL_STRING name;\n" +
		"};\n" +
		"\ntypedef VCL_STRING td_vmod_m_greet(\n" +
		"    VRT_CTX,\n" +
		"    struct arg_vmod_m_greet *\n" +
		");\n"
	if diff := cmp.Diff(want, Typedef(m, m.Functions[0])); diff != "" {
		t.Errorf("Typedef mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderObject(t *testing.T) {
	m := mustModule(t, objectSrc)
	out, err := Render(m, Options{})
	require.NoError(t, err)
	entries := decode(t, out)
	require.Len(t, entries, 4) // $VMOD, $CPROTO, two $OBJ

	want := []any{
		"$OBJ", "kv1", map[string]any{"NULL_OK": false}, "struct vmod_object_kv1",
		[]any{"$INIT", []any{
			[]any{"VOID"},
			"Vmod_vmod_object_Func.f_kv1__init",
			"struct arg_vmod_object_kv1__init",
			[]any{"INT", "cap", nil, nil, true},
			[]any{"PRIV_VCL", "perm"},
		}},
		[]any{"$FINI", []any{
			[]any{"VOID"},
			"Vmod_vmod_object_Func.f_kv1__fini",
			"",
		}},
		[]any{"$METHOD", "set", []any{
			[]any{"VOID"},
			"Vmod_vmod_object_Func.f_kv1_set",
			"",
			[]any{"STRING", "key"},
			[]any{"STRING", "value"},
		}},
		[]any{"$METHOD", "get", []any{
			[]any{"STRING"},
			"Vmod_vmod_object_Func.f_kv1_get",
			"",
			[]any{"STRING", "key"},
		}},
	}
	if diff := cmp.Diff(want, entries[2]); diff != "" {
		t.Errorf("$OBJ mismatch (-want +got):\n%s", diff)
	}

	kv2 := entries[3].([]any)
	assert.Equal(t, "kv2", kv2[1])
	assert.Equal(t, []any{"$INIT", []any{[]any{"VOID"}, "Vmod_vmod_object_Func.f_kv2__init", ""}}, kv2[4])

	cproto := entries[1].([]any)[1].(string)
	assert.Contains(t, cproto, "\nstruct vmod_object_kv1;\n")
	assert.Contains(t, cproto, "typedef VCL_VOID td_vmod_object_kv1__init(\n    VRT_CTX,\n    struct vmod_object_kv1 **,\n    const char *,\n    struct arg_vmod_object_kv1__init *\n);")
	assert.Contains(t, cproto, "typedef VCL_VOID td_vmod_object_kv1__fini(\n    struct vmod_object_kv1 **\n);")
	assert.Contains(t, cproto, "typedef VCL_STRING td_vmod_object_kv1_get(\n    VRT_CTX,\n    struct vmod_object_kv1 *,\n    VCL_STRING\n);")
	assert.Contains(t, cproto, "  char valid_cap;\n  VCL_INT cap;\n  struct vmod_priv * perm;\n")
}

func TestRenderEvent(t *testing.T) {
	m := mustModule(t, eventSrc)
	out, err := Render(m, Options{})
	require.NoError(t, err)
	entries := decode(t, out)
	require.Len(t, entries, 4)

	assert.Equal(t, []any{"$EVENT", "Vmod_vmod_event_Func.f_on_event"}, entries[2])
	assert.Equal(t, "$FUNC", entries[3].([]any)[0])

	cproto := entries[1].([]any)[1].(string)
	assert.Contains(t, cproto, "  vmod_event_f *f_on_event;\n")
	assert.NotContains(t, cproto, "td_vmod_event_on_event")
	assert.Contains(t, cproto, "  td_vmod_event_count *f_count;\n")
}

func TestRenderDefaults(t *testing.T) {
	m := mustModule(t, `
module = "m"
function "f" {
  arg "times" {
    type    = "int64"
    default = 10
  }
  arg "greeting" {
    type    = "string"
    default = "hi"
  }
  arg "ip" { type = "*netip.AddrPort" }
}`)
	out, err := Render(m, Options{})
	require.NoError(t, err)
	fn := decode(t, out)[2].([]any)
	decl := fn[2].([]any)

	assert.Equal(t, "struct arg_vmod_m_f", decl[2])
	assert.Equal(t, []any{"INT", "times", "10"}, decl[3])
	assert.Equal(t, []any{"STRING", "greeting", `"hi"`}, decl[4])
	assert.Equal(t, []any{"IP", "ip", nil, nil, true}, decl[5])
}

func TestRenderRequired(t *testing.T) {
	m := mustModule(t, `
module = "m"
function "f" {
  arg "ip" {
    type     = "*netip.AddrPort"
    required = true
  }
  arg "probe" {
    type     = "*vrt.Probe"
    required = true
  }
}`)
	out, err := Render(m, Options{})
	require.NoError(t, err)
	decl := decode(t, out)[2].([]any)[2].([]any)

	// Required values are passed positionally, without a validity flag.
	assert.Equal(t, "", decl[2])
	assert.Equal(t, []any{"IP", "ip"}, decl[3])
	assert.Equal(t, []any{"PROBE", "probe"}, decl[4])
	assert.Contains(t, Typedef(m, m.Functions[0]), "    VRT_CTX,\n    VCL_IP,\n    VCL_PROBE\n")
}

func TestRenderStable(t *testing.T) {
	a, err := Render(mustModule(t, objectSrc), Options{ABI: "x"})
	require.NoError(t, err)
	b, err := Render(mustModule(t, objectSrc), Options{ABI: "x"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Render(mustModule(t, taskSrc), Options{ABI: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, decode(t, a)[0].([]any)[4], decode(t, c)[0].([]any)[4], "file ids differ")
}

func TestGenerator(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, "descriptor", g.Metadata().Name)
	assert.True(t, g.Metadata().Core)

	m := mustModule(t, taskSrc)
	out, err := g.Generate(context.Background(), m, generator.Config{})
	require.NoError(t, err)
	require.Contains(t, out.Files, "vmod_tsk.json")

	header := decode(t, out.Files["vmod_tsk.json"])[0].([]any)
	assert.Equal(t, "Varnish 7.6.0", header[5])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, m, generator.Config{})
	assert.ErrorIs(t, err, context.Canceled)
}
