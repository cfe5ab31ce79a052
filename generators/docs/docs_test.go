// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package docs

import (
	"context"
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

const mathSrc = `
module = "m"
doc    = "Math helpers."
function "add" {
  doc     = "Adds numbers."
  returns = "(int64, error)"
  arg "a" {
    type = "int64"
    doc  = "First | operand."
  }
  arg "b" { type = "*int64" }
  arg "ctx" { type = "*vrt.Ctx" }
}
function "scale" {
  returns = "float64"
  arg "x" {
    type    = "float64"
    default = 2
  }
}`

func TestMarkdown(t *testing.T) {
	m := mustModule(t, mathSrc)
	want := "# vmod_m\n" +
		"\n" +
		"Math helpers.\n" +
		"\n" +
		"## Functions\n" +
		"\n" +
		"### `INT m.add(INT a, [INT b])`\n" +
		"\n" +
		"Adds numbers.\n" +
		"\n" +
		"| Argument | Type | Optional | Default | Description |\n" +
		"|---|---|---|---|---|\n" +
		"| `a` | `INT` | no |  | First \\| operand. |\n" +
		"| `b` | `INT` | yes |  |  |\n" +
		"\n" +
		"Failures are reported to VCL and abort the current task.\n" +
		"\n" +
		"### `REAL m.scale(REAL x = 2.0)`\n" +
		"\n" +
		"| Argument | Type | Optional | Default | Description |\n" +
		"|---|---|---|---|---|\n" +
		"| `x` | `REAL` | no | `2.0` |  |"
	if diff := cmp.Diff(want, string(Markdown(m))); diff != "" {
		t.Errorf("Markdown mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownObjectsAndEvent(t *testing.T) {
	m := mustModule(t, `
module = "kvs"
event "on_event" {
  doc = "Sets up the store."
  arg "vcl" {
    type           = "**Store"
    shared_per_vcl = true
  }
}
object "kv" {
  doc = "A bounded map."
  constructor {
    arg "cap" { type = "*int64" }
    arg "store" {
      type           = "*Store"
      shared_per_vcl = true
    }
  }
  method "get" {
    returns = "string"
    arg "key" { type = "string" }
  }
}
object "kv2" {}
`)
	md := string(Markdown(m))

	for _, want := range []string{
		"## Event handler\n\n### `on_event`\n\nSets up the store.\n\n",
		"## Objects\n\n### Object `kv`\n\nA bounded map.\n\n",
		"#### `new xkv = kvs.kv([INT cap])`\n",
		"#### `STRING xkv.get(STRING key)`\n",
		"#### `new xkv2 = kvs.kv2()`",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "PRIV_VCL", "slots are not part of the VCL signature")
	assert.NotContains(t, md, "`store`")
}

func TestSignature(t *testing.T) {
	m := mustModule(t, `
module = "s"
function "greet" {
  returns = "string"
  arg "name" {
    type    = "string"
    default = "world"
  }
  arg "ip" { type = "*netip.AddrPort" }
}`)
	assert.Equal(t, `STRING s.greet(STRING name = "world", [IP ip])`, Signature(m, m.Functions[0]))
}

func TestHTML(t *testing.T) {
	out := string(HTML(mustModule(t, mathSrc)))
	assert.Contains(t, out, "<h1>vmod_m</h1>")
	assert.Contains(t, out, "<code>INT m.add(INT a, [INT b])</code>")
	assert.Contains(t, out, "<table>")
}

func TestGenerator(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, "docs", g.Metadata().Name)
	assert.False(t, g.Metadata().Core)

	m := mustModule(t, mathSrc)
	tests := []struct {
		name    string
		options map[string]string
		file    string
		wantErr bool
	}{
		{name: "default", file: "vmod_m.md"},
		{name: "markdown", options: map[string]string{"format": "markdown"}, file: "vmod_m.md"},
		{name: "html", options: map[string]string{"format": "html"}, file: "vmod_m.html"},
		{name: "unknown", options: map[string]string{"format": "pdf"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := g.Generate(context.Background(), m, generator.Config{Options: tt.options})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.file}, out.Names())
		})
	}
}
