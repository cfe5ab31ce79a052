// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"
)

// Fingerprint returns the content-addressed identifier of m: the lowercase
// hex SHA-256 of a canonical serialization of the module.
//
// The serialization is order-sensitive: reordering functions, objects,
// methods or arguments changes the result, as does changing any name, type,
// mode, optionality, default, return type, slot type or doc text. Source
// positions are not part of it, so reformatting a declaration file keeps the
// identifier stable.
//
// Format version: 1. Every field is followed by a NUL byte and every list
// is prefixed by its length.
func Fingerprint(m *Module) string {
	h := sha256.New()
	w := fpWriter{h: h}

	w.str("vmodgen-fingerprint-v1")
	w.str(m.Name)
	w.str(m.Doc)
	w.str(m.Host.String())
	w.str(m.TaskState)
	w.str(m.VCLState)

	if m.Event != nil {
		w.int(1)
		w.function(m.Event)
	} else {
		w.int(0)
	}

	w.int(len(m.Functions))
	for _, f := range m.Functions {
		w.function(f)
	}

	w.int(len(m.Objects))
	for _, o := range m.Objects {
		w.str(o.Name)
		w.str(o.Doc)
		funcs := o.Funcs()
		w.int(len(funcs))
		for _, f := range funcs {
			w.function(f)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

type fpWriter struct {
	h hash.Hash
}

func (w fpWriter) str(s string) {
	w.h.Write([]byte(s))
	w.h.Write([]byte{0})
}

func (w fpWriter) int(n int) {
	w.str(strconv.Itoa(n))
}

func (w fpWriter) bool(b bool) {
	w.str(strconv.FormatBool(b))
}

func (w fpWriter) function(f *Function) {
	w.str(f.Kind.String())
	w.str(f.Name)
	w.str(f.Object)
	w.str(f.Doc)
	w.bool(f.Implicit)
	w.str(f.Return.Type.String())
	w.str(f.Return.GoType)
	w.bool(f.Return.Fallible)
	w.int(len(f.Args))
	for _, a := range f.Args {
		w.str(a.Name)
		w.str(a.Type.String())
		w.str(a.Mode.String())
		w.bool(a.Optional)
		w.bool(a.Required)
		w.str(a.Default)
		w.str(a.GoType)
		w.str(a.StateType)
		w.str(a.Doc)
	}
}
