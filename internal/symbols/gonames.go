// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package symbols

import (
	"strings"
	"unicode"
)

// Capitalize returns name with the first letter uppercased.
// Returns empty string for empty input.
func Capitalize(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ExportName converts a snake_case declaration name into an exported Go
// identifier: "per_tsk_val" -> "PerTskVal". A name made only of underscores
// becomes "X".
func ExportName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		b.WriteString(Capitalize(part))
	}
	if b.Len() == 0 {
		return "X"
	}
	out := b.String()
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

// ConstructorName is the Go function implementing an object's constructor.
func ConstructorName(obj string) string {
	return "New" + ExportName(obj)
}
