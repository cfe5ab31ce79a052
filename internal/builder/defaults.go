// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package builder

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/albertocavalcante/vmodgen/internal/catalog"
)

// durationRe matches a VCL duration literal.
var durationRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?(ms|s|m|h|d|w|y)$`)

// defaultLiteral renders v as the descriptor text of a default for an
// argument of type l. On failure it returns a non-empty reason.
func defaultLiteral(l catalog.Logical, v cty.Value) (string, string) {
	switch l {
	case catalog.Bool:
		if v.Type() != cty.Bool {
			return "", mismatch("a bool", v)
		}
		return strconv.FormatBool(v.True()), ""

	case catalog.Int:
		if v.Type() != cty.Number {
			return "", mismatch("an integer", v)
		}
		bf := v.AsBigFloat()
		if !bf.IsInt() {
			return "", fmt.Sprintf("default %s is not a whole number", bf.Text('g', -1))
		}
		i, acc := bf.Int64()
		if acc != big.Exact {
			return "", fmt.Sprintf("default %s does not fit in int64", bf.Text('f', 0))
		}
		return strconv.FormatInt(i, 10), ""

	case catalog.Real:
		if v.Type() != cty.Number {
			return "", mismatch("a number", v)
		}
		f, _ := v.AsBigFloat().Float64()
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s, ""

	case catalog.Duration:
		if v.Type() != cty.String {
			return "", mismatch(`a duration string such as "5s"`, v)
		}
		s := v.AsString()
		if !durationRe.MatchString(s) {
			return "", fmt.Sprintf("%q is not a duration; use a number followed by ms, s, m, h, d, w or y", s)
		}
		return s, ""

	case catalog.String:
		if v.Type() != cty.String {
			return "", mismatch("a string", v)
		}
		s := v.AsString()
		if strings.ContainsAny(s, "\"\r\n") {
			return "", "string defaults cannot contain double quotes or newlines"
		}
		return `"` + s + `"`, ""
	}
	return "", fmt.Sprintf("only bool, int64, float64, time.Duration and string arguments can have a default value, not %s", l)
}

func mismatch(want string, v cty.Value) string {
	return fmt.Sprintf("default must be %s, got %s", want, v.Type().FriendlyName())
}
