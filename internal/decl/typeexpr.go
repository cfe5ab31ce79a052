// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package decl

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// TypeExpr is a raw, unresolved Go type token.
type TypeExpr struct {
	// Text is the token as written, trimmed.
	Text string

	// Stars counts leading pointer indirections: "**PerTask" has 2.
	Stars int

	// Base is the canonical rendering of the type below the pointers,
	// e.g. "int64", "vrt.Event", "Pair[A, B]".
	Base string

	// Range locates the token in the declaration source.
	Range hcl.Range
}

// String returns the canonical rendering, stars included.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	return strings.Repeat("*", t.Stars) + t.Base
}

// Returns is a raw result list.
type Returns struct {
	Text  string
	Types []*TypeExpr
	Range hcl.Range
}

// parseTypeExpr parses a single Go type expression.
func parseTypeExpr(text string, rng hcl.Range) (*TypeExpr, *hcl.Diagnostic) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Empty type",
			Detail:   "A type token is required.",
			Subject:  rng.Ptr(),
		}
	}
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return nil, malformedType(text, parseErrMsg(err), rng)
	}
	te, msg := typeFromAST(text, expr)
	if msg != "" {
		return nil, malformedType(text, msg, rng)
	}
	te.Range = rng
	return te, nil
}

// parseReturns parses a Go result list such as "string" or "(string, error)".
func parseReturns(text string, rng hcl.Range) (*Returns, *hcl.Diagnostic) {
	text = strings.TrimSpace(text)
	r := &Returns{Text: text, Range: rng}
	if text == "" {
		return r, nil
	}
	expr, err := parser.ParseExpr("func() " + text)
	if err != nil {
		return nil, malformedType(text, parseErrMsg(err), rng)
	}
	fn, ok := expr.(*ast.FuncType)
	if !ok || fn.Results == nil {
		return nil, malformedType(text, "not a result list", rng)
	}
	for _, field := range fn.Results.List {
		if len(field.Names) > 0 {
			return nil, malformedType(text, "named results are not supported", rng)
		}
		te, msg := typeFromAST(render(field.Type), field.Type)
		if msg != "" {
			return nil, malformedType(text, msg, rng)
		}
		te.Range = rng
		r.Types = append(r.Types, te)
	}
	return r, nil
}

func typeFromAST(text string, expr ast.Expr) (*TypeExpr, string) {
	te := &TypeExpr{Text: text}
	for {
		switch e := expr.(type) {
		case *ast.ParenExpr:
			expr = e.X
			continue
		case *ast.StarExpr:
			te.Stars++
			expr = e.X
			continue
		}
		break
	}
	if !isTypeShaped(expr) {
		return nil, fmt.Sprintf("%q is not a type", render(expr))
	}
	te.Base = render(expr)
	return te, ""
}

func isTypeShaped(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeShaped(e.X)
	case *ast.ParenExpr:
		return isTypeShaped(e.X)
	case *ast.ArrayType:
		return isTypeShaped(e.Elt)
	case *ast.MapType:
		return isTypeShaped(e.Key) && isTypeShaped(e.Value)
	case *ast.ChanType:
		return isTypeShaped(e.Value)
	case *ast.IndexExpr:
		return isTypeShaped(e.X) && isTypeShaped(e.Index)
	case *ast.IndexListExpr:
		if !isTypeShaped(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeShaped(idx) {
				return false
			}
		}
		return true
	case *ast.StructType, *ast.InterfaceType, *ast.FuncType:
		return true
	}
	return false
}

func render(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), expr); err != nil {
		return fmt.Sprintf("%T", expr)
	}
	return buf.String()
}

func malformedType(text, reason string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Malformed type",
		Detail:   fmt.Sprintf("Cannot parse type token %q: %s.", text, reason),
		Subject:  rng.Ptr(),
	}
}

func parseErrMsg(err error) string {
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		return list[0].Msg
	}
	return err.Error()
}
