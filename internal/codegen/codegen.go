// Package codegen lowers a type-checked MiniLang ast.Program directly to C
// source text. There is no intermediate IR: each statement and expression
// is walked once and rendered straight into a strings.Builder, in the
// emitter idiom (a builder plus a small line-emitting helper, a label
// counter, a side-channel for statements an expression needs before it can
// be used) rather than a multi-stage lowering pipeline.
package codegen

import (
	"fmt"
	"strings"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/types"
)

// Gen holds the mutable state of a single Generate pass; it is not
// reusable across programs.
type Gen struct {
	out     strings.Builder
	depth   int
	pending []string // statements an in-flight expression needs emitted before the current statement
	nextBuf int       // counter for string-interpolation scratch buffers
	nextLbl int       // counter for continue-target labels

	// loopStack holds, per enclosing loop, the goto label `continue` must
	// target instead of the native keyword. Empty string means the native
	// `continue;` is correct. Every loop construct pushes exactly one
	// entry for the duration of its body so a bare continue always finds
	// its innermost enclosing loop.
	loopStack []string
}

// Generate renders prog as a complete, freestanding C translation unit.
// prog must already have passed typechecker.Check — codegen trusts every
// Expression's TypeOf() slot and never re-derives types on its own.
func Generate(prog *ast.Program) string {
	g := &Gen{}
	g.emit("#include <stdio.h>")
	g.emit("#include <stdlib.h>")
	g.emit("#include <string.h>")
	g.emit("#include <stdbool.h>")
	g.emit("")

	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			continue
		}
		g.emit("%s;", g.signature(fn))
	}
	g.emit("")

	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			continue
		}
		g.genFunction(fn)
		g.emit("")
	}
	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			g.genFunction(fn)
		}
	}
	return g.out.String()
}

func (g *Gen) emit(format string, args ...any) {
	g.out.WriteString(strings.Repeat("    ", g.depth))
	if len(args) == 0 {
		// Pre-rendered text (pending setup lines, display's printf calls)
		// is written verbatim so its own % verbs are not reinterpreted.
		g.out.WriteString(format)
	} else {
		fmt.Fprintf(&g.out, format, args...)
	}
	g.out.WriteString("\n")
}

func (g *Gen) flushPending() {
	for _, p := range g.pending {
		g.emit(p)
	}
	g.pending = nil
}

// cName renames every MiniLang identifier to avoid collisions with C
// keywords and library names, except main, which must stay main for C's
// entry point.
func (g *Gen) cName(name string) string {
	if name == "main" {
		return "main"
	}
	return "_ml_" + name
}

func (g *Gen) newContinueLabel() string {
	lbl := fmt.Sprintf("_ml_cont%d", g.nextLbl)
	g.nextLbl++
	return lbl
}

// resolveType mirrors typechecker's private resolveAnnotation: it is
// small enough, and local enough to codegen's own needs (building C
// declarators), that duplicating it beats exporting an internal
// typechecker helper across a package boundary.
func resolveType(ann *ast.TypeAnnotation) types.Type {
	base, _ := types.FromKeyword(ann.Base)
	result := base
	for i := len(ann.ArrLen) - 1; i >= 0; i-- {
		result = types.NewArray(result, ann.ArrLen[i])
	}
	return result
}

func ctypeScalar(k types.Kind) string {
	switch k {
	case types.Int:
		return "long long"
	case types.Float:
		return "double"
	case types.Bool:
		return "bool"
	case types.String:
		return "const char *"
	default:
		return "void"
	}
}

// declare renders a C declarator for name:t, peeling MiniLang's array
// dimensions outer-to-inner into trailing [N] suffixes.
func declare(name string, t types.Type) string {
	base := t
	var dims []int
	for base.Kind == types.Array {
		dims = append(dims, base.Len)
		base = *base.Elem
	}
	var sb strings.Builder
	sb.WriteString(ctypeScalar(base.Kind))
	sb.WriteString(" ")
	sb.WriteString(name)
	for _, d := range dims {
		fmt.Fprintf(&sb, "[%d]", d)
	}
	return sb.String()
}

// paramDecl is declare, but the outermost array dimension is left open —
// C parameters decay arrays to pointers, and only the outer dimension may
// be omitted.
func paramDecl(name string, t types.Type) string {
	if t.Kind != types.Array {
		return declare(name, t)
	}
	base := t
	var dims []int
	for base.Kind == types.Array {
		dims = append(dims, base.Len)
		base = *base.Elem
	}
	var sb strings.Builder
	sb.WriteString(ctypeScalar(base.Kind))
	sb.WriteString(" ")
	sb.WriteString(name)
	for i, d := range dims {
		if i == 0 {
			sb.WriteString("[]")
			continue
		}
		fmt.Fprintf(&sb, "[%d]", d)
	}
	return sb.String()
}

func (g *Gen) signature(fn *ast.Function) string {
	ret := "void"
	if fn.Name == "main" {
		ret = "int"
	} else if fn.ReturnType != nil {
		ret = ctypeScalar(resolveType(fn.ReturnType).Kind)
	}

	if fn.Name == "main" || len(fn.Params) == 0 {
		return fmt.Sprintf("%s %s(void)", ret, g.cName(fn.Name))
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = paramDecl(g.cName(p.Name), resolveType(&p.Type))
	}
	return fmt.Sprintf("%s %s(%s)", ret, g.cName(fn.Name), strings.Join(params, ", "))
}

func (g *Gen) genFunction(fn *ast.Function) {
	g.emit("%s {", g.signature(fn))
	g.genBlockBody(fn.Body)
	if fn.Name == "main" {
		// Always safe: a return after a Send is merely unreachable, not a
		// compile error. main is always emitted returning int, whatever
		// return type its MiniLang declaration names.
		g.depth++
		g.emit("return 0;")
		g.depth--
	}
	g.emit("}")
}

func (g *Gen) genBlockBody(b *ast.Block) {
	g.depth++
	for _, stmt := range b.Stmts {
		g.genStmt(stmt)
	}
	g.depth--
}

func (g *Gen) genStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Let:
		g.genLet(s)
	case *ast.Assign:
		g.genAssign(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.DoWhile:
		g.genDoWhile(s)
	case *ast.For:
		g.genFor(s)
	case *ast.Display:
		g.genDisplay(s)
	case *ast.Send:
		g.genSend(s)
	case *ast.Break:
		g.emit("break;")
	case *ast.Continue:
		if n := len(g.loopStack); n > 0 && g.loopStack[n-1] != "" {
			g.emit("goto %s;", g.loopStack[n-1])
		} else {
			g.emit("continue;")
		}
	case *ast.ExprStmt:
		expr := g.genExpr(s.Expr)
		g.flushPending()
		g.emit("%s;", expr)
	case *ast.Block:
		g.emit("{")
		g.genBlockBody(s)
		g.emit("}")
	}
}

func (g *Gen) genLet(s *ast.Let) {
	t := s.Init.TypeOf()
	init := g.genExpr(s.Init)
	g.flushPending()
	g.emit("%s = %s;", declare(g.cName(s.Name), t), init)
}

func (g *Gen) genAssign(s *ast.Assign) {
	target := g.genExpr(s.Target)
	value := g.genExpr(s.Value)
	g.flushPending()
	g.emit("%s = %s;", target, value)
}

func (g *Gen) genIf(s *ast.If) {
	cond := g.genExpr(s.Cond)
	g.flushPending()
	g.emit("if (%s) {", cond)
	g.genBlockBody(s.Then)
	g.emitElse(s.Else)
}

func (g *Gen) emitElse(els ast.Statement) {
	switch e := els.(type) {
	case nil:
		g.emit("}")
	case *ast.If:
		cond := g.genExpr(e.Cond)
		g.flushPending()
		g.emit("} else if (%s) {", cond)
		g.genBlockBody(e.Then)
		g.emitElse(e.Else)
	case *ast.Block:
		g.emit("} else {")
		g.genBlockBody(e)
		g.emit("}")
	}
}

// genWhile maps the common case directly to C's while. When the
// condition needs setup statements (string-interpolation buffers, a
// materialized string comparison) that can't live inside a `while(...)`
// header, it rewrites to an equivalent `for (;;) { setup; if (!cond)
// break; body }` — the setup then re-runs on every re-check, same as a
// native while would re-evaluate its condition expression.
func (g *Gen) genWhile(s *ast.While) {
	cond := g.genExpr(s.Cond)
	if len(g.pending) == 0 {
		g.loopStack = append(g.loopStack, "")
		g.emit("while (%s) {", cond)
		g.genBlockBody(s.Body)
		g.emit("}")
		g.loopStack = g.loopStack[:len(g.loopStack)-1]
		return
	}
	setup := g.pending
	g.pending = nil
	g.loopStack = append(g.loopStack, "")
	g.emit("for (;;) {")
	g.depth++
	for _, p := range setup {
		g.emit(p)
	}
	g.emit("if (!(%s)) break;", cond)
	g.depth--
	g.genBlockBody(s.Body)
	g.emit("}")
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

// genDoWhile never needs the for(;;) rewrite: the condition's setup
// statements can simply be emitted as the body's last statements, right
// before the native `while (cond);` trailer, and `continue` already jumps
// there in C.
func (g *Gen) genDoWhile(s *ast.DoWhile) {
	g.loopStack = append(g.loopStack, "")
	g.emit("do {")
	g.genBlockBody(s.Body)
	g.depth++
	cond := g.genExpr(s.Cond)
	for _, p := range g.pending {
		g.emit(p)
	}
	g.pending = nil
	g.depth--
	g.emit("} while (%s);", cond)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

// genFor maps the common case directly to C's for(init; cond; step).
// When cond needs setup statements, it rewrites to an unrolled for(;;)
// with the step moved under a goto label, because continue inside a
// MiniLang for loop must still run step before re-testing cond — exactly
// what C's native for-header does for free, and what a naive `for(;;){
// body; step; }` rewrite would silently break (continue would skip
// step). The label stays local to this loop's frame on loopStack.
func (g *Gen) genFor(s *ast.For) {
	initTarget := g.genExpr(s.Init.Target)
	initValue := g.genExpr(s.Init.Value)
	g.flushPending()
	initExpr := fmt.Sprintf("%s = %s", initTarget, initValue)

	cond := g.genExpr(s.Cond)
	condPending := g.pending
	g.pending = nil

	stepTarget := g.genExpr(s.Step.Target)
	stepValue := g.genExpr(s.Step.Value)
	g.flushPending()
	stepExpr := fmt.Sprintf("%s = %s", stepTarget, stepValue)

	if len(condPending) == 0 {
		g.loopStack = append(g.loopStack, "")
		g.emit("for (%s; %s; %s) {", initExpr, cond, stepExpr)
		g.genBlockBody(s.Body)
		g.emit("}")
		g.loopStack = g.loopStack[:len(g.loopStack)-1]
		return
	}

	label := g.newContinueLabel()
	g.loopStack = append(g.loopStack, label)
	g.emit("%s;", initExpr)
	g.emit("for (;;) {")
	g.depth++
	for _, p := range condPending {
		g.emit(p)
	}
	g.emit("if (!(%s)) break;", cond)
	g.depth--
	g.genBlockBody(s.Body)
	g.depth++
	g.emit("%s: %s;", label, stepExpr)
	g.depth--
	g.emit("}")
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

func (g *Gen) genSend(s *ast.Send) {
	if s.Value == nil {
		g.emit("return;")
		return
	}
	expr := g.genExpr(s.Value)
	g.flushPending()
	g.emit("return (%s);", expr)
}
