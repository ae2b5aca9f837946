package analyzer

import "github.com/minilang-org/minicc/internal/ast"

// complexityWalk accumulates every structural metric in one pass over a
// function body: cyclomatic's decision count, cognitive's SonarSource-style
// score, max nesting depth, fan-out (distinct callees), and a flat
// statement count.
type complexityWalk struct {
	decisionPoints int // if/while/do-while/for/AND/OR occurrences, for cyclomatic
	cognitive      int
	maxNesting     int
	stmtCount      int
	callees        map[string]bool
}

func newComplexityWalk() *complexityWalk {
	return &complexityWalk{callees: map[string]bool{}}
}

func (w *complexityWalk) walkBlock(b *ast.Block, nesting int) {
	for _, stmt := range b.Stmts {
		w.walkStmt(stmt, nesting)
	}
}

func (w *complexityWalk) bump(nesting int) {
	if nesting > w.maxNesting {
		w.maxNesting = nesting
	}
}

func (w *complexityWalk) walkStmt(stmt ast.Statement, nesting int) {
	w.stmtCount++
	switch s := stmt.(type) {
	case *ast.Let:
		w.walkExpr(s.Init)
	case *ast.Assign:
		w.walkExpr(s.Target)
		w.walkExpr(s.Value)
	case *ast.If:
		w.walkIf(s, nesting, true)
	case *ast.While:
		w.decisionPoints++
		w.cognitive += 1 + nesting
		w.countBoolMix(s.Cond)
		w.walkExpr(s.Cond)
		w.bump(nesting + 1)
		w.walkBlock(s.Body, nesting+1)
	case *ast.DoWhile:
		w.decisionPoints++
		w.cognitive += 1 + nesting
		w.countBoolMix(s.Cond)
		w.bump(nesting + 1)
		w.walkBlock(s.Body, nesting+1)
		w.walkExpr(s.Cond)
	case *ast.For:
		w.decisionPoints++
		w.cognitive += 1 + nesting
		w.countBoolMix(s.Cond)
		if s.Init != nil {
			w.walkStmt(s.Init, nesting)
		}
		w.walkExpr(s.Cond)
		if s.Step != nil {
			w.walkStmt(s.Step, nesting)
		}
		w.bump(nesting + 1)
		w.walkBlock(s.Body, nesting+1)
	case *ast.Display:
		for _, a := range s.Args {
			w.walkExpr(a)
		}
	case *ast.Send:
		if s.Value != nil {
			w.walkExpr(s.Value)
		}
	case *ast.Break:
		w.cognitive++ // spec.md §4.6: +1 for each break/continue jumping out
	case *ast.Continue:
		w.cognitive++
	case *ast.ExprStmt:
		w.walkExpr(s.Expr)
	case *ast.Block:
		w.walkBlock(s, nesting)
	}
}

// walkIf scores the first `if` in a chain with the nesting penalty; each
// `else if`/`else` after it adds a flat +1, SonarSource cognitive-complexity
// style.
func (w *complexityWalk) walkIf(s *ast.If, nesting int, first bool) {
	w.decisionPoints++
	if first {
		w.cognitive += 1 + nesting
	} else {
		w.cognitive++
	}
	w.countBoolMix(s.Cond)
	w.walkExpr(s.Cond)
	w.bump(nesting + 1)
	w.walkBlock(s.Then, nesting+1)

	switch e := s.Else.(type) {
	case nil:
	case *ast.If:
		w.walkIf(e, nesting, false)
	case *ast.Block:
		w.cognitive++
		w.bump(nesting + 1)
		w.walkBlock(e, nesting+1)
	}
}

// countBoolMix scores cond's AND/OR chain: +1 for the first operator
// sequence, +1 for every AND<->OR transition (SonarSource rule). NOT
// doesn't participate — its operand terminates the chain, matching
// spec.md §9's note that this mixing rule is otherwise unspecified.
func (w *complexityWalk) countBoolMix(cond ast.Expression) {
	ops := flattenBoolOps(cond)
	if len(ops) == 0 {
		return
	}
	w.cognitive++
	for i := 1; i < len(ops); i++ {
		if ops[i] != ops[i-1] {
			w.cognitive++
		}
	}
}

func flattenBoolOps(e ast.Expression) []ast.BinaryOp {
	bin, ok := e.(*ast.Binary)
	if !ok || (bin.Op != ast.BinAnd && bin.Op != ast.BinOr) {
		return nil
	}
	var ops []ast.BinaryOp
	ops = append(ops, flattenBoolOps(bin.Left)...)
	ops = append(ops, bin.Op)
	ops = append(ops, flattenBoolOps(bin.Right)...)
	return ops
}

// walkExpr records every AND/OR occurrence (for cyclomatic) and every
// distinct callee name (for fan-out) across the whole expression tree.
func (w *complexityWalk) walkExpr(e ast.Expression) {
	switch v := e.(type) {
	case *ast.Unary:
		w.walkExpr(v.Operand)
	case *ast.Binary:
		if v.Op == ast.BinAnd || v.Op == ast.BinOr {
			w.decisionPoints++
		}
		w.walkExpr(v.Left)
		w.walkExpr(v.Right)
	case *ast.Index:
		w.walkExpr(v.Array)
		w.walkExpr(v.Idx)
	case *ast.Call:
		w.callees[v.Name] = true
		for _, a := range v.Args {
			w.walkExpr(a)
		}
	case *ast.ArrayLit:
		for _, el := range v.Elements {
			w.walkExpr(el)
		}
	case *ast.StringLit:
		for _, seg := range v.Segments {
			if seg.Expr != nil {
				w.walkExpr(seg.Expr)
			}
		}
	}
}
