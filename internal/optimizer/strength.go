package optimizer

import (
	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/position"
)

// reduceBlock rewrites arithmetic with one known-integer operand into a
// cheaper equivalent (spec.md §4.4's strength-reduction rules). It assumes
// folding already ran this iteration, so a node with two literal operands
// would already have collapsed to a single literal.
func reduceBlock(b *ast.Block, stats *Stats) bool {
	changed := false
	for _, stmt := range b.Stmts {
		if reduceStmt(stmt, stats) {
			changed = true
		}
	}
	return changed
}

func reduceStmt(stmt ast.Statement, stats *Stats) bool {
	changed := false
	switch s := stmt.(type) {
	case *ast.Let:
		s.Init, changed = reduceExpr(s.Init, stats)
	case *ast.Assign:
		var c1, c2 bool
		s.Target, c1 = reduceExpr(s.Target, stats)
		s.Value, c2 = reduceExpr(s.Value, stats)
		changed = c1 || c2
	case *ast.If:
		var c1 bool
		s.Cond, c1 = reduceExpr(s.Cond, stats)
		c2 := reduceBlock(s.Then, stats)
		c3 := false
		if s.Else != nil {
			c3 = reduceStmt(s.Else, stats)
		}
		changed = c1 || c2 || c3
	case *ast.While:
		var c1 bool
		s.Cond, c1 = reduceExpr(s.Cond, stats)
		c2 := reduceBlock(s.Body, stats)
		changed = c1 || c2
	case *ast.DoWhile:
		c1 := reduceBlock(s.Body, stats)
		var c2 bool
		s.Cond, c2 = reduceExpr(s.Cond, stats)
		changed = c1 || c2
	case *ast.For:
		c1 := reduceStmt(s.Init, stats)
		var c2 bool
		s.Cond, c2 = reduceExpr(s.Cond, stats)
		c3 := reduceStmt(s.Step, stats)
		c4 := reduceBlock(s.Body, stats)
		changed = c1 || c2 || c3 || c4
	case *ast.Display:
		for i, arg := range s.Args {
			var c bool
			s.Args[i], c = reduceExpr(arg, stats)
			changed = changed || c
		}
	case *ast.Send:
		if s.Value != nil {
			s.Value, changed = reduceExpr(s.Value, stats)
		}
	case *ast.ExprStmt:
		s.Expr, changed = reduceExpr(s.Expr, stats)
	case *ast.Block:
		changed = reduceBlock(s, stats)
	}
	return changed
}

func reduceExpr(e ast.Expression, stats *Stats) (ast.Expression, bool) {
	switch v := e.(type) {
	case *ast.Unary:
		operand, c := reduceExpr(v.Operand, stats)
		v.Operand = operand
		return v, c
	case *ast.Binary:
		left, c1 := reduceExpr(v.Left, stats)
		right, c2 := reduceExpr(v.Right, stats)
		v.Left, v.Right = left, right
		if reduced, ok := reduceBinary(v); ok {
			stats.StrengthReductions++
			return reduced, true
		}
		return v, c1 || c2
	case *ast.Index:
		arr, c1 := reduceExpr(v.Array, stats)
		idx, c2 := reduceExpr(v.Idx, stats)
		v.Array, v.Idx = arr, idx
		return v, c1 || c2
	case *ast.Call:
		changed := false
		for i, arg := range v.Args {
			var c bool
			v.Args[i], c = reduceExpr(arg, stats)
			changed = changed || c
		}
		return v, changed
	case *ast.ArrayLit:
		changed := false
		for i, el := range v.Elements {
			var c bool
			v.Elements[i], c = reduceExpr(el, stats)
			changed = changed || c
		}
		return v, changed
	case *ast.StringLit:
		changed := false
		for i := range v.Segments {
			if v.Segments[i].Expr == nil {
				continue
			}
			var c bool
			v.Segments[i].Expr, c = reduceExpr(v.Segments[i].Expr, stats)
			changed = changed || c
		}
		return v, changed
	default:
		return e, false
	}
}

// isPowerOfTwo reports whether n == 2^k for some k >= 0.
func isPowerOfTwo(n int64) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	k := 0
	for n > 1 {
		if n%2 != 0 {
			return 0, false
		}
		n /= 2
		k++
	}
	return k, true
}

// reduceBinary rewrites v into a cheaper equivalent when exactly one side
// is an integer literal. Float operands are left untouched: IEEE-754
// rounding means e.g. x*2.0 isn't always bit-identical to x+x.
func reduceBinary(v *ast.Binary) (ast.Expression, bool) {
	li, lLit := asInt(v.Left)
	ri, rLit := asInt(v.Right)
	if lLit && rLit {
		return nil, false // already folded by this point
	}

	switch v.Op {
	case ast.BinMul:
		if lLit {
			return reduceMul(v.Span(), li, v.Right)
		}
		if rLit {
			return reduceMul(v.Span(), ri, v.Left)
		}
	case ast.BinAdd:
		if lLit && li == 0 {
			return v.Right, true
		}
		if rLit && ri == 0 {
			return v.Left, true
		}
	case ast.BinSub:
		if rLit && ri == 0 {
			return v.Left, true
		}
		if lLit && li == 0 {
			return ast.NewUnary(v.Span(), ast.UnaryNeg, v.Right), true
		}
	case ast.BinDiv:
		if rLit && ri == 1 {
			return v.Left, true
		}
	case ast.BinMod:
		if rLit && ri == 1 {
			return ast.NewIntLit(v.Span(), 0), true
		}
	}
	return nil, false
}

func reduceMul(span position.Span, lit int64, other ast.Expression) (ast.Expression, bool) {
	switch lit {
	case 0:
		return ast.NewIntLit(span, 0), true
	case 1:
		return other, true
	case 2:
		return ast.NewBinary(span, ast.BinAdd, other, other), true
	}
	if k, ok := isPowerOfTwo(lit); ok {
		return ast.NewBinary(span, ast.BinShl, other, ast.NewIntLit(span, int64(k))), true
	}
	return nil, false
}
