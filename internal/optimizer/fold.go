package optimizer

import "github.com/minilang-org/minicc/internal/ast"

// foldBlock folds every statement in b, returning whether anything changed.
func foldBlock(b *ast.Block, stats *Stats) bool {
	changed := false
	for _, stmt := range b.Stmts {
		if foldStmt(stmt, stats) {
			changed = true
		}
	}
	return changed
}

func foldStmt(stmt ast.Statement, stats *Stats) bool {
	changed := false
	switch s := stmt.(type) {
	case *ast.Let:
		s.Init, changed = foldExpr(s.Init, stats)
	case *ast.Assign:
		var c1, c2 bool
		s.Target, c1 = foldExpr(s.Target, stats)
		s.Value, c2 = foldExpr(s.Value, stats)
		changed = c1 || c2
	case *ast.If:
		var c1 bool
		s.Cond, c1 = foldExpr(s.Cond, stats)
		c2 := foldBlock(s.Then, stats)
		c3 := false
		if s.Else != nil {
			c3 = foldStmt(s.Else, stats)
		}
		changed = c1 || c2 || c3
	case *ast.While:
		var c1 bool
		s.Cond, c1 = foldExpr(s.Cond, stats)
		c2 := foldBlock(s.Body, stats)
		changed = c1 || c2
	case *ast.DoWhile:
		c1 := foldBlock(s.Body, stats)
		var c2 bool
		s.Cond, c2 = foldExpr(s.Cond, stats)
		changed = c1 || c2
	case *ast.For:
		c1 := foldStmt(s.Init, stats)
		var c2 bool
		s.Cond, c2 = foldExpr(s.Cond, stats)
		c3 := foldStmt(s.Step, stats)
		c4 := foldBlock(s.Body, stats)
		changed = c1 || c2 || c3 || c4
	case *ast.Display:
		for i, arg := range s.Args {
			var c bool
			s.Args[i], c = foldExpr(arg, stats)
			changed = changed || c
		}
	case *ast.Send:
		if s.Value != nil {
			s.Value, changed = foldExpr(s.Value, stats)
		}
	case *ast.ExprStmt:
		s.Expr, changed = foldExpr(s.Expr, stats)
	case *ast.Block:
		changed = foldBlock(s, stats)
	}
	return changed
}

// foldExpr recursively folds e's children, then attempts to combine e
// itself into a literal if all its operands are now literals.
func foldExpr(e ast.Expression, stats *Stats) (ast.Expression, bool) {
	switch v := e.(type) {
	case *ast.Unary:
		operand, c1 := foldExpr(v.Operand, stats)
		v.Operand = operand
		if folded, ok := combineUnary(v); ok {
			stats.ConstantsFolded++
			return folded, true
		}
		return v, c1
	case *ast.Binary:
		left, c1 := foldExpr(v.Left, stats)
		right, c2 := foldExpr(v.Right, stats)
		v.Left, v.Right = left, right
		if folded, ok := combineBinary(v); ok {
			stats.ConstantsFolded++
			return folded, true
		}
		return v, c1 || c2
	case *ast.Index:
		arr, c1 := foldExpr(v.Array, stats)
		idx, c2 := foldExpr(v.Idx, stats)
		v.Array, v.Idx = arr, idx
		return v, c1 || c2
	case *ast.Call:
		changed := false
		for i, arg := range v.Args {
			var c bool
			v.Args[i], c = foldExpr(arg, stats)
			changed = changed || c
		}
		return v, changed
	case *ast.ArrayLit:
		changed := false
		for i, el := range v.Elements {
			var c bool
			v.Elements[i], c = foldExpr(el, stats)
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
			v.Segments[i].Expr, c = foldExpr(v.Segments[i].Expr, stats)
			changed = changed || c
		}
		return v, changed
	default:
		return e, false
	}
}

func asInt(e ast.Expression) (int64, bool) {
	if v, ok := e.(*ast.IntLit); ok {
		return v.Value, true
	}
	return 0, false
}

func asFloat(e ast.Expression) (float64, bool) {
	if v, ok := e.(*ast.FloatLit); ok {
		return v.Value, true
	}
	return 0, false
}

func asBool(e ast.Expression) (bool, bool) {
	if v, ok := e.(*ast.BoolLit); ok {
		return v.Value, true
	}
	return false, false
}

// combineUnary evaluates v if its operand is a literal.
func combineUnary(v *ast.Unary) (ast.Expression, bool) {
	switch v.Op {
	case ast.UnaryNeg:
		if i, ok := asInt(v.Operand); ok {
			return ast.NewIntLit(v.Span(), -i), true
		}
		if f, ok := asFloat(v.Operand); ok {
			return ast.NewFloatLit(v.Span(), -f), true
		}
	case ast.UnaryNot:
		if b, ok := asBool(v.Operand); ok {
			return ast.NewBoolLit(v.Span(), !b), true
		}
	}
	return nil, false
}

// combineBinary evaluates v when both operands are literals, or applies
// the AND/OR short-circuit rule on the left operand alone (spec.md §4.4:
// "false AND x → false, true OR x → true", left-to-right order preserved).
func combineBinary(v *ast.Binary) (ast.Expression, bool) {
	if v.Op == ast.BinAnd {
		if lb, ok := asBool(v.Left); ok && !lb {
			return ast.NewBoolLit(v.Span(), false), true
		}
	}
	if v.Op == ast.BinOr {
		if lb, ok := asBool(v.Left); ok && lb {
			return ast.NewBoolLit(v.Span(), true), true
		}
	}

	if li, lok := asInt(v.Left); lok {
		if ri, rok := asInt(v.Right); rok {
			return combineIntInt(v, li, ri)
		}
	}
	if lf, lok := asFloat(v.Left); lok {
		if rf, rok := asFloat(v.Right); rok {
			return combineFloatFloat(v, lf, rf)
		}
	}
	if lb, lok := asBool(v.Left); lok {
		if rb, rok := asBool(v.Right); rok {
			return combineBoolBool(v, lb, rb)
		}
	}
	return nil, false
}

func combineIntInt(v *ast.Binary, l, r int64) (ast.Expression, bool) {
	switch v.Op {
	case ast.BinAdd:
		return ast.NewIntLit(v.Span(), l+r), true
	case ast.BinSub:
		return ast.NewIntLit(v.Span(), l-r), true
	case ast.BinMul:
		return ast.NewIntLit(v.Span(), l*r), true
	case ast.BinDiv:
		if r == 0 {
			return nil, false // runtime-only behaviour; never fold a divide by zero
		}
		return ast.NewIntLit(v.Span(), l/r), true
	case ast.BinMod:
		if r == 0 {
			return nil, false
		}
		return ast.NewIntLit(v.Span(), l%r), true
	case ast.BinEq:
		return ast.NewBoolLit(v.Span(), l == r), true
	case ast.BinNe:
		return ast.NewBoolLit(v.Span(), l != r), true
	case ast.BinLt:
		return ast.NewBoolLit(v.Span(), l < r), true
	case ast.BinGt:
		return ast.NewBoolLit(v.Span(), l > r), true
	case ast.BinLe:
		return ast.NewBoolLit(v.Span(), l <= r), true
	case ast.BinGe:
		return ast.NewBoolLit(v.Span(), l >= r), true
	case ast.BinShl:
		return ast.NewIntLit(v.Span(), l<<uint(r)), true
	}
	return nil, false
}

func combineFloatFloat(v *ast.Binary, l, r float64) (ast.Expression, bool) {
	switch v.Op {
	case ast.BinAdd:
		return ast.NewFloatLit(v.Span(), l+r), true
	case ast.BinSub:
		return ast.NewFloatLit(v.Span(), l-r), true
	case ast.BinMul:
		return ast.NewFloatLit(v.Span(), l*r), true
	case ast.BinDiv:
		return ast.NewFloatLit(v.Span(), l/r), true
	case ast.BinEq:
		return ast.NewBoolLit(v.Span(), l == r), true
	case ast.BinNe:
		return ast.NewBoolLit(v.Span(), l != r), true
	case ast.BinLt:
		return ast.NewBoolLit(v.Span(), l < r), true
	case ast.BinGt:
		return ast.NewBoolLit(v.Span(), l > r), true
	case ast.BinLe:
		return ast.NewBoolLit(v.Span(), l <= r), true
	case ast.BinGe:
		return ast.NewBoolLit(v.Span(), l >= r), true
	}
	return nil, false
}

func combineBoolBool(v *ast.Binary, l, r bool) (ast.Expression, bool) {
	switch v.Op {
	case ast.BinAnd:
		return ast.NewBoolLit(v.Span(), l && r), true
	case ast.BinOr:
		return ast.NewBoolLit(v.Span(), l || r), true
	case ast.BinEq:
		return ast.NewBoolLit(v.Span(), l == r), true
	case ast.BinNe:
		return ast.NewBoolLit(v.Span(), l != r), true
	}
	return nil, false
}
