package optimizer

import (
	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/position"
)

// propagateBlock substitutes reads of names bound to a known scalar literal
// with that literal, scope being the set of bindings known constant on
// entry to b. Arrays are never tracked: only int/float/bool `let`/`const`
// initializers (and later assignments) that are themselves literals enter
// scope.
func propagateBlock(b *ast.Block, scope map[string]ast.Expression, stats *Stats) bool {
	changed := false
	for _, stmt := range b.Stmts {
		if propagateStmt(stmt, scope, stats) {
			changed = true
		}
	}
	return changed
}

func propagateStmt(stmt ast.Statement, scope map[string]ast.Expression, stats *Stats) bool {
	switch s := stmt.(type) {
	case *ast.Let:
		changed := propagateExprInPlace(&s.Init, scope, stats)
		if lit, ok := asKnownLiteral(s.Init); ok {
			scope[s.Name] = lit
		} else {
			delete(scope, s.Name)
		}
		return changed
	case *ast.Assign:
		changed := false
		if idx, ok := s.Target.(*ast.Index); ok {
			if propagateExprInPlace(&idx.Idx, scope, stats) {
				changed = true
			}
		}
		if propagateExprInPlace(&s.Value, scope, stats) {
			changed = true
		}
		switch target := s.Target.(type) {
		case *ast.Ident:
			if lit, ok := asKnownLiteral(s.Value); ok {
				scope[target.Name] = lit
			} else {
				delete(scope, target.Name)
			}
		case *ast.Index:
			if id, ok := target.Array.(*ast.Ident); ok {
				delete(scope, id.Name)
			}
		}
		return changed
	case *ast.If:
		changed := propagateExprInPlace(&s.Cond, scope, stats)
		thenScope := cloneScope(scope)
		if propagateBlock(s.Then, thenScope, stats) {
			changed = true
		}
		if s.Else != nil {
			elseScope := cloneScope(scope)
			if propagateStmt(s.Else, elseScope, stats) {
				changed = true
			}
		}
		assigned := map[string]bool{}
		collectAssignedStmt(s.Then, assigned)
		if s.Else != nil {
			collectAssignedStmt(s.Else, assigned)
		}
		invalidate(scope, assigned)
		return changed
	case *ast.While:
		changed := propagateExprInPlace(&s.Cond, scope, stats)
		assigned := map[string]bool{}
		collectAssignedStmt(s.Body, assigned)
		bodyScope := cloneScope(scope)
		invalidate(bodyScope, assigned)
		if propagateBlock(s.Body, bodyScope, stats) {
			changed = true
		}
		invalidate(scope, assigned)
		return changed
	case *ast.DoWhile:
		assigned := map[string]bool{}
		collectAssignedStmt(s.Body, assigned)
		bodyScope := cloneScope(scope)
		invalidate(bodyScope, assigned)
		changed := propagateBlock(s.Body, bodyScope, stats)
		if propagateExprInPlace(&s.Cond, bodyScope, stats) {
			changed = true
		}
		invalidate(scope, assigned)
		return changed
	case *ast.For:
		changed := false
		if s.Init != nil && propagateStmt(s.Init, scope, stats) {
			changed = true
		}
		assigned := map[string]bool{}
		collectAssignedStmt(s.Body, assigned)
		if s.Step != nil {
			collectAssignedStmt(s.Step, assigned)
		}
		loopScope := cloneScope(scope)
		invalidate(loopScope, assigned)
		if propagateExprInPlace(&s.Cond, loopScope, stats) {
			changed = true
		}
		if propagateBlock(s.Body, loopScope, stats) {
			changed = true
		}
		if s.Step != nil && propagateStmt(s.Step, loopScope, stats) {
			changed = true
		}
		invalidate(scope, assigned)
		return changed
	case *ast.Display:
		changed := false
		for i := range s.Args {
			if propagateExprInPlace(&s.Args[i], scope, stats) {
				changed = true
			}
		}
		return changed
	case *ast.Send:
		if s.Value == nil {
			return false
		}
		return propagateExprInPlace(&s.Value, scope, stats)
	case *ast.ExprStmt:
		return propagateExprInPlace(&s.Expr, scope, stats)
	case *ast.Block:
		return propagateBlock(s, scope, stats)
	default: // Break, Continue
		return false
	}
}

func propagateExprInPlace(e *ast.Expression, scope map[string]ast.Expression, stats *Stats) bool {
	switch v := (*e).(type) {
	case *ast.Ident:
		if lit, ok := scope[v.Name]; ok {
			*e = cloneLiteralAt(lit, v.Span())
			stats.ConstantsPropagated++
			return true
		}
		return false
	case *ast.Unary:
		return propagateExprInPlace(&v.Operand, scope, stats)
	case *ast.Binary:
		c1 := propagateExprInPlace(&v.Left, scope, stats)
		c2 := propagateExprInPlace(&v.Right, scope, stats)
		return c1 || c2
	case *ast.Index:
		c1 := propagateExprInPlace(&v.Array, scope, stats)
		c2 := propagateExprInPlace(&v.Idx, scope, stats)
		return c1 || c2
	case *ast.Call:
		changed := false
		for i := range v.Args {
			if propagateExprInPlace(&v.Args[i], scope, stats) {
				changed = true
			}
		}
		return changed
	case *ast.ArrayLit:
		changed := false
		for i := range v.Elements {
			if propagateExprInPlace(&v.Elements[i], scope, stats) {
				changed = true
			}
		}
		return changed
	case *ast.StringLit:
		changed := false
		for i := range v.Segments {
			if v.Segments[i].Expr == nil {
				continue
			}
			if propagateExprInPlace(&v.Segments[i].Expr, scope, stats) {
				changed = true
			}
		}
		return changed
	default:
		return false
	}
}

func asKnownLiteral(e ast.Expression) (ast.Expression, bool) {
	switch e.(type) {
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit:
		return e, true
	}
	return nil, false
}

func cloneLiteralAt(lit ast.Expression, span position.Span) ast.Expression {
	switch v := lit.(type) {
	case *ast.IntLit:
		return ast.NewIntLit(span, v.Value)
	case *ast.FloatLit:
		return ast.NewFloatLit(span, v.Value)
	case *ast.BoolLit:
		return ast.NewBoolLit(span, v.Value)
	}
	return lit
}

func cloneScope(scope map[string]ast.Expression) map[string]ast.Expression {
	out := make(map[string]ast.Expression, len(scope))
	for k, v := range scope {
		out[k] = v
	}
	return out
}

func invalidate(scope map[string]ast.Expression, names map[string]bool) {
	for name := range names {
		delete(scope, name)
	}
}

// collectAssignedStmt gathers every name that stmt (or anything nested
// inside it) binds via `let`/`const` or writes via `=`, used to narrow a
// propagation scope before entering a loop or branch body.
func collectAssignedStmt(stmt ast.Statement, out map[string]bool) {
	switch s := stmt.(type) {
	case *ast.Let:
		out[s.Name] = true
	case *ast.Assign:
		if id, ok := s.Target.(*ast.Ident); ok {
			out[id.Name] = true
		}
	case *ast.If:
		collectAssignedStmt(s.Then, out)
		if s.Else != nil {
			collectAssignedStmt(s.Else, out)
		}
	case *ast.While:
		collectAssignedStmt(s.Body, out)
	case *ast.DoWhile:
		collectAssignedStmt(s.Body, out)
	case *ast.For:
		if s.Init != nil {
			collectAssignedStmt(s.Init, out)
		}
		if s.Step != nil {
			collectAssignedStmt(s.Step, out)
		}
		collectAssignedStmt(s.Body, out)
	case *ast.Block:
		for _, st := range s.Stmts {
			collectAssignedStmt(st, out)
		}
	}
}
