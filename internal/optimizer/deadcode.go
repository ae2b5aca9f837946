package optimizer

import "github.com/minilang-org/minicc/internal/ast"

// deadCodeBlock prunes unreachable statements (anything after a Send,
// Break, or Continue), collapses If/While/DoWhile/For whose condition
// folded to a literal bool, and — at O2 only — drops `let`/`const`
// bindings nothing in the same block ever reads.
func deadCodeBlock(b *ast.Block, level Level, stats *Stats) bool {
	changed := false
	out := make([]ast.Statement, 0, len(b.Stmts))
	terminated := false

	for _, stmt := range b.Stmts {
		if terminated {
			stats.DeadCodeRemoved++
			changed = true
			continue
		}
		replacement, c := deadCodeStmt(stmt, level, stats)
		if c {
			changed = true
		}
		out = append(out, replacement...)
		if isTerminator(stmt) {
			terminated = true
		}
	}

	if level == O2 {
		var c bool
		out, c = eliminateUnusedLets(out, stats)
		if c {
			changed = true
		}
	}

	b.Stmts = out
	return changed
}

func isTerminator(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.Send, *ast.Break, *ast.Continue:
		return true
	}
	return false
}

func asBoolLit(e ast.Expression) (bool, bool) {
	if v, ok := e.(*ast.BoolLit); ok {
		return v.Value, true
	}
	return false, false
}

// deadCodeStmt rewrites a single statement into zero or more replacement
// statements (a slice so a collapsed If/DoWhile can splice its surviving
// branch's statements directly into the parent block).
func deadCodeStmt(stmt ast.Statement, level Level, stats *Stats) ([]ast.Statement, bool) {
	switch s := stmt.(type) {
	case *ast.If:
		c1 := deadCodeBlock(s.Then, level, stats)
		c2 := false
		switch e := s.Else.(type) {
		case *ast.Block:
			c2 = deadCodeBlock(e, level, stats)
		case *ast.If:
			rep, c := deadCodeStmt(e, level, stats)
			c2 = c
			switch len(rep) {
			case 0:
				s.Else = nil
			case 1:
				s.Else = rep[0]
			default:
				s.Else = ast.NewBlock(e.Span(), rep)
			}
		}
		if b, ok := asBoolLit(s.Cond); ok {
			stats.DeadCodeRemoved++
			if b {
				return s.Then.Stmts, true
			}
			if s.Else == nil {
				return nil, true
			}
			if eb, ok := s.Else.(*ast.Block); ok {
				return eb.Stmts, true
			}
			return []ast.Statement{s.Else}, true
		}
		return []ast.Statement{s}, c1 || c2
	case *ast.While:
		c := deadCodeBlock(s.Body, level, stats)
		if b, ok := asBoolLit(s.Cond); ok && !b {
			stats.DeadCodeRemoved++
			return nil, true
		}
		return []ast.Statement{s}, c
	case *ast.DoWhile:
		c := deadCodeBlock(s.Body, level, stats)
		if b, ok := asBoolLit(s.Cond); ok && !b && !containsBreakOrContinue(s.Body) {
			stats.DeadCodeRemoved++
			return s.Body.Stmts, true
		}
		return []ast.Statement{s}, c
	case *ast.For:
		c := deadCodeBlock(s.Body, level, stats)
		if b, ok := asBoolLit(s.Cond); ok && !b {
			stats.DeadCodeRemoved++
			if s.Init != nil {
				return []ast.Statement{s.Init}, true
			}
			return nil, true
		}
		return []ast.Statement{s}, c
	case *ast.Block:
		c := deadCodeBlock(s, level, stats)
		return []ast.Statement{s}, c
	default:
		return []ast.Statement{stmt}, false
	}
}

func containsBreakOrContinue(b *ast.Block) bool {
	for _, stmt := range b.Stmts {
		if containsBreakOrContinueStmt(stmt) {
			return true
		}
	}
	return false
}

func containsBreakOrContinueStmt(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.Break, *ast.Continue:
		return true
	case *ast.Block:
		return containsBreakOrContinue(s)
	case *ast.If:
		if containsBreakOrContinue(s.Then) {
			return true
		}
		return s.Else != nil && containsBreakOrContinueStmt(s.Else)
	}
	return false
}

// eliminateUnusedLets drops `let`/`const` bindings with no reads anywhere
// else in stmts, as long as dropping the initializer can't skip a
// function call's side effect.
func eliminateUnusedLets(stmts []ast.Statement, stats *Stats) ([]ast.Statement, bool) {
	uses := map[string]bool{}
	for _, stmt := range stmts {
		identReadsInStmt(stmt, uses)
	}

	changed := false
	out := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		if let, ok := stmt.(*ast.Let); ok && !uses[let.Name] && !exprHasCall(let.Init) {
			stats.DeadCodeRemoved++
			changed = true
			continue
		}
		out = append(out, stmt)
	}
	return out, changed
}

func exprHasCall(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Call:
		return true
	case *ast.Unary:
		return exprHasCall(v.Operand)
	case *ast.Binary:
		return exprHasCall(v.Left) || exprHasCall(v.Right)
	case *ast.Index:
		return exprHasCall(v.Array) || exprHasCall(v.Idx)
	case *ast.ArrayLit:
		for _, el := range v.Elements {
			if exprHasCall(el) {
				return true
			}
		}
	case *ast.StringLit:
		for _, seg := range v.Segments {
			if seg.Expr != nil && exprHasCall(seg.Expr) {
				return true
			}
		}
	}
	return false
}

func identReadsInStmt(stmt ast.Statement, out map[string]bool) {
	switch s := stmt.(type) {
	case *ast.Let:
		identReadsInExpr(s.Init, out)
	case *ast.Assign:
		identReadsInExpr(s.Target, out)
		identReadsInExpr(s.Value, out)
	case *ast.If:
		identReadsInExpr(s.Cond, out)
		for _, st := range s.Then.Stmts {
			identReadsInStmt(st, out)
		}
		if s.Else != nil {
			identReadsInStmt(s.Else, out)
		}
	case *ast.While:
		identReadsInExpr(s.Cond, out)
		for _, st := range s.Body.Stmts {
			identReadsInStmt(st, out)
		}
	case *ast.DoWhile:
		for _, st := range s.Body.Stmts {
			identReadsInStmt(st, out)
		}
		identReadsInExpr(s.Cond, out)
	case *ast.For:
		if s.Init != nil {
			identReadsInStmt(s.Init, out)
		}
		identReadsInExpr(s.Cond, out)
		if s.Step != nil {
			identReadsInStmt(s.Step, out)
		}
		for _, st := range s.Body.Stmts {
			identReadsInStmt(st, out)
		}
	case *ast.Display:
		for _, arg := range s.Args {
			identReadsInExpr(arg, out)
		}
	case *ast.Send:
		if s.Value != nil {
			identReadsInExpr(s.Value, out)
		}
	case *ast.ExprStmt:
		identReadsInExpr(s.Expr, out)
	case *ast.Block:
		for _, st := range s.Stmts {
			identReadsInStmt(st, out)
		}
	}
}

func identReadsInExpr(e ast.Expression, out map[string]bool) {
	switch v := e.(type) {
	case *ast.Ident:
		out[v.Name] = true
	case *ast.Unary:
		identReadsInExpr(v.Operand, out)
	case *ast.Binary:
		identReadsInExpr(v.Left, out)
		identReadsInExpr(v.Right, out)
	case *ast.Index:
		identReadsInExpr(v.Array, out)
		identReadsInExpr(v.Idx, out)
	case *ast.Call:
		for _, arg := range v.Args {
			identReadsInExpr(arg, out)
		}
	case *ast.ArrayLit:
		for _, el := range v.Elements {
			identReadsInExpr(el, out)
		}
	case *ast.StringLit:
		for _, seg := range v.Segments {
			if seg.Expr != nil {
				identReadsInExpr(seg.Expr, out)
			}
		}
	}
}
