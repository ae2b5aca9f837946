package compiler

import (
	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/position"
)

// ProgramJSON renders prog as a deterministic JSON-able tree: every node is
// a map[string]any keyed by Go's encoding/json, which sorts map keys
// alphabetically on marshal, giving the "stable, sorted" AST rendering
// spec.md §9's design notes call for without a bespoke key-ordering pass.
func ProgramJSON(prog *ast.Program) map[string]any {
	functions := make([]any, 0, len(prog.Functions))
	for _, fn := range prog.Functions {
		functions = append(functions, functionJSON(fn))
	}
	return map[string]any{"functions": functions}
}

func spanJSON(s position.Span) map[string]any {
	return map[string]any{
		"start_line": s.Start.Line,
		"start_col":  s.Start.Column,
		"end_line":   s.End.Line,
		"end_col":    s.End.Column,
	}
}

func functionJSON(fn *ast.Function) map[string]any {
	params := make([]any, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, map[string]any{"name": p.Name, "type": typeAnnotationJSON(&p.Type)})
	}
	node := map[string]any{
		"kind":   "Function",
		"name":   fn.Name,
		"params": params,
		"body":   statementJSON(fn.Body),
		"span":   spanJSON(fn.Span()),
	}
	if fn.ReturnType != nil {
		node["return_type"] = typeAnnotationJSON(fn.ReturnType)
	}
	return node
}

func typeAnnotationJSON(t *ast.TypeAnnotation) map[string]any {
	return map[string]any{"base": t.Base, "array_lengths": t.ArrLen}
}

func statementJSON(stmt ast.Statement) map[string]any {
	switch s := stmt.(type) {
	case *ast.Block:
		stmts := make([]any, 0, len(s.Stmts))
		for _, inner := range s.Stmts {
			stmts = append(stmts, statementJSON(inner))
		}
		return withSpan(s, map[string]any{"kind": "Block", "statements": stmts})

	case *ast.Let:
		node := map[string]any{"kind": "Let", "name": s.Name, "const": s.Const, "init": exprJSON(s.Init)}
		if s.Annotation != nil {
			node["annotation"] = typeAnnotationJSON(s.Annotation)
		}
		return withSpan(s, node)

	case *ast.Assign:
		return withSpan(s, map[string]any{"kind": "Assign", "target": exprJSON(s.Target), "value": exprJSON(s.Value)})

	case *ast.If:
		node := map[string]any{"kind": "If", "cond": exprJSON(s.Cond), "then": statementJSON(s.Then)}
		if s.Else != nil {
			node["else"] = statementJSON(s.Else)
		}
		return withSpan(s, node)

	case *ast.While:
		return withSpan(s, map[string]any{"kind": "While", "cond": exprJSON(s.Cond), "body": statementJSON(s.Body)})

	case *ast.DoWhile:
		return withSpan(s, map[string]any{"kind": "DoWhile", "cond": exprJSON(s.Cond), "body": statementJSON(s.Body)})

	case *ast.For:
		return withSpan(s, map[string]any{
			"kind": "For",
			"init": statementJSON(s.Init),
			"cond": exprJSON(s.Cond),
			"step": statementJSON(s.Step),
			"body": statementJSON(s.Body),
		})

	case *ast.Display:
		args := make([]any, 0, len(s.Args))
		for _, a := range s.Args {
			args = append(args, exprJSON(a))
		}
		return withSpan(s, map[string]any{"kind": "Display", "args": args})

	case *ast.Send:
		node := map[string]any{"kind": "Send"}
		if s.Value != nil {
			node["value"] = exprJSON(s.Value)
		}
		return withSpan(s, node)

	case *ast.Break:
		return withSpan(s, map[string]any{"kind": "Break"})

	case *ast.Continue:
		return withSpan(s, map[string]any{"kind": "Continue"})

	case *ast.ExprStmt:
		return withSpan(s, map[string]any{"kind": "ExprStmt", "expr": exprJSON(s.Expr)})

	default:
		return map[string]any{"kind": "Unknown"}
	}
}

func withSpan(n ast.Node, m map[string]any) map[string]any {
	m["span"] = spanJSON(n.Span())
	return m
}

func exprJSON(e ast.Expression) map[string]any {
	base := map[string]any{"span": spanJSON(e.Span()), "type_of": e.TypeOf().String()}

	switch v := e.(type) {
	case *ast.IntLit:
		base["kind"] = "IntLit"
		base["value"] = v.Value
	case *ast.FloatLit:
		base["kind"] = "FloatLit"
		base["value"] = v.Value
	case *ast.BoolLit:
		base["kind"] = "BoolLit"
		base["value"] = v.Value
	case *ast.StringLit:
		base["kind"] = "StringLit"
		segs := make([]any, 0, len(v.Segments))
		for _, seg := range v.Segments {
			if seg.Expr != nil {
				segs = append(segs, map[string]any{"expr": exprJSON(seg.Expr)})
			} else {
				segs = append(segs, map[string]any{"text": seg.Text})
			}
		}
		base["segments"] = segs
	case *ast.Ident:
		base["kind"] = "Ident"
		base["name"] = v.Name
	case *ast.ArrayLit:
		base["kind"] = "ArrayLit"
		elems := make([]any, 0, len(v.Elements))
		for _, el := range v.Elements {
			elems = append(elems, exprJSON(el))
		}
		base["elements"] = elems
	case *ast.Index:
		base["kind"] = "Index"
		base["array"] = exprJSON(v.Array)
		base["index"] = exprJSON(v.Idx)
	case *ast.Call:
		base["kind"] = "Call"
		base["name"] = v.Name
		args := make([]any, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, exprJSON(a))
		}
		base["args"] = args
	case *ast.Unary:
		base["kind"] = "Unary"
		base["op"] = unaryOpString(v.Op)
		base["operand"] = exprJSON(v.Operand)
	case *ast.Binary:
		base["kind"] = "Binary"
		base["op"] = v.Op.String()
		base["left"] = exprJSON(v.Left)
		base["right"] = exprJSON(v.Right)
	default:
		base["kind"] = "Unknown"
	}
	return base
}

func unaryOpString(op ast.UnaryOp) string {
	if op == ast.UnaryNot {
		return "NOT"
	}
	return "-"
}
