package parser

import (
	"testing"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/position"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	s := position.NewSource("t.mini", src)
	toks, err := lexer.Tokenize(s)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestParseHelloFunction(t *testing.T) {
	prog := parseProgram(t, `func main() { display "hi"; }`)
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Body.Stmts))
	}
	disp, ok := fn.Body.Stmts[0].(*ast.Display)
	if !ok {
		t.Fatalf("got %T, want *ast.Display", fn.Body.Stmts[0])
	}
	if len(disp.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(disp.Args))
	}
}

func TestParseLetWithAnnotation(t *testing.T) {
	prog := parseProgram(t, `func main() { let x: int = 1 + 2 * 3; }`)
	let, ok := prog.Functions[0].Body.Stmts[0].(*ast.Let)
	if !ok {
		t.Fatalf("got %T", prog.Functions[0].Body.Stmts[0])
	}
	if let.Name != "x" || let.Annotation == nil || let.Annotation.Base != "int" {
		t.Errorf("got %+v", let)
	}
	bin, ok := let.Init.(*ast.Binary)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("expected top-level '+', got %+v", let.Init)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.BinMul {
		t.Fatalf("expected '*' nested under '+' (precedence), got %+v", bin.Right)
	}
}

func TestParseConstBindingIsAdditive(t *testing.T) {
	prog := parseProgram(t, `func main() { const pi: float = 3.0; }`)
	let, ok := prog.Functions[0].Body.Stmts[0].(*ast.Let)
	if !ok || !let.Const {
		t.Fatalf("got %+v, want Const Let", let)
	}
}

func TestParseIfElseIfChain(t *testing.T) {
	prog := parseProgram(t, `func main() { if true { display "a"; } else if false { display "b"; } else { display "c"; } }`)
	ifStmt, ok := prog.Functions[0].Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("got %T", prog.Functions[0].Body.Stmts[0])
	}
	elseIf, ok := ifStmt.Else.(*ast.If)
	if !ok {
		t.Fatalf("else branch should be nested If, got %T", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.Block); !ok {
		t.Fatalf("final else should be Block, got %T", elseIf.Else)
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, `func main() { for i = 0; i < 10; i = i + 1 { display i; } }`)
	forStmt, ok := prog.Functions[0].Body.Stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("got %T", prog.Functions[0].Body.Stmts[0])
	}
	if _, ok := forStmt.Init.Target.(*ast.Ident); !ok {
		t.Errorf("for-init target should be Ident, got %T", forStmt.Init.Target)
	}
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	prog := parseProgram(t, `func main() { let a: int[3] = [1, 2, 3]; let b: int = a[0]; }`)
	let := prog.Functions[0].Body.Stmts[0].(*ast.Let)
	if let.Annotation.ArrLen[0] != 3 {
		t.Errorf("array len = %v, want [3]", let.Annotation.ArrLen)
	}
	arr, ok := let.Init.(*ast.ArrayLit)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("got %+v", let.Init)
	}
	let2 := prog.Functions[0].Body.Stmts[1].(*ast.Let)
	idx, ok := let2.Init.(*ast.Index)
	if !ok {
		t.Fatalf("got %T, want *ast.Index", let2.Init)
	}
	if _, ok := idx.Array.(*ast.Ident); !ok {
		t.Errorf("index target should be Ident")
	}
}

func TestParseCallExpression(t *testing.T) {
	prog := parseProgram(t, `func add(a: int, b: int) -> int { send a + b; } func main() { let x: int = add(1, 2); }`)
	let := prog.Functions[1].Body.Stmts[0].(*ast.Let)
	call, ok := let.Init.(*ast.Call)
	if !ok || call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("got %+v", let.Init)
	}
}

func TestParseInterpolatedStringLiteral(t *testing.T) {
	prog := parseProgram(t, `func main() { display "a{1+1}b"; }`)
	disp := prog.Functions[0].Body.Stmts[0].(*ast.Display)
	sl, ok := disp.Args[0].(*ast.StringLit)
	if !ok {
		t.Fatalf("got %T", disp.Args[0])
	}
	if len(sl.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(sl.Segments))
	}
	if sl.Segments[0].Text != "a" || sl.Segments[2].Text != "b" {
		t.Errorf("got %+v", sl.Segments)
	}
	if sl.Segments[1].Expr == nil {
		t.Error("middle segment should carry an expression")
	}
}

func TestOperatorPrecedenceOrAndNot(t *testing.T) {
	// OR < AND < NOT (unary binds tighter than both).
	prog := parseProgram(t, `func main() { if true OR false AND NOT true { display "x"; } }`)
	ifStmt := prog.Functions[0].Body.Stmts[0].(*ast.If)
	top, ok := ifStmt.Cond.(*ast.Binary)
	if !ok || top.Op != ast.BinOr {
		t.Fatalf("expected top-level OR, got %+v", ifStmt.Cond)
	}
	rhs, ok := top.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.BinAnd {
		t.Fatalf("expected AND nested under OR, got %+v", top.Right)
	}
	if _, ok := rhs.Right.(*ast.Unary); !ok {
		t.Fatalf("expected NOT nested under AND, got %+v", rhs.Right)
	}
}

func TestBadArrayLenRejectsZero(t *testing.T) {
	s := position.NewSource("t.mini", `func main() { let a: int[0] = []; }`)
	toks, err := lexer.Tokenize(s)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = New(toks).ParseProgram()
	if err == nil {
		t.Fatal("expected BadArrayLen error")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != ErrBadArrayLen {
		t.Errorf("got %v, want BadArrayLen", err)
	}
}

func TestUnexpectedEOF(t *testing.T) {
	s := position.NewSource("t.mini", `func main() {`)
	toks, err := lexer.Tokenize(s)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	_, err = New(toks).ParseProgram()
	perr, ok := err.(*Error)
	if !ok || perr.Kind != ErrUnexpectedEOF {
		t.Errorf("got %v, want UnexpectedEof", err)
	}
}
