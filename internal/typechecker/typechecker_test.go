package typechecker

import (
	"testing"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/parser"
	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	s := position.NewSource("t.mini", src)
	toks, err := lexer.Tokenize(s)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func TestCheckHelloSucceeds(t *testing.T) {
	prog := mustParse(t, `func main() { display "hi"; }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTypeOfFilledAfterCheck(t *testing.T) {
	prog := mustParse(t, `func main() { let x: int = 1 + 2; display x; }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	let := prog.Functions[0].Body.Stmts[0].(*ast.Let)
	if let.Init.TypeOf().Kind != types.Int {
		t.Errorf("TypeOf = %v, want Int", let.Init.TypeOf())
	}
}

func TestArrayLengthMismatchIsTypeMismatch(t *testing.T) {
	prog := mustParse(t, `func main() { let x: int[3] = [1,2]; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrTypeMismatch {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestMissingReturnOnPartialIf(t *testing.T) {
	prog := mustParse(t, `func f() -> int { if true { send 1; } } func main() { let x: int = f(); }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrMissingReturn {
		t.Fatalf("got %v, want MissingReturn", err)
	}
}

func TestMissingReturnSatisfiedByIfElse(t *testing.T) {
	prog := mustParse(t, `func f() -> int { if true { send 1; } else { send 2; } } func main() { let x: int = f(); }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	prog := mustParse(t, `func main() { break; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrBreakOutsideLoop {
		t.Fatalf("got %v, want BreakOutsideLoop", err)
	}
}

func TestBreakInsideWhileOK(t *testing.T) {
	prog := mustParse(t, `func main() { while true { break; } }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUndefinedName(t *testing.T) {
	prog := mustParse(t, `func main() { display y; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrUndefinedName {
		t.Fatalf("got %v, want UndefinedName", err)
	}
}

func TestDuplicateDeclSameScope(t *testing.T) {
	prog := mustParse(t, `func main() { let x: int = 1; let x: int = 2; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrDuplicateDecl {
		t.Fatalf("got %v, want DuplicateDecl", err)
	}
}

func TestShadowingInNestedScopeOK(t *testing.T) {
	prog := mustParse(t, `func main() { let x: int = 1; if true { let x: int = 2; display x; } display x; }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConstReassignmentRejected(t *testing.T) {
	prog := mustParse(t, `func main() { const x: int = 1; x = 2; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrConstReassignment {
		t.Fatalf("got %v, want ConstReassignment", err)
	}
}

func TestIndexOnNonArrayIsNotIndexable(t *testing.T) {
	prog := mustParse(t, `func main() { let x: int = 1; let y: int = x[0]; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrNotIndexable {
		t.Fatalf("got %v, want NotIndexable", err)
	}
}

func TestCallArityMismatch(t *testing.T) {
	prog := mustParse(t, `func f(a: int) -> int { send a; } func main() { let x: int = f(1, 2); }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrArityMismatch {
		t.Fatalf("got %v, want ArityMismatch", err)
	}
}

func TestConditionNotBool(t *testing.T) {
	prog := mustParse(t, `func main() { if 1 { display "x"; } }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrConditionNotBool {
		t.Fatalf("got %v, want ConditionNotBool", err)
	}
}

func TestModuloRequiresInt(t *testing.T) {
	prog := mustParse(t, `func main() { let x: float = 1.0 % 2.0; }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrTypeMismatch {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestForLoopWithExistingVariable(t *testing.T) {
	prog := mustParse(t, `func main() { let i: int = 0; for i = 0; i < 10; i = i + 1 { display i; } }`)
	if err := Check(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMainMustExist(t *testing.T) {
	prog := mustParse(t, `func f() { }`)
	err := Check(prog)
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrUndefinedName {
		t.Fatalf("got %v, want UndefinedName (missing main)", err)
	}
}
