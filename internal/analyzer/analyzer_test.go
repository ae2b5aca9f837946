package analyzer

import (
	"testing"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/parser"
	"github.com/minilang-org/minicc/internal/position"
)

func mustAnalyzeSetup(t *testing.T, src string) (*ast.Program, []lexer.Token) {
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
	return prog, toks
}

func findFunc(prog *ast.Program, name string) *ast.Function {
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// spec.md §8 scenario 6: one `if`, one `while`, one `AND` -> cyclomatic 4.
func TestCyclomaticScenario(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `
func f(a: bool, b: bool) -> int {
	if a AND b { display "x"; }
	while a { break; }
	send 1;
}
func main() { display f(true, true); }
`)
	m := AnalyzeFunction(findFunc(prog, "f"), toks)
	if m.Cyclomatic != 4 {
		t.Errorf("Cyclomatic = %d, want 4", m.Cyclomatic)
	}
}

// spec.md §8 scenario 6: depth-4 nesting reports the depth warning and a
// rating of C or worse.
func TestDeepNestingWarningAndRating(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `
func g(a: bool, b: bool) {
	if a AND b {
		if a AND b {
			if a AND b {
				if a AND b {
					display "x";
				}
			}
		}
	}
}
func main() { g(true, true); }
`)
	m := AnalyzeFunction(findFunc(prog, "g"), toks)
	if m.MaxNestingDepth != 4 {
		t.Errorf("MaxNestingDepth = %d, want 4", m.MaxNestingDepth)
	}
	foundDepthWarning := false
	for _, w := range m.Warnings {
		if w == "nesting depth exceeds 3" {
			foundDepthWarning = true
		}
	}
	if !foundDepthWarning {
		t.Errorf("Warnings = %v, want a nesting-depth warning", m.Warnings)
	}
	if ratingRank[m.Rating] < ratingRank[RatingC] {
		t.Errorf("Rating = %v, want C or worse", m.Rating)
	}
}

func TestFanOutCountsDistinctCallees(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `
func a() -> int { send 1; }
func b() -> int { send 2; }
func main() { let x: int = a() + a() + b(); display x; }
`)
	m := AnalyzeFunction(findFunc(prog, "main"), toks)
	if m.FanOut != 2 {
		t.Errorf("FanOut = %d, want 2 (a, b)", m.FanOut)
	}
}

// spec.md §8 invariant: "For programs without calls, fan_out = 0 for
// every function."
func TestFanOutZeroWithoutCalls(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `func main() { let x: int = 1 + 2; display x; }`)
	m := AnalyzeFunction(findFunc(prog, "main"), toks)
	if m.FanOut != 0 {
		t.Errorf("FanOut = %d, want 0", m.FanOut)
	}
}

func TestSimpleFunctionRatesA(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `func main() { display "hi"; }`)
	m := AnalyzeFunction(findFunc(prog, "main"), toks)
	if m.Rating != RatingA {
		t.Errorf("Rating = %v, want A", m.Rating)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", m.Warnings)
	}
}

// spec.md §8 invariant: "ProgramTotals.overall_rating equals the worst
// FunctionMetrics.rating."
func TestProgramTotalsOverallRatingIsWorst(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `
func g(a: bool, b: bool) {
	if a AND b {
		if a AND b {
			if a AND b {
				if a AND b {
					display "x";
				}
			}
		}
	}
}
func main() { g(true, true); }
`)
	functions, totals := AnalyzeProgram(prog, toks)
	if totals.TotalFunctions != len(functions) {
		t.Fatalf("TotalFunctions = %d, want %d", totals.TotalFunctions, len(functions))
	}
	worst := RatingA
	for _, f := range functions {
		worst = worseRating(worst, f.Rating)
	}
	if totals.OverallRating != worst {
		t.Errorf("OverallRating = %v, want %v", totals.OverallRating, worst)
	}
}

func TestHalsteadCountsAreConsistent(t *testing.T) {
	prog, toks := mustAnalyzeSetup(t, `func main() { let x: int = 1 + 2 * 3; display x; }`)
	m := AnalyzeFunction(findFunc(prog, "main"), toks)
	h := m.Halstead
	if h.N1 == 0 || h.N2 == 0 {
		t.Fatalf("expected nonzero distinct operators/operands, got %+v", h)
	}
	if h.Vocabulary != h.N1+h.N2 {
		t.Errorf("Vocabulary = %d, want %d", h.Vocabulary, h.N1+h.N2)
	}
	if h.Length != h.TotalN1+h.TotalN2 {
		t.Errorf("Length = %d, want %d", h.Length, h.TotalN1+h.TotalN2)
	}
	if h.Volume <= 0 {
		t.Errorf("Volume = %f, want > 0", h.Volume)
	}
}
