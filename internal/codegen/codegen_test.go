package codegen

import (
	"strings"
	"testing"

	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/parser"
	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/typechecker"
)

func mustGenerate(t *testing.T, src string) string {
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
	if err := typechecker.Check(prog); err != nil {
		t.Fatalf("typecheck error: %v", err)
	}
	return Generate(prog)
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q; got:\n%s", want, out)
	}
}

// spec.md §8 scenario 1: a bare display of a string literal lowers to one
// printf call passing the literal as a %s argument, with a single trailing
// newline.
func TestHelloScenario(t *testing.T) {
	out := mustGenerate(t, `func main() { display "hi"; }`)
	requireContains(t, out, `printf("%s\n", "hi");`)
	requireContains(t, out, "int main(void)")
	requireContains(t, out, "return 0;")
}

// display with multiple arguments lowers to one printf per argument, with
// no separator between the calls and the trailing newline only on the last.
func TestDisplayMixesLiteralAndValue(t *testing.T) {
	out := mustGenerate(t, `func main() { let x: int = 2; display "x = ", x; }`)
	requireContains(t, out, `printf("%s", "x = ");`)
	requireContains(t, out, `printf("%lld\n", (long long)(_ml_x));`)
	if strings.Contains(out, `printf("x = %lld\n"`) {
		t.Errorf("display should emit one printf per argument, not a combined format string:\n%s", out)
	}
}

func TestStringInterpolationInsideDisplayFlattensIntoOnePrintf(t *testing.T) {
	out := mustGenerate(t, `func main() { let x: int = 3; display "x is {x}!"; }`)
	requireContains(t, out, `printf("%s%lld%s\n", "x is ", (long long)(_ml_x), "!");`)
}

// A string literal used outside display materializes via a scratch
// buffer rather than a direct C string literal, because it may embed a
// runtime value.
func TestInterpolatedStringOutsideDisplayUsesScratchBuffer(t *testing.T) {
	out := mustGenerate(t, `
func main() {
	let x: int = 1;
	let s: string = "n={x}";
	display s;
}
`)
	requireContains(t, out, "char _ml_buf0[256];")
	requireContains(t, out, `snprintf(_ml_buf0+strlen(_ml_buf0), sizeof(_ml_buf0)-strlen(_ml_buf0), "%s", "n=");`)
	requireContains(t, out, `snprintf(_ml_buf0+strlen(_ml_buf0), sizeof(_ml_buf0)-strlen(_ml_buf0), "%lld", (long long)(_ml_x));`)
}

// A plain, non-interpolated string literal lowers straight to a C string
// literal; no buffer is allocated for it.
func TestPlainStringLiteralIsDirectCString(t *testing.T) {
	out := mustGenerate(t, `func main() { let s: string = "hi"; display s; }`)
	requireContains(t, out, `const char * _ml_s = "hi";`)
	if strings.Contains(out, "_ml_buf0") {
		t.Errorf("plain string literal should not allocate a scratch buffer:\n%s", out)
	}
}

// String equality must compare contents, not the const char * pointers
// MiniLang strings lower to.
func TestStringEqualityUsesStrcmp(t *testing.T) {
	out := mustGenerate(t, `
func main() {
	let a: string = "x";
	let b: string = "y";
	if a == b { display "eq"; }
}
`)
	requireContains(t, out, "strcmp(_ml_a, _ml_b) == 0")
}

func TestArrayDeclarationPeelsDimensions(t *testing.T) {
	out := mustGenerate(t, `func main() { let a: int[3] = [1, 2, 3]; display a[0]; }`)
	requireContains(t, out, "long long _ml_a[3] = {1LL, 2LL, 3LL};")
}

func TestForLoopLowersToNativeCFor(t *testing.T) {
	out := mustGenerate(t, `
func main() {
	let sum: int = 0;
	let i: int = 0;
	for i = 0; i < 5; i = i + 1 {
		if i == 2 { continue; }
		sum = sum + i;
	}
	display sum;
}
`)
	requireContains(t, out, "for (_ml_i = 0LL; (_ml_i < 5LL); _ml_i = (_ml_i + 1LL)) {")
	requireContains(t, out, "continue;")
}

func TestFunctionSignatureAndCall(t *testing.T) {
	out := mustGenerate(t, `
func add(a: int, b: int) -> int { send a + b; }
func main() { display add(1, 2); }
`)
	requireContains(t, out, "long long _ml_add(long long _ml_a, long long _ml_b);")
	requireContains(t, out, "long long _ml_add(long long _ml_a, long long _ml_b) {")
	requireContains(t, out, "return ((_ml_a + _ml_b));")
	requireContains(t, out, "_ml_add(1LL, 2LL)")
}

func TestBooleanDisplayRendersTrueFalseStrings(t *testing.T) {
	out := mustGenerate(t, `func main() { display true; }`)
	requireContains(t, out, `printf("%s\n", ((true) ? "true" : "false"));`)
}

func TestNegativeIntLiteralCompiles(t *testing.T) {
	out := mustGenerate(t, `func main() { let x: int = -5; display x; }`)
	requireContains(t, out, "long long _ml_x = (-(5LL));")
}

// Generating the same program twice yields byte-identical C.
func TestGenerateIsDeterministic(t *testing.T) {
	src := `func main() { display "hi"; }`
	out1 := mustGenerate(t, src)
	out2 := mustGenerate(t, src)
	if out1 != out2 {
		t.Errorf("Generate is not deterministic across runs")
	}
}
