package lexer

import (
	"testing"

	"github.com/minilang-org/minicc/internal/position"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := New(position.NewSource("t.mini", src))
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Kind == KindEOF {
			return toks
		}
	}
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := lexAll(t, "func let const x")
	want := []Kind{KindKeyword, KindKeyword, KindKeyword, KindIdentifier, KindEOF}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[3].Literal != "x" {
		t.Errorf("literal = %q, want x", toks[3].Literal)
	}
}

func TestNumbers(t *testing.T) {
	toks := lexAll(t, "42 3.14")
	if toks[0].Kind != KindIntLiteral || toks[0].Literal != "42" {
		t.Errorf("got %v", toks[0])
	}
	if toks[1].Kind != KindFloatLiteral || toks[1].Literal != "3.14" {
		t.Errorf("got %v", toks[1])
	}
}

func TestMalformedNumberIsError(t *testing.T) {
	l := New(position.NewSource("t.mini", "42abc"))
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected error")
	}
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != ErrMalformedNumber {
		t.Errorf("got %v, want ErrMalformedNumber", err)
	}
}

func TestOperatorLongestMatch(t *testing.T) {
	toks := lexAll(t, "== != <= >= -> = < > - +")
	wantLits := []string{"==", "!=", "<=", ">=", "->", "=", "<", ">", "-", "+"}
	for i, lit := range wantLits {
		if toks[i].Kind != KindOperator || toks[i].Literal != lit {
			t.Errorf("token %d: got %v, want operator %q", i, toks[i], lit)
		}
	}
}

func TestLineComment(t *testing.T) {
	toks := lexAll(t, "let # trailing comment\nx")
	if toks[0].Kind != KindKeyword || toks[1].Kind != KindIdentifier || toks[1].Literal != "x" {
		t.Errorf("got %v", toks)
	}
}

func TestBlockComment(t *testing.T) {
	toks := lexAll(t, "let ## this is\na block ## x")
	if toks[0].Kind != KindKeyword || toks[1].Kind != KindIdentifier || toks[1].Literal != "x" {
		t.Errorf("got %v", toks)
	}
}

// A doubled '#' always closes the currently-open block comment, it never
// nests — see DESIGN.md's Open Question decision.
func TestBlockCommentDoesNotNest(t *testing.T) {
	toks := lexAll(t, "## outer ## x ## still comment ## y")
	if toks[0].Kind != KindIdentifier || toks[0].Literal != "x" {
		t.Errorf("got %v, want identifier x first", toks[0])
	}
	if toks[1].Kind != KindIdentifier || toks[1].Literal != "y" {
		t.Errorf("got %v, want identifier y second", toks[1])
	}
}

func TestSimpleString(t *testing.T) {
	toks := lexAll(t, `"hello"`)
	want := []Kind{KindStringInterpOpen, KindInterpText, KindStringInterpClose, KindEOF}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[1].Literal != "hello" {
		t.Errorf("text = %q, want hello", toks[1].Literal)
	}
}

func TestEmptyString(t *testing.T) {
	toks := lexAll(t, `""`)
	want := []Kind{KindStringInterpOpen, KindStringInterpClose, KindEOF}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInterpolatedString(t *testing.T) {
	toks := lexAll(t, `"a{b}c"`)
	want := []Kind{
		KindStringInterpOpen, KindInterpText, KindPunctuator,
		KindIdentifier, KindPunctuator, KindInterpText, KindStringInterpClose, KindEOF,
	}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[1].Literal != "a" || toks[2].Literal != "{" || toks[3].Literal != "b" ||
		toks[4].Literal != "}" || toks[5].Literal != "c" {
		t.Errorf("got %v", toks)
	}
}

func TestInterpolatedStringLeadingBrace(t *testing.T) {
	toks := lexAll(t, `"{n}"`)
	want := []Kind{KindStringInterpOpen, KindPunctuator, KindIdentifier, KindPunctuator, KindStringInterpClose, KindEOF}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNestedStringInsideInterpolation(t *testing.T) {
	toks := lexAll(t, `"a{"b{c}d"}e"`)
	var lits []string
	for _, tok := range toks {
		lits = append(lits, tok.Literal)
	}
	want := []string{`"`, "a", "{", `"`, "b", "{", "c", "}", "d", `"`, "}", "e", `"`, ""}
	if len(lits) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(lits), lits, len(want))
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, lits[i], want[i])
		}
	}
}

func TestStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\tc\\d\"e\{f"`)
	if toks[1].Literal != "a\nb\tc\\d\"e{f" {
		t.Errorf("got %q", toks[1].Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(position.NewSource("t.mini", `"abc`))
	l.Next() // open
	_, err := l.Next()
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != ErrUnterminatedString {
		t.Errorf("got %v, want ErrUnterminatedString", err)
	}
}

func TestBadEscape(t *testing.T) {
	l := New(position.NewSource("t.mini", `"a\qb"`))
	l.Next() // open
	_, err := l.Next()
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != ErrBadEscape {
		t.Errorf("got %v, want ErrBadEscape", err)
	}
}

func TestUnexpectedChar(t *testing.T) {
	l := New(position.NewSource("t.mini", "@"))
	_, err := l.Next()
	lexErr, ok := err.(*Error)
	if !ok || lexErr.Kind != ErrUnexpectedChar {
		t.Errorf("got %v, want ErrUnexpectedChar", err)
	}
}

func TestPunctuators(t *testing.T) {
	toks := lexAll(t, "( ) [ ] , ; :")
	want := []string{"(", ")", "[", "]", ",", ";", ":"}
	for i, lit := range want {
		if toks[i].Kind != KindPunctuator || toks[i].Literal != lit {
			t.Errorf("token %d: got %v, want punctuator %q", i, toks[i], lit)
		}
	}
}

func TestSpansAdvanceAcrossLines(t *testing.T) {
	toks := lexAll(t, "let\nx")
	if toks[0].Span.Start.Line != 1 {
		t.Errorf("let line = %d, want 1", toks[0].Span.Start.Line)
	}
	if toks[1].Span.Start.Line != 2 {
		t.Errorf("x line = %d, want 2", toks[1].Span.Start.Line)
	}
}

func sameKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
