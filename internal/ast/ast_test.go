package ast

import (
	"testing"

	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/types"
)

func dummySpan() position.Span {
	src := position.NewSource("t.mini", "let x = 1;")
	return src.Span(0, 3)
}

func TestExpressionTypeOfDefaultsUnknown(t *testing.T) {
	lit := NewIntLit(dummySpan(), 42)
	if lit.TypeOf().Kind != types.Unknown {
		t.Errorf("new expression TypeOf = %v, want Unknown", lit.TypeOf())
	}
	lit.SetTypeOf(types.TInt)
	if !lit.TypeOf().Equal(types.TInt) {
		t.Errorf("after SetTypeOf, got %v, want Int", lit.TypeOf())
	}
}

func TestTaggedVariantDispatchByTypeSwitch(t *testing.T) {
	var exprs []Expression = []Expression{
		NewIntLit(dummySpan(), 1),
		NewBoolLit(dummySpan(), true),
		NewIdent(dummySpan(), "x"),
	}
	var kinds []string
	for _, e := range exprs {
		switch e.(type) {
		case *IntLit:
			kinds = append(kinds, "int")
		case *BoolLit:
			kinds = append(kinds, "bool")
		case *Ident:
			kinds = append(kinds, "ident")
		default:
			kinds = append(kinds, "other")
		}
	}
	want := []string{"int", "bool", "ident"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestStringLitSegments(t *testing.T) {
	inner := NewIdent(dummySpan(), "b")
	sl := NewStringLit(dummySpan(), []StringSegment{
		{Text: "a"},
		{Expr: inner},
		{Text: "c"},
	})
	if len(sl.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(sl.Segments))
	}
	if sl.Segments[1].Expr != inner {
		t.Error("middle segment should carry the embedded expression")
	}
}

func TestBlockAndFunctionSpans(t *testing.T) {
	body := NewBlock(dummySpan(), []Statement{NewBreak(dummySpan())})
	fn := NewFunction(dummySpan(), "f", nil, nil, body)
	if fn.Name != "f" {
		t.Errorf("Name = %q", fn.Name)
	}
	if len(body.Stmts) != 1 {
		t.Errorf("got %d statements, want 1", len(body.Stmts))
	}
}
