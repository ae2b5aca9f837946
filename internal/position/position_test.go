package position

import "testing"

func TestSourcePosition(t *testing.T) {
	src := NewSource("t.mini", "func main() {\n  let x = 1;\n}\n")

	tests := []struct {
		offset     int
		wantLine   int
		wantColumn int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{14, 2, 1},
		{16, 2, 3},
	}

	for _, tt := range tests {
		pos := src.Position(tt.offset)
		if pos.Line != tt.wantLine || pos.Column != tt.wantColumn {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, pos.Line, pos.Column, tt.wantLine, tt.wantColumn)
		}
	}
}

func TestSourceLine(t *testing.T) {
	src := NewSource("t.mini", "a\nbb\nccc")

	if got := src.Line(1); got != "a" {
		t.Errorf("Line(1) = %q, want %q", got, "a")
	}
	if got := src.Line(2); got != "bb" {
		t.Errorf("Line(2) = %q, want %q", got, "bb")
	}
	if got := src.Line(3); got != "ccc" {
		t.Errorf("Line(3) = %q, want %q", got, "ccc")
	}
	if got := src.Line(4); got != "" {
		t.Errorf("Line(4) = %q, want empty", got)
	}
}

func TestSpanUnion(t *testing.T) {
	src := NewSource("t.mini", "0123456789")
	a := src.Span(2, 4)
	b := src.Span(6, 8)
	u := a.Union(b)
	if u.Start.Offset != 2 || u.End.Offset != 8 {
		t.Errorf("Union = [%d,%d), want [2,8)", u.Start.Offset, u.End.Offset)
	}
}

func TestSpanText(t *testing.T) {
	src := NewSource("t.mini", "let x = 42;")
	sp := src.Span(8, 10)
	if got := src.SpanText(sp); got != "42" {
		t.Errorf("SpanText = %q, want %q", got, "42")
	}
}
