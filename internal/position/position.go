// Package position provides source position tracking for the MiniLang
// compiler: byte offsets, line/column numbers, and spans into an immutable
// source buffer, shared by every token and AST node for diagnostics.
package position

import (
	"fmt"
	"sort"
)

// Position is a single point in source code.
type Position struct {
	Filename string // source file name as passed to NewSource
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Offset   int    // 0-based byte offset into the source buffer
}

// IsValid reports whether p was ever set by a real scan.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String renders "file:line:col", or "line:col" when Filename is empty.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a contiguous byte range [Start, End) into a source buffer.
type Span struct {
	Start Position
	End   Position
}

// IsValid reports whether both endpoints are valid and ordered.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() && s.Start.Offset <= s.End.Offset
}

// String renders "file:line:col-col" on one line, or
// "file:line:col-line:col" when the span crosses lines.
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s-%d", s.Start.String(), s.End.Column)
	}
	return fmt.Sprintf("%s-%d:%d", s.Start.String(), s.End.Line, s.End.Column)
}

// Len returns the span's length in bytes.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// Union returns the smallest span covering both s and other.
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}
	start, end := s.Start, s.End
	if other.Start.Offset < start.Offset {
		start = other.Start
	}
	if other.End.Offset > end.Offset {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Source wraps a source buffer with a precomputed line-start table so that
// offset-to-(line,column) lookups are O(log n) via binary search rather than
// a linear rescan on every call.
type Source struct {
	Filename   string
	Text       string
	lineStarts []int // byte offset of the first byte of each line; lineStarts[0] == 0
}

// NewSource builds a Source and its line-start table in one pass.
func NewSource(filename, text string) *Source {
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Source{Filename: filename, Text: text, lineStarts: starts}
}

// Position converts a byte offset into a full Position via binary search
// over the line-start table.
func (s *Source) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Text) {
		offset = len(s.Text)
	}
	// Find the last line start <= offset.
	line := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	column := offset - s.lineStarts[line] + 1
	return Position{
		Filename: s.Filename,
		Line:     line + 1,
		Column:   column,
		Offset:   offset,
	}
}

// Span builds a Span from a pair of byte offsets.
func (s *Source) Span(startOffset, endOffset int) Span {
	return Span{Start: s.Position(startOffset), End: s.Position(endOffset)}
}

// Line returns the text of the given 1-based line number, or "" if out of
// range.
func (s *Source) Line(lineNum int) string {
	if lineNum < 1 || lineNum > len(s.lineStarts) {
		return ""
	}
	start := s.lineStarts[lineNum-1]
	end := len(s.Text)
	if lineNum < len(s.lineStarts) {
		end = s.lineStarts[lineNum] - 1 // exclude the trailing '\n'
	}
	if end > len(s.Text) {
		end = len(s.Text)
	}
	if end < start {
		end = start
	}
	line := s.Text[start:end]
	// Trim a trailing '\r' for CRLF sources so the caret rendering lines up.
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}

// SpanText returns the text covered by span, or "" if it falls outside the
// source's bounds.
func (s *Source) SpanText(span Span) string {
	if span.Start.Offset < 0 || span.End.Offset > len(s.Text) || span.Start.Offset > span.End.Offset {
		return ""
	}
	return s.Text[span.Start.Offset:span.End.Offset]
}
