// Package diagnostics renders MiniLang's user-facing compiler errors —
// LexError, ParseError, TypeError — as plain text or ANSI-colored reports
// with a one-line source excerpt and a caret under the offending span, per
// spec.md §7.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/minilang-org/minicc/internal/position"
)

// Level is a diagnostic's severity.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "error"
}

// Phase names the compile stage that raised the diagnostic, matching
// spec.md §7's taxonomy (LexError, ParseError, TypeError, plus the
// internal OptError/CodegenError/AnalyzerError family handled separately
// by internal/ice).
type Phase string

const (
	PhaseLex   Phase = "lex"
	PhaseParse Phase = "parse"
	PhaseType  Phase = "type"
	PhaseOpt   Phase = "opt"
	PhaseGen   Phase = "codegen"
)

// Diagnostic is a single rendered compiler error.
type Diagnostic struct {
	Level   Level
	Phase   Phase
	Code    string // the phase's ErrorKind.String(), e.g. "TypeMismatch"
	Message string
	Span    position.Span
	Help    string // optional suggestion, rendered as a trailing line
}

// From builds a Diagnostic out of a phase error's Kind/Span/Message —
// internal/compiler is the only caller, passing the fields straight off
// whichever concrete *lexer.Error / *parser.Error / *typechecker.Error it
// already has in hand.
func From(phase Phase, kind fmt.Stringer, span position.Span, message, help string) Diagnostic {
	return Diagnostic{
		Level:   LevelError,
		Phase:   phase,
		Code:    kind.String(),
		Message: message,
		Span:    span,
		Help:    help,
	}
}

// FormatPlain renders the diagnostic as CLI-default plain text: a header
// line plus a source excerpt with a caret.
func (d Diagnostic) FormatPlain(src *position.Source) string {
	return d.format(src, false)
}

// FormatANSI renders the diagnostic with SGR color codes, the embedder's
// payload per spec.md §7.
func (d Diagnostic) FormatANSI(src *position.Source) string {
	return d.format(src, true)
}

func (d Diagnostic) format(src *position.Source, ansi bool) string {
	var b strings.Builder

	if ansi {
		b.WriteString(colorFor(d.Level))
	}
	b.WriteString(d.Level.String())
	if d.Code != "" {
		b.WriteString("[" + string(d.Phase) + ":" + d.Code + "]")
	}
	if ansi {
		b.WriteString(reset)
	}
	b.WriteString(": " + d.Message)
	b.WriteString(fmt.Sprintf("\n  --> %s", d.Span.Start))

	if src != nil {
		line := src.Line(d.Span.Start.Line)
		if line != "" {
			gutter := fmt.Sprintf("%d", d.Span.Start.Line)
			b.WriteString(fmt.Sprintf("\n%s | %s", gutter, line))

			width := d.Span.End.Column - d.Span.Start.Column
			if width < 1 {
				width = 1
			}
			pad := strings.Repeat(" ", len(gutter)+3+d.Span.Start.Column-1)
			caret := strings.Repeat("^", width)
			if ansi {
				b.WriteString("\n" + pad + colorFor(d.Level) + caret + reset)
			} else {
				b.WriteString("\n" + pad + caret)
			}
		}
	}

	if d.Help != "" {
		b.WriteString("\nhelp: " + d.Help)
	}

	return b.String()
}

const reset = "\033[0m"

func colorFor(level Level) string {
	if level == LevelWarning {
		return "\033[33m" // yellow
	}
	return "\033[31m" // red
}
