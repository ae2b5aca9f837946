package diagnostics

import (
	"strings"
	"testing"

	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/typechecker"
)

func TestFormatPlainIncludesExcerptAndCaret(t *testing.T) {
	src := position.NewSource("t.mini", "let x: int = \"s\";\n")
	span := src.Span(13, 16)
	d := From(PhaseType, typechecker.ErrTypeMismatch, span, "type mismatch", "expected int, found string")

	out := d.FormatPlain(src)

	if !strings.HasPrefix(out, "error[type:TypeMismatch]: type mismatch") {
		t.Errorf("header line wrong, got:\n%s", out)
	}
	if !strings.Contains(out, "1 | let x: int = \"s\";") {
		t.Errorf("missing source excerpt, got:\n%s", out)
	}
	if !strings.Contains(out, "^^^") {
		t.Errorf("missing caret under the span, got:\n%s", out)
	}
	if !strings.Contains(out, "help: expected int, found string") {
		t.Errorf("missing help line, got:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("plain format should carry no SGR codes, got:\n%s", out)
	}
}

func TestFormatANSICarriesColorCodes(t *testing.T) {
	src := position.NewSource("t.mini", "let x: int = \"s\";\n")
	span := src.Span(13, 16)
	d := From(PhaseType, typechecker.ErrTypeMismatch, span, "type mismatch", "")

	out := d.FormatANSI(src)

	if !strings.Contains(out, "\033[31m") {
		t.Errorf("expected red SGR code for an error, got:\n%s", out)
	}
	if !strings.Contains(out, "\033[0m") {
		t.Errorf("expected a reset code, got:\n%s", out)
	}
}

func TestLevelStringWarningVsError(t *testing.T) {
	if got := LevelError.String(); got != "error" {
		t.Errorf("LevelError.String() = %q, want error", got)
	}
	if got := LevelWarning.String(); got != "warning" {
		t.Errorf("LevelWarning.String() = %q, want warning", got)
	}
}
