// Package compiler wires the pipeline — lexer, parser, typechecker,
// optimizer, codegen, analyzer — into the two stable entry points spec.md
// §6 names: Compile and Analyze. Both are pure functions of their input
// (source text, plus an optimization level for Compile), matching spec.md
// §5's determinism requirement; neither reads environment or filesystem
// state, and both are safe to call from cmd/minicc or any other
// collaborator (a browser embedder, an editor) without modification.
package compiler

import (
	"fmt"

	"github.com/minilang-org/minicc/internal/analyzer"
	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/codegen"
	"github.com/minilang-org/minicc/internal/diagnostics"
	"github.com/minilang-org/minicc/internal/ice"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/optimizer"
	"github.com/minilang-org/minicc/internal/parser"
	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/typechecker"
)

// defaultFilename is used when a caller compiles an in-memory string with
// no file of its own — every diagnostic in spec.md §7 is anchored to a
// named source file, so one is always supplied.
const defaultFilename = "<input>"

// TokenView is the wire shape of a single token in CompileResult.Tokens,
// spec.md §6: "{ token_type, value, line, column }".
type TokenView struct {
	TokenType string `json:"token_type"`
	Value     string `json:"value"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
}

// CompileResult is spec.md §6's compile() return shape.
type CompileResult struct {
	Success   bool             `json:"success"`
	CCode     string           `json:"c_code,omitempty"`
	Tokens    []TokenView      `json:"tokens,omitempty"`
	AST       map[string]any   `json:"ast,omitempty"`
	Stats     *optimizer.Stats `json:"stats,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorANSI string           `json:"error_ansi,omitempty"`
}

// Report is the body of AnalyzeResult.
type Report struct {
	Functions     []analyzer.FunctionMetrics `json:"functions"`
	ProgramTotals analyzer.ProgramTotals     `json:"program_totals"`
}

// AnalyzeResult is spec.md §6's analyze() return shape.
type AnalyzeResult struct {
	Success   bool    `json:"success"`
	Report    *Report `json:"report,omitempty"`
	Error     string  `json:"error,omitempty"`
	ErrorANSI string  `json:"error_ansi,omitempty"`
}

// Compile lexes, parses, type-checks, optimizes at optLevel (0, 1, or 2,
// clamped), and generates C. optLevel values outside {0,1,2} clamp to the
// nearest bound rather than erroring — cmd/minicc validates its own -O
// flag before ever reaching here, and a library caller passing a stray
// value shouldn't lose an otherwise-successful compile over it.
func Compile(source string, optLevel int) CompileResult {
	return CompileFile(defaultFilename, source, optLevel)
}

// CompileFile is Compile with an explicit filename, used by cmd/minicc so
// diagnostics are anchored to the real path on disk.
func CompileFile(filename, source string, optLevel int) CompileResult {
	src := position.NewSource(filename, source)

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return failCompile(src, diagnosticFromLex(err))
	}

	prog, err := parser.New(toks).ParseProgram()
	if err != nil {
		return failCompile(src, diagnosticFromParse(err))
	}

	if err := typechecker.Check(prog); err != nil {
		return failCompile(src, diagnosticFromType(err))
	}

	level := clampLevel(optLevel)

	stats, err := runOptimizer(prog, level)
	if err != nil {
		return failCompile(src, diagnosticFromICE(err))
	}

	cCode, err := runCodegen(prog)
	if err != nil {
		return failCompile(src, diagnosticFromICE(err))
	}

	return CompileResult{
		Success: true,
		CCode:   cCode,
		Tokens:  tokenViews(toks),
		AST:     ProgramJSON(prog),
		Stats:   &stats,
	}
}

// Analyze lexes, parses, and type-checks, then runs the read-only static
// analyzer over the (pre-optimization) AST. spec.md §7: "Analysis never
// mutates AST and never emits fatal errors if type checking succeeded."
func Analyze(source string) AnalyzeResult {
	return AnalyzeFile(defaultFilename, source)
}

// AnalyzeFile is Analyze with an explicit filename.
func AnalyzeFile(filename, source string) AnalyzeResult {
	src := position.NewSource(filename, source)

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return failAnalyze(src, diagnosticFromLex(err))
	}

	prog, err := parser.New(toks).ParseProgram()
	if err != nil {
		return failAnalyze(src, diagnosticFromParse(err))
	}

	if err := typechecker.Check(prog); err != nil {
		return failAnalyze(src, diagnosticFromType(err))
	}

	functions, totals, err := runAnalyzer(prog, toks)
	if err != nil {
		return failAnalyze(src, diagnosticFromICE(err))
	}

	return AnalyzeResult{
		Success: true,
		Report: &Report{
			Functions:     functions,
			ProgramTotals: totals,
		},
	}
}

// runOptimizer guards optimizer.Optimize with a recover: spec.md §7 calls
// an optimizer failure an OptError that "should not occur" once a program
// has type-checked, so the only realistic way to observe one is a panic
// from a rewrite this package's own tests didn't anticipate.
func runOptimizer(prog *ast.Program, level optimizer.Level) (stats optimizer.Stats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ice.FromRecover(ice.CategoryOpt, "OptError", r)
		}
	}()
	stats = optimizer.Optimize(prog, level)
	return stats, nil
}

func runCodegen(prog *ast.Program) (code string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ice.FromRecover(ice.CategoryCodegen, "CodegenError", r)
		}
	}()
	code = codegen.Generate(prog)
	return code, nil
}

func runAnalyzer(prog *ast.Program, toks []lexer.Token) (fns []analyzer.FunctionMetrics, totals analyzer.ProgramTotals, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ice.FromRecover(ice.CategoryAnalyzer, "AnalyzerError", r)
		}
	}()
	fns, totals = analyzer.AnalyzeProgram(prog, toks)
	return fns, totals, nil
}

func clampLevel(n int) optimizer.Level {
	switch {
	case n <= 0:
		return optimizer.O0
	case n == 1:
		return optimizer.O1
	default:
		return optimizer.O2
	}
}

func tokenViews(toks []lexer.Token) []TokenView {
	views := make([]TokenView, 0, len(toks))
	for _, t := range toks {
		views = append(views, TokenView{
			TokenType: t.Kind.String(),
			Value:     t.Literal,
			Line:      t.Span.Start.Line,
			Column:    t.Span.Start.Column,
		})
	}
	return views
}

func failCompile(src *position.Source, d diagnostics.Diagnostic) CompileResult {
	return CompileResult{
		Success:   false,
		Error:     d.FormatPlain(src),
		ErrorANSI: d.FormatANSI(src),
	}
}

func failAnalyze(src *position.Source, d diagnostics.Diagnostic) AnalyzeResult {
	return AnalyzeResult{
		Success:   false,
		Error:     d.FormatPlain(src),
		ErrorANSI: d.FormatANSI(src),
	}
}

func diagnosticFromLex(err error) diagnostics.Diagnostic {
	if le, ok := err.(*lexer.Error); ok {
		return diagnostics.From(diagnostics.PhaseLex, le.Kind, le.Span, le.Msg, lexHelp(le.Kind))
	}
	return diagnostics.Diagnostic{Level: diagnostics.LevelError, Phase: diagnostics.PhaseLex, Message: err.Error()}
}

func diagnosticFromParse(err error) diagnostics.Diagnostic {
	if pe, ok := err.(*parser.Error); ok {
		return diagnostics.From(diagnostics.PhaseParse, pe.Kind, pe.Span, pe.Msg, "")
	}
	return diagnostics.Diagnostic{Level: diagnostics.LevelError, Phase: diagnostics.PhaseParse, Message: err.Error()}
}

func diagnosticFromType(err error) diagnostics.Diagnostic {
	if te, ok := err.(*typechecker.Error); ok {
		return diagnostics.From(diagnostics.PhaseType, te.Kind, te.Span, te.Msg, typeHelp(te))
	}
	return diagnostics.Diagnostic{Level: diagnostics.LevelError, Phase: diagnostics.PhaseType, Message: err.Error()}
}

func diagnosticFromICE(err error) diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Level:   diagnostics.LevelError,
		Phase:   diagnostics.PhaseOpt,
		Message: fmt.Sprintf("internal compiler error: %v", err),
		Help:    "this indicates a bug in the compiler itself, not the input program",
	}
}

func lexHelp(kind lexer.ErrorKind) string {
	switch kind {
	case lexer.ErrUnterminatedString:
		return "add a closing `\"` before the end of the line"
	case lexer.ErrBadEscape:
		return `supported escapes are \n \t \\ \" \{`
	default:
		return ""
	}
}

func typeHelp(e *typechecker.Error) string {
	switch e.Kind {
	case typechecker.ErrTypeMismatch:
		return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	case typechecker.ErrMissingReturn:
		return "add a `send` on every syntactic path through this function"
	case typechecker.ErrBreakOutsideLoop:
		return "`break`/`continue` are only valid inside while/do-while/for"
	default:
		return ""
	}
}
