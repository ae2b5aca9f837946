package analyzer

import (
	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/lexer"
)

// AnalyzeFunction computes fn's FunctionMetrics. toks is the full token
// stream for the compile; only the tokens inside fn's span feed Halstead.
func AnalyzeFunction(fn *ast.Function, toks []lexer.Token) FunctionMetrics {
	w := newComplexityWalk()
	w.walkBlock(fn.Body, 0)

	loc := fn.Span().End.Line - fn.Span().Start.Line + 1
	m := FunctionMetrics{
		Name:            fn.Name,
		LOC:             loc,
		StatementCount:  w.stmtCount,
		ParameterCount:  len(fn.Params),
		Cyclomatic:      1 + w.decisionPoints,
		Cognitive:       w.cognitive,
		MaxNestingDepth: w.maxNesting,
		FanOut:          len(w.callees),
		Halstead:        computeHalstead(tokensInSpan(toks, fn.Span().Start.Offset, fn.Span().End.Offset)),
	}
	m.Rating = rate(m.Cyclomatic, m.Cognitive)
	m.Warnings = warningsFor(m)
	return m
}

// AnalyzeProgram walks every function in prog and rolls the results up
// into ProgramTotals. It never mutates prog.
func AnalyzeProgram(prog *ast.Program, toks []lexer.Token) ([]FunctionMetrics, ProgramTotals) {
	functions := make([]FunctionMetrics, 0, len(prog.Functions))
	var totals ProgramTotals
	totals.OverallRating = RatingA

	var cycSum, cogSum int
	for _, fn := range prog.Functions {
		m := AnalyzeFunction(fn, toks)
		functions = append(functions, m)
		totals.TotalLOC += m.LOC
		cycSum += m.Cyclomatic
		cogSum += m.Cognitive
		totals.OverallRating = worseRating(totals.OverallRating, m.Rating)
	}
	totals.TotalFunctions = len(functions)
	if totals.TotalFunctions > 0 {
		totals.AvgCyclomatic = float64(cycSum) / float64(totals.TotalFunctions)
		totals.AvgCognitive = float64(cogSum) / float64(totals.TotalFunctions)
	}
	return functions, totals
}
