// Package optimizer runs MiniLang's AST-to-AST passes — constant folding,
// constant propagation, strength reduction, dead-code elimination — to a
// fixed point. Each pass rewrites via a plain type switch over
// internal/ast nodes and reports whether it changed anything, rather than
// going through a visitor (spec's redesign note: "optimiser passes return
// (node, changed: bool)").
package optimizer

import "github.com/minilang-org/minicc/internal/ast"

// Level selects which passes run, per spec.md §4.4's "Levels" table.
type Level int

const (
	O0 Level = iota
	O1
	O2
)

// Stats mirrors spec.md §4.4's OptStats, plus Iterations (SPEC_FULL.md
// §4.9's supplement, needed to observe the fixed-point guarantee from
// outside the package).
type Stats struct {
	ConstantsFolded     int
	DeadCodeRemoved     int
	ConstantsPropagated int
	StrengthReductions  int
	Iterations          int
}

// maxIterations is the recommended fixed-point cap from spec.md §4.4.
const maxIterations = 16

// Optimize rewrites prog in place and returns the accumulated stats. O0
// performs no rewriting at all.
func Optimize(prog *ast.Program, level Level) Stats {
	var stats Stats
	if level == O0 {
		return stats
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false

		if level == O2 {
			for _, fn := range prog.Functions {
				if propagateBlock(fn.Body, map[string]ast.Expression{}, &stats) {
					changed = true
				}
			}
		}

		for _, fn := range prog.Functions {
			if foldBlock(fn.Body, &stats) {
				changed = true
			}
		}

		if level == O2 {
			for _, fn := range prog.Functions {
				if reduceBlock(fn.Body, &stats) {
					changed = true
				}
			}
		}

		for _, fn := range prog.Functions {
			if deadCodeBlock(fn.Body, level, &stats) {
				changed = true
			}
		}

		stats.Iterations++
		if !changed {
			break
		}
	}
	return stats
}
