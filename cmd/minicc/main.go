// Command minicc is a thin driver over the MiniLang compiler library
// (internal/compiler): it exercises compile/analyze from the command line
// so the pipeline can be run end to end without embedding it in a browser
// or another host. It does not invoke an external C compiler or run the
// produced binary — per spec.md §1, that orchestration is an out-of-scope
// collaborator.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/minilang-org/minicc/internal/clilog"
	"github.com/minilang-org/minicc/internal/compiler"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/position"
)

const usageText = `minicc - MiniLang batch compiler

USAGE:
    minicc <command> [flags] <file.mini>

COMMANDS:
    compile   lex, parse, type-check, optimize, and emit C
    check     compile without emitting C; print ok or the error
    analyze   run the static analyzer and print complexity metrics
    ast       print the post-optimization AST as JSON
    tokens    print the token stream
    stats     print optimizer pass statistics

FLAGS:
    -o NAME     write output to NAME instead of stdout (compile only)
    -O 0|1|2    optimization level (default 1)
    --json      emit JSON instead of human-readable text
    -watch      recompile whenever the input file changes on disk
    -v          verbose logging
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) < 1 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	cmd := argv[0]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	outPath := fs.String("o", "", "output file")
	optLevel := fs.Int("O", 1, "optimization level 0|1|2")
	jsonOut := fs.Bool("json", false, "emit JSON output")
	watch := fs.Bool("watch", false, "recompile on file change")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(argv[1:]); err != nil {
		return 2
	}

	args := fs.Args()
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}
	path := args[0]

	if *optLevel < 0 || *optLevel > 2 {
		fmt.Fprintf(os.Stderr, "error: -O must be 0, 1, or 2 (got %d)\n", *optLevel)
		return 2
	}

	log := clilog.New(*verbose, false)

	oneShot := func() int {
		return dispatch(cmd, path, *outPath, *optLevel, *jsonOut, log)
	}

	if *watch {
		if err := watchLoop(path, oneShot, log); err != nil {
			fmt.Fprintf(os.Stderr, "error: watch failed: %v\n", err)
			return 2
		}
		return 0
	}

	return oneShot()
}

func dispatch(cmd, path, outPath string, optLevel int, jsonOut bool, log *clilog.Logger) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	log.Info("running %s on %s", cmd, path)

	switch cmd {
	case "compile":
		return runCompile(path, string(source), outPath, optLevel, jsonOut)
	case "check":
		return runCheck(path, string(source), optLevel, jsonOut)
	case "ast":
		return runAST(path, string(source), optLevel)
	case "tokens":
		return runTokens(path, string(source), jsonOut)
	case "stats":
		return runStats(path, string(source), optLevel, jsonOut)
	case "analyze":
		return runAnalyze(path, string(source), jsonOut)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", cmd)
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}
}

func runCompile(path, source, outPath string, optLevel int, jsonOut bool) int {
	res := compiler.CompileFile(path, source, optLevel)

	if jsonOut {
		emitJSON(res)
		if !res.Success {
			return 1
		}
		return 0
	}

	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return 1
	}

	if outPath == "" {
		fmt.Println(res.CCode)
		return 0
	}
	if err := os.WriteFile(outPath, []byte(res.CCode), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

func runCheck(path, source string, optLevel int, jsonOut bool) int {
	res := compiler.CompileFile(path, source, optLevel)

	if jsonOut {
		emitJSON(map[string]any{"success": res.Success, "error": res.Error})
		if !res.Success {
			return 1
		}
		return 0
	}

	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return 1
	}
	fmt.Println("ok")
	return 0
}

func runAST(path, source string, optLevel int) int {
	res := compiler.CompileFile(path, source, optLevel)
	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return 1
	}
	emitJSON(res.AST)
	return 0
}

func runTokens(path, source string, jsonOut bool) int {
	src := position.NewSource(path, source)
	toks, err := lexer.Tokenize(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if jsonOut {
		views := make([]compiler.TokenView, 0, len(toks))
		for _, t := range toks {
			views = append(views, compiler.TokenView{
				TokenType: t.Kind.String(),
				Value:     t.Literal,
				Line:      t.Span.Start.Line,
				Column:    t.Span.Start.Column,
			})
		}
		emitJSON(views)
		return 0
	}

	for _, t := range toks {
		fmt.Printf("%-20s %-20q %s\n", t.Kind, t.Literal, t.Span)
	}
	return 0
}

func runStats(path, source string, optLevel int, jsonOut bool) int {
	res := compiler.CompileFile(path, source, optLevel)
	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return 1
	}

	if jsonOut {
		emitJSON(res.Stats)
		return 0
	}

	s := res.Stats
	fmt.Printf("constants_folded:     %d\n", s.ConstantsFolded)
	fmt.Printf("constants_propagated: %d\n", s.ConstantsPropagated)
	fmt.Printf("strength_reductions:  %d\n", s.StrengthReductions)
	fmt.Printf("dead_code_removed:    %d\n", s.DeadCodeRemoved)
	fmt.Printf("iterations:           %d\n", s.Iterations)
	return 0
}

func runAnalyze(path, source string, jsonOut bool) int {
	res := compiler.AnalyzeFile(path, source)
	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Error)
		return 1
	}

	if jsonOut {
		emitJSON(res.Report)
		return 0
	}

	for _, fn := range res.Report.Functions {
		fmt.Printf("%-16s loc=%-4d cyclomatic=%-3d cognitive=%-3d depth=%-2d fan_out=%-2d rating=%s\n",
			fn.Name, fn.LOC, fn.Cyclomatic, fn.Cognitive, fn.MaxNestingDepth, fn.FanOut, fn.Rating)
		for _, w := range fn.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	t := res.Report.ProgramTotals
	fmt.Printf("\ntotal_functions=%d total_loc=%d avg_cyclomatic=%.2f avg_cognitive=%.2f overall_rating=%s\n",
		t.TotalFunctions, t.TotalLOC, t.AvgCyclomatic, t.AvgCognitive, t.OverallRating)
	return 0
}

func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// watchLoop re-runs oneShot every time path changes on disk. It watches the
// containing directory (editors commonly replace-via-rename rather than
// write-in-place, which a direct watch on the file itself would miss) and
// filters events down to the one path we care about.
func watchLoop(path string, oneShot func() int, log *clilog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	log.Info("watching %s (ctrl-c to stop)", path)
	oneShot()

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Info("%s changed, recompiling", path)
			oneShot()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error: %v", watchErr)
		}
	}
}
