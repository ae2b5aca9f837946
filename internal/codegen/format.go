package codegen

import (
	"fmt"
	"strings"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/types"
)

func hasInterpolation(lit *ast.StringLit) bool {
	for _, seg := range lit.Segments {
		if seg.Expr != nil {
			return true
		}
	}
	return false
}

func joinLiteralSegments(lit *ast.StringLit) string {
	var sb strings.Builder
	for _, seg := range lit.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

func escapeCString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escapeForPrintfFormat(s string) string {
	return strings.ReplaceAll(escapeCString(s), "%", "%%")
}

// genStringLit materializes an interpolated string into a scratch buffer
// via a chain of snprintf calls appended to g.pending, one per segment,
// each appending at the buffer's current strlen. Returns the buffer's C
// name as the expression value. Used whenever an interpolated string
// appears somewhere other than directly inside a display — display
// builds one combined printf instead and never calls this.
func (g *Gen) genStringLit(lit *ast.StringLit) string {
	buf := fmt.Sprintf("_ml_buf%d", g.nextBuf)
	g.nextBuf++
	g.pending = append(g.pending, fmt.Sprintf("char %s[256];", buf))
	for _, seg := range lit.Segments {
		if seg.Expr == nil {
			g.pending = append(g.pending, fmt.Sprintf(
				`snprintf(%s+strlen(%s), sizeof(%s)-strlen(%s), "%%s", "%s");`,
				buf, buf, buf, buf, escapeCString(seg.Text)))
			continue
		}
		verb, arg := g.valueVerb(seg.Expr)
		g.pending = append(g.pending, fmt.Sprintf(
			`snprintf(%s+strlen(%s), sizeof(%s)-strlen(%s), "%s", %s);`,
			buf, buf, buf, buf, verb, arg))
	}
	return buf
}

// valueVerb picks the printf conversion and C argument expression for a
// value of e's type: casts ints to long long for %lld, renders bools as
// "true"/"false" strings, and passes strings straight through as %s
// (genExpr already reduces any nested StringLit to a buffer or literal).
func (g *Gen) valueVerb(e ast.Expression) (verb, arg string) {
	switch e.TypeOf().Kind {
	case types.Int:
		return "%lld", fmt.Sprintf("(long long)(%s)", g.genExpr(e))
	case types.Float:
		return "%f", fmt.Sprintf("(%s)", g.genExpr(e))
	case types.Bool:
		return "%s", fmt.Sprintf("((%s) ? \"true\" : \"false\")", g.genExpr(e))
	default:
		return "%s", g.genExpr(e)
	}
}

// genDisplay builds one printf call per display argument: each literal text
// segment becomes a "%s" verb with the quoted text as its argument, and each
// value (its string segments' own embedded expressions included) gets the
// verb for its type, all in that argument's own format string, with a
// trailing newline appended only to the last call's format string — no
// separator between the calls otherwise.
func (g *Gen) genDisplay(s *ast.Display) {
	for i, arg := range s.Args {
		var format strings.Builder
		var cargs []string
		g.appendArg(arg, &format, &cargs)
		if i == len(s.Args)-1 {
			format.WriteString(`\n`)
		}
		g.flushPending()

		var sb strings.Builder
		fmt.Fprintf(&sb, `printf("%s"`, format.String())
		for _, a := range cargs {
			sb.WriteString(", ")
			sb.WriteString(a)
		}
		sb.WriteString(");")
		g.emit(sb.String())
	}
}

func (g *Gen) appendArg(e ast.Expression, format *strings.Builder, cargs *[]string) {
	if lit, ok := e.(*ast.StringLit); ok {
		for _, seg := range lit.Segments {
			if seg.Expr == nil {
				format.WriteString("%s")
				*cargs = append(*cargs, `"`+escapeCString(seg.Text)+`"`)
				continue
			}
			g.appendArg(seg.Expr, format, cargs)
		}
		return
	}
	verb, arg := g.valueVerb(e)
	format.WriteString(verb)
	*cargs = append(*cargs, arg)
}
