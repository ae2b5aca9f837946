package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/types"
)

func (g *Gen) genExpr(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%dLL", v.Value)
	case *ast.FloatLit:
		return formatFloatLit(v.Value)
	case *ast.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *ast.StringLit:
		if !hasInterpolation(v) {
			return fmt.Sprintf(`"%s"`, escapeCString(joinLiteralSegments(v)))
		}
		return g.genStringLit(v)
	case *ast.Ident:
		return g.cName(v.Name)
	case *ast.ArrayLit:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			parts[i] = g.genExpr(el)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", g.genExpr(v.Array), g.genExpr(v.Idx))
	case *ast.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = g.genExpr(a)
		}
		return fmt.Sprintf("%s(%s)", g.cName(v.Name), strings.Join(args, ", "))
	case *ast.Unary:
		operand := g.genExpr(v.Operand)
		switch v.Op {
		case ast.UnaryNeg:
			return fmt.Sprintf("(-(%s))", operand)
		case ast.UnaryNot:
			return fmt.Sprintf("(!(%s))", operand)
		}
		return operand
	case *ast.Binary:
		return g.genBinary(v)
	default:
		return ""
	}
}

// genBinary special-cases string Eq/Ne: MiniLang compares strings by
// value, but the C type a MiniLang string lowers to is `const char *`, so
// a plain `==` would compare pointers instead of contents.
func (g *Gen) genBinary(v *ast.Binary) string {
	l := g.genExpr(v.Left)
	r := g.genExpr(v.Right)
	if (v.Op == ast.BinEq || v.Op == ast.BinNe) && v.Left.TypeOf().Kind == types.String {
		if v.Op == ast.BinNe {
			return fmt.Sprintf("(strcmp(%s, %s) != 0)", l, r)
		}
		return fmt.Sprintf("(strcmp(%s, %s) == 0)", l, r)
	}
	return fmt.Sprintf("(%s %s %s)", l, cBinOp(v.Op), r)
}

func cBinOp(op ast.BinaryOp) string {
	switch op {
	case ast.BinAdd:
		return "+"
	case ast.BinSub:
		return "-"
	case ast.BinMul:
		return "*"
	case ast.BinDiv:
		return "/"
	case ast.BinMod:
		return "%"
	case ast.BinEq:
		return "=="
	case ast.BinNe:
		return "!="
	case ast.BinLt:
		return "<"
	case ast.BinGt:
		return ">"
	case ast.BinLe:
		return "<="
	case ast.BinGe:
		return ">="
	case ast.BinAnd:
		return "&&"
	case ast.BinOr:
		return "||"
	case ast.BinShl:
		return "<<"
	default:
		return "?"
	}
}

func formatFloatLit(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
