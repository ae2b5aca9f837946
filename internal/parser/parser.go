// Package parser implements MiniLang's recursive-descent statement parser
// and precedence-climbing expression parser, producing internal/ast nodes.
package parser

import (
	"fmt"
	"strconv"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/lexer"
	"github.com/minilang-org/minicc/internal/position"
)

// ErrorKind enumerates the parser's closed error set.
type ErrorKind int

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrUnexpectedEOF
	ErrBadArrayLen
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrUnexpectedEOF:
		return "UnexpectedEof"
	case ErrBadArrayLen:
		return "BadArrayLen"
	default:
		return "UnknownParseError"
	}
}

// Error is the parser's single error type.
type Error struct {
	Kind Kind
	Span position.Span
	Msg  string
}

// Kind aliases ErrorKind so callers can write parser.Kind.
type Kind = ErrorKind

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// Parser consumes a pre-lexed token slice (the lexer phase runs to
// completion before parsing begins — the lexer and parser are separate
// phases per spec §7's first-error-aborts-phase rule).
type Parser struct {
	toks []lexer.Token
	idx  int
}

// New builds a Parser over a complete token stream (ending in KindEOF).
func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() lexer.Token {
	if p.idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // eof sentinel
	}
	return p.toks[p.idx]
}

func (p *Parser) peek() lexer.Token {
	if p.idx+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.idx+1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	return tok
}

func (p *Parser) errf(kind ErrorKind, tok lexer.Token, format string, args ...any) error {
	return &Error{Kind: kind, Span: tok.Span, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(tok lexer.Token, expected string) error {
	if tok.Kind == lexer.KindEOF {
		return p.errf(ErrUnexpectedEOF, tok, "expected %s, found eof", expected)
	}
	return p.errf(ErrUnexpectedToken, tok, "expected %s, found %s %q", expected, tok.Kind, tok.Literal)
}

func (p *Parser) expectKeyword(kw string) (lexer.Token, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindKeyword || tok.Literal != kw {
		return tok, p.unexpected(tok, fmt.Sprintf("keyword %q", kw))
	}
	return p.advance(), nil
}

func (p *Parser) expectPunct(lit string) (lexer.Token, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindPunctuator || tok.Literal != lit {
		return tok, p.unexpected(tok, fmt.Sprintf("%q", lit))
	}
	return p.advance(), nil
}

func (p *Parser) expectOperator(lit string) (lexer.Token, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindOperator || tok.Literal != lit {
		return tok, p.unexpected(tok, fmt.Sprintf("%q", lit))
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (lexer.Token, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindIdentifier {
		return tok, p.unexpected(tok, "identifier")
	}
	return p.advance(), nil
}

func (p *Parser) isPunct(lit string) bool {
	t := p.cur()
	return t.Kind == lexer.KindPunctuator && t.Literal == lit
}

func (p *Parser) isOperator(lit string) bool {
	t := p.cur()
	return t.Kind == lexer.KindOperator && t.Literal == lit
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == lexer.KindKeyword && t.Literal == kw
}

// ParseProgram parses `program := function*`.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	var fns []*ast.Function
	for p.cur().Kind != lexer.KindEOF {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return &ast.Program{Functions: fns}, nil
}

// parseFunction parses `function := 'func' IDENT '(' params? ')' ('->' type)? block`.
func (p *Parser) parseFunction() (*ast.Function, error) {
	start, err := p.expectKeyword("func")
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.isPunct(")") {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname.Literal, Type: *ptype})
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	var ret *ast.TypeAnnotation
	if p.isOperator("->") {
		p.advance()
		ret, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	span := start.Span.Union(body.Span())
	return ast.NewFunction(span, name.Literal, params, ret, body), nil
}

// parseType parses `type := ('int'|'float'|'bool'|'string') ('[' INT ']')*`.
func (p *Parser) parseType() (*ast.TypeAnnotation, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindKeyword {
		return nil, p.unexpected(tok, "type")
	}
	switch tok.Literal {
	case "int", "float", "bool", "string":
		p.advance()
	default:
		return nil, p.unexpected(tok, "type")
	}
	ann := &ast.TypeAnnotation{Base: tok.Literal}
	for p.isPunct("[") {
		p.advance()
		lenTok := p.cur()
		if lenTok.Kind != lexer.KindIntLiteral {
			return nil, p.unexpected(lenTok, "array length")
		}
		p.advance()
		n, convErr := strconv.ParseInt(lenTok.Literal, 10, 64)
		if convErr != nil {
			return nil, p.errf(ErrBadArrayLen, lenTok, "malformed array length %q", lenTok.Literal)
		}
		if n <= 0 {
			return nil, p.errf(ErrBadArrayLen, lenTok, "array length must be positive, got %d", n)
		}
		if _, err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		ann.ArrLen = append(ann.ArrLen, int(n))
	}
	return ann, nil
}

// parseBlock parses `block := '{' statement* '}'`.
func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.isPunct("}") {
		if p.cur().Kind == lexer.KindEOF {
			return nil, p.unexpected(p.cur(), "'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	end, err := p.expectPunct("}")
	if err != nil {
		return nil, err
	}
	return ast.NewBlock(start.Span.Union(end.Span), stmts), nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.cur()
	if tok.Kind == lexer.KindKeyword {
		switch tok.Literal {
		case "let":
			return p.parseLet(false)
		case "const":
			return p.parseLet(true)
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "do":
			return p.parseDoWhile()
		case "for":
			return p.parseFor()
		case "display":
			return p.parseDisplay()
		case "send":
			return p.parseSend()
		case "break":
			p.advance()
			end, err := p.expectPunct(";")
			if err != nil {
				return nil, err
			}
			return ast.NewBreak(tok.Span.Union(end.Span)), nil
		case "continue":
			p.advance()
			end, err := p.expectPunct(";")
			if err != nil {
				return nil, err
			}
			return ast.NewContinue(tok.Span.Union(end.Span)), nil
		}
	}
	return p.parseAssignOrExprStmt()
}

// parseLet parses `let := ('let'|'const') IDENT (':' type)? '=' expr ';'`.
func (p *Parser) parseLet(isConst bool) (*ast.Let, error) {
	kw := "let"
	if isConst {
		kw = "const"
	}
	start, err := p.expectKeyword(kw)
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var ann *ast.TypeAnnotation
	if p.isPunct(":") {
		p.advance()
		ann, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectOperator("="); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return ast.NewLet(start.Span.Union(end.Span), name.Literal, ann, init, isConst), nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	start, err := p.expectKeyword("if")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	span := start.Span.Union(then.Span())
	var elseStmt ast.Statement
	if p.isKeyword("else") {
		p.advance()
		if p.isKeyword("if") {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			elseStmt = nested
			span = span.Union(nested.Span())
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			elseStmt = elseBlock
			span = span.Union(elseBlock.Span())
		}
	}
	return ast.NewIf(span, cond, then, elseStmt), nil
}

func (p *Parser) parseWhile() (*ast.While, error) {
	start, err := p.expectKeyword("while")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(start.Span.Union(body.Span()), cond, body), nil
}

func (p *Parser) parseDoWhile() (*ast.DoWhile, error) {
	start, err := p.expectKeyword("do")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return ast.NewDoWhile(start.Span.Union(end.Span), body, cond), nil
}

func (p *Parser) parseFor() (*ast.For, error) {
	start, err := p.expectKeyword("for")
	if err != nil {
		return nil, err
	}
	init, err := p.parseAssignNoSemi()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	step, err := p.parseAssignNoSemi()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(start.Span.Union(body.Span()), init, cond, step, body), nil
}

func (p *Parser) parseDisplay() (*ast.Display, error) {
	start, err := p.expectKeyword("display")
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args = append(args, arg)
	for p.isPunct(",") {
		p.advance()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return ast.NewDisplay(start.Span.Union(end.Span), args), nil
}

func (p *Parser) parseSend() (*ast.Send, error) {
	start, err := p.expectKeyword("send")
	if err != nil {
		return nil, err
	}
	var value ast.Expression
	if !p.isPunct(";") {
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return ast.NewSend(start.Span.Union(end.Span), value), nil
}

// parseAssignNoSemi parses `assign := (Ident|Index) '=' expr` without
// consuming a trailing ';' (used directly by the for-loop clauses).
func (p *Parser) parseAssignNoSemi() (*ast.Assign, error) {
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOperator("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewAssign(target.Span().Union(value.Span()), target, value), nil
}

// parseAssignOrExprStmt parses `assign ';' | expr ';'`, disambiguating by
// whether an '=' follows the parsed expression.
func (p *Parser) parseAssignOrExprStmt() (ast.Statement, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOperator("=") {
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expectPunct(";")
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(e.Span().Union(end.Span), e, value), nil
	}
	end, err := p.expectPunct(";")
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(e.Span().Union(end.Span), e), nil
}

// --- Expressions: precedence climbing ---

type binOpInfo struct {
	op   ast.BinaryOp
	prec int
}

func (p *Parser) lookupBinOp(tok lexer.Token) (binOpInfo, bool) {
	if tok.Kind == lexer.KindKeyword {
		switch tok.Literal {
		case "OR":
			return binOpInfo{ast.BinOr, 1}, true
		case "AND":
			return binOpInfo{ast.BinAnd, 2}, true
		}
		return binOpInfo{}, false
	}
	if tok.Kind != lexer.KindOperator {
		return binOpInfo{}, false
	}
	switch tok.Literal {
	case "==":
		return binOpInfo{ast.BinEq, 3}, true
	case "!=":
		return binOpInfo{ast.BinNe, 3}, true
	case "<":
		return binOpInfo{ast.BinLt, 4}, true
	case ">":
		return binOpInfo{ast.BinGt, 4}, true
	case "<=":
		return binOpInfo{ast.BinLe, 4}, true
	case ">=":
		return binOpInfo{ast.BinGe, 4}, true
	case "+":
		return binOpInfo{ast.BinAdd, 5}, true
	case "-":
		return binOpInfo{ast.BinSub, 5}, true
	case "*":
		return binOpInfo{ast.BinMul, 6}, true
	case "/":
		return binOpInfo{ast.BinDiv, 6}, true
	case "%":
		return binOpInfo{ast.BinMod, 6}, true
	}
	return binOpInfo{}, false
}

// parseExpr parses the full precedence table (spec.md §4.2): OR < AND <
// equality < relational < additive < multiplicative < unary < postfix.
func (p *Parser) parseExpr() (ast.Expression, error) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		info, ok := p.lookupBinOp(p.cur())
		if !ok || info.prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(info.prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Span().Union(right.Span()), info.op, left, right)
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	tok := p.cur()
	if tok.Kind == lexer.KindOperator && tok.Literal == "-" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(tok.Span.Union(operand.Span()), ast.UnaryNeg, operand), nil
	}
	if tok.Kind == lexer.KindKeyword && tok.Literal == "NOT" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(tok.Span.Union(operand.Span()), ast.UnaryNot, operand), nil
	}
	return p.parsePostfix()
}

// parsePostfix handles `[expr]` indexing, which binds to any primary
// (including another index or a call result).
func (p *Parser) parsePostfix() (ast.Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("[") {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expectPunct("]")
		if err != nil {
			return nil, err
		}
		e = ast.NewIndex(e.Span().Union(end.Span), e, idx)
	}
	return e, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch {
	case tok.Kind == lexer.KindIntLiteral:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errf(ErrUnexpectedToken, tok, "malformed integer literal %q", tok.Literal)
		}
		return ast.NewIntLit(tok.Span, n), nil
	case tok.Kind == lexer.KindFloatLiteral:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errf(ErrUnexpectedToken, tok, "malformed float literal %q", tok.Literal)
		}
		return ast.NewFloatLit(tok.Span, f), nil
	case tok.Kind == lexer.KindKeyword && tok.Literal == "true":
		p.advance()
		return ast.NewBoolLit(tok.Span, true), nil
	case tok.Kind == lexer.KindKeyword && tok.Literal == "false":
		p.advance()
		return ast.NewBoolLit(tok.Span, false), nil
	case tok.Kind == lexer.KindStringInterpOpen:
		return p.parseStringLit()
	case tok.Kind == lexer.KindPunctuator && tok.Literal == "(":
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case tok.Kind == lexer.KindPunctuator && tok.Literal == "[":
		return p.parseArrayLit()
	case tok.Kind == lexer.KindIdentifier:
		if p.peek().Kind == lexer.KindPunctuator && p.peek().Literal == "(" {
			return p.parseCall()
		}
		p.advance()
		return ast.NewIdent(tok.Span, tok.Literal), nil
	}
	return nil, p.unexpected(tok, "expression")
}

func (p *Parser) parseCall() (*ast.Call, error) {
	name := p.advance() // identifier
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for !p.isPunct(")") {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expectPunct(")")
	if err != nil {
		return nil, err
	}
	return ast.NewCall(name.Span.Union(end.Span), name.Literal, args), nil
}

func (p *Parser) parseArrayLit() (*ast.ArrayLit, error) {
	start, err := p.expectPunct("[")
	if err != nil {
		return nil, err
	}
	var elems []ast.Expression
	for !p.isPunct("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expectPunct("]")
	if err != nil {
		return nil, err
	}
	return ast.NewArrayLit(start.Span.Union(end.Span), elems), nil
}

// parseStringLit parses a full `string-interp-open (interp-text | '{' expr
// '}')* string-interp-close` sequence into a *ast.StringLit.
func (p *Parser) parseStringLit() (*ast.StringLit, error) {
	start, err := p.expectOpen()
	if err != nil {
		return nil, err
	}
	var segs []ast.StringSegment
	for {
		tok := p.cur()
		switch {
		case tok.Kind == lexer.KindInterpText:
			p.advance()
			segs = append(segs, ast.StringSegment{Text: tok.Literal})
		case tok.Kind == lexer.KindPunctuator && tok.Literal == "{":
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct("}"); err != nil {
				return nil, err
			}
			segs = append(segs, ast.StringSegment{Expr: e})
		case tok.Kind == lexer.KindStringInterpClose:
			p.advance()
			return ast.NewStringLit(start.Span.Union(tok.Span), segs), nil
		default:
			return nil, p.unexpected(tok, "string content or closing quote")
		}
	}
}

func (p *Parser) expectOpen() (lexer.Token, error) {
	tok := p.cur()
	if tok.Kind != lexer.KindStringInterpOpen {
		return tok, p.unexpected(tok, "opening quote")
	}
	return p.advance(), nil
}
