// Package ast defines MiniLang's closed-variant AST: every node is a plain
// struct tagged by its Go type, carrying a source Span; callers dispatch by
// type switch rather than a visitor interface (tagged-variant match, not
// runtime dispatch).
package ast

import (
	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/types"
)

// Node is the minimal shape shared by every expression, statement, and
// declaration node.
type Node interface {
	Span() position.Span
}

// Expression is the closed set of expression nodes. Each carries a mutable
// TypeOf slot, initialized to types.Unknown and filled in by the type
// checker.
type Expression interface {
	Node
	expressionNode()
	TypeOf() types.Type
	SetTypeOf(types.Type)
}

// Statement is the closed set of statement nodes.
type Statement interface {
	Node
	statementNode()
}

// exprBase factors the span + type-slot bookkeeping every Expression shares.
type exprBase struct {
	span   position.Span
	typeOf types.Type
}

func (e *exprBase) Span() position.Span     { return e.span }
func (e *exprBase) TypeOf() types.Type      { return e.typeOf }
func (e *exprBase) SetTypeOf(t types.Type)  { e.typeOf = t }
func (e *exprBase) expressionNode()         {}

func newExprBase(span position.Span) exprBase {
	return exprBase{span: span, typeOf: types.Type{Kind: types.Unknown}}
}

// stmtBase factors the span every Statement shares.
type stmtBase struct {
	span position.Span
}

func (s *stmtBase) Span() position.Span { return s.span }
func (s *stmtBase) statementNode()      {}

// --- Expressions ---

type IntLit struct {
	exprBase
	Value int64
}

func NewIntLit(span position.Span, v int64) *IntLit {
	return &IntLit{exprBase: newExprBase(span), Value: v}
}

type FloatLit struct {
	exprBase
	Value float64
}

func NewFloatLit(span position.Span, v float64) *FloatLit {
	return &FloatLit{exprBase: newExprBase(span), Value: v}
}

type BoolLit struct {
	exprBase
	Value bool
}

func NewBoolLit(span position.Span, v bool) *BoolLit {
	return &BoolLit{exprBase: newExprBase(span), Value: v}
}

// StringSegment is one piece of an interpolated string literal: either a
// literal text run or an embedded expression.
type StringSegment struct {
	Text string     // valid when Expr == nil
	Expr Expression // valid when non-nil; Text is ignored
}

type StringLit struct {
	exprBase
	Segments []StringSegment
}

func NewStringLit(span position.Span, segs []StringSegment) *StringLit {
	return &StringLit{exprBase: newExprBase(span), Segments: segs}
}

type Ident struct {
	exprBase
	Name string
}

func NewIdent(span position.Span, name string) *Ident {
	return &Ident{exprBase: newExprBase(span), Name: name}
}

type ArrayLit struct {
	exprBase
	Elements []Expression
}

func NewArrayLit(span position.Span, elems []Expression) *ArrayLit {
	return &ArrayLit{exprBase: newExprBase(span), Elements: elems}
}

type Index struct {
	exprBase
	Array Expression
	Idx   Expression
}

func NewIndex(span position.Span, arr, idx Expression) *Index {
	return &Index{exprBase: newExprBase(span), Array: arr, Idx: idx}
}

type Call struct {
	exprBase
	Name string
	Args []Expression
}

func NewCall(span position.Span, name string, args []Expression) *Call {
	return &Call{exprBase: newExprBase(span), Name: name, Args: args}
}

// UnaryOp is the closed set of unary operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota // '-'
	UnaryNot                // 'NOT'
)

type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expression
}

func NewUnary(span position.Span, op UnaryOp, operand Expression) *Unary {
	return &Unary{exprBase: newExprBase(span), Op: op, Operand: operand}
}

// BinaryOp is the closed set of binary operators.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinGt
	BinLe
	BinGe
	BinAnd
	BinOr
	// BinShl has no surface syntax; it is only ever introduced by the
	// optimizer's strength-reduction pass rewriting x*2^k into x<<k.
	BinShl
)

func (op BinaryOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinDiv:
		return "/"
	case BinMod:
		return "%"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinGt:
		return ">"
	case BinLe:
		return "<="
	case BinGe:
		return ">="
	case BinAnd:
		return "AND"
	case BinOr:
		return "OR"
	case BinShl:
		return "<<"
	default:
		return "?"
	}
}

type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func NewBinary(span position.Span, op BinaryOp, l, r Expression) *Binary {
	return &Binary{exprBase: newExprBase(span), Op: op, Left: l, Right: r}
}

// --- Statements ---

// TypeAnnotation is the parser's syntactic rendering of a `type` production
// (§4.2); the type checker resolves it into a types.Type.
type TypeAnnotation struct {
	Base   string // "int" | "float" | "bool" | "string"
	ArrLen []int  // zero or more trailing '[' INT ']' suffixes, outer to inner
}

type Let struct {
	stmtBase
	Name       string
	Annotation *TypeAnnotation // nil: type is inferred from Init
	Init       Expression
	Const      bool // true for `const`; see DESIGN.md's Open Question decision
}

func NewLet(span position.Span, name string, ann *TypeAnnotation, init Expression, isConst bool) *Let {
	return &Let{stmtBase: stmtBase{span: span}, Name: name, Annotation: ann, Init: init, Const: isConst}
}

// Assign's Target is either an Ident or an Index expression (spec.md §3).
type Assign struct {
	stmtBase
	Target Expression
	Value  Expression
}

func NewAssign(span position.Span, target, value Expression) *Assign {
	return &Assign{stmtBase: stmtBase{span: span}, Target: target, Value: value}
}

type If struct {
	stmtBase
	Cond Expression
	Then *Block
	Else Statement // *Block or *If, nil if absent
}

func NewIf(span position.Span, cond Expression, then *Block, els Statement) *If {
	return &If{stmtBase: stmtBase{span: span}, Cond: cond, Then: then, Else: els}
}

type While struct {
	stmtBase
	Cond Expression
	Body *Block
}

func NewWhile(span position.Span, cond Expression, body *Block) *While {
	return &While{stmtBase: stmtBase{span: span}, Cond: cond, Body: body}
}

type DoWhile struct {
	stmtBase
	Body *Block
	Cond Expression
}

func NewDoWhile(span position.Span, body *Block, cond Expression) *DoWhile {
	return &DoWhile{stmtBase: stmtBase{span: span}, Body: body, Cond: cond}
}

type For struct {
	stmtBase
	Init *Assign
	Cond Expression
	Step *Assign
	Body *Block
}

func NewFor(span position.Span, init *Assign, cond Expression, step *Assign, body *Block) *For {
	return &For{stmtBase: stmtBase{span: span}, Init: init, Cond: cond, Step: step, Body: body}
}

type Display struct {
	stmtBase
	Args []Expression
}

func NewDisplay(span position.Span, args []Expression) *Display {
	return &Display{stmtBase: stmtBase{span: span}, Args: args}
}

type Send struct {
	stmtBase
	Value Expression // nil for a bare `send;`
}

func NewSend(span position.Span, value Expression) *Send {
	return &Send{stmtBase: stmtBase{span: span}, Value: value}
}

type Break struct{ stmtBase }

func NewBreak(span position.Span) *Break { return &Break{stmtBase{span: span}} }

type Continue struct{ stmtBase }

func NewContinue(span position.Span) *Continue { return &Continue{stmtBase{span: span}} }

type ExprStmt struct {
	stmtBase
	Expr Expression
}

func NewExprStmt(span position.Span, e Expression) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{span: span}, Expr: e}
}

type Block struct {
	stmtBase
	Stmts []Statement
}

func NewBlock(span position.Span, stmts []Statement) *Block {
	return &Block{stmtBase: stmtBase{span: span}, Stmts: stmts}
}

// --- Top level ---

type Param struct {
	Name string
	Type TypeAnnotation
}

type Function struct {
	Name       string
	Params     []Param
	ReturnType *TypeAnnotation // nil: Void
	Body       *Block
	span       position.Span
}

func NewFunction(span position.Span, name string, params []Param, ret *TypeAnnotation, body *Block) *Function {
	return &Function{Name: name, Params: params, ReturnType: ret, Body: body, span: span}
}

func (f *Function) Span() position.Span { return f.span }

// Program is an ordered sequence of functions; `main` must exist and take
// no parameters (enforced by the type checker, not the parser).
type Program struct {
	Functions []*Function
}
