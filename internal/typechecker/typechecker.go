// Package typechecker resolves names against a lexically scoped symbol
// table, fills every ast.Expression's TypeOf slot, and enforces MiniLang's
// static typing rules.
package typechecker

import (
	"fmt"

	"github.com/minilang-org/minicc/internal/ast"
	"github.com/minilang-org/minicc/internal/position"
	"github.com/minilang-org/minicc/internal/types"
)

// ErrorKind enumerates the type checker's closed error set.
type ErrorKind int

const (
	ErrUndefinedName ErrorKind = iota
	ErrDuplicateDecl
	ErrTypeMismatch
	ErrArityMismatch
	ErrNotCallable
	ErrNotIndexable
	ErrConditionNotBool
	ErrMissingReturn
	ErrBreakOutsideLoop
	// ErrConstReassignment is additive to spec.md's closed set — see
	// DESIGN.md's Open Question decision on the `const` keyword.
	ErrConstReassignment
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUndefinedName:
		return "UndefinedName"
	case ErrDuplicateDecl:
		return "DuplicateDecl"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrArityMismatch:
		return "ArityMismatch"
	case ErrNotCallable:
		return "NotCallable"
	case ErrNotIndexable:
		return "NotIndexable"
	case ErrConditionNotBool:
		return "ConditionNotBool"
	case ErrMissingReturn:
		return "MissingReturn"
	case ErrBreakOutsideLoop:
		return "BreakOutsideLoop"
	case ErrConstReassignment:
		return "ConstReassignment"
	default:
		return "UnknownTypeError"
	}
}

// Error is the type checker's single error type.
type Error struct {
	Kind     ErrorKind
	Span     position.Span
	Msg      string
	Expected types.Type
	Found    types.Type
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

func mismatch(span position.Span, expected, found types.Type) error {
	return &Error{
		Kind: ErrTypeMismatch, Span: span, Expected: expected, Found: found,
		Msg: fmt.Sprintf("expected %s, found %s", expected, found),
	}
}

// symbol is one binding in the scope stack.
type symbol struct {
	typ        types.Type
	declaredAt position.Span
	isConst    bool
}

type funcSig struct {
	params []types.Type
	ret    types.Type
	span   position.Span
}

// Checker holds the mutable state of a single Check pass; it is not
// reusable across programs.
type Checker struct {
	scopes      []map[string]*symbol
	funcs       map[string]*funcSig
	currentFunc *funcSig
	loopDepth   int
}

// Check resolves names, fills every Expression.TypeOf, and enforces
// spec.md §4.3's rules over prog. It aborts and returns the first error
// found, matching §7's phase-abort propagation.
func Check(prog *ast.Program) error {
	c := &Checker{funcs: map[string]*funcSig{}}

	for _, fn := range prog.Functions {
		if _, exists := c.funcs[fn.Name]; exists {
			return &Error{Kind: ErrDuplicateDecl, Span: fn.Span(), Msg: fmt.Sprintf("function %q already declared", fn.Name)}
		}
		sig := &funcSig{ret: types.TVoid, span: fn.Span()}
		if fn.ReturnType != nil {
			sig.ret = resolveAnnotation(fn.ReturnType)
		}
		for _, p := range fn.Params {
			sig.params = append(sig.params, resolveAnnotation(&p.Type))
		}
		c.funcs[fn.Name] = sig
	}

	main, ok := c.funcs["main"]
	if !ok {
		return &Error{Kind: ErrUndefinedName, Msg: "program must declare a function named main"}
	}
	if len(main.params) != 0 {
		return &Error{Kind: ErrArityMismatch, Span: main.span, Msg: "main must take no parameters"}
	}

	for _, fn := range prog.Functions {
		if err := c.checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) pushScope() { c.scopes = append(c.scopes, map[string]*symbol{}) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) declare(name string, sym *symbol) error {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top[name]; exists {
		return &Error{Kind: ErrDuplicateDecl, Span: sym.declaredAt, Msg: fmt.Sprintf("%q already declared in this scope", name)}
	}
	top[name] = sym
	return nil
}

func (c *Checker) resolve(name string) *symbol {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

func resolveAnnotation(ann *ast.TypeAnnotation) types.Type {
	base, _ := types.FromKeyword(ann.Base)
	result := base
	for i := len(ann.ArrLen) - 1; i >= 0; i-- {
		result = types.NewArray(result, ann.ArrLen[i])
	}
	return result
}

func (c *Checker) checkFunction(fn *ast.Function) error {
	c.pushScope()
	defer c.popScope()

	sig := c.funcs[fn.Name]
	c.currentFunc = sig
	c.loopDepth = 0

	for i, p := range fn.Params {
		if err := c.declare(p.Name, &symbol{typ: sig.params[i], declaredAt: fn.Span()}); err != nil {
			return err
		}
	}

	if err := c.checkBlockNoScope(fn.Body); err != nil {
		return err
	}

	if sig.ret.Kind != types.Void && !alwaysReturns(fn.Body) {
		return &Error{Kind: ErrMissingReturn, Span: fn.Span(), Msg: fmt.Sprintf("function %q must send a value of type %s on every path", fn.Name, sig.ret)}
	}
	return nil
}

// alwaysReturns reports whether every syntactic path through stmt ends in a
// Send. Break/Continue only affect loop control, never function return.
func alwaysReturns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.Send:
		return true
	case *ast.Block:
		for _, st := range s.Stmts {
			if alwaysReturns(st) {
				return true
			}
		}
		return false
	case *ast.If:
		if s.Else == nil {
			return false
		}
		return alwaysReturns(s.Then) && alwaysReturns(s.Else)
	case *ast.DoWhile:
		return alwaysReturns(s.Body)
	default:
		return false
	}
}

func (c *Checker) checkBlock(b *ast.Block) error {
	c.pushScope()
	defer c.popScope()
	return c.checkBlockNoScope(b)
}

func (c *Checker) checkBlockNoScope(b *ast.Block) error {
	for _, stmt := range b.Stmts {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.Let:
		return c.checkLet(s)
	case *ast.Assign:
		return c.checkAssign(s)
	case *ast.If:
		return c.checkIf(s)
	case *ast.While:
		condT, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if condT.Kind != types.Bool {
			return &Error{Kind: ErrConditionNotBool, Span: s.Cond.Span(), Msg: "while condition must be bool"}
		}
		c.loopDepth++
		err = c.checkBlock(s.Body)
		c.loopDepth--
		return err
	case *ast.DoWhile:
		c.loopDepth++
		err := c.checkBlock(s.Body)
		c.loopDepth--
		if err != nil {
			return err
		}
		condT, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if condT.Kind != types.Bool {
			return &Error{Kind: ErrConditionNotBool, Span: s.Cond.Span(), Msg: "do-while condition must be bool"}
		}
		return nil
	case *ast.For:
		c.pushScope()
		defer c.popScope()
		if err := c.checkAssignNoScope(s.Init); err != nil {
			return err
		}
		condT, err := c.checkExpr(s.Cond)
		if err != nil {
			return err
		}
		if condT.Kind != types.Bool {
			return &Error{Kind: ErrConditionNotBool, Span: s.Cond.Span(), Msg: "for condition must be bool"}
		}
		if err := c.checkAssignNoScope(s.Step); err != nil {
			return err
		}
		c.loopDepth++
		err = c.checkBlock(s.Body)
		c.loopDepth--
		return err
	case *ast.Display:
		for _, arg := range s.Args {
			t, err := c.checkExpr(arg)
			if err != nil {
				return err
			}
			if t.Kind == types.Void || t.Kind == types.Array {
				return mismatch(arg.Span(), types.TString, t)
			}
		}
		return nil
	case *ast.Send:
		return c.checkSend(s)
	case *ast.Break:
		if c.loopDepth == 0 {
			return &Error{Kind: ErrBreakOutsideLoop, Span: s.Span(), Msg: "break outside loop"}
		}
		return nil
	case *ast.Continue:
		if c.loopDepth == 0 {
			return &Error{Kind: ErrBreakOutsideLoop, Span: s.Span(), Msg: "continue outside loop"}
		}
		return nil
	case *ast.ExprStmt:
		_, err := c.checkExpr(s.Expr)
		return err
	case *ast.Block:
		return c.checkBlock(s)
	default:
		return fmt.Errorf("typechecker: unhandled statement %T", stmt)
	}
}

func (c *Checker) checkLet(s *ast.Let) error {
	initT, err := c.checkExpr(s.Init)
	if err != nil {
		return err
	}
	if initT.Kind == types.Void {
		return mismatch(s.Init.Span(), types.TInt, initT)
	}
	declType := initT
	if s.Annotation != nil {
		declType = resolveAnnotation(s.Annotation)
		if !declType.Equal(initT) {
			return mismatch(s.Init.Span(), declType, initT)
		}
	}
	return c.declare(s.Name, &symbol{typ: declType, declaredAt: s.Span(), isConst: s.Const})
}

func (c *Checker) checkAssign(s *ast.Assign) error {
	return c.checkAssignGeneric(s)
}

func (c *Checker) checkAssignNoScope(s *ast.Assign) error {
	return c.checkAssignGeneric(s)
}

func (c *Checker) checkAssignGeneric(s *ast.Assign) error {
	if root := rootIdent(s.Target); root != nil {
		sym := c.resolve(root.Name)
		if sym == nil {
			return &Error{Kind: ErrUndefinedName, Span: root.Span(), Msg: fmt.Sprintf("undefined name %q", root.Name)}
		}
		if sym.isConst {
			return &Error{Kind: ErrConstReassignment, Span: s.Span(), Msg: fmt.Sprintf("cannot assign to const %q", root.Name)}
		}
	}
	targetT, err := c.checkExpr(s.Target)
	if err != nil {
		return err
	}
	valueT, err := c.checkExpr(s.Value)
	if err != nil {
		return err
	}
	if !targetT.Equal(valueT) {
		return mismatch(s.Value.Span(), targetT, valueT)
	}
	return nil
}

// rootIdent unwraps a chain of Index expressions down to the Ident being
// indexed, used to find the symbol an Assign ultimately targets.
func rootIdent(e ast.Expression) *ast.Ident {
	switch v := e.(type) {
	case *ast.Ident:
		return v
	case *ast.Index:
		return rootIdent(v.Array)
	default:
		return nil
	}
}

func (c *Checker) checkIf(s *ast.If) error {
	condT, err := c.checkExpr(s.Cond)
	if err != nil {
		return err
	}
	if condT.Kind != types.Bool {
		return &Error{Kind: ErrConditionNotBool, Span: s.Cond.Span(), Msg: "if condition must be bool"}
	}
	if err := c.checkBlock(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		return c.checkStmt(s.Else)
	}
	return nil
}

func (c *Checker) checkSend(s *ast.Send) error {
	ret := c.currentFunc.ret
	if s.Value == nil {
		if ret.Kind != types.Void {
			return mismatch(s.Span(), ret, types.TVoid)
		}
		return nil
	}
	vT, err := c.checkExpr(s.Value)
	if err != nil {
		return err
	}
	if !vT.Equal(ret) {
		return mismatch(s.Value.Span(), ret, vT)
	}
	return nil
}

func (c *Checker) checkExpr(e ast.Expression) (types.Type, error) {
	t, err := c.checkExprKind(e)
	if err != nil {
		return types.Type{}, err
	}
	e.SetTypeOf(t)
	return t, nil
}

func (c *Checker) checkExprKind(e ast.Expression) (types.Type, error) {
	switch v := e.(type) {
	case *ast.IntLit:
		return types.TInt, nil
	case *ast.FloatLit:
		return types.TFloat, nil
	case *ast.BoolLit:
		return types.TBool, nil
	case *ast.StringLit:
		for _, seg := range v.Segments {
			if seg.Expr == nil {
				continue
			}
			t, err := c.checkExpr(seg.Expr)
			if err != nil {
				return types.Type{}, err
			}
			if t.Kind == types.Void || t.Kind == types.Array {
				return types.Type{}, mismatch(seg.Expr.Span(), types.TString, t)
			}
		}
		return types.TString, nil
	case *ast.Ident:
		sym := c.resolve(v.Name)
		if sym == nil {
			return types.Type{}, &Error{Kind: ErrUndefinedName, Span: v.Span(), Msg: fmt.Sprintf("undefined name %q", v.Name)}
		}
		return sym.typ, nil
	case *ast.ArrayLit:
		return c.checkArrayLit(v)
	case *ast.Index:
		return c.checkIndex(v)
	case *ast.Call:
		return c.checkCall(v)
	case *ast.Unary:
		return c.checkUnary(v)
	case *ast.Binary:
		return c.checkBinary(v)
	default:
		return types.Type{}, fmt.Errorf("typechecker: unhandled expression %T", e)
	}
}

func (c *Checker) checkArrayLit(v *ast.ArrayLit) (types.Type, error) {
	if len(v.Elements) == 0 {
		return types.NewArray(types.Type{Kind: types.Unknown}, 0), nil
	}
	elemT, err := c.checkExpr(v.Elements[0])
	if err != nil {
		return types.Type{}, err
	}
	for _, el := range v.Elements[1:] {
		t, err := c.checkExpr(el)
		if err != nil {
			return types.Type{}, err
		}
		if !t.Equal(elemT) {
			return types.Type{}, mismatch(el.Span(), elemT, t)
		}
	}
	return types.NewArray(elemT, len(v.Elements)), nil
}

func (c *Checker) checkIndex(v *ast.Index) (types.Type, error) {
	arrT, err := c.checkExpr(v.Array)
	if err != nil {
		return types.Type{}, err
	}
	if arrT.Kind != types.Array {
		return types.Type{}, &Error{Kind: ErrNotIndexable, Span: v.Array.Span(), Msg: fmt.Sprintf("%s is not indexable", arrT)}
	}
	idxT, err := c.checkExpr(v.Idx)
	if err != nil {
		return types.Type{}, err
	}
	if idxT.Kind != types.Int {
		return types.Type{}, mismatch(v.Idx.Span(), types.TInt, idxT)
	}
	return *arrT.Elem, nil
}

func (c *Checker) checkCall(v *ast.Call) (types.Type, error) {
	sig, ok := c.funcs[v.Name]
	if !ok {
		if c.resolve(v.Name) != nil {
			return types.Type{}, &Error{Kind: ErrNotCallable, Span: v.Span(), Msg: fmt.Sprintf("%q is not a function", v.Name)}
		}
		return types.Type{}, &Error{Kind: ErrUndefinedName, Span: v.Span(), Msg: fmt.Sprintf("undefined function %q", v.Name)}
	}
	if len(v.Args) != len(sig.params) {
		return types.Type{}, &Error{Kind: ErrArityMismatch, Span: v.Span(), Msg: fmt.Sprintf("%q expects %d arguments, got %d", v.Name, len(sig.params), len(v.Args))}
	}
	for i, arg := range v.Args {
		t, err := c.checkExpr(arg)
		if err != nil {
			return types.Type{}, err
		}
		if !t.Equal(sig.params[i]) {
			return types.Type{}, mismatch(arg.Span(), sig.params[i], t)
		}
	}
	return sig.ret, nil
}

func (c *Checker) checkUnary(v *ast.Unary) (types.Type, error) {
	operandT, err := c.checkExpr(v.Operand)
	if err != nil {
		return types.Type{}, err
	}
	switch v.Op {
	case ast.UnaryNeg:
		if !operandT.IsNumeric() {
			return types.Type{}, mismatch(v.Operand.Span(), types.TInt, operandT)
		}
		return operandT, nil
	case ast.UnaryNot:
		if operandT.Kind != types.Bool {
			return types.Type{}, mismatch(v.Operand.Span(), types.TBool, operandT)
		}
		return types.TBool, nil
	default:
		return types.Type{}, fmt.Errorf("typechecker: unhandled unary op %v", v.Op)
	}
}

func (c *Checker) checkBinary(v *ast.Binary) (types.Type, error) {
	lt, err := c.checkExpr(v.Left)
	if err != nil {
		return types.Type{}, err
	}
	rt, err := c.checkExpr(v.Right)
	if err != nil {
		return types.Type{}, err
	}
	switch v.Op {
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv:
		if !lt.IsNumeric() {
			return types.Type{}, mismatch(v.Left.Span(), types.TInt, lt)
		}
		if !lt.Equal(rt) {
			return types.Type{}, mismatch(v.Right.Span(), lt, rt)
		}
		return lt, nil
	case ast.BinMod:
		if lt.Kind != types.Int {
			return types.Type{}, mismatch(v.Left.Span(), types.TInt, lt)
		}
		if !lt.Equal(rt) {
			return types.Type{}, mismatch(v.Right.Span(), lt, rt)
		}
		return lt, nil
	case ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe:
		if !lt.IsNumeric() {
			return types.Type{}, mismatch(v.Left.Span(), types.TInt, lt)
		}
		if !lt.Equal(rt) {
			return types.Type{}, mismatch(v.Right.Span(), lt, rt)
		}
		return types.TBool, nil
	case ast.BinEq, ast.BinNe:
		if !lt.Equal(rt) {
			return types.Type{}, mismatch(v.Right.Span(), lt, rt)
		}
		return types.TBool, nil
	case ast.BinAnd, ast.BinOr:
		if lt.Kind != types.Bool {
			return types.Type{}, mismatch(v.Left.Span(), types.TBool, lt)
		}
		if rt.Kind != types.Bool {
			return types.Type{}, mismatch(v.Right.Span(), types.TBool, rt)
		}
		return types.TBool, nil
	default:
		return types.Type{}, fmt.Errorf("typechecker: unhandled binary op %v", v.Op)
	}
}
