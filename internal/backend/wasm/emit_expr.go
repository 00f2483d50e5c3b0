package wasm

import (
	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/lit"
	"jasmine/internal/scope"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

var binaryOps = map[token.Kind]BinOp{
	token.Plus:   OpAdd,
	token.Minus:  OpSub,
	token.Star:   OpMul,
	token.Slash:  OpDivS,
	token.Lt:     OpLtS,
	token.LtEq:   OpLeS,
	token.Gt:     OpGtS,
	token.GtEq:   OpGeS,
	token.EqEq:   OpEq,
	token.BangEq: OpNe,
}

// value lowers an expression that must produce an int or bool.
func (e *Emitter) value(x ast.Expr) (Expr, error) {
	switch t := scope.TypeOf(x, e.fn.scope, e.funcs); t {
	case types.Str, types.Nil:
		return nil, diag.Errorf(diag.SemTypeMismatch, x.Pos(), "expected an int or bool value, found %s", t)
	}
	return e.expr(x)
}

func (e *Emitter) expr(x ast.Expr) (Expr, error) {
	switch n := x.(type) {
	case *ast.Literal:
		v, err := lit.Imm32(n)
		if err != nil {
			return nil, err
		}
		return i32(v), nil
	case *ast.Binary:
		op, ok := binaryOps[n.Op.Kind]
		if !ok {
			return nil, diag.Errorf(diag.SemUnsupportedConstruct, n.Op, "unsupported binary operator %q", n.Op.Text)
		}
		left, err := e.value(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.value(n.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right}, nil
	case *ast.Unary:
		operand, err := e.value(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op.Kind {
		case token.Minus:
			return &Binary{Op: OpSub, Left: i32(0), Right: operand}, nil
		case token.Bang:
			return &Unary{Op: OpEqz, X: operand}, nil
		}
		return nil, diag.Errorf(diag.SemUnsupportedConstruct, n.Op, "unsupported unary operator %q", n.Op.Text)
	case *ast.Variable:
		b, err := e.fn.scope.Resolve(n.Name)
		if err != nil {
			return nil, err
		}
		return get(b.Loc), nil
	case *ast.Grouping:
		return e.expr(n.Inner)
	case *ast.Call:
		if n.Callee.Text == scope.Builtin {
			return nil, diag.Errorf(diag.SemTypeMismatch, n.Callee, "println does not produce a value")
		}
		call, sig, err := e.call(n)
		if err != nil {
			return nil, err
		}
		if sig.Result == types.Nil {
			return nil, diag.Errorf(diag.SemTypeMismatch, n.Callee, "function %q does not return a value", n.Callee.Text)
		}
		return call, nil
	case *ast.Assign:
		return e.assign(n, true)
	}
	return nil, diag.Errorf(diag.SemUnsupportedConstruct, x.Pos(), "unsupported expression %T", x)
}

func (e *Emitter) call(c *ast.Call) (*Call, scope.Signature, error) {
	sig, err := e.funcs.Resolve(c.Callee, len(c.Args))
	if err != nil {
		return nil, sig, err
	}
	args := make([]Expr, len(c.Args))
	for i, a := range c.Args {
		if args[i], err = e.value(a); err != nil {
			return nil, sig, err
		}
	}
	return &Call{Func: scope.Symbol(c.Callee.Text), Args: args, Result: valType(sig.Result)}, sig, nil
}

// assign reuses the binding's local. With keep the assigned value stays on
// the stack. A Str assignment also stores the literal's length in the
// companion local.
func (e *Emitter) assign(a *ast.Assign, keep bool) (Expr, error) {
	fs := e.fn
	b, err := fs.scope.Resolve(a.Name)
	if err != nil {
		return nil, err
	}
	if b.Type == types.Str {
		s, ok := ast.StringLiteral(unparen(a.Value))
		if !ok {
			return nil, diag.Errorf(diag.SemInvalidReassignment, a.Name, "string variable %q can only be reassigned to a string literal", a.Name.Text)
		}
		addr, err := e.pooled(a.Name, s)
		if err != nil {
			return nil, err
		}
		n, err := imm(lit.StoredLen(s))
		if err != nil {
			return nil, err
		}
		setLen := &LocalSet{Index: lenLocal(b.Loc), Value: n}
		if keep {
			return &Block{Result: I32, Body: []Expr{setLen, &LocalTee{Index: b.Loc, Value: addr}}}, nil
		}
		return &Block{Body: []Expr{setLen, &LocalSet{Index: b.Loc, Value: addr}}}, nil
	}
	v, err := e.value(a.Value)
	if err != nil {
		return nil, err
	}
	if keep {
		return &LocalTee{Index: b.Loc, Value: v}, nil
	}
	return &LocalSet{Index: b.Loc, Value: v}, nil
}

// strValue lowers the initializer of a str binding to its address and its
// stored length.
func (e *Emitter) strValue(name token.Token, x ast.Expr) (addr, n Expr, err error) {
	switch v := unparen(x).(type) {
	case *ast.Literal:
		if s, ok := ast.StringLiteral(v); ok {
			if addr, err = e.pooled(v.Tok, s); err != nil {
				return nil, nil, err
			}
			size, err := imm(lit.StoredLen(s))
			if err != nil {
				return nil, nil, err
			}
			return addr, size, nil
		}
	case *ast.Variable:
		b, err := e.fn.scope.Resolve(v.Name)
		if err != nil {
			return nil, nil, err
		}
		if b.Type == types.Str {
			return get(b.Loc), get(lenLocal(b.Loc)), nil
		}
	}
	return nil, nil, diag.Errorf(diag.SemInvalidReassignment, name, "string variable %q can only be bound to a string literal or another string variable", name.Text)
}

func unparen(x ast.Expr) ast.Expr {
	for {
		g, ok := x.(*ast.Grouping)
		if !ok {
			return x
		}
		x = g.Inner
	}
}
