package qbe

import (
	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/lit"
	"jasmine/internal/scope"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

var binaryOps = map[token.Kind]string{
	token.Plus:   "add",
	token.Minus:  "sub",
	token.Star:   "mul",
	token.Slash:  "div",
	token.Lt:     "csltw",
	token.LtEq:   "cslew",
	token.Gt:     "csgtw",
	token.GtEq:   "csgew",
	token.EqEq:   "ceqw",
	token.BangEq: "cnew",
}

// value lowers an expression that must produce an int or bool.
func (e *Emitter) value(x ast.Expr) (Value, error) {
	switch t := scope.TypeOf(x, e.fn.scope, e.funcs); t {
	case types.Str, types.Nil:
		return "", diag.Errorf(diag.SemTypeMismatch, x.Pos(), "expected an int or bool value, found %s", t)
	}
	return e.expr(x)
}

func (e *Emitter) expr(x ast.Expr) (Value, error) {
	switch n := x.(type) {
	case *ast.Literal:
		v, err := lit.Imm32(n)
		if err != nil {
			return "", err
		}
		return Imm(v), nil
	case *ast.Binary:
		op, ok := binaryOps[n.Op.Kind]
		if !ok {
			return "", diag.Errorf(diag.SemUnsupportedConstruct, n.Op, "unsupported binary operator %q", n.Op.Text)
		}
		left, err := e.value(n.Left)
		if err != nil {
			return "", err
		}
		right, err := e.value(n.Right)
		if err != nil {
			return "", err
		}
		dst := e.newReg()
		e.emit(&Assign{Dst: dst, Cls: ClassW, Op: op, Args: []Value{left, right}})
		return Reg(dst), nil
	case *ast.Unary:
		operand, err := e.value(n.Right)
		if err != nil {
			return "", err
		}
		var in *Assign
		switch n.Op.Kind {
		case token.Minus:
			in = &Assign{Cls: ClassW, Op: "sub", Args: []Value{Imm(0), operand}}
		case token.Bang:
			in = &Assign{Cls: ClassW, Op: "ceqw", Args: []Value{operand, Imm(0)}}
		default:
			return "", diag.Errorf(diag.SemUnsupportedConstruct, n.Op, "unsupported unary operator %q", n.Op.Text)
		}
		in.Dst = e.newReg()
		e.emit(in)
		return Reg(in.Dst), nil
	case *ast.Variable:
		b, err := e.fn.scope.Resolve(n.Name)
		if err != nil {
			return "", err
		}
		return Reg(b.Loc), nil
	case *ast.Grouping:
		return e.expr(n.Inner)
	case *ast.Call:
		if n.Callee.Text == scope.Builtin {
			return "", diag.Errorf(diag.SemTypeMismatch, n.Callee, "println does not produce a value")
		}
		v, sig, err := e.call(n, true)
		if err != nil {
			return "", err
		}
		if sig.Result == types.Nil {
			return "", diag.Errorf(diag.SemTypeMismatch, n.Callee, "function %q does not return a value", n.Callee.Text)
		}
		return v, nil
	case *ast.Assign:
		return e.assign(n)
	}
	return "", diag.Errorf(diag.SemUnsupportedConstruct, x.Pos(), "unsupported expression %T", x)
}

// call emits a direct call. With keep and a non-nil result the value lands
// in a fresh register.
func (e *Emitter) call(c *ast.Call, keep bool) (Value, scope.Signature, error) {
	sig, err := e.funcs.Resolve(c.Callee, len(c.Args))
	if err != nil {
		return "", sig, err
	}
	args := make([]Arg, len(c.Args))
	for i, a := range c.Args {
		v, err := e.value(a)
		if err != nil {
			return "", sig, err
		}
		args[i] = Arg{Cls: class(sig.Params[i]), Val: v}
	}
	in := &Call{Fn: scope.Symbol(c.Callee.Text), Args: args}
	if keep && sig.Result != types.Nil {
		in.Dst, in.Cls = e.newReg(), class(sig.Result)
	}
	e.emit(in)
	if in.Dst == "" {
		return "", sig, nil
	}
	return Reg(in.Dst), sig, nil
}

// assign copies the new value into the binding's register and evaluates to it.
func (e *Emitter) assign(a *ast.Assign) (Value, error) {
	fs := e.fn
	b, err := fs.scope.Resolve(a.Name)
	if err != nil {
		return "", err
	}
	var v Value
	if b.Type == types.Str {
		s, ok := ast.StringLiteral(unparen(a.Value))
		if !ok {
			return "", diag.Errorf(diag.SemInvalidReassignment, a.Name, "string variable %q can only be reassigned to a string literal", a.Name.Text)
		}
		v = e.str(s)
	} else if v, err = e.value(a.Value); err != nil {
		return "", err
	}
	e.emit(&Assign{Dst: b.Loc, Cls: class(b.Type), Op: "copy", Args: []Value{v}})
	return Reg(b.Loc), nil
}

func (e *Emitter) strValue(name token.Token, x ast.Expr) (Value, error) {
	switch n := unparen(x).(type) {
	case *ast.Literal:
		if s, ok := ast.StringLiteral(n); ok {
			return e.str(s), nil
		}
	case *ast.Variable:
		b, err := e.fn.scope.Resolve(n.Name)
		if err != nil {
			return "", err
		}
		if b.Type == types.Str {
			return Reg(b.Loc), nil
		}
	}
	return "", diag.Errorf(diag.SemInvalidReassignment, name, "string variable %q can only be bound to a string literal or another string variable", name.Text)
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
