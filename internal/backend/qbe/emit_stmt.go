package qbe

import (
	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/scope"
	"jasmine/internal/types"
)

func (e *Emitter) stmts(list []ast.Stmt) error {
	for _, s := range list {
		if err := e.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return e.exprStmt(n)
	case *ast.VarDecl:
		return e.varDecl(n)
	case *ast.Block:
		e.fn.scope.Begin()
		defer e.fn.scope.End()
		return e.stmts(n.Stmts)
	case *ast.If:
		return e.ifStmt(n)
	case *ast.For:
		return e.forStmt(n)
	case *ast.FuncDecl:
		return e.funcDecl(n)
	case *ast.Return:
		return e.returnStmt(n)
	}
	return diag.Errorf(diag.SemUnsupportedConstruct, ast.StmtPos(s), "unsupported statement %T", s)
}

func (e *Emitter) exprStmt(s *ast.ExprStmt) error {
	switch x := s.X.(type) {
	case *ast.Assign:
		_, err := e.assign(x)
		return err
	case *ast.Call:
		if x.Callee.Text == scope.Builtin {
			return e.println(x)
		}
		_, _, err := e.call(x, false)
		return err
	}
	_, err := e.value(s.X)
	return err
}

func (e *Emitter) varDecl(d *ast.VarDecl) error {
	fs := e.fn
	actual := scope.TypeOf(d.Init, fs.scope, e.funcs)
	ty := d.Type
	if ty == types.Invalid {
		ty = actual
	}
	if ty == types.Nil || actual == types.Nil {
		return diag.Errorf(diag.SemTypeMismatch, d.Name, "cannot bind a nil value to %q", d.Name.Text)
	}
	if (ty == types.Str) != (actual == types.Str) {
		return diag.Errorf(diag.SemTypeMismatch, d.Name, "cannot initialize %s variable %q with a %s value", ty, d.Name.Text, actual)
	}

	var (
		init Value
		err  error
	)
	if ty == types.Str {
		init, err = e.strValue(d.Name, d.Init)
	} else {
		init, err = e.value(d.Init)
	}
	if err != nil {
		return err
	}
	b, err := fs.scope.Declare(d.Name, ty)
	if err != nil {
		return err
	}
	e.emit(&Assign{Dst: b.Loc, Cls: class(ty), Op: "copy", Args: []Value{init}})
	return nil
}

// ifStmt lowers to
//
//	jnz cond, @then, @else|@end
//	@then ... jmp @end
//	@else ... jmp @end
//	@end
//
// A branch that already ended in ret gets no jmp.
func (e *Emitter) ifStmt(s *ast.If) error {
	cond, err := e.value(s.Cond)
	if err != nil {
		return err
	}
	then, end := e.newLabel(), e.newLabel()
	els := end
	if s.Else != nil {
		els = e.newLabel()
	}
	e.emit(&Jnz{Cond: cond, Then: then, Else: els})

	e.label(then)
	if err := e.stmt(s.Then); err != nil {
		return err
	}
	if !e.fn.terminated {
		e.emit(&Jmp{To: end})
	}
	if s.Else != nil {
		e.label(els)
		if err := e.stmt(s.Else); err != nil {
			return err
		}
		if !e.fn.terminated {
			e.emit(&Jmp{To: end})
		}
	}
	e.label(end)
	return nil
}

// forStmt lowers `for v in start..end body` to
//
//	%v =w copy start
//	jmp @cond
//	@cond  %c =w csltw %v, end; jnz %c, @body, @end
//	@body  ... %v =w add %v, 1; jmp @cond
//	@end
//
// v's register is live from the copy on, but the name is bound only after
// end is lowered, so start and end see the enclosing scope.
func (e *Emitter) forStmt(s *ast.For) error {
	fs := e.fn
	fs.scope.Begin()
	defer fs.scope.End()

	start, err := e.value(s.Start)
	if err != nil {
		return err
	}
	reg := e.newReg()
	e.emit(&Assign{Dst: reg, Cls: ClassW, Op: "copy", Args: []Value{start}})

	condL, bodyL, endL := e.newLabel(), e.newLabel(), e.newLabel()
	e.emit(&Jmp{To: condL})
	e.label(condL)
	end, err := e.value(s.End)
	if err != nil {
		return err
	}
	v, err := fs.scope.Bind(s.Var, types.Int, reg)
	if err != nil {
		return err
	}
	c := e.newReg()
	e.emit(&Assign{Dst: c, Cls: ClassW, Op: "csltw", Args: []Value{Reg(v.Loc), end}})
	e.emit(&Jnz{Cond: Reg(c), Then: bodyL, Else: endL})

	e.label(bodyL)
	if err := e.stmt(s.Body); err != nil {
		return err
	}
	e.emit(&Assign{Dst: v.Loc, Cls: ClassW, Op: "add", Args: []Value{Reg(v.Loc), Imm(1)}})
	e.emit(&Jmp{To: condL})
	e.label(endL)
	return nil
}

func (e *Emitter) funcDecl(d *ast.FuncDecl) error {
	result := d.Result
	if result == types.Invalid {
		result = types.Nil
	}
	if result == types.Str {
		return diag.Errorf(diag.SemUnsupportedConstruct, d.Name, "functions cannot return str")
	}
	params := make([]types.Type, len(d.Params))
	for i, p := range d.Params {
		if !p.Type.IsNumeric() {
			return diag.Errorf(diag.SemUnsupportedConstruct, p.Name, "parameter %q must be int or bool, got %s", p.Name.Text, p.Type)
		}
		params[i] = p.Type
	}
	if err := e.funcs.Declare(scope.Signature{Name: d.Name, Params: params, Result: result}); err != nil {
		return err
	}
	if result != types.Nil && !ast.ContainsReturn(d.Body) {
		return diag.Errorf(diag.SemMissingReturn, d.Name, "function %q must return a %s value", d.Name.Text, result)
	}

	saved := e.fn
	defer func() { e.fn = saved }()
	fs := e.beginFunc(scope.Symbol(d.Name.Text), result)
	fs.scope.Begin()
	for _, p := range d.Params {
		b, err := fs.scope.Declare(p.Name, p.Type)
		if err != nil {
			return err
		}
		fs.f.Params = append(fs.f.Params, Param{Cls: class(p.Type), Reg: b.Loc})
	}
	fs.scope.Begin()
	if d.Body != nil {
		if err := e.stmts(d.Body.Stmts); err != nil {
			return err
		}
	}
	fs.scope.End()
	fs.scope.End()

	if !fs.terminated {
		if result == types.Nil {
			e.emit(&Ret{})
		} else {
			e.emit(&Hlt{})
		}
	}
	e.finishFunc(fs)
	return nil
}

func (e *Emitter) returnStmt(r *ast.Return) error {
	fs := e.fn
	if fs.f.Name == funcMain {
		if r.Value != nil {
			return diag.Errorf(diag.SemTypeMismatch, r.Keyword, "cannot return a value from top-level code")
		}
		e.emit(&Ret{Value: Imm(0)})
		return nil
	}
	if fs.result == types.Nil {
		if r.Value != nil {
			return diag.Errorf(diag.SemTypeMismatch, r.Keyword, "function %q does not return a value", fs.f.Name)
		}
		e.emit(&Ret{})
		return nil
	}
	if r.Value == nil {
		return diag.Errorf(diag.SemTypeMismatch, r.Keyword, "function %q must return a %s value", fs.f.Name, fs.result)
	}
	v, err := e.value(r.Value)
	if err != nil {
		return err
	}
	e.emit(&Ret{Value: v})
	return nil
}

// println calls puts for strings and printf("%u\n", v) for numbers. A
// variable argument picks the call by its binding's type.
func (e *Emitter) println(c *ast.Call) error {
	if len(c.Args) != 1 {
		return diag.Errorf(diag.SemArity, c.Callee, "println expects exactly one argument, got %d", len(c.Args))
	}
	arg := unparen(c.Args[0])
	if s, ok := ast.StringLiteral(arg); ok {
		e.emit(&Call{Fn: funcPuts, Args: []Arg{{Cls: ClassL, Val: e.str(s)}}})
		return nil
	}
	if v, ok := arg.(*ast.Variable); ok {
		b, err := e.fn.scope.Resolve(v.Name)
		if err != nil {
			return err
		}
		if b.Type == types.Str {
			e.emit(&Call{Fn: funcPuts, Args: []Arg{{Cls: ClassL, Val: Reg(b.Loc)}}})
			return nil
		}
	}
	if scope.TypeOf(arg, e.fn.scope, e.funcs) == types.Str {
		return diag.Errorf(diag.SemUnsupportedConstruct, arg.Pos(), "only string literals and string variables can be printed")
	}
	v, err := e.value(arg)
	if err != nil {
		return err
	}
	e.emit(&Call{
		Fn:       funcPrint,
		Args:     []Arg{{Cls: ClassL, Val: Sym(fmtInt)}, {Cls: ClassW, Val: v}},
		Variadic: true,
	})
	return nil
}
