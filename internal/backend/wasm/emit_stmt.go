package wasm

import (
	"fmt"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/scope"
	"jasmine/internal/types"
)

func (e *Emitter) stmts(list []ast.Stmt) ([]Expr, error) {
	out := make([]Expr, 0, len(list))
	for _, s := range list {
		x, err := e.stmt(s)
		if err != nil {
			return nil, err
		}
		if x != nil {
			out = append(out, x)
		}
	}
	return out, nil
}

// stmt lowers one statement. Function declarations return nil: they become
// module-level functions, not code in the current body.
func (e *Emitter) stmt(s ast.Stmt) (Expr, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return e.exprStmt(n)
	case *ast.VarDecl:
		return e.varDecl(n)
	case *ast.Block:
		return e.block(n)
	case *ast.If:
		return e.ifStmt(n)
	case *ast.For:
		return e.forStmt(n)
	case *ast.FuncDecl:
		return nil, e.funcDecl(n)
	case *ast.Return:
		return e.returnStmt(n)
	}
	return nil, diag.Errorf(diag.SemUnsupportedConstruct, ast.StmtPos(s), "unsupported statement %T", s)
}

func (e *Emitter) body(s ast.Stmt) ([]Expr, error) {
	if s == nil {
		return nil, nil
	}
	x, err := e.stmt(s)
	if err != nil || x == nil {
		return nil, err
	}
	return []Expr{x}, nil
}

func (e *Emitter) exprStmt(s *ast.ExprStmt) (Expr, error) {
	switch x := s.X.(type) {
	case *ast.Assign:
		return e.assign(x, false)
	case *ast.Call:
		if x.Callee.Text == scope.Builtin {
			return e.println(x)
		}
		call, sig, err := e.call(x)
		if err != nil {
			return nil, err
		}
		if sig.Result == types.Nil {
			return call, nil
		}
		return &Drop{X: call}, nil
	}
	v, err := e.value(s.X)
	if err != nil {
		return nil, err
	}
	return &Drop{X: v}, nil
}

func (e *Emitter) varDecl(d *ast.VarDecl) (Expr, error) {
	fs := e.fn
	actual := scope.TypeOf(d.Init, fs.scope, e.funcs)
	ty := d.Type
	if ty == types.Invalid {
		ty = actual
	}
	if ty == types.Nil || actual == types.Nil {
		return nil, diag.Errorf(diag.SemTypeMismatch, d.Name, "cannot bind a nil value to %q", d.Name.Text)
	}
	if (ty == types.Str) != (actual == types.Str) {
		return nil, diag.Errorf(diag.SemTypeMismatch, d.Name, "cannot initialize %s variable %q with a %s value", ty, d.Name.Text, actual)
	}

	if ty == types.Str {
		addr, n, err := e.strValue(d.Name, d.Init)
		if err != nil {
			return nil, err
		}
		b, err := fs.scope.Declare(d.Name, ty)
		if err != nil {
			return nil, err
		}
		return &Block{Body: []Expr{
			&LocalSet{Index: b.Loc, Value: addr},
			&LocalSet{Index: lenLocal(b.Loc), Value: n},
		}}, nil
	}
	init, err := e.value(d.Init)
	if err != nil {
		return nil, err
	}
	b, err := fs.scope.Declare(d.Name, ty)
	if err != nil {
		return nil, err
	}
	return &LocalSet{Index: b.Loc, Value: init}, nil
}

func (e *Emitter) block(b *ast.Block) (Expr, error) {
	e.fn.scope.Begin()
	defer e.fn.scope.End()
	body, err := e.stmts(b.Stmts)
	if err != nil {
		return nil, err
	}
	return &Block{Body: body}, nil
}

func (e *Emitter) ifStmt(s *ast.If) (Expr, error) {
	cond, err := e.value(s.Cond)
	if err != nil {
		return nil, err
	}
	then, err := e.body(s.Then)
	if err != nil {
		return nil, err
	}
	els, err := e.body(s.Else)
	if err != nil {
		return nil, err
	}
	return &If{Cond: cond, Then: then, Else: els}, nil
}

// forStmt lowers `for v in start..end body` to
//
//	(block $for_end_N
//	  (local.set v start)
//	  (loop $for_loop_N
//	    (br_if $for_end_N (i32.ge_s v end))
//	    body
//	    (local.set v (i32.add v 1))
//	    (br $for_loop_N)))
//
// start and end are resolved before v is declared, so a name in either one
// refers to the enclosing scope. end is re-evaluated on every iteration.
func (e *Emitter) forStmt(s *ast.For) (Expr, error) {
	fs := e.fn
	fs.scope.Begin()
	defer fs.scope.End()

	start, err := e.value(s.Start)
	if err != nil {
		return nil, err
	}
	end, err := e.value(s.End)
	if err != nil {
		return nil, err
	}
	v, err := fs.scope.Declare(s.Var, types.Int)
	if err != nil {
		return nil, err
	}
	body, err := e.body(s.Body)
	if err != nil {
		return nil, err
	}

	id := e.nextLabel()
	exit := fmt.Sprintf("for_end_%d", id)
	top := fmt.Sprintf("for_loop_%d", id)
	loop := &Loop{Label: top}
	loop.Body = append(loop.Body, &BrIf{Label: exit, Cond: &Binary{Op: OpGeS, Left: get(v.Loc), Right: end}})
	loop.Body = append(loop.Body, body...)
	loop.Body = append(loop.Body,
		&LocalSet{Index: v.Loc, Value: &Binary{Op: OpAdd, Left: get(v.Loc), Right: i32(1)}},
		&Br{Label: top},
	)
	return &Block{Label: exit, Body: []Expr{&LocalSet{Index: v.Loc, Value: start}, loop}}, nil
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
		if _, err := fs.scope.Declare(p.Name, p.Type); err != nil {
			return err
		}
	}
	fs.nparams = len(fs.locals)

	fs.scope.Begin()
	var stmts []ast.Stmt
	if d.Body != nil {
		stmts = d.Body.Stmts
	}
	body, err := e.stmts(stmts)
	if err != nil {
		return err
	}
	fs.scope.End()
	fs.scope.End()

	if result != types.Nil && !ast.EndsWithReturn(d.Body) {
		body = append(body, &Unreachable{})
	}
	e.mod.AddFunc(e.finishFunc(fs, body))
	return nil
}

func (e *Emitter) returnStmt(r *ast.Return) (Expr, error) {
	fs := e.fn
	if fs.name == funcMain && r.Value != nil {
		return nil, diag.Errorf(diag.SemTypeMismatch, r.Keyword, "cannot return a value from top-level code")
	}
	if fs.result == types.Nil {
		if r.Value != nil {
			return nil, diag.Errorf(diag.SemTypeMismatch, r.Keyword, "function %q does not return a value", fs.name)
		}
		return &Return{}, nil
	}
	if r.Value == nil {
		return nil, diag.Errorf(diag.SemTypeMismatch, r.Keyword, "function %q must return a %s value", fs.name, fs.result)
	}
	v, err := e.value(r.Value)
	if err != nil {
		return nil, err
	}
	return &Return{Value: v}, nil
}
