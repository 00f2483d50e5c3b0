package wasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

func file(stmts ...ast.Stmt) *ast.File {
	return &ast.File{Name: "test", Stmts: stmts}
}

func run(t *testing.T, f *ast.File, opts Options) string {
	t.Helper()
	mod, err := Compile(f, opts)
	be.Err(t, err, nil)
	var out bytes.Buffer
	var helper *Module
	if !opts.InlineItoa {
		helper = ItoaModule(opts)
	}
	be.Err(t, Run(mod, helper, &out), nil)
	return out.String()
}

func compileErr(t *testing.T, f *ast.File) diag.Code {
	t.Helper()
	_, err := Compile(f, DefaultOptions())
	be.Err(t, err)
	return diag.CodeOf(err)
}

func TestPrintSum(t *testing.T) {
	f := file(
		ast.Let("a", types.Int, ast.Bin(ast.Int(2), token.Plus, ast.Int(3))),
		ast.Println(ast.Var("a")),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "5\n")
}

func TestForLoopIsEndExclusive(t *testing.T) {
	f := file(ast.Loop("i", ast.Int(0), ast.Int(3), ast.Blk(ast.Println(ast.Var("i")))))
	be.Equal(t, run(t, f, DefaultOptions()), "0\n1\n2\n")
}

func TestInlineItoaMatchesHelper(t *testing.T) {
	f := file(
		ast.Println(ast.Int(0)),
		ast.Println(ast.Int(1234567890)),
		ast.Println(ast.Neg(ast.Int(1))),
		ast.Println(ast.Bin(ast.Int(7), token.Slash, ast.Int(2))),
		ast.Println(ast.Bin(ast.Int(2), token.LtEq, ast.Int(1))),
	)
	want := "0\n1234567890\n4294967295\n3\n0\n"
	be.Equal(t, run(t, f, DefaultOptions()), want)

	inline := DefaultOptions()
	inline.InlineItoa = true
	be.Equal(t, run(t, f, inline), want)
}

func TestStrings(t *testing.T) {
	f := file(
		ast.Let("s", types.Invalid, ast.Str("hi")),
		ast.Let("t", types.Str, ast.Var("s")),
		ast.Println(ast.Var("t")),
		ast.Println(ast.Str("literal")),
		ast.Set("s", ast.Str("bye")),
		ast.Println(ast.Var("s")),
		ast.Println(ast.Str("hi")),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "hi\nliteral\nbye\nhi\n")
}

func TestStringReassignedInLoop(t *testing.T) {
	f := file(
		ast.Let("s", types.Str, ast.Str("ab")),
		ast.Loop("i", ast.Int(0), ast.Int(2), ast.Blk(
			ast.Println(ast.Var("s")),
			ast.Set("s", ast.Str("wxyz")),
		)),
		ast.Println(ast.Str("end")),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "ab\nwxyz\nend\n")
}

func TestStringReassignedInSkippedBranch(t *testing.T) {
	f := file(
		ast.Let("s", types.Str, ast.Str("hello")),
		&ast.If{Cond: ast.Bool(false), Then: ast.Set("s", ast.Str("x"))},
		ast.Let("t", types.Str, ast.Var("s")),
		ast.Println(ast.Var("s")),
		ast.Println(ast.Var("t")),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "hello\nhello\n")
}

func TestForEndSeesEnclosingScope(t *testing.T) {
	f := file(
		ast.Let("i", types.Int, ast.Int(2)),
		ast.Loop("i", ast.Int(0), ast.Var("i"), ast.Println(ast.Var("i"))),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "0\n1\n")

	alone := file(ast.Loop("k", ast.Int(0), ast.Var("k"), ast.Println(ast.Var("k"))))
	be.Equal(t, compileErr(t, alone), diag.SemUndefinedVariable)
}

func TestUnboundedRecursionFails(t *testing.T) {
	loop := &ast.FuncDecl{
		Name:   token.NewIdent("f", 1),
		Result: types.Int,
		Body:   ast.Blk(ast.Ret(ast.CallOf("f"))),
	}
	mod, err := Compile(file(loop, ast.Println(ast.CallOf("f"))), DefaultOptions())
	be.Err(t, err, nil)
	var out bytes.Buffer
	be.Err(t, Run(mod, ItoaModule(DefaultOptions()), &out), errCallDepth)
}

func TestStringPoolDedup(t *testing.T) {
	f := file(
		ast.Let("a", types.Str, ast.Str("same")),
		ast.Let("b", types.Str, ast.Str("same")),
		ast.Let("c", types.Str, ast.Str("other")),
	)
	mod, err := Compile(f, DefaultOptions())
	be.Err(t, err, nil)
	text := Text(mod)
	be.True(t, strings.Contains(text, "(i32.const 1024)"))
	be.True(t, strings.Contains(text, "(i32.const 1029)"))
}

func TestShadowingAndIf(t *testing.T) {
	f := file(
		ast.Let("x", types.Int, ast.Int(1)),
		&ast.If{
			Keyword: token.New(token.KwIf, "", 2),
			Cond:    ast.Bin(ast.Var("x"), token.EqEq, ast.Int(1)),
			Then: ast.Blk(
				ast.Let("x", types.Int, ast.Int(2)),
				ast.Println(ast.Var("x")),
			),
			Else: ast.Println(ast.Str("no")),
		},
		ast.Println(ast.Var("x")),
	)
	be.Equal(t, run(t, f, DefaultOptions()), "2\n1\n")
}

func fact() *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:   token.NewIdent("fact", 1),
		Params: []ast.Param{{Name: token.NewIdent("n", 1), Type: types.Int}},
		Result: types.Int,
		Body: ast.Blk(
			&ast.If{
				Cond: ast.Bin(ast.Var("n"), token.LtEq, ast.Int(1)),
				Then: ast.Ret(ast.Int(1)),
			},
			ast.Ret(ast.Bin(ast.Var("n"), token.Star,
				ast.CallOf("fact", ast.Bin(ast.Var("n"), token.Minus, ast.Int(1))))),
		),
	}
}

func TestRecursiveFunction(t *testing.T) {
	f := file(fact(), ast.Println(ast.CallOf("fact", ast.Int(5))))
	be.Equal(t, run(t, f, DefaultOptions()), "120\n")
}

func TestNilFunctionAndEarlyReturn(t *testing.T) {
	show := &ast.FuncDecl{
		Name:   token.NewIdent("show", 1),
		Params: []ast.Param{{Name: token.NewIdent("v", 1), Type: types.Int}},
		Result: types.Nil,
		Body: ast.Blk(
			&ast.If{Cond: ast.Bin(ast.Var("v"), token.Gt, ast.Int(1)), Then: ast.Ret(nil)},
			ast.Println(ast.Var("v")),
		),
	}
	f := file(show, ast.Loop("i", ast.Int(0), ast.Int(4), &ast.ExprStmt{X: ast.CallOf("show", ast.Var("i"))}))
	be.Equal(t, run(t, f, DefaultOptions()), "0\n1\n")
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		file *ast.File
		want diag.Code
	}{
		{"redeclaration", file(ast.Let("x", types.Int, ast.Int(1)), ast.Let("x", types.Int, ast.Int(1))), diag.SemRedeclaration},
		{"undefined", file(ast.Println(ast.Var("nope"))), diag.SemUndefinedVariable},
		{"function isolation", file(
			ast.Let("g", types.Int, ast.Int(1)),
			&ast.FuncDecl{Name: token.NewIdent("f", 2), Result: types.Nil, Body: ast.Blk(ast.Println(ast.Var("g")))},
		), diag.SemUndefinedVariable},
		{"forward call", file(&ast.ExprStmt{X: ast.CallOf("later")}), diag.SemUndefinedVariable},
		{"string reassigned to expression", file(
			ast.Let("s", types.Str, ast.Str("a")),
			ast.Set("s", ast.Bin(ast.Int(1), token.Plus, ast.Int(2))),
		), diag.SemInvalidReassignment},
		{"println arity", file(&ast.ExprStmt{X: ast.CallOf("println", ast.Int(1), ast.Int(2))}), diag.SemArity},
		{"call arity", file(fact(), &ast.ExprStmt{X: ast.CallOf("fact")}), diag.SemArity},
		{"string arithmetic", file(ast.Println(ast.Bin(ast.Str("a"), token.Plus, ast.Int(1)))), diag.SemTypeMismatch},
		{"missing return", file(&ast.FuncDecl{Name: token.NewIdent("f", 1), Result: types.Int, Body: ast.Blk()}), diag.SemMissingReturn},
		{"literal overflow", file(ast.Println(ast.Int(1 << 40))), diag.SemLiteralOverflow},
		{"unsupported operator", file(ast.Println(ast.Bin(ast.Int(1), token.DotDot, ast.Int(2)))), diag.SemUnsupportedConstruct},
		{"reserved name", file(&ast.FuncDecl{Name: token.NewIdent("itoa", 1), Body: ast.Blk()}), diag.SemRedeclaration},
		{"top-level return value", file(ast.Ret(ast.Int(1))), diag.SemTypeMismatch},
		{"names sharing a symbol", file(
			&ast.FuncDecl{Name: token.NewIdent("\u00e9", 1), Body: ast.Blk()},
			&ast.FuncDecl{Name: token.NewIdent("_u00e9", 2), Body: ast.Blk()},
		), diag.SemRedeclaration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, compileErr(t, tt.file), tt.want)
		})
	}
}

func TestStringPoolExhausted(t *testing.T) {
	big := strings.Repeat("x", 600)
	f := file(
		ast.Let("a", types.Str, ast.Str(big+"a")),
		ast.Let("b", types.Str, ast.Str(big+"b")),
	)
	be.Equal(t, compileErr(t, f), diag.SemStringPoolExhausted)
}

func TestCompileIsDeterministic(t *testing.T) {
	build := func() *ast.File {
		return file(
			ast.Let("s", types.Str, ast.Str("x")),
			ast.Loop("i", ast.Int(0), ast.Int(2), ast.Blk(ast.Println(ast.Var("s")), ast.Println(ast.Var("i")))),
			ast.Loop("j", ast.Int(0), ast.Int(2), ast.Println(ast.Var("j"))),
		)
	}
	a, err := Compile(build(), DefaultOptions())
	be.Err(t, err, nil)
	b, err := Compile(build(), DefaultOptions())
	be.Err(t, err, nil)
	be.Equal(t, Text(a), Text(b))
}

func TestTextShape(t *testing.T) {
	mod, err := Compile(file(ast.Println(ast.Int(7))), DefaultOptions())
	be.Err(t, err, nil)
	text := Text(mod)
	for _, want := range []string{
		`(import "wasi_snapshot_preview1" "fd_write" (func $write (param i32 i32 i32 i32) (result i32)))`,
		`(import "itoa" "itoa" (func $itoa (param i32 i32) (result i32)))`,
		`(memory $0 1 2)`,
		`(export "memory" (memory $0))`,
		`(export "_start" (func $main))`,
		`(call $itoa`,
		`(i32.const 92)`,
	} {
		be.True(t, strings.Contains(text, want))
	}
	helper := Text(ItoaModule(DefaultOptions()))
	be.True(t, strings.Contains(helper, `(import "main" "memory" (memory $0 1 2))`))
	be.True(t, strings.Contains(helper, `(export "itoa" (func $itoa))`))
}

func TestValidateRejectsBrokenModules(t *testing.T) {
	bad := []*Module{
		{Funcs: []*Func{{Name: "f", Body: []Expr{&LocalGet{Index: 0}}}}},
		{Funcs: []*Func{{Name: "f", Body: []Expr{&Br{Label: "nowhere"}}}}},
		{Funcs: []*Func{{Name: "f", Body: []Expr{&Store8{Addr: i32(0), Value: i32(1)}}}}},
		{Funcs: []*Func{{Name: "f", Result: I32, Body: []Expr{&Nop{}}}}},
		{Funcs: []*Func{{Name: "f", Body: []Expr{&Call{Func: "g"}}}}},
		{Exports: []Export{{Name: "x", Func: "missing"}}},
	}
	for i, m := range bad {
		if err := Validate(m); err == nil {
			t.Fatalf("module %d: expected validation error", i)
		}
	}
	be.Err(t, Validate(ItoaModule(DefaultOptions())), nil)
}
