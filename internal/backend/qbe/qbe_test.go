package qbe

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

func run(t *testing.T, f *ast.File) string {
	t.Helper()
	mod, err := Compile(f, Options{})
	be.Err(t, err, nil)
	var out bytes.Buffer
	be.Err(t, Run(mod, &out), nil)
	return out.String()
}

func TestRegName(t *testing.T) {
	tests := map[int]string{0: "a", 1: "b", 25: "z", 26: "aa", 27: "ab", 51: "az", 52: "ba", 701: "zz", 702: "aaa"}
	for n, want := range tests {
		be.Equal(t, regName(n), want)
	}
}

func TestPrintSum(t *testing.T) {
	f := file(
		ast.Let("a", types.Int, ast.Bin(ast.Int(2), token.Plus, ast.Int(3))),
		ast.Println(ast.Var("a")),
	)
	be.Equal(t, run(t, f), "5\n")
}

func TestForLoop(t *testing.T) {
	f := file(ast.Loop("i", ast.Int(0), ast.Int(3), ast.Blk(ast.Println(ast.Var("i")))))
	be.Equal(t, run(t, f), "0\n1\n2\n")

	mod, err := Compile(f, Options{})
	be.Err(t, err, nil)
	text := Text(mod)
	be.True(t, strings.Contains(text, "csltw"))
	be.True(t, strings.Contains(text, "jmp @L0"))
}

func TestStringsUsePuts(t *testing.T) {
	f := file(
		ast.Let("s", types.Invalid, ast.Str("hi")),
		ast.Println(ast.Var("s")),
		ast.Println(ast.Str("hi")),
		ast.Set("s", ast.Str("bye \"q\"")),
		ast.Println(ast.Var("s")),
		ast.Println(ast.Neg(ast.Int(1))),
	)
	be.Equal(t, run(t, f), "hi\nhi\nbye \"q\"\n4294967295\n")

	mod, err := Compile(f, Options{})
	be.Err(t, err, nil)
	be.Equal(t, len(mod.Data), 3)
	text := Text(mod)
	be.True(t, strings.Contains(text, `data $fmt_int = { b "%u\n", b 0 }`))
	be.True(t, strings.Contains(text, `data $str0 = { b "hi", b 0 }`))
	be.True(t, strings.Contains(text, `data $str1 = { b "bye \"q\"", b 0 }`))
	be.True(t, strings.Contains(text, "call $puts(l $str0)"))
	be.True(t, strings.Contains(text, "call $printf(l $fmt_int, ..., w "))
}

func TestMainShape(t *testing.T) {
	mod, err := Compile(file(ast.Println(ast.Int(1))), Options{})
	be.Err(t, err, nil)
	text := Text(mod)
	be.True(t, strings.Contains(text, "export function w $main() {\n@start\n"))
	be.True(t, strings.HasSuffix(text, "\tret 0\n}\n"))
}

func TestIfElseSkipsJumpAfterReturn(t *testing.T) {
	sign := &ast.FuncDecl{
		Name:   token.NewIdent("sign", 1),
		Params: []ast.Param{{Name: token.NewIdent("n", 1), Type: types.Int}},
		Result: types.Int,
		Body: ast.Blk(
			&ast.If{
				Cond: ast.Bin(ast.Var("n"), token.Lt, ast.Int(0)),
				Then: ast.Ret(ast.Int(0)),
				Else: ast.Ret(ast.Int(1)),
			},
		),
	}
	f := file(sign,
		ast.Println(ast.CallOf("sign", ast.Int(-5))),
		ast.Println(ast.CallOf("sign", ast.Int(5))),
	)
	be.Equal(t, run(t, f), "0\n1\n")

	mod, err := Compile(f, Options{})
	be.Err(t, err, nil)
	body := mod.Func("sign").Body
	for i := 1; i < len(body); i++ {
		if _, ok := body[i].(*Jmp); ok {
			if _, prevRet := body[i-1].(*Ret); prevRet {
				t.Fatalf("jmp emitted right after ret at %d", i)
			}
		}
	}
	_, last := body[len(body)-1].(*Hlt)
	be.True(t, last)
}

func TestRecursion(t *testing.T) {
	fib := &ast.FuncDecl{
		Name:   token.NewIdent("fib", 1),
		Params: []ast.Param{{Name: token.NewIdent("n", 1), Type: types.Int}},
		Result: types.Int,
		Body: ast.Blk(
			&ast.If{Cond: ast.Bin(ast.Var("n"), token.Lt, ast.Int(2)), Then: ast.Ret(ast.Var("n"))},
			ast.Ret(ast.Bin(
				ast.CallOf("fib", ast.Bin(ast.Var("n"), token.Minus, ast.Int(1))),
				token.Plus,
				ast.CallOf("fib", ast.Bin(ast.Var("n"), token.Minus, ast.Int(2))),
			)),
		),
	}
	f := file(fib, ast.Loop("i", ast.Int(0), ast.Int(8), ast.Println(ast.CallOf("fib", ast.Var("i")))))
	be.Equal(t, run(t, f), "0\n1\n1\n2\n3\n5\n8\n13\n")
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
	be.Equal(t, run(t, f), "ab\nwxyz\nend\n")
}

func TestForEndSeesEnclosingScope(t *testing.T) {
	f := file(
		ast.Let("i", types.Int, ast.Int(2)),
		ast.Loop("i", ast.Int(0), ast.Var("i"), ast.Println(ast.Var("i"))),
	)
	be.Equal(t, run(t, f), "0\n1\n")
}

func TestUnboundedRecursionFails(t *testing.T) {
	loop := &ast.FuncDecl{
		Name:   token.NewIdent("f", 1),
		Result: types.Int,
		Body:   ast.Blk(ast.Ret(ast.CallOf("f"))),
	}
	mod, err := Compile(file(loop, ast.Println(ast.CallOf("f"))), Options{})
	be.Err(t, err, nil)
	var out bytes.Buffer
	be.Err(t, Run(mod, &out), errCallDepth)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		file *ast.File
		want diag.Code
	}{
		{"redeclaration", file(ast.Let("x", types.Int, ast.Int(1)), ast.Let("x", types.Int, ast.Int(2))), diag.SemRedeclaration},
		{"undefined", file(ast.Println(ast.Var("y"))), diag.SemUndefinedVariable},
		{"function isolation", file(
			ast.Let("g", types.Int, ast.Int(1)),
			&ast.FuncDecl{Name: token.NewIdent("f", 2), Body: ast.Blk(ast.Println(ast.Var("g")))},
		), diag.SemUndefinedVariable},
		{"string reassigned to variable", file(
			ast.Let("s", types.Str, ast.Str("a")),
			ast.Let("n", types.Int, ast.Int(1)),
			ast.Set("s", ast.Var("n")),
		), diag.SemInvalidReassignment},
		{"println arity", file(&ast.ExprStmt{X: ast.CallOf("println")}), diag.SemArity},
		{"str param", file(&ast.FuncDecl{
			Name:   token.NewIdent("f", 1),
			Params: []ast.Param{{Name: token.NewIdent("s", 1), Type: types.Str}},
			Body:   ast.Blk(),
		}), diag.SemUnsupportedConstruct},
		{"reserved puts", file(&ast.FuncDecl{Name: token.NewIdent("puts", 1), Body: ast.Blk()}), diag.SemRedeclaration},
		{"mismatched init", file(ast.Let("x", types.Int, ast.Str("no"))), diag.SemTypeMismatch},
		{"names sharing a symbol", file(
			&ast.FuncDecl{Name: token.NewIdent("\u00e9", 1), Body: ast.Blk()},
			&ast.FuncDecl{Name: token.NewIdent("_u00e9", 2), Body: ast.Blk()},
		), diag.SemRedeclaration},
		{"loop bound before its variable", file(
			ast.Loop("k", ast.Int(0), ast.Var("k"), ast.Println(ast.Var("k"))),
		), diag.SemUndefinedVariable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.file, Options{})
			be.Err(t, err)
			be.Equal(t, diag.CodeOf(err), tt.want)
		})
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	build := func() *ast.File {
		return file(
			ast.Let("s", types.Str, ast.Str("x")),
			ast.Loop("i", ast.Int(0), ast.Int(2), ast.Blk(ast.Println(ast.Var("s")), ast.Println(ast.Var("i")))),
		)
	}
	a, err := Compile(build(), Options{})
	be.Err(t, err, nil)
	b, err := Compile(build(), Options{})
	be.Err(t, err, nil)
	be.Equal(t, Text(a), Text(b))
}

func TestQuote(t *testing.T) {
	be.Equal(t, quote("a\"b\\c\n"), `"a\"b\\c\n"`)
	be.Equal(t, quote("é"), `"\303\251"`)
}
