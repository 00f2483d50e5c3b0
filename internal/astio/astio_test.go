package astio

import (
	"os"
	"path/filepath"
	"testing"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/types"
)

const sampleProgram = `(let x int 5)
(let s "hi\n")
(println (call add x 2))
(for i 0 3 (block
  (println i)))
(if (< x 10) (println "small") (block
  (set x (- x))))
(expr (group (! true)))
(let n -7)
(fn add ((a int) (b int)) int (block
  (return (+ a b))))
(fn hello () nil (block
  (return)))
`

func TestDecodeSexpShape(t *testing.T) {
	file, err := Decode([]byte(sampleProgram), FormatSexp)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(file.Stmts) != 9 {
		t.Fatalf("got %d statements, want 9", len(file.Stmts))
	}
	decl, ok := file.Stmts[0].(*ast.VarDecl)
	if !ok || decl.Name.Text != "x" || decl.Type != types.Int {
		t.Fatalf("stmt 0 = %#v", file.Stmts[0])
	}
	if s, ok := ast.StringLiteral(file.Stmts[1].(*ast.VarDecl).Init); !ok || s != "hi\n" {
		t.Fatalf("string escape not decoded: %q", s)
	}
	loop, ok := file.Stmts[3].(*ast.For)
	if !ok || loop.Var.Line != 4 {
		t.Fatalf("for loop = %#v", file.Stmts[3])
	}
	inner := loop.Body.(*ast.Block).Stmts[0].(*ast.ExprStmt).X.(*ast.Call)
	if inner.Callee.Text != "println" || inner.Callee.Line != 5 {
		t.Fatalf("println inside loop = %+v", inner.Callee)
	}
	fn, ok := file.Stmts[7].(*ast.FuncDecl)
	if !ok || fn.Result != types.Int || len(fn.Params) != 2 || fn.Params[1].Type != types.Int {
		t.Fatalf("fn = %#v", file.Stmts[7])
	}
	neg := file.Stmts[6].(*ast.VarDecl).Init.(*ast.Literal)
	if neg.Value != ast.IntValue(-7) {
		t.Fatalf("negative literal = %#v", neg.Value)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	file, err := Decode([]byte(sampleProgram), FormatSexp)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := Sprint(file); got != sampleProgram {
		t.Fatalf("Print mismatch:\n%s\nwant:\n%s", got, sampleProgram)
	}
}

func TestWireRoundTrip(t *testing.T) {
	file, err := Decode([]byte(sampleProgram), FormatSexp)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, f := range []Format{FormatJSON, FormatMsgpack} {
		data, err := Encode(file, f)
		if err != nil {
			t.Fatalf("Encode(%s): %v", f, err)
		}
		back, err := Decode(data, f)
		if err != nil {
			t.Fatalf("Decode(%s): %v", f, err)
		}
		if got := Sprint(back); got != sampleProgram {
			t.Fatalf("%s round trip changed the program:\n%s", f, got)
		}
		loop := back.Stmts[3].(*ast.For)
		if loop.Var.Line != 4 {
			t.Fatalf("%s lost line info: %d", f, loop.Var.Line)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		src    string
		line   int
	}{
		{"let arity", FormatSexp, "(let x)", 1},
		{"unknown form", FormatSexp, "(foo 1)", 1},
		{"unterminated string", FormatSexp, `(println "abc`, 1},
		{"stray paren", FormatSexp, "(println 1))", 1},
		{"bad ident", FormatSexp, "\n\n(let 5 1)", 3},
		{"too many operands", FormatSexp, "(expr (+ 1 2 3))", 1},
		{"bad escape", FormatSexp, `(println "a\q")`, 1},
		{"huge literal", FormatSexp, "(let x 99999999999999999999)", 1},
		{"unclosed list", FormatSexp, "(block\n(println 1)", 1},
		{"fn body not block", FormatSexp, "(fn f () nil (return))", 1},
		{"json unknown kind", FormatJSON, `{"stmts":[{"kind":"nope","line":4}]}`, 4},
		{"json unknown field", FormatJSON, `{"stmts":[], "extra": 1}`, 0},
		{"json syntax", FormatJSON, "{\n\"stmts\": [\n,]}", 3},
		{"json two payloads", FormatJSON, `{"stmts":[{"kind":"expr","children":[{"kind":"lit","line":2,"int":1,"bool":true}]}]}`, 2},
		{"json bad schema", FormatJSON, `{"schema":9,"stmts":[]}`, 0},
		{"msgpack garbage", FormatMsgpack, "\xc1\xc1", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.src), tc.format)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if code := diag.CodeOf(err); code != diag.IOInvalidAST {
				t.Fatalf("code = %s, want IOInvalidAST (%v)", code.ID(), err)
			}
			de := err.(*diag.Error)
			if de.Line != tc.line {
				t.Fatalf("line = %d, want %d (%v)", de.Line, tc.line, err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":     FormatJSON,
		"dir/b.jasb": FormatMsgpack,
		"c.sexp":     FormatSexp,
		"D.JAS":      FormatSexp,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q) = %v, %v; want %v", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("prog.txt"); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

func TestReadFileNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.jas")
	if err := os.WriteFile(path, []byte("; greeting\n(println \"hi\")\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	file, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if file.Name != "hello" || len(file.Stmts) != 1 {
		t.Fatalf("file = %+v", file)
	}
	if line := ast.StmtPos(file.Stmts[0]).Line; line != 2 {
		t.Fatalf("comment line not counted: line %d", line)
	}
}
