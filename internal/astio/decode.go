package astio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// ReadFile loads and decodes the AST stored at path. The format comes from
// the extension and File.Name from the base name without it.
func ReadFile(path string) (*ast.File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	file, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return file, nil
}

// Decode parses data in the given encoding.
func Decode(data []byte, f Format) (*ast.File, error) {
	switch f {
	case FormatSexp:
		return decodeSexp(data)
	case FormatJSON:
		var wf wireFile
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&wf); err != nil {
			return nil, jsonError(data, err)
		}
		return fromWire(&wf)
	case FormatMsgpack:
		var wf wireFile
		if err := msgpack.Unmarshal(data, &wf); err != nil {
			return nil, invalid(0, "", "malformed msgpack AST: %v", err)
		}
		return fromWire(&wf)
	}
	return nil, fmt.Errorf("decode: unsupported format %s", f)
}

// Encode serializes file as JSON or msgpack.
func Encode(file *ast.File, f Format) ([]byte, error) {
	wf, err := toWire(file)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		return json.MarshalIndent(wf, "", "  ")
	case FormatMsgpack:
		return msgpack.Marshal(wf)
	}
	return nil, fmt.Errorf("encode: unsupported format %s", f)
}

func invalid(line int, lexeme, format string, args ...any) *diag.Error {
	return diag.Errorf(diag.IOInvalidAST, token.Token{Text: lexeme, Line: line}, format, args...)
}

// jsonError attaches the input line to syntax and type errors.
func jsonError(data []byte, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return invalid(lineAt(data, syn.Offset), "", "malformed JSON AST: %v", err)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return invalid(lineAt(data, typ.Offset), typ.Field, "malformed JSON AST: %v", err)
	}
	return invalid(0, "", "malformed JSON AST: %v", err)
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte{'\n'}) + 1
}

func fromWire(wf *wireFile) (*ast.File, error) {
	if wf.Schema != 0 && wf.Schema != schemaVersion {
		return nil, invalid(0, "", "unsupported AST schema %d (want %d)", wf.Schema, schemaVersion)
	}
	file := &ast.File{Name: wf.Name, Stmts: make([]ast.Stmt, 0, len(wf.Stmts))}
	for _, n := range wf.Stmts {
		s, err := wireStmt(n)
		if err != nil {
			return nil, err
		}
		file.Stmts = append(file.Stmts, s)
	}
	return file, nil
}

func wantChildren(n *wireNode, minN, maxN int) error {
	if got := len(n.Children); got < minN || got > maxN {
		if minN == maxN {
			return invalid(n.Line, n.Kind, "%s node needs %d children, got %d", n.Kind, minN, got)
		}
		return invalid(n.Line, n.Kind, "%s node needs %d to %d children, got %d", n.Kind, minN, maxN, got)
	}
	for _, c := range n.Children {
		if c == nil {
			return invalid(n.Line, n.Kind, "%s node has a null child", n.Kind)
		}
	}
	return nil
}

func wireType(n *wireNode, name string) (types.Type, error) {
	if name == "" {
		return types.Invalid, nil
	}
	ty, err := types.Parse(name)
	if err != nil {
		return types.Invalid, invalid(n.Line, name, "%v", err)
	}
	return ty, nil
}

func wireName(n *wireNode) (token.Token, error) {
	if n.Name == "" {
		return token.Token{}, invalid(n.Line, n.Kind, "%s node is missing a name", n.Kind)
	}
	return token.NewIdent(n.Name, n.Line), nil
}

func wireStmt(n *wireNode) (ast.Stmt, error) {
	if n == nil {
		return nil, invalid(0, "", "null statement")
	}
	switch n.Kind {
	case kindExpr:
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		x, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	case kindLet:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		ty, err := wireType(n, n.Type)
		if err != nil {
			return nil, err
		}
		init, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.VarDecl{Name: name, Type: ty, Init: init}, nil
	case kindBlock:
		return wireBlock(n)
	case kindIf:
		if err := wantChildren(n, 2, 3); err != nil {
			return nil, err
		}
		cond, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		then, err := wireStmt(n.Children[1])
		if err != nil {
			return nil, err
		}
		st := &ast.If{Keyword: token.New(token.KwIf, "", n.Line), Cond: cond, Then: then}
		if len(n.Children) == 3 {
			if st.Else, err = wireStmt(n.Children[2]); err != nil {
				return nil, err
			}
		}
		return st, nil
	case kindFor:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		if err := wantChildren(n, 3, 3); err != nil {
			return nil, err
		}
		start, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		end, err := wireExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		body, err := wireStmt(n.Children[2])
		if err != nil {
			return nil, err
		}
		return &ast.For{Var: name, Start: start, End: end, Body: body}, nil
	case kindFn:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		result, err := wireType(n, n.Type)
		if err != nil {
			return nil, err
		}
		if result == types.Invalid {
			result = types.Nil
		}
		params := make([]ast.Param, len(n.Params))
		for i, p := range n.Params {
			if p.Name == "" || p.Type == "" {
				return nil, invalid(p.Line, n.Name, "parameter %d of %q needs a name and a type", i, n.Name)
			}
			ty, err := types.Parse(p.Type)
			if err != nil {
				return nil, invalid(p.Line, p.Type, "%v", err)
			}
			params[i] = ast.Param{Name: token.NewIdent(p.Name, p.Line), Type: ty}
		}
		if n.Children[0].Kind != kindBlock {
			return nil, invalid(n.Children[0].Line, n.Children[0].Kind, "function body must be a block")
		}
		body, err := wireBlock(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.FuncDecl{Name: name, Params: params, Result: result, Body: body}, nil
	case kindReturn:
		if err := wantChildren(n, 0, 1); err != nil {
			return nil, err
		}
		ret := &ast.Return{Keyword: token.New(token.KwReturn, "", n.Line)}
		if len(n.Children) == 1 {
			v, err := wireExpr(n.Children[0])
			if err != nil {
				return nil, err
			}
			ret.Value = v
		}
		return ret, nil
	}
	return nil, invalid(n.Line, n.Kind, "unknown statement kind %q", n.Kind)
}

func wireBlock(n *wireNode) (*ast.Block, error) {
	b := &ast.Block{Stmts: make([]ast.Stmt, 0, len(n.Children))}
	for _, c := range n.Children {
		s, err := wireStmt(c)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func wireExpr(n *wireNode) (ast.Expr, error) {
	if n == nil {
		return nil, invalid(0, "", "null expression")
	}
	switch n.Kind {
	case kindLit:
		return wireLiteral(n)
	case kindBinary:
		if err := wantChildren(n, 2, 2); err != nil {
			return nil, err
		}
		op, ok := token.LookupOperator(n.Name)
		if !ok || !op.IsBinaryOp() {
			return nil, invalid(n.Line, n.Name, "unknown binary operator %q", n.Name)
		}
		left, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := wireExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: left, Op: token.New(op, "", n.Line), Right: right}, nil
	case kindUnary:
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		op, ok := token.LookupOperator(n.Name)
		if !ok || !op.IsUnaryOp() {
			return nil, invalid(n.Line, n.Name, "unknown unary operator %q", n.Name)
		}
		x, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: token.New(op, "", n.Line), Right: x}, nil
	case kindVar:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		return &ast.Variable{Name: name}, nil
	case kindGroup:
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		x, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: x}, nil
	case kindCall:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		call := &ast.Call{Callee: name, Args: make([]ast.Expr, 0, len(n.Children))}
		for _, c := range n.Children {
			arg, err := wireExpr(c)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		return call, nil
	case kindAssign:
		name, err := wireName(n)
		if err != nil {
			return nil, err
		}
		if err := wantChildren(n, 1, 1); err != nil {
			return nil, err
		}
		v, err := wireExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name, Value: v}, nil
	}
	return nil, invalid(n.Line, n.Kind, "unknown expression kind %q", n.Kind)
}

func wireLiteral(n *wireNode) (*ast.Literal, error) {
	set := 0
	for _, present := range []bool{n.Int != nil, n.Str != nil, n.Bool != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, invalid(n.Line, n.Kind, "literal needs exactly one of int, str, bool")
	}
	switch {
	case n.Int != nil:
		return intLiteral(*n.Int, n.Line), nil
	case n.Str != nil:
		return strLiteral(*n.Str, n.Line), nil
	default:
		return boolLiteral(*n.Bool, n.Line), nil
	}
}

func intLiteral(v int64, line int) *ast.Literal {
	tok := token.Token{Kind: token.IntLit, Text: strconv.FormatInt(v, 10), Line: line}
	return &ast.Literal{Tok: tok, Value: ast.IntValue(v)}
}

func strLiteral(s string, line int) *ast.Literal {
	return &ast.Literal{Tok: token.Token{Kind: token.StringLit, Text: s, Line: line}, Value: ast.StrValue(s)}
}

func boolLiteral(v bool, line int) *ast.Literal {
	kind := token.KwFalse
	if v {
		kind = token.KwTrue
	}
	return &ast.Literal{Tok: token.New(kind, "", line), Value: ast.BoolValue(v)}
}
