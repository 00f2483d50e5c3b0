package astio

import (
	"strconv"
	"strings"

	"jasmine/internal/ast"
	"jasmine/internal/scope"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

func decodeSexp(src []byte) (*ast.File, error) {
	data, err := readAll(src)
	if err != nil {
		return nil, err
	}
	file := &ast.File{Stmts: make([]ast.Stmt, 0, len(data))}
	for _, d := range data {
		s, err := sexpStmt(d)
		if err != nil {
			return nil, err
		}
		file.Stmts = append(file.Stmts, s)
	}
	return file, nil
}

func arity(d *sexp, minN, maxN int) error {
	got := len(d.items) - 1
	if got >= minN && got <= maxN {
		return nil
	}
	if minN == maxN {
		return invalid(d.line, d.head(), "(%s ...) takes %d operands, got %d", d.head(), minN, got)
	}
	return invalid(d.line, d.head(), "(%s ...) takes %d to %d operands, got %d", d.head(), minN, maxN, got)
}

func sexpIdent(d *sexp) (token.Token, error) {
	if d.kind != sexpSymbol || !isIdent(d.text) {
		return token.Token{}, invalid(d.line, d.text, "expected an identifier")
	}
	return token.NewIdent(d.text, d.line), nil
}

// isNumber accepts an optional leading '-' so printed negative literals read back.
func isNumber(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func isIdent(s string) bool {
	if s == "" || isNumber(s) {
		return false
	}
	if token.LookupKeyword(s) != token.Ident {
		return false
	}
	if _, isOp := token.LookupOperator(s); isOp {
		return false
	}
	return true
}

func sexpType(d *sexp) (types.Type, error) {
	if d.kind != sexpSymbol {
		return types.Invalid, invalid(d.line, d.text, "expected a type name")
	}
	ty, err := types.Parse(d.text)
	if err != nil {
		return types.Invalid, invalid(d.line, d.text, "%v", err)
	}
	return ty, nil
}

func sexpStmt(d *sexp) (ast.Stmt, error) {
	if d.kind != sexpList {
		return nil, invalid(d.line, d.text, "expected a statement form")
	}
	switch d.head() {
	case "expr":
		if err := arity(d, 1, 1); err != nil {
			return nil, err
		}
		x, err := sexpExpr(d.items[1])
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	case "println", "call", "set":
		x, err := sexpExpr(d)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil
	case "let":
		if err := arity(d, 2, 3); err != nil {
			return nil, err
		}
		name, err := sexpIdent(d.items[1])
		if err != nil {
			return nil, err
		}
		decl := &ast.VarDecl{Name: name}
		rest := d.items[2:]
		if len(rest) == 2 {
			if decl.Type, err = sexpType(rest[0]); err != nil {
				return nil, err
			}
			rest = rest[1:]
		}
		if decl.Init, err = sexpExpr(rest[0]); err != nil {
			return nil, err
		}
		return decl, nil
	case "block":
		return sexpBlock(d)
	case "if":
		if err := arity(d, 2, 3); err != nil {
			return nil, err
		}
		cond, err := sexpExpr(d.items[1])
		if err != nil {
			return nil, err
		}
		then, err := sexpStmt(d.items[2])
		if err != nil {
			return nil, err
		}
		st := &ast.If{Keyword: token.New(token.KwIf, "", d.line), Cond: cond, Then: then}
		if len(d.items) == 4 {
			if st.Else, err = sexpStmt(d.items[3]); err != nil {
				return nil, err
			}
		}
		return st, nil
	case "for":
		if err := arity(d, 4, 4); err != nil {
			return nil, err
		}
		name, err := sexpIdent(d.items[1])
		if err != nil {
			return nil, err
		}
		start, err := sexpExpr(d.items[2])
		if err != nil {
			return nil, err
		}
		end, err := sexpExpr(d.items[3])
		if err != nil {
			return nil, err
		}
		body, err := sexpStmt(d.items[4])
		if err != nil {
			return nil, err
		}
		return &ast.For{Var: name, Start: start, End: end, Body: body}, nil
	case "fn":
		return sexpFunc(d)
	case "return":
		if err := arity(d, 0, 1); err != nil {
			return nil, err
		}
		ret := &ast.Return{Keyword: token.New(token.KwReturn, "", d.line)}
		if len(d.items) == 2 {
			v, err := sexpExpr(d.items[1])
			if err != nil {
				return nil, err
			}
			ret.Value = v
		}
		return ret, nil
	}
	return nil, invalid(d.line, d.head(), "unknown statement form")
}

func sexpBlock(d *sexp) (*ast.Block, error) {
	if d.head() != "block" {
		return nil, invalid(d.line, d.head(), "expected (block ...)")
	}
	b := &ast.Block{Stmts: make([]ast.Stmt, 0, len(d.items)-1)}
	for _, item := range d.items[1:] {
		s, err := sexpStmt(item)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

// sexpFunc decodes (fn NAME ((P TYPE)...) TYPE (block ...)).
func sexpFunc(d *sexp) (*ast.FuncDecl, error) {
	if err := arity(d, 4, 4); err != nil {
		return nil, err
	}
	name, err := sexpIdent(d.items[1])
	if err != nil {
		return nil, err
	}
	plist := d.items[2]
	if plist.kind != sexpList {
		return nil, invalid(plist.line, plist.text, "expected a parameter list")
	}
	params := make([]ast.Param, 0, len(plist.items))
	for _, p := range plist.items {
		if p.kind != sexpList || len(p.items) != 2 {
			return nil, invalid(p.line, p.text, "parameter must be (NAME TYPE)")
		}
		pname, err := sexpIdent(p.items[0])
		if err != nil {
			return nil, err
		}
		pty, err := sexpType(p.items[1])
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname, Type: pty})
	}
	result, err := sexpType(d.items[3])
	if err != nil {
		return nil, err
	}
	body, err := sexpBlock(d.items[4])
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Name: name, Params: params, Result: result, Body: body}, nil
}

func sexpExpr(d *sexp) (ast.Expr, error) {
	switch d.kind {
	case sexpString:
		return strLiteral(d.text, d.line), nil
	case sexpSymbol:
		return sexpAtom(d)
	}
	head := d.head()
	switch head {
	case "":
		return nil, invalid(d.line, "(", "expected an operator or form name")
	case "group":
		if err := arity(d, 1, 1); err != nil {
			return nil, err
		}
		x, err := sexpExpr(d.items[1])
		if err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: x}, nil
	case "call", scope.Builtin:
		args := d.items[1:]
		callee := token.NewIdent(scope.Builtin, d.line)
		if head == "call" {
			if len(args) == 0 {
				return nil, invalid(d.line, head, "(call ...) needs a function name")
			}
			var err error
			if callee, err = sexpIdent(args[0]); err != nil {
				return nil, err
			}
			args = args[1:]
		}
		call := &ast.Call{Callee: callee, Args: make([]ast.Expr, 0, len(args))}
		for _, a := range args {
			x, err := sexpExpr(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, x)
		}
		return call, nil
	case "set":
		if err := arity(d, 2, 2); err != nil {
			return nil, err
		}
		name, err := sexpIdent(d.items[1])
		if err != nil {
			return nil, err
		}
		v, err := sexpExpr(d.items[2])
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: name, Value: v}, nil
	}

	op, ok := token.LookupOperator(head)
	if !ok {
		return nil, invalid(d.line, head, "unknown expression form")
	}
	operands := make([]ast.Expr, 0, 2)
	for _, item := range d.items[1:] {
		x, err := sexpExpr(item)
		if err != nil {
			return nil, err
		}
		operands = append(operands, x)
	}
	opTok := token.New(op, "", d.line)
	switch {
	case len(operands) == 1 && op.IsUnaryOp():
		return &ast.Unary{Op: opTok, Right: operands[0]}, nil
	case len(operands) == 2 && op.IsBinaryOp():
		return &ast.Binary{Left: operands[0], Op: opTok, Right: operands[1]}, nil
	}
	return nil, invalid(d.line, head, "operator %s cannot take %d operands", head, len(operands))
}

func sexpAtom(d *sexp) (ast.Expr, error) {
	switch {
	case d.text == "true" || d.text == "false":
		return boolLiteral(d.text == "true", d.line), nil
	case isNumber(d.text):
		v, err := strconv.ParseInt(d.text, 10, 64)
		if err != nil {
			return nil, invalid(d.line, d.text, "malformed integer literal")
		}
		return intLiteral(v, d.line), nil
	}
	name, err := sexpIdent(d)
	if err != nil {
		return nil, err
	}
	return &ast.Variable{Name: name}, nil
}
