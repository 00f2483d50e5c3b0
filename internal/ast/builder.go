package ast

import (
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// Small constructors used by decoders and tests. Positions default to line 0.

func Int(v int64) *Literal {
	return &Literal{Tok: token.Token{Kind: token.IntLit}, Value: IntValue(v)}
}

func Bool(v bool) *Literal {
	kind := token.KwFalse
	if v {
		kind = token.KwTrue
	}
	return &Literal{Tok: token.New(kind, "", 0), Value: BoolValue(v)}
}

func Str(v string) *Literal {
	return &Literal{Tok: token.Token{Kind: token.StringLit, Text: v}, Value: StrValue(v)}
}

func Var(name string) *Variable {
	return &Variable{Name: token.NewIdent(name, 0)}
}

func Bin(left Expr, op token.Kind, right Expr) *Binary {
	return &Binary{Left: left, Op: token.New(op, "", 0), Right: right}
}

func Neg(x Expr) *Unary {
	return &Unary{Op: token.New(token.Minus, "", 0), Right: x}
}

func CallOf(name string, args ...Expr) *Call {
	return &Call{Callee: token.NewIdent(name, 0), Args: args}
}

func Println(arg Expr) *ExprStmt {
	return &ExprStmt{X: CallOf("println", arg)}
}

func Let(name string, ty types.Type, init Expr) *VarDecl {
	return &VarDecl{Name: token.NewIdent(name, 0), Type: ty, Init: init}
}

func Set(name string, value Expr) *ExprStmt {
	return &ExprStmt{X: &Assign{Name: token.NewIdent(name, 0), Value: value}}
}

func Blk(stmts ...Stmt) *Block {
	return &Block{Stmts: stmts}
}

func Loop(name string, start, end Expr, body Stmt) *For {
	return &For{Var: token.NewIdent(name, 0), Start: start, End: end, Body: body}
}

func Ret(value Expr) *Return {
	return &Return{Keyword: token.New(token.KwReturn, "", 0), Value: value}
}
