package ast

import (
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// Stmt is one of *ExprStmt, *VarDecl, *Block, *If, *For, *FuncDecl, *Return.
type Stmt interface {
	stmtNode()
}

type ExprStmt struct {
	X Expr
}

// VarDecl introduces Name in the current frame. Type is types.Invalid when the
// declaration carries no annotation and the type is inferred from Init.
type VarDecl struct {
	Name token.Token
	Type types.Type
	Init Expr
}

type Block struct {
	Stmts []Stmt
}

// If has an optional Else (nil when absent).
type If struct {
	Keyword token.Token
	Cond    Expr
	Then    Stmt
	Else    Stmt
}

// For iterates Var over the half-open range [Start, End).
type For struct {
	Var   token.Token
	Start Expr
	End   Expr
	Body  Stmt
}

type Param struct {
	Name token.Token
	Type types.Type
}

type FuncDecl struct {
	Name   token.Token
	Params []Param
	Result types.Type
	Body   *Block
}

// Return has an optional Value (nil for a bare return).
type Return struct {
	Keyword token.Token
	Value   Expr
}

func (*ExprStmt) stmtNode() {}
func (*VarDecl) stmtNode()  {}
func (*Block) stmtNode()    {}
func (*If) stmtNode()       {}
func (*For) stmtNode()      {}
func (*FuncDecl) stmtNode() {}
func (*Return) stmtNode()   {}

// File is one parsed compilation unit.
type File struct {
	Name  string
	Stmts []Stmt
}

// StmtPos returns the token to blame when reporting an error about s.
func StmtPos(s Stmt) token.Token {
	switch n := s.(type) {
	case *ExprStmt:
		if n.X != nil {
			return n.X.Pos()
		}
	case *VarDecl:
		return n.Name
	case *Block:
		if len(n.Stmts) > 0 {
			return StmtPos(n.Stmts[0])
		}
	case *If:
		return n.Keyword
	case *For:
		return n.Var
	case *FuncDecl:
		return n.Name
	case *Return:
		return n.Keyword
	}
	return token.Token{}
}
