package ast

import (
	"jasmine/internal/token"
)

// Expr is one of *Literal, *Binary, *Unary, *Variable, *Grouping, *Call, *Assign.
type Expr interface {
	exprNode()
	// Pos returns the token used when reporting errors about the expression.
	Pos() token.Token
}

// Value is the payload of a literal: IntValue, BoolValue or StrValue.
type Value interface {
	valueNode()
}

type IntValue int64

type BoolValue bool

type StrValue string

func (IntValue) valueNode()  {}
func (BoolValue) valueNode() {}
func (StrValue) valueNode()  {}

type Literal struct {
	Tok   token.Token
	Value Value
}

type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

type Unary struct {
	Op    token.Token
	Right Expr
}

type Variable struct {
	Name token.Token
}

type Grouping struct {
	Inner Expr
}

// Call invokes a function by name; println is resolved by the backends.
type Call struct {
	Callee token.Token
	Args   []Expr
}

type Assign struct {
	Name  token.Token
	Value Expr
}

func (*Literal) exprNode()  {}
func (*Binary) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Variable) exprNode() {}
func (*Grouping) exprNode() {}
func (*Call) exprNode()     {}
func (*Assign) exprNode()   {}

func (e *Literal) Pos() token.Token  { return e.Tok }
func (e *Binary) Pos() token.Token   { return e.Op }
func (e *Unary) Pos() token.Token    { return e.Op }
func (e *Variable) Pos() token.Token { return e.Name }
func (e *Grouping) Pos() token.Token { return e.Inner.Pos() }
func (e *Call) Pos() token.Token     { return e.Callee }
func (e *Assign) Pos() token.Token   { return e.Name }

// StringLiteral returns the literal text when e is a string literal.
func StringLiteral(e Expr) (string, bool) {
	lit, ok := e.(*Literal)
	if !ok {
		return "", false
	}
	s, ok := lit.Value.(StrValue)
	return string(s), ok
}

// CalleeName returns the name of the function invoked by e when e is a call.
func CalleeName(e Expr) (string, bool) {
	call, ok := e.(*Call)
	if !ok {
		return "", false
	}
	return call.Callee.Text, true
}
