package token_test

import (
	"testing"

	"jasmine/internal/token"
)

func TestLookupOperator(t *testing.T) {
	ops := map[string]token.Kind{
		"+": token.Plus, "-": token.Minus, "*": token.Star, "/": token.Slash,
		"<": token.Lt, "<=": token.LtEq, ">": token.Gt, ">=": token.GtEq,
		"==": token.EqEq, "!=": token.BangEq, "!": token.Bang,
	}
	for text, want := range ops {
		got, ok := token.LookupOperator(text)
		if !ok || got != want {
			t.Fatalf("LookupOperator(%q) = %v, %v; want %v", text, got, ok, want)
		}
	}
	if _, ok := token.LookupOperator("%"); ok {
		t.Fatalf("%% must not be an operator")
	}
}

func TestBinaryAndUnaryOps(t *testing.T) {
	for _, k := range []token.Kind{token.Plus, token.Minus, token.Star, token.Slash, token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq} {
		if !k.IsBinaryOp() {
			t.Fatalf("%v should be a binary operator", k)
		}
	}
	if token.Bang.IsBinaryOp() || token.Assign.IsBinaryOp() {
		t.Fatalf("! and = are not binary operators")
	}
	if !token.Minus.IsUnaryOp() || !token.Bang.IsUnaryOp() || token.Plus.IsUnaryOp() {
		t.Fatalf("unexpected unary operator classification")
	}
}

func TestNewFillsFixedSpelling(t *testing.T) {
	tok := token.New(token.LtEq, "", 3)
	if tok.Text != "<=" || tok.Line != 3 {
		t.Fatalf("unexpected token %v", tok)
	}
	if token.LookupKeyword("return") != token.KwReturn || token.LookupKeyword("x") != token.Ident {
		t.Fatalf("keyword lookup mismatch")
	}
}
