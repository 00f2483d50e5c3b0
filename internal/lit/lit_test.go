package lit

import (
	"math"
	"testing"
	"unicode/utf8"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
)

func TestStoredRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "привет", "a\tb", "🌸"} {
		b := Stored(s)
		if len(b) != StoredLen(s) {
			t.Fatalf("%q: len(Stored) = %d, StoredLen = %d", s, len(b), StoredLen(s))
		}
		if StoredLen(s) != len([]byte(s))+1 {
			t.Fatalf("%q: StoredLen = %d", s, StoredLen(s))
		}
		if string(b) != s+"\n" {
			t.Fatalf("%q: stored bytes %q", s, b)
		}
		if !utf8.Valid(b) {
			t.Fatalf("%q: stored bytes not valid utf-8", s)
		}
	}
}

func TestStoredDoesNotAlias(t *testing.T) {
	l := ast.Str("hi")
	_ = Stored("hi")
	if s, _ := ast.StringLiteral(l); s != "hi" {
		t.Fatalf("literal mutated: %q", s)
	}
}

func TestImm32(t *testing.T) {
	tests := []struct {
		lit  *ast.Literal
		want int32
		code diag.Code
	}{
		{ast.Int(42), 42, diag.UnknownCode},
		{ast.Int(-7), -7, diag.UnknownCode},
		{ast.Bool(true), 1, diag.UnknownCode},
		{ast.Bool(false), 0, diag.UnknownCode},
		{ast.Int(math.MaxInt32 + 1), 0, diag.SemLiteralOverflow},
		{ast.Str("x"), 0, diag.SemTypeMismatch},
	}
	for _, tt := range tests {
		got, err := Imm32(tt.lit)
		if diag.CodeOf(err) != tt.code {
			t.Fatalf("Imm32(%v) error code = %v, want %v", tt.lit.Value, diag.CodeOf(err), tt.code)
		}
		if err == nil && got != tt.want {
			t.Fatalf("Imm32(%v) = %d, want %d", tt.lit.Value, got, tt.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if string(Digits(0)) != "0" || string(Digits(1234)) != "1234" || string(Digits(math.MaxUint32)) != "4294967295" {
		t.Fatalf("unexpected digits")
	}
}
