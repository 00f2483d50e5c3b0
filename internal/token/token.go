package token

import "fmt"

// Token is the lexeme plus the position the parser recorded for it.
type Token struct {
	Kind Kind
	Text string
	Line int
}

// New builds a token, deriving Text from the kind for fixed-spelling tokens.
func New(kind Kind, text string, line int) Token {
	if text == "" && kind > StringLit {
		text = kind.String()
	}
	return Token{Kind: kind, Text: text, Line: line}
}

// NewIdent builds an identifier token.
func NewIdent(name string, line int) Token {
	return Token{Kind: Ident, Text: name, Line: line}
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

func (t Token) String() string {
	if t.Line > 0 {
		return fmt.Sprintf("%s %q @%d", t.Kind, t.Text, t.Line)
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
