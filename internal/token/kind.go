package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit represents an integer literal.
	IntLit
	// StringLit represents a string literal.
	StringLit

	KwLet    // let
	KwFn     // fn
	KwIf     // if
	KwElse   // else
	KwFor    // for
	KwIn     // in
	KwReturn // return
	KwTrue   // true
	KwFalse  // false

	Plus   // +
	Minus  // -
	Star   // *
	Slash  // /
	Bang   // !
	BangEq // !=
	Assign // =
	EqEq   // ==
	Lt     // <
	LtEq   // <=
	Gt     // >
	GtEq   // >=
	Arrow  // ->
	DotDot // ..

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Comma     // ,
	Colon     // :
	Semicolon // ;
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	IntLit:    "IntLit",
	StringLit: "StringLit",
	KwLet:     "let",
	KwFn:      "fn",
	KwIf:      "if",
	KwElse:    "else",
	KwFor:     "for",
	KwIn:      "in",
	KwReturn:  "return",
	KwTrue:    "true",
	KwFalse:   "false",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Bang:      "!",
	BangEq:    "!=",
	Assign:    "=",
	EqEq:      "==",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	Arrow:     "->",
	DotDot:    "..",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	Comma:     ",",
	Colon:     ":",
	Semicolon: ";",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// IsBinaryOp reports whether k can appear as the operator of a binary expression.
func (k Kind) IsBinaryOp() bool {
	switch k {
	case Plus, Minus, Star, Slash, EqEq, BangEq, Lt, LtEq, Gt, GtEq:
		return true
	default:
		return false
	}
}

// IsUnaryOp reports whether k can appear as the operator of a unary expression.
func (k Kind) IsUnaryOp() bool {
	return k == Minus || k == Bang
}

// LookupOperator maps operator text to its kind.
func LookupOperator(text string) (Kind, bool) {
	for k := Plus; k <= DotDot; k++ {
		if kindNames[k] == text {
			return k, true
		}
	}
	return Invalid, false
}
