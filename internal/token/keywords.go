package token

var keywords = map[string]Kind{
	"let":    KwLet,
	"fn":     KwFn,
	"if":     KwIf,
	"else":   KwElse,
	"for":    KwFor,
	"in":     KwIn,
	"return": KwReturn,
	"true":   KwTrue,
	"false":  KwFalse,
}

// LookupKeyword returns the keyword kind for ident, or Ident when it is not reserved.
func LookupKeyword(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}
