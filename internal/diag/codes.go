package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Семантические: все фатальны для текущей компиляции
	SemInfo                 Code = 3000
	SemRedeclaration        Code = 3002
	SemUndefinedVariable    Code = 3005
	SemTypeMismatch         Code = 3015
	SemInvalidReassignment  Code = 3050
	SemUnsupportedConstruct Code = 3051
	SemArity                Code = 3052
	SemMissingReturn        Code = 3053
	SemLiteralOverflow      Code = 3054
	SemStringPoolExhausted  Code = 3055

	// I/O and interchange
	IOInfo       Code = 4000
	IOInvalidAST Code = 4001
	IOWrite      Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	SemInfo:                 "Semantic information",
	SemRedeclaration:        "Name already declared in this scope",
	SemUndefinedVariable:    "Undefined name",
	SemTypeMismatch:         "Type mismatch",
	SemInvalidReassignment:  "String variables can only be bound to literals",
	SemUnsupportedConstruct: "Unsupported construct",
	SemArity:                "Wrong number of arguments",
	SemMissingReturn:        "Missing return in value function",
	SemLiteralOverflow:      "Integer literal does not fit in 32 bits",
	SemStringPoolExhausted:  "String pool exhausted",
	IOInfo:                  "I/O information",
	IOInvalidAST:            "Invalid AST input",
	IOWrite:                 "Cannot write output",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCodeID is the inverse of Code.ID for known codes.
func ParseCodeID(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
