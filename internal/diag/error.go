package diag

import (
	"errors"
	"fmt"

	"jasmine/internal/token"
)

// Error is a fatal compile error. Backends return it from the first failing
// lowering call; nothing they produced before it is considered valid.
type Error struct {
	Code   Code
	Line   int
	Lexeme string
	Msg    string
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Title()
	}
	if e.Line > 0 {
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, msg)
	}
	if e.Lexeme != "" {
		return fmt.Sprintf("Error at '%s': %s", e.Lexeme, msg)
	}
	return "Error: " + msg
}

// Is matches another *Error with the same code, so errors.Is(err, &Error{Code: c})
// works without comparing positions.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// Diagnostic converts the error into a bag entry.
func (e *Error) Diagnostic() Diagnostic {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Title()
	}
	return New(SevError, e.Code, e.Line, e.Lexeme, msg)
}

// Errorf builds an *Error blamed on tok.
func Errorf(code Code, tok token.Token, format string, args ...any) *Error {
	return &Error{
		Code:   code,
		Line:   tok.Line,
		Lexeme: tok.Text,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the diagnostic code from err, or UnknownCode.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return UnknownCode
}
