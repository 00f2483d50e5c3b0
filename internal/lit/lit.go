// Package lit holds the literal conversions both backends agree on: the
// stored form of string literals and the 32-bit immediate form of numeric
// and boolean literals.
package lit

import (
	"strconv"

	"fortio.org/safecast"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
)

// Stored returns the bytes a string literal occupies in memory: its UTF-8
// encoding followed by one line feed. The literal itself is never modified.
func Stored(s string) []byte {
	b := make([]byte, 0, len(s)+1)
	b = append(b, s...)
	return append(b, '\n')
}

// StoredLen is len(Stored(s)).
func StoredLen(s string) int {
	return len(s) + 1
}

// Imm32 converts a literal payload into the 32-bit immediate both targets use.
// Booleans become 0/1. Strings have no immediate form.
func Imm32(l *ast.Literal) (int32, error) {
	switch v := l.Value.(type) {
	case ast.IntValue:
		n, err := safecast.Conv[int32](int64(v))
		if err != nil {
			return 0, diag.Errorf(diag.SemLiteralOverflow, l.Tok, "integer literal %d does not fit in 32 bits", int64(v))
		}
		return n, nil
	case ast.BoolValue:
		if v {
			return 1, nil
		}
		return 0, nil
	case ast.StrValue:
		return 0, diag.Errorf(diag.SemTypeMismatch, l.Tok, "string literal used as a number")
	}
	return 0, diag.Errorf(diag.SemUnsupportedConstruct, l.Tok, "unsupported literal")
}

// Digits renders v the way the itoa helper does: unsigned decimal, "0" for zero.
func Digits(v uint32) []byte {
	return strconv.AppendUint(nil, uint64(v), 10)
}
