package scope

import (
	"fmt"
	"strings"
)

// Symbol maps a source function name to a target-safe symbol: ASCII letters,
// digits and underscores pass through, every other rune becomes _uXXXX.
func Symbol(name string) string {
	name = Normalize(name)
	plain := true
	for _, r := range name {
		if !isSymbolRune(r) {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	var sb strings.Builder
	for _, r := range name {
		if isSymbolRune(r) {
			sb.WriteRune(r)
			continue
		}
		fmt.Fprintf(&sb, "_u%04x", r)
	}
	return sb.String()
}

func isSymbolRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
