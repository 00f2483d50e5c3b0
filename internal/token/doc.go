// Package token defines the token kinds that survive into the AST.
// Invariants:
//   - Token.Text is the lexeme exactly as the parser saw it.
//   - Token.Line is 1-based; 0 means the position is unknown.
//   - Type names (int, str, bool, nil) are identifiers here; internal/types maps them.
package token
