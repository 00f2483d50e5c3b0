// Package ast defines the immutable syntax tree handed to the code generators.
//
// Expr and Stmt are closed sum types: every variant implements an unexported
// marker method, so only this package can add variants and a type switch over
// them is the complete set. Nodes are never mutated after construction; the
// backends derive whatever storage form they need (see internal/lit).
//
// Every node that can be blamed for an error carries a token.Token with the
// line and lexeme the parser saw.
package ast
