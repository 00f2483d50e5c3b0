// Package diag defines the diagnostic model shared by the decoder, the code
// generators and the build pipeline.
//
// # Data model
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (SEM3002, IO4001, ...), a short Message and the position
// (file, line, lexeme) the producer blamed.
//
// Code generation is fatal on the first problem: backends return a *Error,
// which carries the same fields and satisfies the error interface. The build
// pipeline turns that error into a Diagnostic inside a Bag; rendering lives in
// internal/diagfmt.
//
// Package diag does no formatting beyond Error() and no I/O.
package diag
