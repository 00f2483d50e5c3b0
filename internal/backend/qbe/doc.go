// Package qbe lowers a jasmine AST to QBE intermediate language.
//
// Output is flat: every function is a list of labeled instructions over
// virtual registers, and control flow is explicit jmp/jnz. Printing goes
// through libc: puts for strings, printf with the shared $fmt_int format
// for numbers.
package qbe
