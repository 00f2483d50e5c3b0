// Package wasm lowers a jasmine AST to a structured WebAssembly module.
//
// The emitter builds an in-memory IR (Module, Func and a folded expression
// tree) rather than text, so the module can be validated and interpreted
// before it is serialized. Output goes through two host imports: WASI
// fd_write for printing and an itoa helper that renders a number into
// linear memory. The helper is produced separately by ItoaModule, or
// defined in-module when Options.InlineItoa is set.
//
// Fixed memory layout:
//
//	0..7       iovec record (base pointer, length)
//	66..91     numeric scratch buffer written by itoa
//	92..95     fd_write nwritten result
//	1024..2047 string pool, grows upward
//	2048..     scratch area for printing string literals
package wasm
