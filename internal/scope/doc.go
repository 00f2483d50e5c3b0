// Package scope resolves source names for the code generators.
//
// A Chain is a stack of frames mapping names to bindings. The storage
// location type L is chosen by each backend: a local index for the wasm
// emitter, a virtual register name for the qbe emitter. Every backend
// compilation owns its own chains and its own Funcs table; nothing here is
// shared between compilations.
package scope
