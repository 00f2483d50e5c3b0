// Package astio moves syntax trees in and out of the code generator.
//
// The parser lives outside this module; its output arrives in one of three
// encodings. JSON and msgpack share the tagged wire struct in wire.go, the
// S-expression form is meant for people and for golden tests. Every decode
// failure is a *diag.Error with code IOInvalidAST and the offending line.
package astio
