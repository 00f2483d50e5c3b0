// Package diagfmt renders diagnostic bags for people (Pretty) and for tools
// (JSON). It never decides what is an error; it only prints what diag
// collected.
package diagfmt
