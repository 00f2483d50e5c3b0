package scope

import (
	"jasmine/internal/diag"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// Builtin is the one function every program can call without declaring it.
const Builtin = "println"

type Signature struct {
	Name   token.Token
	Params []types.Type
	Result types.Type
}

// Funcs maps function names to signatures in declaration order. A call can
// only see functions declared before it. Distinct names that mangle to the
// same Symbol are rejected, since they would define one target function twice.
type Funcs struct {
	sigs     map[string]Signature
	symbols  map[string]token.Token
	order    []string
	reserved map[string]struct{}
}

// NewFuncs returns a table with println reserved plus any backend symbols
// user functions must not shadow.
func NewFuncs(reserved ...string) *Funcs {
	f := &Funcs{
		sigs:     make(map[string]Signature),
		symbols:  make(map[string]token.Token),
		reserved: map[string]struct{}{Builtin: {}},
	}
	for _, r := range reserved {
		f.reserved[r] = struct{}{}
	}
	return f
}

func (f *Funcs) Declare(sig Signature) error {
	key := Normalize(sig.Name.Text)
	if _, ok := f.reserved[key]; ok {
		return diag.Errorf(diag.SemRedeclaration, sig.Name, "%q is a reserved function name", sig.Name.Text)
	}
	if _, ok := f.sigs[key]; ok {
		return diag.Errorf(diag.SemRedeclaration, sig.Name, "function %q is already declared", sig.Name.Text)
	}
	sym := Symbol(key)
	if _, ok := f.reserved[sym]; ok {
		return diag.Errorf(diag.SemRedeclaration, sig.Name, "function %q maps to the reserved symbol %q", sig.Name.Text, sym)
	}
	if prev, ok := f.symbols[sym]; ok {
		return diag.Errorf(diag.SemRedeclaration, sig.Name, "function %q maps to symbol %q, already used by %q (line %d)", sig.Name.Text, sym, prev.Text, prev.Line)
	}
	f.sigs[key] = sig
	f.symbols[sym] = sig.Name
	f.order = append(f.order, key)
	return nil
}

func (f *Funcs) Lookup(name string) (Signature, bool) {
	sig, ok := f.sigs[Normalize(name)]
	return sig, ok
}

// Resolve checks that the callee exists and receives the right number of
// arguments.
func (f *Funcs) Resolve(callee token.Token, nargs int) (Signature, error) {
	sig, ok := f.Lookup(callee.Text)
	if !ok {
		return Signature{}, diag.Errorf(diag.SemUndefinedVariable, callee, "undefined function %q", callee.Text)
	}
	if len(sig.Params) != nargs {
		return Signature{}, diag.Errorf(diag.SemArity, callee, "%s expects %d argument(s), got %d", callee.Text, len(sig.Params), nargs)
	}
	return sig, nil
}

// Names returns declared function names in declaration order.
func (f *Funcs) Names() []string {
	return append([]string(nil), f.order...)
}
