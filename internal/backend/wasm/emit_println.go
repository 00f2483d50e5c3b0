package wasm

import (
	"fortio.org/safecast"

	"jasmine/internal/ast"
	"jasmine/internal/diag"
	"jasmine/internal/lit"
	"jasmine/internal/scope"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// println writes one buffer to stdout through the imported fd_write. The
// buffer is a string variable's pooled bytes, a literal copied to the
// scratch area, or itoa's digits followed by a line feed.
func (e *Emitter) println(c *ast.Call) (Expr, error) {
	if len(c.Args) != 1 {
		return nil, diag.Errorf(diag.SemArity, c.Callee, "println expects exactly one argument, got %d", len(c.Args))
	}
	arg := unparen(c.Args[0])

	if s, ok := ast.StringLiteral(arg); ok {
		stores, err := e.storeAt(c.Callee, literalScratch, s)
		if err != nil {
			return nil, err
		}
		n, err := imm(lit.StoredLen(s))
		if err != nil {
			return nil, err
		}
		body := append(stores, e.write(i32(literalScratch), n)...)
		return &Block{Body: body}, nil
	}

	if v, ok := arg.(*ast.Variable); ok {
		b, err := e.fn.scope.Resolve(v.Name)
		if err != nil {
			return nil, err
		}
		if b.Type == types.Str {
			return &Block{Body: e.write(get(b.Loc), get(lenLocal(b.Loc)))}, nil
		}
	}

	if scope.TypeOf(arg, e.fn.scope, e.funcs) == types.Str {
		return nil, diag.Errorf(diag.SemUnsupportedConstruct, arg.Pos(), "only string literals and string variables can be printed")
	}
	v, err := e.value(arg)
	if err != nil {
		return nil, err
	}
	tmp, err := e.fn.scratch()
	if err != nil {
		return nil, err
	}
	body := []Expr{
		&LocalSet{Index: tmp, Value: &Call{Func: funcItoa, Args: []Expr{v, i32(numBuf)}, Result: I32}},
		&Store8{Addr: &Binary{Op: OpAdd, Left: i32(numBuf), Right: get(tmp)}, Value: i32('\n')},
	}
	body = append(body, e.write(i32(numBuf), &Binary{Op: OpAdd, Left: get(tmp), Right: i32(1)})...)
	return &Block{Body: body}, nil
}

// write fills the iovec record and calls fd_write(1, iovec, 1, nwritten).
func (e *Emitter) write(ptr, n Expr) []Expr {
	return []Expr{
		&Store{Addr: i32(iovecBase), Value: ptr},
		&Store{Addr: i32(iovecLen), Value: n},
		&Drop{X: &Call{
			Func:   funcWrite,
			Args:   []Expr{i32(stdoutFD), i32(iovecBase), i32(1), i32(nwrittenAddr)},
			Result: I32,
		}},
	}
}

// pooled stores s in the string pool and evaluates to its address. Equal
// literals share one pool entry; the bytes are stored again on every
// evaluation.
func (e *Emitter) pooled(tok token.Token, s string) (Expr, error) {
	addr, ok := e.pool[s]
	if !ok {
		n, err := safecast.Conv[uint32](lit.StoredLen(s))
		if err != nil {
			return nil, diag.Errorf(diag.SemStringPoolExhausted, tok, "string literal too long")
		}
		if e.cursor+n > literalScratch {
			return nil, diag.Errorf(diag.SemStringPoolExhausted, tok, "string pool exhausted: %d bytes left, literal needs %d", literalScratch-e.cursor, n)
		}
		addr = e.cursor
		e.pool[s] = addr
		e.cursor += n
	}
	stores, err := e.storeAt(tok, addr, s)
	if err != nil {
		return nil, err
	}
	return &Block{Result: I32, Body: append(stores, i32(int32(addr)))}, nil
}

// storeAt emits one byte store per stored byte of s, starting at addr.
func (e *Emitter) storeAt(tok token.Token, addr uint32, s string) ([]Expr, error) {
	b := lit.Stored(s)
	limit := uint64(e.opts.MemoryMin) * pageSize
	if uint64(addr)+uint64(len(b)) > limit {
		return nil, diag.Errorf(diag.SemStringPoolExhausted, tok, "string literal of %d bytes does not fit in memory", len(b))
	}
	base, err := safecast.Conv[int32](addr)
	if err != nil {
		return nil, diag.Errorf(diag.SemStringPoolExhausted, tok, "string address out of range")
	}
	out := make([]Expr, len(b))
	for i, c := range b {
		out[i] = &Store8{Offset: uint32(i), Addr: i32(base), Value: i32(int32(c))}
	}
	return out, nil
}
