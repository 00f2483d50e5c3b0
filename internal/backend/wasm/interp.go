package wasm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxSteps and maxDepth bound interpretation: a runaway loop or recursion
// fails with an error instead of hanging or overflowing the Go stack.
const (
	maxSteps = 50_000_000
	maxDepth = 10_000
)

var (
	errStepLimit = errors.New("wasm: step limit exceeded")
	errCallDepth = errors.New("wasm: call depth limit exceeded")
)

type ctl uint8

const (
	ctlNone ctl = iota
	ctlBr
	ctlReturn
)

type hostFunc func(args []int32) (int32, error)

type callable struct {
	fn   *Func
	host hostFunc
}

// machine runs one module. Imports resolve to host functions or to
// functions exported by the helper module, which shares the same memory.
type machine struct {
	mem    []byte
	funcs  map[string]callable
	stdout io.Writer
	steps  int
	depth  int

	target string
	retVal int32
}

type frame struct {
	locals []int32
}

// Run executes mod's start export and writes program output to stdout.
// helper supplies imported functions other than fd_write (itoa); it may be
// nil when itoa is defined in mod.
func Run(mod *Module, helper *Module, stdout io.Writer) error {
	if mod == nil || mod.Memory == nil {
		return errors.New("wasm: module has no memory")
	}
	m := &machine{
		mem:    make([]byte, int(mod.Memory.Min)*pageSize),
		funcs:  make(map[string]callable),
		stdout: stdout,
	}
	for _, f := range mod.Funcs {
		m.funcs[f.Name] = callable{fn: f}
	}
	for _, imp := range mod.Imports {
		switch {
		case imp.Module == "wasi_snapshot_preview1" && imp.Field == "fd_write":
			m.funcs[imp.Name] = callable{host: m.fdWrite}
		case helper != nil && helper.ExportedFunc(imp.Field) != nil:
			m.funcs[imp.Name] = callable{fn: helper.ExportedFunc(imp.Field)}
		default:
			return fmt.Errorf("wasm: unresolved import %s.%s", imp.Module, imp.Field)
		}
	}
	if len(mod.Exports) == 0 {
		return errors.New("wasm: module has no start export")
	}
	start := mod.Func(mod.Exports[0].Func)
	if start == nil {
		return fmt.Errorf("wasm: start function %q not defined", mod.Exports[0].Func)
	}
	_, err := m.invoke(start, nil)
	return err
}

func (m *machine) invoke(f *Func, args []int32) (int32, error) {
	if m.depth >= maxDepth {
		return 0, fmt.Errorf("%s: %w", f.Name, errCallDepth)
	}
	m.depth++
	defer func() { m.depth-- }()
	fr := &frame{locals: make([]int32, f.NumLocals())}
	copy(fr.locals, args)
	v, c, err := m.seq(fr, f.Body)
	if errors.Is(err, errCallDepth) || errors.Is(err, errStepLimit) {
		// limits are reported once, not wrapped by every frame
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", f.Name, err)
	}
	if c == ctlReturn {
		return m.retVal, nil
	}
	return v, nil
}

func (m *machine) seq(fr *frame, body []Expr) (int32, ctl, error) {
	var last int32
	for _, e := range body {
		v, c, err := m.eval(fr, e)
		if err != nil || c != ctlNone {
			return v, c, err
		}
		last = v
	}
	return last, ctlNone, nil
}

// eval evaluates e. A non-zero ctl means control left e through a branch
// (m.target) or a return (m.retVal).
func (m *machine) eval(fr *frame, e Expr) (int32, ctl, error) {
	m.steps++
	if m.steps > maxSteps {
		return 0, ctlNone, errStepLimit
	}
	switch n := e.(type) {
	case *Const:
		return n.Value, ctlNone, nil
	case *LocalGet:
		return fr.locals[n.Index], ctlNone, nil
	case *LocalSet:
		v, c, err := m.eval(fr, n.Value)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		fr.locals[n.Index] = v
		return 0, ctlNone, nil
	case *LocalTee:
		v, c, err := m.eval(fr, n.Value)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		fr.locals[n.Index] = v
		return v, ctlNone, nil
	case *Binary:
		l, c, err := m.eval(fr, n.Left)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		r, c, err := m.eval(fr, n.Right)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		v, err := binop(n.Op, l, r)
		return v, ctlNone, err
	case *Unary:
		x, c, err := m.eval(fr, n.X)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		return b2i(x == 0), ctlNone, nil
	case *Load:
		a, c, err := m.eval(fr, n.Addr)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		p, err := m.addr(a, n.Offset, 4)
		if err != nil {
			return 0, ctlNone, err
		}
		return int32(binary.LittleEndian.Uint32(m.mem[p:])), ctlNone, nil
	case *Store:
		p, v, c, err := m.storeArgs(fr, n.Addr, n.Value, n.Offset, 4)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		binary.LittleEndian.PutUint32(m.mem[p:], uint32(v))
		return 0, ctlNone, nil
	case *Store8:
		p, v, c, err := m.storeArgs(fr, n.Addr, n.Value, n.Offset, 1)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		m.mem[p] = byte(v)
		return 0, ctlNone, nil
	case *Block:
		v, c, err := m.seq(fr, n.Body)
		if c == ctlBr && m.target == n.Label && n.Label != "" {
			return 0, ctlNone, err
		}
		return v, c, err
	case *Loop:
		for {
			v, c, err := m.seq(fr, n.Body)
			if c == ctlBr && m.target == n.Label && err == nil {
				continue
			}
			return v, c, err
		}
	case *If:
		cond, c, err := m.eval(fr, n.Cond)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		if cond != 0 {
			return m.seq(fr, n.Then)
		}
		return m.seq(fr, n.Else)
	case *Br:
		m.target = n.Label
		return 0, ctlBr, nil
	case *BrIf:
		cond, c, err := m.eval(fr, n.Cond)
		if err != nil || c != ctlNone {
			return 0, c, err
		}
		if cond != 0 {
			m.target = n.Label
			return 0, ctlBr, nil
		}
		return 0, ctlNone, nil
	case *Call:
		args := make([]int32, len(n.Args))
		for i, a := range n.Args {
			v, c, err := m.eval(fr, a)
			if err != nil || c != ctlNone {
				return 0, c, err
			}
			args[i] = v
		}
		callee, ok := m.funcs[n.Func]
		if !ok {
			return 0, ctlNone, fmt.Errorf("call to undefined function $%s", n.Func)
		}
		if callee.host != nil {
			v, err := callee.host(args)
			return v, ctlNone, err
		}
		v, err := m.invoke(callee.fn, args)
		return v, ctlNone, err
	case *Drop:
		_, c, err := m.eval(fr, n.X)
		return 0, c, err
	case *Return:
		if n.Value != nil {
			v, c, err := m.eval(fr, n.Value)
			if err != nil || c != ctlNone {
				return 0, c, err
			}
			m.retVal = v
		}
		return 0, ctlReturn, nil
	case *Nop:
		return 0, ctlNone, nil
	case *Unreachable:
		return 0, ctlNone, errors.New("unreachable executed")
	}
	return 0, ctlNone, fmt.Errorf("unknown expression %T", e)
}

func (m *machine) storeArgs(fr *frame, addr, value Expr, offset uint32, size int) (int, int32, ctl, error) {
	a, c, err := m.eval(fr, addr)
	if err != nil || c != ctlNone {
		return 0, 0, c, err
	}
	v, c, err := m.eval(fr, value)
	if err != nil || c != ctlNone {
		return 0, 0, c, err
	}
	p, err := m.addr(a, offset, size)
	return p, v, ctlNone, err
}

func (m *machine) addr(base int32, offset uint32, size int) (int, error) {
	p := uint64(uint32(base)) + uint64(offset)
	if p+uint64(size) > uint64(len(m.mem)) {
		return 0, fmt.Errorf("out of bounds memory access at %d", p)
	}
	return int(p), nil
}

// fdWrite implements fd_write(fd, iovs, iovs_len, nwritten) for stdout.
func (m *machine) fdWrite(args []int32) (int32, error) {
	fd, iovs, count, nwritten := args[0], args[1], args[2], args[3]
	total := uint32(0)
	for i := int32(0); i < count; i++ {
		rec, err := m.addr(iovs+8*i, 0, 8)
		if err != nil {
			return 0, err
		}
		ptr := binary.LittleEndian.Uint32(m.mem[rec:])
		n := binary.LittleEndian.Uint32(m.mem[rec+4:])
		start, err := m.addr(int32(ptr), 0, int(n))
		if err != nil {
			return 0, err
		}
		if fd == stdoutFD && m.stdout != nil {
			if _, err := m.stdout.Write(m.mem[start : start+int(n)]); err != nil {
				return 0, err
			}
		}
		total += n
	}
	p, err := m.addr(nwritten, 0, 4)
	if err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(m.mem[p:], total)
	return 0, nil
}

func binop(op BinOp, l, r int32) (int32, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDivS:
		if r == 0 {
			return 0, errors.New("integer divide by zero")
		}
		if l == -1<<31 && r == -1 {
			return 0, errors.New("integer overflow")
		}
		return l / r, nil
	case OpDivU:
		if r == 0 {
			return 0, errors.New("integer divide by zero")
		}
		return int32(uint32(l) / uint32(r)), nil
	case OpRemU:
		if r == 0 {
			return 0, errors.New("integer divide by zero")
		}
		return int32(uint32(l) % uint32(r)), nil
	case OpEq:
		return b2i(l == r), nil
	case OpNe:
		return b2i(l != r), nil
	case OpLtS:
		return b2i(l < r), nil
	case OpLeS:
		return b2i(l <= r), nil
	case OpGtS:
		return b2i(l > r), nil
	case OpGeS:
		return b2i(l >= r), nil
	}
	return 0, fmt.Errorf("unknown binary op %d", op)
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
