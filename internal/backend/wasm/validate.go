package wasm

import (
	"errors"
	"fmt"
)

// anyType is the stack type after an unconditional transfer of control.
const anyType ValType = 0xff

type label struct {
	name   string
	result ValType
}

type validator struct {
	sigs   map[string]signature
	fn     *Func
	labels []label
	memory bool
}

// Validate checks the structural rules the text form must satisfy before it
// is handed to an external linker or runtime.
func Validate(m *Module) error {
	if m == nil {
		return errors.New("nil module")
	}
	sigs, err := m.signatures()
	if err != nil {
		return err
	}
	if mem := m.Memory; mem != nil && mem.Max > 0 && mem.Max < mem.Min {
		return fmt.Errorf("memory max %d below min %d", mem.Max, mem.Min)
	}
	seen := make(map[string]bool, len(m.Exports))
	for _, e := range m.Exports {
		if seen[e.Name] {
			return fmt.Errorf("duplicate export %q", e.Name)
		}
		seen[e.Name] = true
		if m.Func(e.Func) == nil {
			return fmt.Errorf("export %q refers to undefined function %q", e.Name, e.Func)
		}
	}
	v := &validator{sigs: sigs, memory: m.Memory != nil}
	for _, f := range m.Funcs {
		v.fn = f
		v.labels = v.labels[:0]
		if err := v.seq(f.Body, f.Result); err != nil {
			return fmt.Errorf("func $%s: %w", f.Name, err)
		}
	}
	return nil
}

func fits(got, want ValType) bool {
	return got == want || got == anyType
}

// seq checks a body whose value, if any, comes from its last expression.
func (v *validator) seq(body []Expr, result ValType) error {
	if len(body) == 0 {
		if result != None {
			return fmt.Errorf("empty body must produce %s", result)
		}
		return nil
	}
	for i, e := range body {
		t, err := v.check(e)
		if err != nil {
			return err
		}
		want := None
		if i == len(body)-1 {
			want = result
		}
		if !fits(t, want) {
			return fmt.Errorf("expression %d of %d leaves %s, want %s", i+1, len(body), t, want)
		}
	}
	return nil
}

func (v *validator) operand(e Expr, what string) error {
	t, err := v.check(e)
	if err != nil {
		return err
	}
	if !fits(t, I32) {
		return fmt.Errorf("%s: expected i32 operand, got %s", what, t)
	}
	return nil
}

func (v *validator) local(idx uint32) error {
	if int(idx) >= v.fn.NumLocals() {
		return fmt.Errorf("local index %d out of range (%d locals)", idx, v.fn.NumLocals())
	}
	return nil
}

func (v *validator) target(name string) (label, error) {
	for i := len(v.labels) - 1; i >= 0; i-- {
		if v.labels[i].name == name {
			return v.labels[i], nil
		}
	}
	return label{}, fmt.Errorf("branch to unknown label $%s", name)
}

func (v *validator) needMemory(op string) error {
	if !v.memory {
		return fmt.Errorf("%s without memory", op)
	}
	return nil
}

func (v *validator) check(e Expr) (ValType, error) {
	switch n := e.(type) {
	case *Const:
		return I32, nil
	case *LocalGet:
		return I32, v.local(n.Index)
	case *LocalSet:
		if err := v.local(n.Index); err != nil {
			return None, err
		}
		return None, v.operand(n.Value, "local.set")
	case *LocalTee:
		if err := v.local(n.Index); err != nil {
			return None, err
		}
		return I32, v.operand(n.Value, "local.tee")
	case *Binary:
		if err := v.operand(n.Left, n.Op.String()); err != nil {
			return None, err
		}
		return I32, v.operand(n.Right, n.Op.String())
	case *Unary:
		return I32, v.operand(n.X, n.Op.String())
	case *Load:
		if err := v.needMemory("i32.load"); err != nil {
			return None, err
		}
		return I32, v.operand(n.Addr, "i32.load")
	case *Store:
		return None, v.store("i32.store", n.Addr, n.Value)
	case *Store8:
		return None, v.store("i32.store8", n.Addr, n.Value)
	case *Block:
		v.labels = append(v.labels, label{name: n.Label, result: n.Result})
		err := v.seq(n.Body, n.Result)
		v.labels = v.labels[:len(v.labels)-1]
		return n.Result, err
	case *Loop:
		v.labels = append(v.labels, label{name: n.Label})
		err := v.seq(n.Body, None)
		v.labels = v.labels[:len(v.labels)-1]
		return None, err
	case *If:
		if err := v.operand(n.Cond, "if"); err != nil {
			return None, err
		}
		if n.Result != None && len(n.Else) == 0 {
			return None, errors.New("if with a result needs an else branch")
		}
		v.labels = append(v.labels, label{})
		defer func() { v.labels = v.labels[:len(v.labels)-1] }()
		if err := v.seq(n.Then, n.Result); err != nil {
			return None, err
		}
		return n.Result, v.seq(n.Else, n.Result)
	case *Br:
		l, err := v.target(n.Label)
		if err != nil {
			return None, err
		}
		if l.result != None {
			return None, fmt.Errorf("br $%s: branches carrying values are not supported", n.Label)
		}
		return anyType, nil
	case *BrIf:
		l, err := v.target(n.Label)
		if err != nil {
			return None, err
		}
		if l.result != None {
			return None, fmt.Errorf("br_if $%s: branches carrying values are not supported", n.Label)
		}
		return None, v.operand(n.Cond, "br_if")
	case *Call:
		sig, ok := v.sigs[n.Func]
		if !ok {
			return None, fmt.Errorf("call to undefined function $%s", n.Func)
		}
		if len(sig.params) != len(n.Args) {
			return None, fmt.Errorf("call $%s: %d arguments, want %d", n.Func, len(n.Args), len(sig.params))
		}
		if sig.result != n.Result {
			return None, fmt.Errorf("call $%s: result %s, want %s", n.Func, n.Result, sig.result)
		}
		for _, a := range n.Args {
			if err := v.operand(a, "call $"+n.Func); err != nil {
				return None, err
			}
		}
		return sig.result, nil
	case *Drop:
		return None, v.operand(n.X, "drop")
	case *Return:
		if v.fn.Result == None {
			if n.Value != nil {
				return None, errors.New("return with a value in a function without result")
			}
			return anyType, nil
		}
		if n.Value == nil {
			return None, errors.New("return without a value")
		}
		return anyType, v.operand(n.Value, "return")
	case *Nop:
		return None, nil
	case *Unreachable:
		return anyType, nil
	}
	return None, fmt.Errorf("unknown expression %T", e)
}

func (v *validator) store(op string, addr, value Expr) error {
	if err := v.needMemory(op); err != nil {
		return err
	}
	if err := v.operand(addr, op); err != nil {
		return err
	}
	return v.operand(value, op)
}
