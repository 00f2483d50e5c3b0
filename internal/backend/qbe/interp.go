package qbe

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jasmine/internal/lit"
)

// maxSteps and maxDepth bound interpretation: a runaway loop or recursion
// fails with an error instead of hanging or overflowing the Go stack.
const (
	maxSteps = 50_000_000
	maxDepth = 10_000
)

var (
	errStepLimit = errors.New("qbe: step limit exceeded")
	errCallDepth = errors.New("qbe: call depth limit exceeded")
)

// cell is a register value: a 32-bit word or the address of a data symbol.
type cell struct {
	w   int32
	sym string
}

type machine struct {
	mod    *Module
	data   map[string]string
	stdout io.Writer
	steps  int
	depth  int
}

// Run interprets the exported main function of mod, providing puts and
// printf against stdout.
func Run(mod *Module, stdout io.Writer) error {
	m := &machine{mod: mod, data: make(map[string]string), stdout: stdout}
	for _, d := range mod.Data {
		m.data[d.Name] = d.Str
	}
	main := mod.Func(funcMain)
	if main == nil {
		return errors.New("qbe: no main function")
	}
	ret, err := m.invoke(main, nil)
	if err != nil {
		return err
	}
	if ret.w != 0 {
		return fmt.Errorf("qbe: main returned %d", ret.w)
	}
	return nil
}

func (m *machine) invoke(f *Func, args []cell) (cell, error) {
	if m.depth >= maxDepth {
		return cell{}, fmt.Errorf("$%s: %w", f.Name, errCallDepth)
	}
	m.depth++
	defer func() { m.depth-- }()
	if len(args) != len(f.Params) {
		return cell{}, fmt.Errorf("qbe: $%s called with %d arguments, want %d", f.Name, len(args), len(f.Params))
	}
	regs := make(map[string]cell, len(f.Params))
	for i, p := range f.Params {
		regs[p.Reg] = args[i]
	}
	labels := make(map[string]int)
	for i, in := range f.Body {
		if l, ok := in.(*Label); ok {
			labels[l.Name] = i
		}
	}
	jump := func(name string) (int, error) {
		pc, ok := labels[name]
		if !ok {
			return 0, fmt.Errorf("qbe: $%s: jump to unknown label @%s", f.Name, name)
		}
		return pc, nil
	}

	for pc := 0; pc < len(f.Body); pc++ {
		m.steps++
		if m.steps > maxSteps {
			return cell{}, errStepLimit
		}
		switch n := f.Body[pc].(type) {
		case *Label:
		case *Assign:
			v, err := m.assign(regs, n)
			if err != nil {
				return cell{}, fmt.Errorf("qbe: $%s: %w", f.Name, err)
			}
			regs[n.Dst] = v
		case *Call:
			v, err := m.call(regs, n)
			if err != nil {
				return cell{}, err
			}
			if n.Dst != "" {
				regs[n.Dst] = v
			}
		case *Jmp:
			target, err := jump(n.To)
			if err != nil {
				return cell{}, err
			}
			pc = target
		case *Jnz:
			c, err := m.read(regs, n.Cond)
			if err != nil {
				return cell{}, err
			}
			to := n.Else
			if c.w != 0 {
				to = n.Then
			}
			target, err := jump(to)
			if err != nil {
				return cell{}, err
			}
			pc = target
		case *Ret:
			if n.Value == "" {
				return cell{}, nil
			}
			return m.read(regs, n.Value)
		case *Hlt:
			return cell{}, fmt.Errorf("qbe: $%s: hlt executed", f.Name)
		}
	}
	return cell{}, fmt.Errorf("qbe: $%s: fell off the end", f.Name)
}

func (m *machine) read(regs map[string]cell, v Value) (cell, error) {
	switch {
	case v.IsReg():
		c, ok := regs[v.Name()]
		if !ok {
			return cell{}, fmt.Errorf("read of undefined register %s", v)
		}
		return c, nil
	case v.IsSym():
		if _, ok := m.data[v.Name()]; !ok {
			return cell{}, fmt.Errorf("undefined data symbol %s", v)
		}
		return cell{sym: v.Name()}, nil
	}
	n, err := strconv.ParseInt(string(v), 10, 32)
	if err != nil {
		return cell{}, fmt.Errorf("bad operand %q", v)
	}
	return cell{w: int32(n)}, nil
}

func (m *machine) assign(regs map[string]cell, in *Assign) (cell, error) {
	args := make([]cell, len(in.Args))
	for i, a := range in.Args {
		c, err := m.read(regs, a)
		if err != nil {
			return cell{}, err
		}
		args[i] = c
	}
	if in.Op == "copy" {
		return args[0], nil
	}
	if len(args) != 2 {
		return cell{}, fmt.Errorf("%s expects 2 operands", in.Op)
	}
	l, r := args[0].w, args[1].w
	switch in.Op {
	case "add":
		return cell{w: l + r}, nil
	case "sub":
		return cell{w: l - r}, nil
	case "mul":
		return cell{w: l * r}, nil
	case "div":
		if r == 0 {
			return cell{}, errors.New("division by zero")
		}
		return cell{w: l / r}, nil
	case "ceqw":
		return flag(l == r), nil
	case "cnew":
		return flag(l != r), nil
	case "csltw":
		return flag(l < r), nil
	case "cslew":
		return flag(l <= r), nil
	case "csgtw":
		return flag(l > r), nil
	case "csgew":
		return flag(l >= r), nil
	}
	return cell{}, fmt.Errorf("unknown operation %q", in.Op)
}

func flag(b bool) cell {
	if b {
		return cell{w: 1}
	}
	return cell{}
}

func (m *machine) call(regs map[string]cell, in *Call) (cell, error) {
	args := make([]cell, len(in.Args))
	for i, a := range in.Args {
		c, err := m.read(regs, a.Val)
		if err != nil {
			return cell{}, err
		}
		args[i] = c
	}
	switch in.Fn {
	case funcPuts:
		if len(args) != 1 || args[0].sym == "" {
			return cell{}, errors.New("qbe: puts expects one data address")
		}
		_, err := io.WriteString(m.stdout, m.data[args[0].sym]+"\n")
		return cell{}, err
	case funcPrint:
		return m.printf(args)
	}
	f := m.mod.Func(in.Fn)
	if f == nil {
		return cell{}, fmt.Errorf("qbe: call to undefined function $%s", in.Fn)
	}
	return m.invoke(f, args)
}

// printf supports the one format the emitter produces: %u per argument.
func (m *machine) printf(args []cell) (cell, error) {
	if len(args) == 0 || args[0].sym == "" {
		return cell{}, errors.New("qbe: printf expects a format address")
	}
	format := m.data[args[0].sym]
	rest := args[1:]
	var out strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			out.WriteByte(format[i])
			continue
		}
		i++
		if format[i] != 'u' {
			return cell{}, fmt.Errorf("qbe: unsupported printf verb %%%c", format[i])
		}
		if len(rest) == 0 {
			return cell{}, errors.New("qbe: printf missing argument")
		}
		out.Write(lit.Digits(uint32(rest[0].w)))
		rest = rest[1:]
	}
	_, err := io.WriteString(m.stdout, out.String())
	return cell{}, err
}
