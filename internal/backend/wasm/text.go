package wasm

import (
	"fmt"
	"io"
	"strings"
)

// WriteText serializes m as folded WebAssembly text.
func WriteText(w io.Writer, m *Module) error {
	var buf strings.Builder
	p := &printer{buf: &buf}
	p.module(m)
	_, err := io.WriteString(w, buf.String())
	return err
}

// Text is WriteText into a string.
func Text(m *Module) string {
	var sb strings.Builder
	_ = WriteText(&sb, m)
	return sb.String()
}

type printer struct {
	buf    *strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) module(m *Module) {
	p.line("(module")
	p.indent++
	for _, imp := range m.Imports {
		p.line("(import %q %q (func $%s%s))", imp.Module, imp.Field, imp.Name, sigText(imp.Params, imp.Result))
	}
	if mem := m.Memory; mem != nil {
		limits := fmt.Sprintf("%d", mem.Min)
		if mem.Max > 0 {
			limits = fmt.Sprintf("%d %d", mem.Min, mem.Max)
		}
		if mem.Imported() {
			p.line("(import %q %q (memory $0 %s))", mem.ImportModule, mem.ImportField, limits)
		} else {
			p.line("(memory $0 %s)", limits)
		}
		if mem.Export != "" {
			p.line("(export %q (memory $0))", mem.Export)
		}
	}
	for _, e := range m.Exports {
		p.line("(export %q (func $%s))", e.Name, e.Func)
	}
	for _, f := range m.Funcs {
		p.fn(f)
	}
	p.indent--
	p.line(")")
}

func sigText(params []ValType, result ValType) string {
	var sb strings.Builder
	if len(params) > 0 {
		sb.WriteString(" (param")
		for _, t := range params {
			sb.WriteString(" " + t.String())
		}
		sb.WriteString(")")
	}
	if result != None {
		sb.WriteString(" (result " + result.String() + ")")
	}
	return sb.String()
}

func (p *printer) fn(f *Func) {
	p.line("(func $%s%s", f.Name, sigText(f.Params, f.Result))
	p.indent++
	if len(f.Locals) > 0 {
		names := make([]string, len(f.Locals))
		for i, t := range f.Locals {
			names[i] = t.String()
		}
		p.line("(local %s)", strings.Join(names, " "))
	}
	p.exprs(f.Body)
	p.indent--
	p.line(")")
}

func (p *printer) exprs(list []Expr) {
	for _, e := range list {
		p.expr(e)
	}
}

// open prints "(head", the children, then ")".
func (p *printer) open(head string, children ...Expr) {
	if len(children) == 0 {
		p.line("(%s)", head)
		return
	}
	p.line("(%s", head)
	p.indent++
	p.exprs(children)
	p.indent--
	p.line(")")
}

func memArg(op string, offset uint32) string {
	if offset == 0 {
		return op
	}
	return fmt.Sprintf("%s offset=%d", op, offset)
}

func labelHead(kw, label string, result ValType) string {
	head := kw
	if label != "" {
		head += " $" + label
	}
	if result != None {
		head += " (result " + result.String() + ")"
	}
	return head
}

func (p *printer) expr(e Expr) {
	switch n := e.(type) {
	case *Const:
		p.line("(i32.const %d)", n.Value)
	case *LocalGet:
		p.line("(local.get %d)", n.Index)
	case *LocalSet:
		p.open(fmt.Sprintf("local.set %d", n.Index), n.Value)
	case *LocalTee:
		p.open(fmt.Sprintf("local.tee %d", n.Index), n.Value)
	case *Binary:
		p.open(n.Op.String(), n.Left, n.Right)
	case *Unary:
		p.open(n.Op.String(), n.X)
	case *Load:
		p.open(memArg("i32.load", n.Offset), n.Addr)
	case *Store:
		p.open(memArg("i32.store", n.Offset), n.Addr, n.Value)
	case *Store8:
		p.open(memArg("i32.store8", n.Offset), n.Addr, n.Value)
	case *Block:
		p.open(labelHead("block", n.Label, n.Result), n.Body...)
	case *Loop:
		p.open(labelHead("loop", n.Label, None), n.Body...)
	case *If:
		p.line("(%s", labelHead("if", "", n.Result))
		p.indent++
		p.expr(n.Cond)
		p.open("then", n.Then...)
		if len(n.Else) > 0 {
			p.open("else", n.Else...)
		}
		p.indent--
		p.line(")")
	case *Br:
		p.line("(br $%s)", n.Label)
	case *BrIf:
		p.open("br_if $"+n.Label, n.Cond)
	case *Call:
		p.open("call $"+n.Func, n.Args...)
	case *Drop:
		p.open("drop", n.X)
	case *Return:
		if n.Value == nil {
			p.line("(return)")
		} else {
			p.open("return", n.Value)
		}
	case *Nop:
		p.line("(nop)")
	case *Unreachable:
		p.line("(unreachable)")
	default:
		p.line(";; unknown expression %T", e)
	}
}
