package qbe

import (
	"fmt"
	"io"
	"strings"
)

// WriteText serializes m as QBE IL.
func WriteText(w io.Writer, m *Module) error {
	var buf strings.Builder
	for _, d := range m.Data {
		fmt.Fprintf(&buf, "data $%s = { b %s, b 0 }\n", d.Name, quote(d.Str))
	}
	for _, f := range m.Funcs {
		buf.WriteByte('\n')
		writeFunc(&buf, f)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func Text(m *Module) string {
	var sb strings.Builder
	_ = WriteText(&sb, m)
	return sb.String()
}

func writeFunc(buf *strings.Builder, f *Func) {
	if f.Export {
		buf.WriteString("export ")
	}
	buf.WriteString("function ")
	if f.Ret != ClassNone {
		buf.WriteString(f.Ret.String() + " ")
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Cls, p.Reg)
	}
	fmt.Fprintf(buf, "$%s(%s) {\n", f.Name, strings.Join(params, ", "))
	for _, in := range f.Body {
		if l, ok := in.(*Label); ok {
			fmt.Fprintf(buf, "@%s\n", l.Name)
			continue
		}
		buf.WriteString("\t" + instrText(in) + "\n")
	}
	buf.WriteString("}\n")
}

func instrText(in Instr) string {
	switch n := in.(type) {
	case *Assign:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = string(a)
		}
		return fmt.Sprintf("%%%s =%s %s %s", n.Dst, n.Cls, n.Op, strings.Join(args, ", "))
	case *Call:
		args := make([]string, 0, len(n.Args)+1)
		for i, a := range n.Args {
			args = append(args, fmt.Sprintf("%s %s", a.Cls, a.Val))
			if i == 0 && n.Variadic {
				args = append(args, "...")
			}
		}
		call := fmt.Sprintf("call $%s(%s)", n.Fn, strings.Join(args, ", "))
		if n.Dst == "" {
			return call
		}
		return fmt.Sprintf("%%%s =%s %s", n.Dst, n.Cls, call)
	case *Jmp:
		return "jmp @" + n.To
	case *Jnz:
		return fmt.Sprintf("jnz %s, @%s, @%s", n.Cond, n.Then, n.Else)
	case *Ret:
		if n.Value == "" {
			return "ret"
		}
		return "ret " + string(n.Value)
	case *Hlt:
		return "hlt"
	}
	return fmt.Sprintf("# unknown instruction %T", in)
}

// quote renders s as a QBE string literal. Bytes outside printable ASCII
// are written as octal escapes, which the assembler passes through.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\%03o`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
