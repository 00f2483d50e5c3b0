package astio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jasmine/internal/ast"
	"jasmine/internal/scope"
	"jasmine/internal/types"
)

const indentUnit = "  "

// Print writes file in the S-expression form Decode(FormatSexp) reads back,
// one top-level statement per line.
func Print(w io.Writer, file *ast.File) error {
	bw := bufio.NewWriter(w)
	p := printer{w: bw}
	for _, s := range file.Stmts {
		p.stmt(s, 0)
		p.str("\n")
	}
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

// Sprint is Print into a string.
func Sprint(file *ast.File) string {
	var sb strings.Builder
	if err := Print(&sb, file); err != nil {
		return fmt.Sprintf("<print error: %v>", err)
	}
	return sb.String()
}

type printer struct {
	w   *bufio.Writer
	err error
}

func (p *printer) str(s string) {
	if p.err != nil {
		return
	}
	_, p.err = p.w.WriteString(s)
}

func (p *printer) newline(depth int) {
	p.str("\n")
	p.str(strings.Repeat(indentUnit, depth))
}

func (p *printer) stmt(s ast.Stmt, depth int) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		switch n.X.(type) {
		case *ast.Call, *ast.Assign:
			p.expr(n.X)
		default:
			p.str("(expr ")
			p.expr(n.X)
			p.str(")")
		}
	case *ast.VarDecl:
		p.str("(let " + n.Name.Text + " ")
		if n.Type != types.Invalid {
			p.str(n.Type.String() + " ")
		}
		p.expr(n.Init)
		p.str(")")
	case *ast.Block:
		p.block(n, depth)
	case *ast.If:
		p.str("(if ")
		p.expr(n.Cond)
		p.str(" ")
		p.stmt(n.Then, depth)
		if n.Else != nil {
			p.str(" ")
			p.stmt(n.Else, depth)
		}
		p.str(")")
	case *ast.For:
		p.str("(for " + n.Var.Text + " ")
		p.expr(n.Start)
		p.str(" ")
		p.expr(n.End)
		p.str(" ")
		p.stmt(n.Body, depth)
		p.str(")")
	case *ast.FuncDecl:
		p.str("(fn " + n.Name.Text + " (")
		for i, param := range n.Params {
			if i > 0 {
				p.str(" ")
			}
			p.str("(" + param.Name.Text + " " + param.Type.String() + ")")
		}
		result := n.Result
		if result == types.Invalid {
			result = types.Nil
		}
		p.str(") " + result.String() + " ")
		p.block(n.Body, depth)
		p.str(")")
	case *ast.Return:
		if n.Value == nil {
			p.str("(return)")
			return
		}
		p.str("(return ")
		p.expr(n.Value)
		p.str(")")
	default:
		p.str(fmt.Sprintf("<unknown stmt %T>", s))
	}
}

func (p *printer) block(b *ast.Block, depth int) {
	p.str("(block")
	if b != nil {
		for _, s := range b.Stmts {
			p.newline(depth + 1)
			p.stmt(s, depth+1)
		}
	}
	p.str(")")
}

func (p *printer) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		switch v := n.Value.(type) {
		case ast.IntValue:
			p.str(strconv.FormatInt(int64(v), 10))
		case ast.BoolValue:
			p.str(strconv.FormatBool(bool(v)))
		case ast.StrValue:
			p.str(quote(string(v)))
		}
	case *ast.Binary:
		p.str("(" + n.Op.Kind.String() + " ")
		p.expr(n.Left)
		p.str(" ")
		p.expr(n.Right)
		p.str(")")
	case *ast.Unary:
		p.str("(" + n.Op.Kind.String() + " ")
		p.expr(n.Right)
		p.str(")")
	case *ast.Variable:
		p.str(n.Name.Text)
	case *ast.Grouping:
		p.str("(group ")
		p.expr(n.Inner)
		p.str(")")
	case *ast.Call:
		if n.Callee.Text == scope.Builtin {
			p.str("(" + scope.Builtin)
		} else {
			p.str("(call " + n.Callee.Text)
		}
		for _, a := range n.Args {
			p.str(" ")
			p.expr(a)
		}
		p.str(")")
	case *ast.Assign:
		p.str("(set " + n.Name.Text + " ")
		p.expr(n.Value)
		p.str(")")
	default:
		p.str(fmt.Sprintf("<unknown expr %T>", e))
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
