package astio

import (
	"fmt"

	"jasmine/internal/ast"
	"jasmine/internal/types"
)

func toWire(file *ast.File) (*wireFile, error) {
	wf := &wireFile{Schema: schemaVersion, Name: file.Name, Stmts: make([]*wireNode, 0, len(file.Stmts))}
	for _, s := range file.Stmts {
		n, err := stmtWire(s)
		if err != nil {
			return nil, err
		}
		wf.Stmts = append(wf.Stmts, n)
	}
	return wf, nil
}

func typeName(t types.Type) string {
	if t == types.Invalid {
		return ""
	}
	return t.String()
}

func stmtWire(s ast.Stmt) (*wireNode, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		x, err := exprWire(n.X)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindExpr, Line: x.Line, Children: []*wireNode{x}}, nil
	case *ast.VarDecl:
		init, err := exprWire(n.Init)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindLet, Line: n.Name.Line, Name: n.Name.Text, Type: typeName(n.Type), Children: []*wireNode{init}}, nil
	case *ast.Block:
		return blockWire(n)
	case *ast.If:
		cond, err := exprWire(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := stmtWire(n.Then)
		if err != nil {
			return nil, err
		}
		w := &wireNode{Kind: kindIf, Line: n.Keyword.Line, Children: []*wireNode{cond, then}}
		if n.Else != nil {
			els, err := stmtWire(n.Else)
			if err != nil {
				return nil, err
			}
			w.Children = append(w.Children, els)
		}
		return w, nil
	case *ast.For:
		kids := make([]*wireNode, 0, 3)
		for _, e := range []ast.Expr{n.Start, n.End} {
			w, err := exprWire(e)
			if err != nil {
				return nil, err
			}
			kids = append(kids, w)
		}
		body, err := stmtWire(n.Body)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindFor, Line: n.Var.Line, Name: n.Var.Text, Children: append(kids, body)}, nil
	case *ast.FuncDecl:
		body, err := blockWire(n.Body)
		if err != nil {
			return nil, err
		}
		w := &wireNode{Kind: kindFn, Line: n.Name.Line, Name: n.Name.Text, Type: typeName(n.Result), Children: []*wireNode{body}}
		for _, p := range n.Params {
			w.Params = append(w.Params, wireParam{Name: p.Name.Text, Type: p.Type.String(), Line: p.Name.Line})
		}
		return w, nil
	case *ast.Return:
		w := &wireNode{Kind: kindReturn, Line: n.Keyword.Line}
		if n.Value != nil {
			v, err := exprWire(n.Value)
			if err != nil {
				return nil, err
			}
			w.Children = []*wireNode{v}
		}
		return w, nil
	}
	return nil, fmt.Errorf("encode: unexpected statement %T", s)
}

func blockWire(b *ast.Block) (*wireNode, error) {
	if b == nil {
		return &wireNode{Kind: kindBlock}, nil
	}
	w := &wireNode{Kind: kindBlock, Line: ast.StmtPos(b).Line}
	for _, s := range b.Stmts {
		c, err := stmtWire(s)
		if err != nil {
			return nil, err
		}
		w.Children = append(w.Children, c)
	}
	return w, nil
}

func exprWire(e ast.Expr) (*wireNode, error) {
	switch n := e.(type) {
	case *ast.Literal:
		w := &wireNode{Kind: kindLit, Line: n.Tok.Line}
		switch v := n.Value.(type) {
		case ast.IntValue:
			i := int64(v)
			w.Int = &i
		case ast.StrValue:
			s := string(v)
			w.Str = &s
		case ast.BoolValue:
			b := bool(v)
			w.Bool = &b
		default:
			return nil, fmt.Errorf("encode: unexpected literal %T", n.Value)
		}
		return w, nil
	case *ast.Binary:
		left, err := exprWire(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprWire(n.Right)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindBinary, Line: n.Op.Line, Name: n.Op.Kind.String(), Children: []*wireNode{left, right}}, nil
	case *ast.Unary:
		x, err := exprWire(n.Right)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindUnary, Line: n.Op.Line, Name: n.Op.Kind.String(), Children: []*wireNode{x}}, nil
	case *ast.Variable:
		return &wireNode{Kind: kindVar, Line: n.Name.Line, Name: n.Name.Text}, nil
	case *ast.Grouping:
		x, err := exprWire(n.Inner)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindGroup, Line: x.Line, Children: []*wireNode{x}}, nil
	case *ast.Call:
		w := &wireNode{Kind: kindCall, Line: n.Callee.Line, Name: n.Callee.Text}
		for _, a := range n.Args {
			c, err := exprWire(a)
			if err != nil {
				return nil, err
			}
			w.Children = append(w.Children, c)
		}
		return w, nil
	case *ast.Assign:
		v, err := exprWire(n.Value)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: kindAssign, Line: n.Name.Line, Name: n.Name.Text, Children: []*wireNode{v}}, nil
	}
	return nil, fmt.Errorf("encode: unexpected expression %T", e)
}
