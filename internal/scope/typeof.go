package scope

import (
	"jasmine/internal/ast"
	"jasmine/internal/types"
)

// TypeOf infers the type an expression evaluates to. Unresolved names fall
// back to Int; the caller reports them when it lowers the expression.
func TypeOf[L any](e ast.Expr, c *Chain[L], f *Funcs) types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Value.(type) {
		case ast.StrValue:
			return types.Str
		case ast.BoolValue:
			return types.Bool
		}
	case *ast.Variable:
		if b, ok := c.Lookup(n.Name.Text); ok {
			return b.Type
		}
	case *ast.Grouping:
		return TypeOf(n.Inner, c, f)
	case *ast.Call:
		if n.Callee.Text == Builtin {
			return types.Nil
		}
		if sig, ok := f.Lookup(n.Callee.Text); ok {
			return sig.Result
		}
	case *ast.Assign:
		return TypeOf(n.Value, c, f)
	}
	return types.Int
}
