package ast

// ContainsReturn reports whether s contains a return statement, not descending
// into nested function declarations.
func ContainsReturn(s Stmt) bool {
	switch n := s.(type) {
	case *Return:
		return true
	case *Block:
		for _, st := range n.Stmts {
			if ContainsReturn(st) {
				return true
			}
		}
	case *If:
		if ContainsReturn(n.Then) {
			return true
		}
		return n.Else != nil && ContainsReturn(n.Else)
	case *For:
		return ContainsReturn(n.Body)
	}
	return false
}

// EndsWithReturn reports whether the last statement of b is a return.
func EndsWithReturn(b *Block) bool {
	if b == nil || len(b.Stmts) == 0 {
		return false
	}
	_, ok := b.Stmts[len(b.Stmts)-1].(*Return)
	return ok
}
