package wasm

// ValType is the type of a value on the operand stack.
type ValType uint8

const (
	None ValType = iota
	I32
)

func (t ValType) String() string {
	if t == I32 {
		return "i32"
	}
	return "none"
}

type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDivS
	OpDivU
	OpRemU
	OpEq
	OpNe
	OpLtS
	OpLeS
	OpGtS
	OpGeS
)

var binOpNames = [...]string{
	OpAdd:  "i32.add",
	OpSub:  "i32.sub",
	OpMul:  "i32.mul",
	OpDivS: "i32.div_s",
	OpDivU: "i32.div_u",
	OpRemU: "i32.rem_u",
	OpEq:   "i32.eq",
	OpNe:   "i32.ne",
	OpLtS:  "i32.lt_s",
	OpLeS:  "i32.le_s",
	OpGtS:  "i32.gt_s",
	OpGeS:  "i32.ge_s",
}

func (op BinOp) String() string {
	if int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "i32.<bad>"
}

type UnOp uint8

const (
	OpEqz UnOp = iota
)

func (op UnOp) String() string {
	if op == OpEqz {
		return "i32.eqz"
	}
	return "i32.<bad>"
}

// Expr is a node of the folded instruction tree.
type Expr interface {
	wasmExpr()
}

type (
	Const struct {
		Value int32
	}
	LocalGet struct {
		Index uint32
	}
	LocalSet struct {
		Index uint32
		Value Expr
	}
	// LocalTee stores Value and leaves it on the stack.
	LocalTee struct {
		Index uint32
		Value Expr
	}
	Binary struct {
		Op          BinOp
		Left, Right Expr
	}
	Unary struct {
		Op UnOp
		X  Expr
	}
	Load struct {
		Offset uint32
		Addr   Expr
	}
	Store struct {
		Offset uint32
		Addr   Expr
		Value  Expr
	}
	Store8 struct {
		Offset uint32
		Addr   Expr
		Value  Expr
	}
	// Block is a branch target at its end. Label may be empty.
	Block struct {
		Label  string
		Result ValType
		Body   []Expr
	}
	// Loop is a branch target at its start.
	Loop struct {
		Label string
		Body  []Expr
	}
	If struct {
		Result ValType
		Cond   Expr
		Then   []Expr
		Else   []Expr
	}
	Br struct {
		Label string
	}
	BrIf struct {
		Label string
		Cond  Expr
	}
	Call struct {
		Func   string
		Args   []Expr
		Result ValType
	}
	Drop struct {
		X Expr
	}
	// Return has a nil Value in functions without a result.
	Return struct {
		Value Expr
	}
	Nop         struct{}
	Unreachable struct{}
)

func (*Const) wasmExpr()       {}
func (*LocalGet) wasmExpr()    {}
func (*LocalSet) wasmExpr()    {}
func (*LocalTee) wasmExpr()    {}
func (*Binary) wasmExpr()      {}
func (*Unary) wasmExpr()       {}
func (*Load) wasmExpr()        {}
func (*Store) wasmExpr()       {}
func (*Store8) wasmExpr()      {}
func (*Block) wasmExpr()       {}
func (*Loop) wasmExpr()        {}
func (*If) wasmExpr()          {}
func (*Br) wasmExpr()          {}
func (*BrIf) wasmExpr()        {}
func (*Call) wasmExpr()        {}
func (*Drop) wasmExpr()        {}
func (*Return) wasmExpr()      {}
func (*Nop) wasmExpr()         {}
func (*Unreachable) wasmExpr() {}

func i32(v int32) *Const { return &Const{Value: v} }

func get(idx uint32) *LocalGet { return &LocalGet{Index: idx} }
