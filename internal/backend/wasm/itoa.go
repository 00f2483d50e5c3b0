package wasm

// itoa locals: 0 value, 1 buffer, 2 length, 3 remaining value, 4 write position.
const (
	itoaValue = iota
	itoaBuf
	itoaLen
	itoaRest
	itoaPos
)

// itoaFunc builds itoa(value, buf) -> len: it writes the unsigned decimal
// digits of value to buf and returns how many it wrote. Zero writes "0".
func itoaFunc() *Func {
	zero := &If{
		Cond: &Unary{Op: OpEqz, X: get(itoaValue)},
		Then: []Expr{
			&Store8{Addr: get(itoaBuf), Value: i32('0')},
			&Return{Value: i32(1)},
		},
	}
	count := &Block{Label: "count_end", Body: []Expr{
		&Loop{Label: "count", Body: []Expr{
			&BrIf{Label: "count_end", Cond: &Unary{Op: OpEqz, X: get(itoaRest)}},
			&LocalSet{Index: itoaLen, Value: &Binary{Op: OpAdd, Left: get(itoaLen), Right: i32(1)}},
			&LocalSet{Index: itoaRest, Value: &Binary{Op: OpDivU, Left: get(itoaRest), Right: i32(10)}},
			&Br{Label: "count"},
		}},
	}}
	digits := &Block{Label: "digits_end", Body: []Expr{
		&Loop{Label: "digits", Body: []Expr{
			&BrIf{Label: "digits_end", Cond: &Unary{Op: OpEqz, X: get(itoaRest)}},
			&LocalSet{Index: itoaPos, Value: &Binary{Op: OpSub, Left: get(itoaPos), Right: i32(1)}},
			&Store8{
				Addr: &Binary{Op: OpAdd, Left: get(itoaBuf), Right: get(itoaPos)},
				Value: &Binary{
					Op:    OpAdd,
					Left:  i32('0'),
					Right: &Binary{Op: OpRemU, Left: get(itoaRest), Right: i32(10)},
				},
			},
			&LocalSet{Index: itoaRest, Value: &Binary{Op: OpDivU, Left: get(itoaRest), Right: i32(10)}},
			&Br{Label: "digits"},
		}},
	}}
	return &Func{
		Name:   funcItoa,
		Params: []ValType{I32, I32},
		Result: I32,
		Locals: []ValType{I32, I32, I32},
		Body: []Expr{
			zero,
			&LocalSet{Index: itoaLen, Value: i32(0)},
			&LocalSet{Index: itoaRest, Value: get(itoaValue)},
			count,
			&LocalSet{Index: itoaRest, Value: get(itoaValue)},
			&LocalSet{Index: itoaPos, Value: get(itoaLen)},
			digits,
			get(itoaLen),
		},
	}
}

// ItoaModule builds the standalone helper module. It imports the main
// module's memory and exports itoa, so a module merger can link the two.
func ItoaModule(opts Options) *Module {
	if opts.MemoryMin == 0 {
		opts.MemoryMin = 1
	}
	m := &Module{
		Memory: &Memory{
			Min:          opts.MemoryMin,
			Max:          opts.MemoryMax,
			ImportModule: "main",
			ImportField:  "memory",
		},
	}
	m.AddFunc(itoaFunc())
	m.AddExport(funcItoa, funcItoa)
	return m
}
