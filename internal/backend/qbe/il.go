package qbe

import "strconv"

// Class is a QBE base type.
type Class uint8

const (
	ClassNone Class = iota
	ClassW
	ClassL
)

func (c Class) String() string {
	switch c {
	case ClassW:
		return "w"
	case ClassL:
		return "l"
	}
	return ""
}

// Value is an operand as it appears in the text: %reg, $global or an
// integer immediate.
type Value string

func Reg(name string) Value  { return Value("%" + name) }
func Sym(name string) Value  { return Value("$" + name) }
func Imm(v int32) Value      { return Value(strconv.FormatInt(int64(v), 10)) }
func (v Value) IsReg() bool  { return len(v) > 0 && v[0] == '%' }
func (v Value) IsSym() bool  { return len(v) > 0 && v[0] == '$' }
func (v Value) Name() string { return string(v[1:]) }

type Arg struct {
	Cls Class
	Val Value
}

// Data is a NUL-terminated byte string.
type Data struct {
	Name string
	Str  string
}

type Param struct {
	Cls Class
	Reg string
}

type Func struct {
	Name   string
	Export bool
	Ret    Class
	Params []Param
	Body   []Instr
}

type Module struct {
	Data  []Data
	Funcs []*Func
}

func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type Instr interface {
	qbeInstr()
}

type (
	Label struct {
		Name string
	}
	// Assign is `%Dst =Cls Op Args...`.
	Assign struct {
		Dst  string
		Cls  Class
		Op   string
		Args []Value
	}
	// Call has an empty Dst when the result is discarded. Variadic places
	// the `...` marker after the first argument.
	Call struct {
		Dst      string
		Cls      Class
		Fn       string
		Args     []Arg
		Variadic bool
	}
	Jmp struct {
		To string
	}
	Jnz struct {
		Cond       Value
		Then, Else string
	}
	// Ret has an empty Value in functions without a result.
	Ret struct {
		Value Value
	}
	Hlt struct{}
)

func (*Label) qbeInstr()  {}
func (*Assign) qbeInstr() {}
func (*Call) qbeInstr()   {}
func (*Jmp) qbeInstr()    {}
func (*Jnz) qbeInstr()    {}
func (*Ret) qbeInstr()    {}
func (*Hlt) qbeInstr()    {}

func isTerminator(in Instr) bool {
	switch in.(type) {
	case *Jmp, *Jnz, *Ret, *Hlt:
		return true
	}
	return false
}
