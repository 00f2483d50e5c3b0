package qbe

import (
	"fmt"

	"jasmine/internal/ast"
	"jasmine/internal/scope"
	"jasmine/internal/trace"
	"jasmine/internal/types"
)

const (
	fmtInt    = "fmt_int"
	funcMain  = "main"
	funcPuts  = "puts"
	funcPrint = "printf"
	entry     = "start"
)

type Options struct {
	Tracer trace.Tracer
}

// Emitter holds the state of one compilation: register and label counters,
// the string table and the function being lowered.
type Emitter struct {
	opts   Options
	mod    *Module
	funcs  *scope.Funcs
	strs   map[string]string
	regs   int
	labels int
	fn     *funcState
}

type funcState struct {
	f      *Func
	result types.Type
	scope  *scope.Chain[string]
	// terminated is set after jmp/jnz/ret/hlt until the next label.
	terminated bool
}

func Compile(file *ast.File, opts Options) (*Module, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	e := &Emitter{
		opts:  opts,
		mod:   &Module{},
		funcs: scope.NewFuncs(funcMain, funcPuts, funcPrint),
		strs:  make(map[string]string),
	}
	return e.compile(file)
}

func (e *Emitter) compile(file *ast.File) (*Module, error) {
	e.mod.Data = append(e.mod.Data, Data{Name: fmtInt, Str: "%u\n"})

	main := e.beginFunc(funcMain, types.Nil)
	main.f.Export = true
	main.f.Ret = ClassW
	main.scope.Begin()
	if err := e.stmts(file.Stmts); err != nil {
		return nil, err
	}
	main.scope.End()
	if !main.terminated {
		e.emit(&Ret{Value: Imm(0)})
	}
	e.finishFunc(main)
	return e.mod, nil
}

func (e *Emitter) beginFunc(name string, result types.Type) *funcState {
	fs := &funcState{
		f:      &Func{Name: name, Ret: class(result)},
		result: result,
	}
	fs.scope = scope.New[string](e.alloc)
	e.fn = fs
	e.emit(&Label{Name: entry})
	return fs
}

func (e *Emitter) finishFunc(fs *funcState) {
	e.mod.Funcs = append(e.mod.Funcs, fs.f)
	trace.Point(e.opts.Tracer, trace.ScopeFunc, "qbe.func", fs.f.Name,
		"params", fmt.Sprint(len(fs.f.Params)),
		"instrs", fmt.Sprint(len(fs.f.Body)))
}

func (e *Emitter) alloc(types.Type) (string, error) {
	return e.newReg(), nil
}

// newReg names registers a, b, ..., z, aa, ab, ...
func (e *Emitter) newReg() string {
	n := e.regs
	e.regs++
	return regName(n)
}

func regName(n int) string {
	var buf []byte
	for n++; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('a' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func (e *Emitter) newLabel() string {
	l := fmt.Sprintf("L%d", e.labels)
	e.labels++
	return l
}

// emit appends in to the current function. Code following a terminator
// gets a fresh label so every block starts with one.
func (e *Emitter) emit(in Instr) {
	fs := e.fn
	_, isLabel := in.(*Label)
	if fs.terminated && !isLabel {
		fs.f.Body = append(fs.f.Body, &Label{Name: e.newLabel()})
	}
	fs.f.Body = append(fs.f.Body, in)
	fs.terminated = isTerminator(in)
}

func (e *Emitter) label(name string) {
	e.emit(&Label{Name: name})
}

// class maps a source type to its QBE class. Str values are addresses.
func class(t types.Type) Class {
	switch t {
	case types.Int, types.Bool:
		return ClassW
	case types.Str:
		return ClassL
	default:
		return ClassNone
	}
}

// str returns the data symbol holding s, adding it on first use.
func (e *Emitter) str(s string) Value {
	name, ok := e.strs[s]
	if !ok {
		name = fmt.Sprintf("str%d", len(e.strs))
		e.strs[s] = name
		e.mod.Data = append(e.mod.Data, Data{Name: name, Str: s})
	}
	return Sym(name)
}
