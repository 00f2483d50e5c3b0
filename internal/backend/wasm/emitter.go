package wasm

import (
	"fmt"

	"fortio.org/safecast"

	"jasmine/internal/ast"
	"jasmine/internal/scope"
	"jasmine/internal/trace"
	"jasmine/internal/types"
)

const (
	iovecBase      = 0
	iovecLen       = 4
	numBuf         = 66
	nwrittenAddr   = 92
	poolStart      = 1024
	literalScratch = 2048
	pageSize       = 65536
	stdoutFD       = 1
)

const (
	funcWrite = "write"
	funcItoa  = "itoa"
	funcMain  = "main"
)

type Options struct {
	MemoryMin   uint32
	MemoryMax   uint32
	InlineItoa  bool
	StartExport string
	Tracer      trace.Tracer
}

func DefaultOptions() Options {
	return Options{
		MemoryMin:   1,
		MemoryMax:   2,
		StartExport: "_start",
	}
}

// Emitter holds the state of one compilation. It is not reused.
type Emitter struct {
	opts   Options
	mod    *Module
	funcs  *scope.Funcs
	pool   map[string]uint32
	cursor uint32
	labels int
	fn     *funcState
}

type funcState struct {
	name    string
	result  types.Type
	scope   *scope.Chain[uint32]
	locals  []ValType
	nparams int
	lenTmp  uint32
	hasTmp  bool
}

// alloc reserves the locals of a new binding. A Str binding takes two:
// the pooled address at idx and its stored byte length at idx+1, so a print
// sees the length of whichever literal was assigned last at run time.
func (fs *funcState) alloc(ty types.Type) (uint32, error) {
	idx, err := safecast.Conv[uint32](len(fs.locals))
	if err != nil {
		return 0, fmt.Errorf("%s: too many locals: %w", fs.name, err)
	}
	fs.locals = append(fs.locals, I32)
	if ty == types.Str {
		fs.locals = append(fs.locals, I32)
	}
	return idx, nil
}

// lenLocal is the companion length local of a Str binding.
func lenLocal(loc uint32) uint32 {
	return loc + 1
}

// scratch returns the hidden local that holds itoa's result length.
func (fs *funcState) scratch() (uint32, error) {
	if fs.hasTmp {
		return fs.lenTmp, nil
	}
	idx, err := fs.alloc(types.Int)
	if err != nil {
		return 0, err
	}
	fs.lenTmp, fs.hasTmp = idx, true
	return idx, nil
}

// Compile lowers file into a validated module.
func Compile(file *ast.File, opts Options) (*Module, error) {
	if opts.MemoryMin == 0 {
		opts.MemoryMin = 1
	}
	if opts.StartExport == "" {
		opts.StartExport = "_start"
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	e := &Emitter{
		opts:   opts,
		mod:    &Module{},
		funcs:  scope.NewFuncs(funcMain, funcWrite, funcItoa),
		pool:   make(map[string]uint32),
		cursor: poolStart,
	}
	return e.compile(file)
}

func (e *Emitter) compile(file *ast.File) (*Module, error) {
	e.mod.Memory = &Memory{Min: e.opts.MemoryMin, Max: e.opts.MemoryMax, Export: "memory"}
	e.mod.AddFuncImport(FuncImport{
		Module: "wasi_snapshot_preview1",
		Field:  "fd_write",
		Name:   funcWrite,
		Params: []ValType{I32, I32, I32, I32},
		Result: I32,
	})
	if !e.opts.InlineItoa {
		e.mod.AddFuncImport(FuncImport{
			Module: funcItoa,
			Field:  funcItoa,
			Name:   funcItoa,
			Params: []ValType{I32, I32},
			Result: I32,
		})
	}

	main := e.beginFunc(funcMain, types.Nil)
	main.scope.Begin()
	body, err := e.stmts(file.Stmts)
	if err != nil {
		return nil, err
	}
	main.scope.End()
	e.mod.AddFunc(e.finishFunc(main, body))
	e.mod.AddExport(e.opts.StartExport, funcMain)
	if e.opts.InlineItoa {
		e.mod.AddFunc(itoaFunc())
	}

	if err := Validate(e.mod); err != nil {
		return nil, fmt.Errorf("wasm: generated module is invalid: %w", err)
	}
	return e.mod, nil
}

func (e *Emitter) beginFunc(name string, result types.Type) *funcState {
	fs := &funcState{name: name, result: result}
	fs.scope = scope.New[uint32](fs.alloc)
	e.fn = fs
	return fs
}

func (e *Emitter) finishFunc(fs *funcState, body []Expr) *Func {
	f := &Func{
		Name:   fs.name,
		Params: append([]ValType(nil), fs.locals[:fs.nparams]...),
		Result: valType(fs.result),
		Locals: append([]ValType(nil), fs.locals[fs.nparams:]...),
		Body:   body,
	}
	trace.Point(e.opts.Tracer, trace.ScopeFunc, "wasm.func", fs.name,
		"params", fmt.Sprint(len(f.Params)),
		"locals", fmt.Sprint(len(f.Locals)))
	return f
}

// valType maps a source type to its stack type. Int, Bool and Str (an
// address) are all i32.
func valType(t types.Type) ValType {
	switch t {
	case types.Int, types.Bool, types.Str:
		return I32
	default:
		return None
	}
}

func (e *Emitter) nextLabel() int {
	id := e.labels
	e.labels++
	return id
}

func imm(n int) (*Const, error) {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		return nil, err
	}
	return i32(v), nil
}
