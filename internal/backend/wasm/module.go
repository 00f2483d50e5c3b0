package wasm

import "fmt"

// FuncImport is a host function visible under Name inside the module.
type FuncImport struct {
	Module string
	Field  string
	Name   string
	Params []ValType
	Result ValType
}

// Memory is the module's single linear memory. When ImportModule is set the
// memory is imported instead of defined.
type Memory struct {
	Min, Max     uint32
	ImportModule string
	ImportField  string
	Export       string
}

func (m *Memory) Imported() bool {
	return m != nil && m.ImportModule != ""
}

type Export struct {
	Name string
	Func string
}

type Func struct {
	Name   string
	Params []ValType
	Result ValType
	// Locals lists the non-parameter locals; their indices follow the params.
	Locals []ValType
	Body   []Expr
}

func (f *Func) NumLocals() int {
	return len(f.Params) + len(f.Locals)
}

type Module struct {
	Imports []FuncImport
	Memory  *Memory
	Exports []Export
	Funcs   []*Func
}

func (m *Module) AddFuncImport(imp FuncImport) {
	m.Imports = append(m.Imports, imp)
}

func (m *Module) AddFunc(f *Func) {
	m.Funcs = append(m.Funcs, f)
}

func (m *Module) AddExport(name, fn string) {
	m.Exports = append(m.Exports, Export{Name: name, Func: fn})
}

// signature is the callable shape shared by imports and defined functions.
type signature struct {
	params []ValType
	result ValType
}

func (m *Module) signatures() (map[string]signature, error) {
	sigs := make(map[string]signature, len(m.Imports)+len(m.Funcs))
	for _, imp := range m.Imports {
		if _, dup := sigs[imp.Name]; dup {
			return nil, fmt.Errorf("duplicate function %q", imp.Name)
		}
		sigs[imp.Name] = signature{params: imp.Params, result: imp.Result}
	}
	for _, f := range m.Funcs {
		if _, dup := sigs[f.Name]; dup {
			return nil, fmt.Errorf("duplicate function %q", f.Name)
		}
		sigs[f.Name] = signature{params: f.Params, result: f.Result}
	}
	return sigs, nil
}

// Func returns the defined function named name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ExportedFunc resolves an export name to the defined function behind it.
func (m *Module) ExportedFunc(export string) *Func {
	for _, e := range m.Exports {
		if e.Name == export {
			return m.Func(e.Func)
		}
	}
	return nil
}
