package scope

import (
	"golang.org/x/text/unicode/norm"

	"jasmine/internal/diag"
	"jasmine/internal/token"
	"jasmine/internal/types"
)

// Binding is a resolved variable: where it lives and its type.
type Binding[L any] struct {
	Loc  L
	Type types.Type
}

// Allocator hands out the next free storage location for a new binding.
type Allocator[L any] func(types.Type) (L, error)

type Chain[L any] struct {
	frames []map[string]Binding[L]
	alloc  Allocator[L]
}

// New returns a chain with no frames. A function body must get its own chain
// so outer frames stay invisible to it.
func New[L any](alloc Allocator[L]) *Chain[L] {
	return &Chain[L]{alloc: alloc}
}

func (c *Chain[L]) Begin() {
	c.frames = append(c.frames, make(map[string]Binding[L]))
}

func (c *Chain[L]) End() {
	if len(c.frames) == 0 {
		panic("scope: End without Begin")
	}
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *Chain[L]) Depth() int {
	return len(c.frames)
}

// Declare binds name in the innermost frame. Storage is allocated only after
// the redeclaration check passes.
func (c *Chain[L]) Declare(name token.Token, ty types.Type) (Binding[L], error) {
	key, top, err := c.free(name)
	if err != nil {
		return Binding[L]{}, err
	}
	loc, err := c.alloc(ty)
	if err != nil {
		return Binding[L]{}, err
	}
	b := Binding[L]{Loc: loc, Type: ty}
	top[key] = b
	return b, nil
}

// Bind is Declare for storage the caller allocated earlier, e.g. a loop
// variable whose register is live before its name comes into scope.
func (c *Chain[L]) Bind(name token.Token, ty types.Type, loc L) (Binding[L], error) {
	key, top, err := c.free(name)
	if err != nil {
		return Binding[L]{}, err
	}
	b := Binding[L]{Loc: loc, Type: ty}
	top[key] = b
	return b, nil
}

func (c *Chain[L]) free(name token.Token) (string, map[string]Binding[L], error) {
	if len(c.frames) == 0 {
		c.Begin()
	}
	key := Normalize(name.Text)
	top := c.frames[len(c.frames)-1]
	if _, exists := top[key]; exists {
		return "", nil, diag.Errorf(diag.SemRedeclaration, name, "the variable %q already exists in the current scope", name.Text)
	}
	return key, top, nil
}

// Lookup searches frames innermost first.
func (c *Chain[L]) Lookup(name string) (Binding[L], bool) {
	key := Normalize(name)
	for i := len(c.frames) - 1; i >= 0; i-- {
		if b, ok := c.frames[i][key]; ok {
			return b, true
		}
	}
	return Binding[L]{}, false
}

// Resolve is Lookup reporting a miss as an undefined-variable error.
func (c *Chain[L]) Resolve(name token.Token) (Binding[L], error) {
	b, ok := c.Lookup(name.Text)
	if !ok {
		return Binding[L]{}, diag.Errorf(diag.SemUndefinedVariable, name, "undefined variable %q", name.Text)
	}
	return b, nil
}

// Normalize maps an identifier to its NFC form so that canonically
// equivalent spellings name the same binding.
func Normalize(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}
