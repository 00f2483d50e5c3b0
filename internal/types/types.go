// Package types holds the closed set of value types a jasmine program can name.
package types

import "fmt"

// Type is one of the four value kinds. The zero value, Invalid, marks
// "not annotated" on declarations and never describes a runtime value.
type Type uint8

const (
	Invalid Type = iota
	Int
	Str
	Bool
	Nil
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Str:
		return "str"
	case Bool:
		return "bool"
	case Nil:
		return "nil"
	default:
		return "invalid"
	}
}

// Valid reports whether t is one of the four value kinds.
func (t Type) Valid() bool {
	return t >= Int && t <= Nil
}

// IsNumeric reports whether values of t are lowered to a 32-bit integer
// (bool values are 0/1 integers).
func (t Type) IsNumeric() bool {
	return t == Int || t == Bool
}

// Parse maps a source type name to its Type.
func Parse(name string) (Type, error) {
	switch name {
	case "int":
		return Int, nil
	case "str":
		return Str, nil
	case "bool":
		return Bool, nil
	case "nil":
		return Nil, nil
	default:
		return Invalid, fmt.Errorf("unknown type %q (expected int|str|bool|nil)", name)
	}
}
