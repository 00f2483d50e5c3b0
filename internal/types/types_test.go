package types

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, ty := range []Type{Int, Str, Bool, Nil} {
		got, err := Parse(ty.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", ty.String(), err)
		}
		if got != ty {
			t.Fatalf("Parse(%q) = %v, want %v", ty.String(), got, ty)
		}
		if !got.Valid() {
			t.Fatalf("%v should be valid", got)
		}
	}
	if _, err := Parse("float"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if Invalid.Valid() {
		t.Fatalf("Invalid must not be a value type")
	}
}

func TestIsNumeric(t *testing.T) {
	if !Int.IsNumeric() || !Bool.IsNumeric() {
		t.Fatalf("int and bool lower to integers")
	}
	if Str.IsNumeric() || Nil.IsNumeric() {
		t.Fatalf("str and nil are not numeric")
	}
}
