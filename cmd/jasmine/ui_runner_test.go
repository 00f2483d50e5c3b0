package main

import "testing"

func TestParseUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		err  bool
	}{
		{"", uiAuto, false},
		{"auto", uiAuto, false},
		{" ON ", uiOn, false},
		{"off", uiOff, false},
		{"sometimes", uiAuto, true},
	}
	for _, tt := range tests {
		got, err := parseUIMode(tt.in)
		if (err != nil) != tt.err {
			t.Fatalf("parseUIMode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseUIMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUIModeEnabled(t *testing.T) {
	pretty := &commandSettings{diagFormat: "pretty"}
	if !uiOn.enabled(nil, pretty) || uiOff.enabled(nil, pretty) {
		t.Fatalf("explicit ui modes ignored")
	}
	if uiAuto.enabled(nil, pretty) {
		t.Fatalf("auto without a terminal must stay off")
	}
	if uiOn.enabled(nil, &commandSettings{diagFormat: "pretty", quiet: true}) {
		t.Fatalf("--quiet must disable the progress view")
	}
	if uiOn.enabled(nil, &commandSettings{diagFormat: "json"}) {
		t.Fatalf("json diagnostics must disable the progress view")
	}
}

func TestColorEnabled(t *testing.T) {
	if on, err := colorEnabled("on"); err != nil || !on {
		t.Fatalf("on = %v, %v", on, err)
	}
	if on, err := colorEnabled("off"); err != nil || on {
		t.Fatalf("off = %v, %v", on, err)
	}
	if _, err := colorEnabled("rainbow"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}
