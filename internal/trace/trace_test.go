package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Fatalf("round trip %q -> %q", name, l.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopeDriver, "build", 0)
	Point(tr, ScopeFunc, "wasm.func", "main", "locals", "2")
	span.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ build") || !strings.Contains(out, "← build (ok)") {
		t.Fatalf("missing span lines:\n%s", out)
	}
	if strings.Contains(out, "wasm.func") {
		t.Fatalf("func events must be filtered at phase level:\n%s", out)
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeFunc, "qbe.func", "add", "params", "2", "regs", "5")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["name"] != "qbe.func" || got["scope"] != "func" || got["kind"] != "point" {
		t.Fatalf("unexpected event %v", got)
	}
	if !strings.Contains(buf.String(), `"attrs":{"params":"2","regs":"5"}`) {
		t.Fatalf("attrs must keep insertion order: %s", buf.String())
	}
}

func TestRingWrapsAndMultiFansOut(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	var buf bytes.Buffer
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText), ring)
	for _, name := range []string{"a", "b", "c"} {
		Point(multi, ScopePass, name, "")
	}
	if err := multi.Flush(); err != nil {
		t.Fatal(err)
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if RingOf(multi) != ring {
		t.Fatalf("RingOf should find the ring behind a multi tracer")
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("stream should see every event:\n%s", buf.String())
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	tr := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopeDriver, "x", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("CurrentSpan = %d, span = %d", CurrentSpan(ctx), span.ID())
	}
}

func TestSpanAttrsInText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopePass, "wasm", 7).WithExtra("funcs", "3")
	span.End("")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "← wasm funcs=3 dur=") {
		t.Fatalf("end line lacks attrs:\n%s", buf.String())
	}
	if Begin(Nop, ScopeDriver, "x", 0).WithExtra("k", "v").End("") != 0 {
		t.Fatalf("inert span must report zero duration")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off tracer: %v enabled=%v", err, tr.Enabled())
	}
}
