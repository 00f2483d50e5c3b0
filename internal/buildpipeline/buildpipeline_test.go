package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jasmine/internal/astio"
	"jasmine/internal/diag"
	"jasmine/internal/observ"
)

const sumProgram = `(let a 2)
(let b 3)
(println (+ a b))
`

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) statuses(file string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, ev := range s.events {
		if ev.File == file {
			out = append(out, string(ev.Stage)+":"+string(ev.Status))
		}
	}
	return out
}

func writeInput(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCompileAllBackends(t *testing.T) {
	timer := observ.NewTimer()
	res, err := Compile(context.Background(), &CompileRequest{
		Path:    "sum.jas",
		Source:  []byte(sumProgram),
		Backend: BackendAll,
		Timer:   timer,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Name != "sum" {
		t.Fatalf("Name = %q", res.Name)
	}
	for _, name := range []string{ArtifactWasm, ArtifactItoa, ArtifactQBE} {
		if res.Artifact(name) == nil {
			t.Fatalf("missing artifact %s", name)
		}
	}
	if !strings.Contains(string(res.Artifact(ArtifactWasm).Data), `(export "_start"`) {
		t.Fatalf("wasm text lacks the start export:\n%s", res.Artifact(ArtifactWasm).Data)
	}
	if !strings.Contains(string(res.Artifact(ArtifactQBE).Data), "export function w $main()") {
		t.Fatalf("qbe text lacks main:\n%s", res.Artifact(ArtifactQBE).Data)
	}
	if !res.Timings.Has(StageLower) || !res.Timings.Has(StageDecode) {
		t.Fatalf("timings not recorded")
	}
	if !strings.Contains(timer.Summary(), "wasm.lower") {
		t.Fatalf("timer summary lacks backend phases:\n%s", timer.Summary())
	}
}

func TestCompileInlineItoaSkipsHelper(t *testing.T) {
	req := &CompileRequest{Path: "sum.jas", Source: []byte(sumProgram), Backend: BackendWasm}
	req.Wasm.InlineItoa = true
	res, err := Compile(context.Background(), req)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Artifact(ArtifactItoa) != nil || res.Itoa != nil {
		t.Fatalf("inline itoa must not produce a helper module")
	}
	if res.Artifact(ArtifactQBE) != nil {
		t.Fatalf("wasm-only build produced qbe output")
	}
}

func TestCompileDiagnosticGoesToBag(t *testing.T) {
	sink := &recordingSink{}
	res, err := Compile(context.Background(), &CompileRequest{
		Path:     "bad.jas",
		Source:   []byte("(let x 1)\n(let x 2)\n"),
		Backend:  BackendAll,
		Progress: sink,
	})
	if !errors.Is(err, &diag.Error{Code: diag.SemRedeclaration}) {
		t.Fatalf("err = %v, want redeclaration", err)
	}
	if len(res.Artifacts) != 0 {
		t.Fatalf("failed compile kept %d artifacts", len(res.Artifacts))
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Line != 2 || items[0].File != "bad.jas" {
		t.Fatalf("bag = %+v", items)
	}
	got := sink.statuses("bad.jas")
	if got[len(got)-1] != "lower:error" {
		t.Fatalf("last event = %v", got)
	}
}

func TestCompileDecodeError(t *testing.T) {
	res, err := Compile(context.Background(), &CompileRequest{
		Path:   "x.jas",
		Source: []byte("(let"),
	})
	if diag.CodeOf(err) != diag.IOInvalidAST {
		t.Fatalf("err = %v", err)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("decode error not in bag")
	}
	if _, err := Compile(context.Background(), &CompileRequest{Path: "x.txt", Source: []byte("")}); err == nil {
		t.Fatalf("unknown extension must fail")
	}
}

func TestCompileExplicitFormat(t *testing.T) {
	file, err := astio.Decode([]byte(sumProgram), astio.FormatSexp)
	if err != nil {
		t.Fatal(err)
	}
	data, err := astio.Encode(file, astio.FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Compile(context.Background(), &CompileRequest{
		Path:    "stdin",
		Source:  data,
		Format:  astio.FormatMsgpack,
		Backend: BackendQBE,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Name != "stdin" || res.QBE == nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestBuildWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "sum.jas", sumProgram)
	out := filepath.Join(dir, "out")
	res, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{Path: in, Backend: BackendAll},
		OutDir:         out,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.OutputDir != filepath.Join(out, "sum") || len(res.Written) != 3 {
		t.Fatalf("result = %+v", res)
	}
	for _, name := range []string{ArtifactWasm, ArtifactItoa, ArtifactQBE} {
		if _, err := os.Stat(filepath.Join(out, "sum", name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(out, "sum", ".tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestBuildFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	// Lowering fails in the first backend, so the second never runs.
	in := writeInput(t, dir, "bad.jas", "(println undefined_name)\n")
	out := filepath.Join(dir, "out")
	_, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{Path: in, Backend: BackendAll},
		OutDir:         out,
	})
	if diag.CodeOf(err) != diag.SemUndefinedVariable {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output dir created for a failed build")
	}
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, dir, "good.jas", sumProgram)
	bad := writeInput(t, dir, "bad.jas", "(let s \"a\")\n(println (+ s 1))\n")
	out := filepath.Join(dir, "out")
	sink := &recordingSink{}

	items, err := BuildAll(context.Background(), &BatchRequest{
		Inputs:   []string{good, bad, good},
		Template: BuildRequest{CompileRequest: CompileRequest{Backend: BackendWasm, Progress: sink}, OutDir: out},
		Jobs:     2,
		BaseDir:  dir,
	})
	if !errors.Is(err, ErrBatchFailed) {
		t.Fatalf("err = %v, want ErrBatchFailed", err)
	}
	if len(items) != 2 {
		t.Fatalf("duplicates not removed: %d items", len(items))
	}
	if items[0].Display != "bad.jas" || items[1].Display != "good.jas" {
		t.Fatalf("items not sorted by display name: %q, %q", items[0].Display, items[1].Display)
	}
	if diag.CodeOf(items[0].Err) != diag.SemTypeMismatch {
		t.Fatalf("bad.jas err = %v", items[0].Err)
	}
	if items[1].Err != nil {
		t.Fatalf("good.jas err = %v", items[1].Err)
	}
	if _, err := os.Stat(filepath.Join(out, "good", ArtifactWasm)); err != nil {
		t.Fatalf("good output missing: %v", err)
	}
	statuses := sink.statuses("good.jas")
	if statuses[0] != "decode:queued" || statuses[len(statuses)-1] != "write:done" {
		t.Fatalf("good.jas events = %v", statuses)
	}
}

func TestBuildAllRejectsCollisions(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "a"), 0o750); err != nil {
		t.Fatal(err)
	}
	one := writeInput(t, dir, "x.jas", sumProgram)
	two := writeInput(t, filepath.Join(dir, "a"), "x.jas", sumProgram)
	if _, err := BuildAll(context.Background(), &BatchRequest{Inputs: []string{one, two}}); err == nil {
		t.Fatalf("expected an output collision error")
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"": BackendWasm, "WASM": BackendWasm, "qbe": BackendQBE, " all ": BackendAll} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("llvm"); err == nil {
		t.Fatalf("llvm must be rejected")
	}
	targets, _ := BackendAll.Targets()
	if len(targets) != 2 || targets[0] != BackendWasm {
		t.Fatalf("targets = %v", targets)
	}
}
