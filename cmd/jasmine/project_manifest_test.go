package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadProjectManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[build]
backend = "all"
out_dir = "out"
inputs = ["src/a.jas", "b.json"]

[wasm]
memory_min = 2
memory_max = 4
inline_itoa = true
start_export = "main_start"

[trace]
level = "phase"
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := loadProjectManifest(nested)
	if err != nil {
		t.Fatalf("loadProjectManifest: %v", err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	if m.Config.Build.Backend != "all" {
		t.Fatalf("backend = %q", m.Config.Build.Backend)
	}
	if got, want := m.outDir(), filepath.Join(root, "out"); got != want {
		t.Fatalf("outDir = %q, want %q", got, want)
	}
	inputs := m.inputPaths()
	if len(inputs) != 2 || inputs[0] != filepath.Join(root, "src", "a.jas") {
		t.Fatalf("inputs = %v", inputs)
	}
	opts := m.wasmOptions()
	if opts.MemoryMin != 2 || opts.MemoryMax != 4 || !opts.InlineItoa || opts.StartExport != "main_start" {
		t.Fatalf("wasm options = %+v", opts)
	}
	if m.Config.Trace.Level != "phase" {
		t.Fatalf("trace level = %q", m.Config.Trace.Level)
	}
}

func TestLoadProjectConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[build]\nbackend = \"qbe\"\n")
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	if cfg.Build.Backend != "qbe" {
		t.Fatalf("backend = %q", cfg.Build.Backend)
	}
	if cfg.Build.OutDir != "build" {
		t.Fatalf("out_dir default = %q", cfg.Build.OutDir)
	}
	if cfg.Wasm.MemoryMin != 1 || cfg.Wasm.MemoryMax != 2 || cfg.Wasm.StartExport != "_start" {
		t.Fatalf("wasm defaults = %+v", cfg.Wasm)
	}
}

func TestLoadProjectConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[build\n", "failed to parse TOML"},
		{"unknown key", "[build]\ntarget = \"x86\"\n", "unknown key build.target"},
		{"bad backend", "[build]\nbackend = \"llvm\"\n", "[build].backend"},
		{"empty out dir", "[build]\nout_dir = \"\"\n", "[build].out_dir"},
		{"negative jobs", "[build]\njobs = -1\n", "[build].jobs"},
		{"zero memory", "[wasm]\nmemory_min = 0\n", "[wasm].memory_min"},
		{"max below min", "[wasm]\nmemory_min = 3\nmemory_max = 2\n", "[wasm].memory_max"},
		{"empty start", "[wasm]\nstart_export = \"\"\n", "[wasm].start_export"},
		{"bad trace level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.body)
			_, err := loadProjectConfig(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("error %q does not name the manifest", err)
			}
		})
	}
}

func TestMissingManifestUsesDefaults(t *testing.T) {
	m := &projectManifest{Config: defaultProjectConfig()}
	if m.inputPaths() != nil {
		t.Fatalf("inputs without manifest = %v", m.inputPaths())
	}
	if m.outDir() != "build" {
		t.Fatalf("outDir = %q", m.outDir())
	}
}
