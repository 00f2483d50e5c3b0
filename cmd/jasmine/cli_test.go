package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helloProgram = `(let greeting "hello")
(println greeting)
(println (+ 40 2))
`

// executeCLI runs the root command in-process. Flags are reset afterwards
// because cobra keeps parsed values on the package-level commands.
func executeCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeProgram(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "hello.jas", helloProgram)
	for _, backend := range []string{"wasm", "qbe", "all"} {
		t.Run(backend, func(t *testing.T) {
			stdout, _, err := executeCLI(t, "run", "--backend", backend, path)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if stdout != "hello\n42\n" {
				t.Fatalf("stdout = %q", stdout)
			}
		})
	}
}

func TestRunReportsDiagnostics(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "bad.jas", "(println missing)\n")
	_, stderr, err := executeCLI(t, "run", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if !strings.Contains(stderr, "SEM3005") {
		t.Fatalf("stderr lacks diagnostic code: %q", stderr)
	}
}

func TestRunJSONDiagnostics(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "bad.jas", "(let x 1)\n(let x 2)\n")
	_, stderr, err := executeCLI(t, "--diag-format", "json", "run", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	var doc struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(stderr), &doc); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, stderr)
	}
	if doc.Count != 1 || doc.Diagnostics[0].Code != "SEM3002" {
		t.Fatalf("diagnostics = %+v", doc)
	}
}

func TestBuildCommandWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "hello.jas", helloProgram)
	out := filepath.Join(dir, "out")

	stdout, _, err := executeCLI(t, "build", "--ui", "off", "--backend", "all", "--out", out, path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(stdout, "built ") {
		t.Fatalf("stdout = %q", stdout)
	}
	for _, name := range []string{"main.wat", "itoa.wat", "main.ssa"} {
		if _, err := os.Stat(filepath.Join(out, "hello", name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestBuildUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "hello.jas", helloProgram)
	writeManifest(t, dir, "[build]\nbackend = \"qbe\"\nout_dir = \"gen\"\ninputs = [\"hello.jas\"]\n")
	t.Chdir(dir)

	if _, _, err := executeCLI(t, "--quiet", "build", "--ui", "off"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gen", "hello", "main.ssa")); err != nil {
		t.Fatalf("missing main.ssa: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gen", "hello", "main.wat")); !os.IsNotExist(err) {
		t.Fatalf("main.wat written for qbe-only build: %v", err)
	}
}

func TestBuildFailureKeepsGoing(t *testing.T) {
	dir := t.TempDir()
	good := writeProgram(t, dir, "good.jas", helloProgram)
	bad := writeProgram(t, dir, "bad.jas", "(println nope)\n")
	out := filepath.Join(dir, "out")

	_, _, err := executeCLI(t, "build", "--ui", "off", "--out", out, good, bad)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v, want errReported", err)
	}
	if _, err := os.Stat(filepath.Join(out, "good", "main.wat")); err != nil {
		t.Fatalf("good input not built: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "bad")); !os.IsNotExist(err) {
		t.Fatalf("failed input left output behind: %v", err)
	}
}

func TestDumpCommand(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "hello.jas", helloProgram)

	stdout, _, err := executeCLI(t, "dump", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(stdout, `(let greeting "hello")`) {
		t.Fatalf("dump output = %q", stdout)
	}

	stdout, _, err = executeCLI(t, "dump", "--emit", "ssa", path)
	if err != nil {
		t.Fatalf("dump ssa: %v", err)
	}
	if !strings.Contains(stdout, "export function w $main()") {
		t.Fatalf("ssa output = %q", stdout)
	}

	stdout, _, err = executeCLI(t, "dump", "--format", "json", path)
	if err != nil {
		t.Fatalf("dump json: %v", err)
	}
	if !json.Valid([]byte(stdout)) {
		t.Fatalf("json dump is not valid JSON: %q", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := executeCLI(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var stamp buildStamp
	if err := json.Unmarshal([]byte(stdout), &stamp); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if stamp.Tool != "jasmine" || stamp.GoVersion == "" || len(stamp.Backends) != 2 {
		t.Fatalf("stamp = %+v", stamp)
	}
}

func TestReadBuildStampFallsBackToVCS(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		}}, true
	}
	stamp := readBuildStamp(read)
	if stamp.Commit != "abc123" || stamp.Date != "2026-01-02T03:04:05Z" || !stamp.Modified {
		t.Fatalf("stamp = %+v", stamp)
	}
	if stamp.Backends[0] != "wasm" || stamp.Backends[1] != "qbe" {
		t.Fatalf("backends = %v", stamp.Backends)
	}
}
