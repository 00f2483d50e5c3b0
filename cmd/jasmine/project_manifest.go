package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"jasmine/internal/backend/wasm"
	"jasmine/internal/buildpipeline"
	"jasmine/internal/trace"
)

const manifestName = "jasmine.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Build buildConfig `toml:"build"`
	Wasm  wasmConfig  `toml:"wasm"`
	Trace traceConfig `toml:"trace"`
}

type buildConfig struct {
	Backend string   `toml:"backend"`
	OutDir  string   `toml:"out_dir"`
	Jobs    int      `toml:"jobs"`
	Inputs  []string `toml:"inputs"`
}

type wasmConfig struct {
	MemoryMin   uint32 `toml:"memory_min"`
	MemoryMax   uint32 `toml:"memory_max"`
	InlineItoa  bool   `toml:"inline_itoa"`
	StartExport string `toml:"start_export"`
}

type traceConfig struct {
	Level string `toml:"level"`
}

func defaultProjectConfig() projectConfig {
	opts := wasm.DefaultOptions()
	return projectConfig{
		Build: buildConfig{
			Backend: string(buildpipeline.BackendWasm),
			OutDir:  buildpipeline.DefaultOutDir,
		},
		Wasm: wasmConfig{
			MemoryMin:   opts.MemoryMin,
			MemoryMax:   opts.MemoryMax,
			InlineItoa:  opts.InlineItoa,
			StartExport: opts.StartExport,
		},
		Trace: traceConfig{Level: "off"},
	}
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest walks up from startDir looking for jasmine.toml. A
// missing manifest is not an error: the defaults apply and Path is empty.
func loadProjectManifest(startDir string) (*projectManifest, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &projectManifest{Config: defaultProjectConfig()}, nil
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	cfg := defaultProjectConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	if meta.IsDefined("build", "backend") {
		if _, err := buildpipeline.ParseBackend(cfg.Build.Backend); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [build].backend: %w", path, err)
		}
	}
	if meta.IsDefined("build", "out_dir") && strings.TrimSpace(cfg.Build.OutDir) == "" {
		return projectConfig{}, fmt.Errorf("%s: [build].out_dir must not be empty", path)
	}
	if cfg.Build.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if meta.IsDefined("wasm", "memory_min") && cfg.Wasm.MemoryMin == 0 {
		return projectConfig{}, fmt.Errorf("%s: [wasm].memory_min must be at least 1", path)
	}
	if cfg.Wasm.MemoryMax != 0 && cfg.Wasm.MemoryMax < cfg.Wasm.MemoryMin {
		return projectConfig{}, fmt.Errorf("%s: [wasm].memory_max (%d) is below memory_min (%d)", path, cfg.Wasm.MemoryMax, cfg.Wasm.MemoryMin)
	}
	if meta.IsDefined("wasm", "start_export") && strings.TrimSpace(cfg.Wasm.StartExport) == "" {
		return projectConfig{}, fmt.Errorf("%s: [wasm].start_export must not be empty", path)
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return projectConfig{}, fmt.Errorf("%s: [trace].level: %w", path, err)
		}
	}
	return cfg, nil
}

// inputPaths resolves [build].inputs against the manifest directory.
func (m *projectManifest) inputPaths() []string {
	if m == nil || m.Root == "" {
		return nil
	}
	out := make([]string, 0, len(m.Config.Build.Inputs))
	for _, in := range m.Config.Build.Inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		if !filepath.IsAbs(in) {
			in = filepath.Join(m.Root, filepath.FromSlash(in))
		}
		out = append(out, in)
	}
	return out
}

// outDir resolves [build].out_dir against the manifest directory.
func (m *projectManifest) outDir() string {
	dir := m.Config.Build.OutDir
	if dir == "" {
		dir = buildpipeline.DefaultOutDir
	}
	if m.Root != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(m.Root, filepath.FromSlash(dir))
	}
	return dir
}

func (m *projectManifest) wasmOptions() wasm.Options {
	return wasm.Options{
		MemoryMin:   m.Config.Wasm.MemoryMin,
		MemoryMax:   m.Config.Wasm.MemoryMax,
		InlineItoa:  m.Config.Wasm.InlineItoa,
		StartExport: m.Config.Wasm.StartExport,
	}
}
