package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jasmine/internal/buildpipeline"
	"jasmine/internal/observ"
)

// commandSettings merges jasmine.toml with the command line. Flags win
// when they were set explicitly.
type commandSettings struct {
	manifest   *projectManifest
	backend    buildpipeline.Backend
	maxDiag    int
	quiet      bool
	timings    bool
	diagFormat string
	timer      *observ.Timer
}

func loadSettings(cmd *cobra.Command) (*commandSettings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, err := loadProjectManifest(cwd)
	if err != nil {
		return nil, err
	}
	s := &commandSettings{manifest: manifest}

	root := cmd.Root().PersistentFlags()
	if s.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if s.quiet, err = root.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = root.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.diagFormat, err = root.GetString("diag-format"); err != nil {
		return nil, err
	}
	s.diagFormat = strings.ToLower(strings.TrimSpace(s.diagFormat))
	switch s.diagFormat {
	case "pretty", "json":
	default:
		return nil, fmt.Errorf("unsupported --diag-format %q (must be pretty or json)", s.diagFormat)
	}
	if s.timings {
		s.timer = observ.NewTimer()
	}

	backendStr := manifest.Config.Build.Backend
	if f := cmd.Flags().Lookup("backend"); f != nil && (f.Changed || backendStr == "") {
		backendStr = f.Value.String()
	}
	if s.backend, err = buildpipeline.ParseBackend(backendStr); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *commandSettings) compileRequest(cmd *cobra.Command) (buildpipeline.CompileRequest, error) {
	opts := s.manifest.wasmOptions()
	if f := cmd.Flags().Lookup("inline-itoa"); f != nil && f.Changed {
		inline, err := cmd.Flags().GetBool("inline-itoa")
		if err != nil {
			return buildpipeline.CompileRequest{}, err
		}
		opts.InlineItoa = inline
	}
	return buildpipeline.CompileRequest{
		Backend:        s.backend,
		Wasm:           opts,
		MaxDiagnostics: s.maxDiag,
		Timer:          s.timer,
	}, nil
}
