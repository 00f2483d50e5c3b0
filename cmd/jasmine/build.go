package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jasmine/internal/buildpipeline"
	"jasmine/internal/diag"
)

var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Generate WebAssembly text and/or QBE IL for program files",
	Long: `Build decodes each program file (.json, .jasb or .sexp) and writes the
generated artifacts to <out>/<name>/. Without arguments the inputs listed
in jasmine.toml [build].inputs are built.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("backend", "wasm", "code generator (wasm|qbe|all)")
	buildCmd.Flags().StringP("out", "o", "", "output directory (default [build].out_dir or build)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().IntP("jobs", "j", 0, "parallel builds (0 = one per input)")
	buildCmd.Flags().Bool("inline-itoa", false, "define itoa inside main.wat instead of importing it")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, settings.manifest.Config.Trace.Level)
	if err != nil {
		return err
	}
	defer func() { cleanup(err) }()

	inputs := args
	baseDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if len(inputs) == 0 {
		inputs = settings.manifest.inputPaths()
		if settings.manifest.Root != "" {
			baseDir = settings.manifest.Root
		}
	}
	if len(inputs) == 0 {
		return errors.New("no input files (pass files or list them in jasmine.toml [build].inputs)")
	}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = settings.manifest.outDir()
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = settings.manifest.Config.Build.Jobs
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	compileReq, err := settings.compileRequest(cmd)
	if err != nil {
		return err
	}

	req := &buildpipeline.BatchRequest{
		Inputs: inputs,
		Template: buildpipeline.BuildRequest{
			CompileRequest: compileReq,
			OutDir:         outDir,
		},
		Jobs:    jobs,
		BaseDir: baseDir,
	}

	var items []buildpipeline.BatchItem
	var buildErr error
	if mode.enabled(os.Stdout, settings) {
		files := buildpipeline.DisplayFiles(inputs, baseDir)
		items, buildErr = runBuildWithUI(cmd.Context(), "jasmine build", files, req)
	} else {
		items, buildErr = buildpipeline.BuildAll(cmd.Context(), req)
	}
	if buildErr != nil && !errors.Is(buildErr, buildpipeline.ErrBatchFailed) {
		return buildErr
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	bags := make([]*diag.Bag, 0, len(items))
	var timings buildpipeline.Timings
	for _, it := range items {
		res := it.Result
		switch {
		case it.Err == nil:
			if !settings.quiet {
				fmt.Fprintf(stdout, "built %s -> %s\n", it.Display, filepath.ToSlash(res.OutputDir))
			}
		case res.Bag != nil && res.Bag.Len() > 0:
			bags = append(bags, res.Bag)
		default:
			reportFailure(stderr, it.Display, it.Err)
		}
		for _, stage := range []buildpipeline.Stage{buildpipeline.StageDecode, buildpipeline.StageLower, buildpipeline.StageEmit, buildpipeline.StageWrite} {
			if res.Timings.Has(stage) {
				timings.Add(stage, res.Timings.Duration(stage))
			}
		}
	}
	diagOut := stderr
	if settings.diagFormat == "json" {
		diagOut = stdout
	}
	if err := reportDiagnostics(diagOut, settings, bags...); err != nil {
		return err
	}
	if settings.timings {
		printStageTimings(stderr, timings, true)
		printTimerSummary(stderr, settings.timer)
	}
	if buildErr != nil {
		return errReported
	}
	return nil
}
