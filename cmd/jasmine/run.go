package main

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"jasmine/internal/backend/qbe"
	"jasmine/internal/backend/wasm"
	"jasmine/internal/buildpipeline"
	"jasmine/internal/trace"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Compile a program and execute it with the built-in interpreter",
	Long: `Run compiles FILE in memory and executes the generated module with the
interpreter of the selected backend. With --backend all both run and their
output must agree.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	runCmd.Flags().String("backend", "wasm", "code generator to execute (wasm|qbe|all)")
	runCmd.Flags().Bool("inline-itoa", false, "define itoa inside the wasm module instead of importing it")
}

func runProgram(cmd *cobra.Command, args []string) (err error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, settings.manifest.Config.Trace.Level)
	if err != nil {
		return err
	}
	defer func() { cleanup(err) }()

	req, err := settings.compileRequest(cmd)
	if err != nil {
		return err
	}
	req.Path = args[0]
	res, err := buildpipeline.Compile(cmd.Context(), &req)
	if err != nil {
		if res.Bag != nil && res.Bag.Len() > 0 {
			if repErr := reportDiagnostics(cmd.ErrOrStderr(), settings, res.Bag); repErr != nil {
				return repErr
			}
			return errReported
		}
		return err
	}

	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, "run", trace.CurrentSpan(cmd.Context())).WithExtra("backend", settings.backend.String())
	stop := settings.timer.Track("run")
	start := time.Now()
	err = execute(cmd.OutOrStdout(), &res, settings.backend)
	elapsed := time.Since(start)
	stop("")
	span.End("")
	if err != nil {
		return err
	}
	if settings.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings, false)
		fmt.Fprintf(cmd.ErrOrStderr(), "ran %.1f ms\n", toMillis(elapsed))
		printTimerSummary(cmd.ErrOrStderr(), settings.timer)
	}
	return nil
}

// execute runs the compiled modules. For BackendAll both interpreters run
// and their output is compared before anything is printed.
func execute(out io.Writer, res *buildpipeline.CompileResult, backend buildpipeline.Backend) error {
	switch backend {
	case buildpipeline.BackendQBE:
		return qbe.Run(res.QBE, out)
	case buildpipeline.BackendAll:
		var wasmOut, qbeOut bytes.Buffer
		if err := wasm.Run(res.Wasm, res.Itoa, &wasmOut); err != nil {
			return fmt.Errorf("wasm: %w", err)
		}
		if err := qbe.Run(res.QBE, &qbeOut); err != nil {
			return fmt.Errorf("qbe: %w", err)
		}
		if !bytes.Equal(wasmOut.Bytes(), qbeOut.Bytes()) {
			return fmt.Errorf("backends disagree:\nwasm:\n%s\nqbe:\n%s", wasmOut.String(), qbeOut.String())
		}
		_, err := out.Write(wasmOut.Bytes())
		return err
	default:
		return wasm.Run(res.Wasm, res.Itoa, out)
	}
}
