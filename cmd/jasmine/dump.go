package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jasmine/internal/astio"
	"jasmine/internal/backend/qbe"
	"jasmine/internal/backend/wasm"
	"jasmine/internal/buildpipeline"
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print a program tree or its generated code",
	Long: `Dump decodes FILE and prints it. --emit ast re-encodes the tree (as an
S-expression by default, or --format json|msgpack); --emit wat|itoa|ssa
prints generated backend text without writing a build directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("emit", "ast", "what to print (ast|wat|itoa|ssa)")
	dumpCmd.Flags().String("format", "sexp", "tree encoding for --emit ast (sexp|json|msgpack)")
	dumpCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	dumpCmd.Flags().Bool("inline-itoa", false, "define itoa inside main.wat for --emit wat")
}

func runDump(cmd *cobra.Command, args []string) (err error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(emit) {
	case "ast":
		data, err = dumpTree(args[0], formatStr)
	case "wat", "itoa", "ssa":
		data, err = dumpGenerated(cmd, settings, args[0], strings.ToLower(emit))
	default:
		return fmt.Errorf("unsupported --emit %q (must be ast, wat, itoa or ssa)", emit)
	}
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	// #nosec G306 -- dump output is a regular user file
	return os.WriteFile(outPath, data, 0o644)
}

func dumpTree(path, formatStr string) ([]byte, error) {
	file, err := astio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, err := astio.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	if format == astio.FormatSexp {
		return []byte(astio.Sprint(file)), nil
	}
	data, err := astio.Encode(file, format)
	if err != nil {
		return nil, err
	}
	if format == astio.FormatJSON {
		data = append(data, '\n')
	}
	return data, nil
}

func dumpGenerated(cmd *cobra.Command, settings *commandSettings, path, emit string) ([]byte, error) {
	req, err := settings.compileRequest(cmd)
	if err != nil {
		return nil, err
	}
	req.Path = path
	req.Backend = buildpipeline.BackendWasm
	if emit == "ssa" {
		req.Backend = buildpipeline.BackendQBE
	}
	if emit == "itoa" {
		req.Wasm.InlineItoa = false
	}
	res, err := buildpipeline.Compile(cmd.Context(), &req)
	if err != nil {
		if res.Bag != nil && res.Bag.Len() > 0 {
			if repErr := reportDiagnostics(cmd.ErrOrStderr(), settings, res.Bag); repErr != nil {
				return nil, repErr
			}
			return nil, errReported
		}
		return nil, err
	}
	switch emit {
	case "ssa":
		return []byte(qbe.Text(res.QBE)), nil
	case "itoa":
		return []byte(wasm.Text(res.Itoa)), nil
	default:
		return []byte(wasm.Text(res.Wasm)), nil
	}
}

