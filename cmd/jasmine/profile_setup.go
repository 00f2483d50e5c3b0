package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jasmine/internal/prof"
)

// profiling is stopped by main after the command returns, so profiles
// cover failing runs too.
var profiling *prof.Session

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	cpu, err := flags.GetString("cpu-profile")
	if err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	heap, err := flags.GetString("mem-profile")
	if err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	runtimeTrace, err := flags.GetString("runtime-trace")
	if err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	opts := prof.Options{CPU: cpu, Heap: heap, Trace: runtimeTrace}
	if !opts.Enabled() {
		return nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profiling = session
	return nil
}

func stopProfiling() error {
	err := profiling.Stop()
	profiling = nil
	return err
}
