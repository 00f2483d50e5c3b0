package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"jasmine/internal/diag"
	"jasmine/internal/diagfmt"
)

// reportDiagnostics prints every bag in the configured format. JSON output
// merges them into one document so it stays machine-readable.
func reportDiagnostics(out io.Writer, s *commandSettings, bags ...*diag.Bag) error {
	merged := diag.NewBag(s.maxDiag)
	for _, b := range bags {
		merged.Merge(b)
	}
	if merged.Len() == 0 && s.diagFormat != "json" {
		return nil
	}
	merged.Sort()
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	if s.diagFormat == "json" {
		return diagfmt.JSON(out, merged, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeRelative,
			BaseDir:      cwd,
			Max:          s.maxDiag,
			IncludeNotes: true,
		})
	}
	if err := diagfmt.Pretty(out, merged, diagfmt.PrettyOpts{
		Color:     !color.NoColor,
		PathMode:  diagfmt.PathModeRelative,
		BaseDir:   cwd,
		ShowNotes: true,
	}); err != nil {
		return err
	}
	if n := merged.Dropped(); n > 0 {
		_, err := fmt.Fprintf(out, "... %d more diagnostics not shown (see --max-diagnostics)\n", n)
		return err
	}
	return nil
}

// reportFailure prints a non-diagnostic error for one input.
func reportFailure(out io.Writer, display string, err error) {
	if display == "" {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "%s: error: %v\n", display, err)
}
