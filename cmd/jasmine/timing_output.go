package main

import (
	"fmt"
	"io"
	"time"

	"jasmine/internal/buildpipeline"
	"jasmine/internal/observ"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings, includeWrite bool) {
	if out == nil {
		return
	}
	if timings.Has(buildpipeline.StageDecode) {
		fmt.Fprintf(out, "decoded %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageDecode)))
	}
	if timings.Has(buildpipeline.StageLower) || timings.Has(buildpipeline.StageEmit) {
		lowered := timings.Sum(buildpipeline.StageLower, buildpipeline.StageEmit)
		fmt.Fprintf(out, "lowered %.1f ms\n", toMillis(lowered))
	}
	if includeWrite && timings.Has(buildpipeline.StageWrite) {
		fmt.Fprintf(out, "wrote %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageWrite)))
	}
}

// printTimerSummary prints the per-phase breakdown collected across inputs.
func printTimerSummary(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if summary := timer.Summary(); summary != "" {
		fmt.Fprint(out, summary)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
