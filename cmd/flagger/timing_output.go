package main

import (
	"fmt"
	"io"
	"time"

	"flagger/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(buildpipeline.StageParse) || timings.Has(buildpipeline.StageResolve) {
		fmt.Fprintf(out, "analyzed %.1f ms\n", toMillis(timings.Sum(buildpipeline.StageParse, buildpipeline.StageResolve)))
	}
	if timings.Has(buildpipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageEmit)))
	}
	if timings.Has(buildpipeline.StageLink) {
		fmt.Fprintf(out, "linked %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageLink)))
	}
	if timings.Has(buildpipeline.StageWrite) {
		fmt.Fprintf(out, "written %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageWrite)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
