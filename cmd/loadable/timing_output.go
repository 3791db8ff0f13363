package main

import (
	"fmt"
	"io"
	"time"

	"loadable/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(pipeline.StageClassify) || timings.Has(pipeline.StageScan) || timings.Has(pipeline.StageResolve) {
		analyzed := timings.Sum(pipeline.StageClassify, pipeline.StageScan, pipeline.StageResolve)
		fmt.Fprintf(out, "analyzed %.1f ms\n", toMillis(analyzed))
	}
	if timings.Has(pipeline.StageAggregate) {
		fmt.Fprintf(out, "aggregated %.1f ms\n", toMillis(timings.Duration(pipeline.StageAggregate)))
	}
	if timings.Has(pipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(pipeline.StageEmit)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
