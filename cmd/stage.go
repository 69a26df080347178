package cmd

import (
	"context"
	"io"
	"time"

	"github.com/paulschiretz/pgl-headers/pkg/buildinfo"
	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/headerstage"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// RunStage copies every header whose source exists and writes one
// "Copied <name>" line per file to out.
func RunStage(ctx context.Context, flagMap map[string]interface{}, out io.Writer) error {
	runConfig, err := loadRunConfig(flagparse.Stage, flagMap)
	if err != nil {
		return err
	}

	stager := headerstage.NewStager(&headerstage.Plan{
		Table:        runConfig.Headers,
		BufferSizeKB: runConfig.Performance.BufferSizeKB,
		DryRun:       runConfig.Runtime.DryRun,
		Metrics:      runConfig.Metrics,
	}, out)

	startTime := time.Now()
	err = stager.StageAll(ctx, runConfig.Base)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return err // The error will be logged with full details by main()
	}
	plog.Debug(buildinfo.Name+" staging finished.", "duration", duration)
	return nil
}
