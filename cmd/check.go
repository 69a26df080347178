package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/headerstage"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// RunCheck prints the state of every header and fails if any of them would
// be changed by a stage run.
func RunCheck(ctx context.Context, flagMap map[string]interface{}, out io.Writer) error {
	runConfig, err := loadRunConfig(flagparse.Check, flagMap)
	if err != nil {
		return err
	}

	checker := headerstage.NewChecker(&headerstage.Plan{
		Table:        runConfig.Headers,
		BufferSizeKB: runConfig.Performance.BufferSizeKB,
		Workers:      runConfig.Performance.CheckWorkers,
	})

	results, err := checker.Check(ctx, runConfig.Base)
	if err != nil {
		return err
	}

	pending := 0
	for _, res := range results {
		fmt.Fprintf(out, "%-24s %s\n", res.Spec.Label, res.Status)
		if res.NeedsStaging() {
			pending++
		}
		if res.DestinationErr != nil && res.Status != headerstage.StatusSourceMissing {
			plog.Warn("Destination cannot take a staged copy", "file", res.Spec.Label, "error", res.DestinationErr)
		}
	}

	if pending > 0 {
		return fmt.Errorf("%d header(s) are not staged or out of date", pending)
	}
	return nil
}
