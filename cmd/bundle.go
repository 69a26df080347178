package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/headerbundle"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// RunBundle packs the staged headers into a single archive.
func RunBundle(ctx context.Context, flagMap map[string]interface{}, out io.Writer) error {
	runConfig, err := loadRunConfig(flagparse.Bundle, flagMap)
	if err != nil {
		return err
	}

	bundler := headerbundle.NewBundler(&headerbundle.Plan{
		Format:       runConfig.Bundle.Format,
		Level:        runConfig.Bundle.Level,
		BufferSizeKB: runConfig.Performance.BufferSizeKB,
		DryRun:       runConfig.Runtime.DryRun,
	})

	archivePath := runConfig.BundleOutputPath()
	startTime := time.Now()
	n, err := bundler.Bundle(ctx, runConfig.Base, runConfig.Headers, archivePath)
	duration := time.Since(startTime).Round(time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to bundle headers: %w", err)
	}

	if n == 0 {
		plog.Warn("No staged headers found. Run the stage command first.", "base", runConfig.Base)
	}
	if runConfig.Runtime.DryRun {
		return nil
	}
	fmt.Fprintf(out, "Bundled %d header(s) into %s\n", n, archivePath)
	plog.Debug("Bundle finished.", "duration", duration)
	return nil
}
