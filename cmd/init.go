package cmd

import (
	"context"
	"fmt"

	"github.com/paulschiretz/pgl-headers/pkg/buildinfo"
	"github.com/paulschiretz/pgl-headers/pkg/config"
	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// RunInit writes the effective configuration into the base directory so the
// header table can be edited.
func RunInit(ctx context.Context, flagMap map[string]interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	runConfig, err := loadRunConfig(flagparse.Init, flagMap)
	if err != nil {
		return err
	}

	if err := config.Generate(runConfig); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	plog.Info(buildinfo.Name + " configuration initialized.")
	return nil
}
