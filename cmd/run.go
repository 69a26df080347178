package cmd

import (
	"fmt"

	"github.com/paulschiretz/pgl-headers/pkg/config"
	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
	"github.com/paulschiretz/pgl-headers/pkg/util"
)

// loadRunConfig loads the config from the base directory, overlays the flags
// and validates the result. The global log level is set as a side effect.
func loadRunConfig(command flagparse.Command, flagMap map[string]interface{}) (config.Config, error) {
	base := "."
	if b, ok := flagMap["base"].(string); ok && b != "" {
		base = b
	}
	base, err := util.ExpandPath(base)
	if err != nil {
		return config.Config{}, err
	}

	// Apply the flag level early so config loading can be debugged.
	if lvl, ok := flagMap["log-level"].(string); ok {
		plog.SetLevel(plog.LevelFromString(lvl))
	}

	loadedConfig, err := config.Load(base)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration from base: %w", err)
	}

	runConfig := config.MergeConfigWithFlags(command, loadedConfig, flagMap)
	// The flag value may be relative or contain '~'; the loaded one is already absolute.
	runConfig.Base = loadedConfig.Base

	if err := runConfig.Validate(); err != nil {
		return config.Config{}, err
	}

	plog.SetLevel(plog.LevelFromString(runConfig.LogLevel))
	runConfig.LogSummary(command)
	return runConfig, nil
}
