package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulschiretz/pgl-headers/pkg/buildinfo"
	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/headerbundle"
	"github.com/paulschiretz/pgl-headers/pkg/headerstage"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
	"github.com/paulschiretz/pgl-headers/pkg/util"
)

// ConfigFileName is the name of the optional configuration file in the base directory.
const ConfigFileName = "pgl-headers.config.json"

type PerformanceConfig struct {
	BufferSizeKB int `json:"bufferSizeKB" comment:"Size of the I/O buffer in kilobytes. 0 selects the default of 256."`
	CheckWorkers int `json:"checkWorkers" comment:"Headers compared concurrently by 'check'. 0 selects the default of 4."`
}

type BundleConfig struct {
	Format headerbundle.Format `json:"format"`
	Level  headerbundle.Level  `json:"level"`
	// Output is relative to the base directory. Empty means external/headers.<format>.
	Output string `json:"output,omitempty"`
}

type RuntimeConfig struct {
	DryRun bool
	Force  bool
}

type Config struct {
	Version     string                 `json:"version"`
	LogLevel    string                 `json:"logLevel"`
	Metrics     bool                   `json:"metrics"`
	Performance PerformanceConfig      `json:"performance"`
	Headers     []headerstage.CopySpec `json:"headers"`
	Bundle      BundleConfig           `json:"bundle"`

	// Base is where the config was loaded from and is never persisted.
	Base    string        `json:"-"`
	Runtime RuntimeConfig `json:"-"`
}

// NewDefault returns the configuration used when no config file exists.
func NewDefault() Config {
	return Config{
		Version:  buildinfo.Version,
		LogLevel: "info",
		Base:     ".",
		Headers:  headerstage.DefaultTable(),
		Bundle: BundleConfig{
			Format: headerbundle.TarZst,
			Level:  headerbundle.Default,
		},
	}
}

// Load reads ConfigFileName from base over the defaults. A missing file is
// not an error.
func Load(base string) (Config, error) {
	absBasePath, err := filepath.Abs(base)
	if err != nil {
		return Config{}, fmt.Errorf("could not determine absolute path for base directory %s: %w", base, err)
	}

	configPath := filepath.Join(absBasePath, ConfigFileName)

	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config := NewDefault()
			config.Base = absBasePath
			return config, nil
		}
		return Config{}, fmt.Errorf("error opening config file %s: %w", configPath, err)
	}
	defer file.Close()

	plog.Debug("Loading configuration", "path", configPath)
	// Fields missing from the file keep their default values.
	config := NewDefault()
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", configPath, err)
	}

	config.Base = absBasePath
	config.Version = buildinfo.Version
	return config, nil
}

// Generate writes c to ConfigFileName inside c.Base, refusing to replace an
// existing file unless Runtime.Force is set.
func Generate(c Config) error {
	configPath := filepath.Join(c.Base, ConfigFileName)

	if !c.Runtime.Force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists at %s (use -force to overwrite)", configPath)
		}
	}

	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	if err := os.WriteFile(configPath, jsonData, util.UserWritableFilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	plog.Info("Successfully saved config file", "path", configPath)
	return nil
}

// Validate checks the configuration and normalizes Base and the bundle settings.
func (c *Config) Validate() error {
	if c.Base == "" {
		return fmt.Errorf("base path cannot be empty")
	}
	var err error
	c.Base, err = util.ExpandPath(c.Base)
	if err != nil {
		return fmt.Errorf("could not expand base path: %w", err)
	}
	c.Base, err = filepath.Abs(c.Base)
	if err != nil {
		return fmt.Errorf("could not determine absolute base path: %w", err)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "notice", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logLevel: %q. Must be 'debug', 'notice', 'info', 'warn', or 'error'", c.LogLevel)
	}

	if c.Performance.BufferSizeKB < 0 {
		return fmt.Errorf("performance.bufferSizeKB cannot be negative")
	}
	if c.Performance.CheckWorkers < 0 {
		return fmt.Errorf("performance.checkWorkers cannot be negative")
	}

	if err := validateHeaders(c.Headers); err != nil {
		return err
	}

	// Flags arrive as raw strings; parsing here also resolves empty values to defaults.
	if c.Bundle.Format, err = headerbundle.ParseFormat(string(c.Bundle.Format)); err != nil {
		return fmt.Errorf("bundle.format: %w", err)
	}
	if c.Bundle.Level, err = headerbundle.ParseLevel(string(c.Bundle.Level)); err != nil {
		return fmt.Errorf("bundle.level: %w", err)
	}
	return nil
}

func validateHeaders(headers []headerstage.CopySpec) error {
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if h.Label == "" {
			return fmt.Errorf("headers[%d]: label cannot be empty", i)
		}
		if !util.IsLocalSlashPath(h.Source) {
			return fmt.Errorf("headers[%d] (%s): source must be a relative slash-separated path inside the base directory: %q", i, h.Label, h.Source)
		}
		if !util.IsLocalSlashPath(h.Destination) {
			return fmt.Errorf("headers[%d] (%s): destination must be a relative slash-separated path inside the base directory: %q", i, h.Label, h.Destination)
		}
		key := filepath.Clean(filepath.FromSlash(h.Destination))
		if seen[key] {
			return fmt.Errorf("headers[%d] (%s): duplicate destination %q", i, h.Label, h.Destination)
		}
		seen[key] = true
	}
	return nil
}

// BundleOutputPath returns the absolute bundle path for this config.
func (c *Config) BundleOutputPath() string {
	if c.Bundle.Output == "" {
		return filepath.Join(c.Base, "external", c.Bundle.Format.FileName())
	}
	if filepath.IsAbs(c.Bundle.Output) {
		return c.Bundle.Output
	}
	return filepath.Join(c.Base, filepath.FromSlash(c.Bundle.Output))
}

// LogSummary logs the effective configuration at debug level so the default
// output stays limited to the command's own lines.
func (c *Config) LogSummary(command flagparse.Command) {
	logArgs := []interface{}{
		"command", command,
		"base", c.Base,
		"log_level", c.LogLevel,
		"dry_run", c.Runtime.DryRun,
		"headers", len(c.Headers),
		"buffer_size_kb", c.Performance.BufferSizeKB,
	}
	switch command {
	case flagparse.Stage:
		logArgs = append(logArgs, "metrics", c.Metrics)
	case flagparse.Check:
		logArgs = append(logArgs, "check_workers", c.Performance.CheckWorkers)
	case flagparse.Bundle:
		logArgs = append(logArgs, "bundle", fmt.Sprintf("%s (l:%s)", c.Bundle.Format, c.Bundle.Level), "output", c.BundleOutputPath())
	}
	plog.Debug("Configuration", logArgs...)
}

// MergeConfigWithFlags overlays explicitly set flags onto base.
func MergeConfigWithFlags(command flagparse.Command, base Config, setFlags map[string]any) Config {
	merged := base

	for name, value := range setFlags {
		switch name {
		case "base":
			merged.Base = value.(string)
		case "log-level":
			merged.LogLevel = value.(string)
		case "dry-run":
			merged.Runtime.DryRun = value.(bool)
		case "force":
			merged.Runtime.Force = value.(bool)
		case "metrics":
			merged.Metrics = value.(bool)
		case "buffer-size-kb":
			merged.Performance.BufferSizeKB = value.(int)
		case "workers":
			merged.Performance.CheckWorkers = value.(int)
		case "format":
			merged.Bundle.Format = headerbundle.Format(value.(string))
		case "level":
			merged.Bundle.Level = headerbundle.Level(value.(string))
		case "output":
			merged.Bundle.Output = value.(string)
		default:
			plog.Debug("unhandled flag in MergeConfigWithFlags", "flag", name, "command", command)
		}
	}
	return merged
}
