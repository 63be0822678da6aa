package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	if err := c.applyEnvOverrides(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizePlacement()
	c.normalizeProgress()
	c.normalizeLogging()
	return nil
}

// applyEnvOverrides lets EVENTSORT_* variables (possibly sourced from a dotenv
// file) override values read from TOML.
func (c *Config) applyEnvOverrides() error {
	if value, ok := os.LookupEnv("EVENTSORT_SOURCE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.SourceDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("EVENTSORT_TARGET_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.TargetDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("EVENTSORT_WORKERS"); ok && strings.TrimSpace(value) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("EVENTSORT_WORKERS: %w", err)
		}
		c.Workers.Metadata = n
		c.Workers.Distance = n
	}
	if value, ok := os.LookupEnv("EVENTSORT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Manifest.Path, err = expandPath(strings.TrimSpace(c.Manifest.Path)); err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkers() {
	if c.Workers.Metadata <= 0 {
		c.Workers.Metadata = defaultWorkers()
	}
	if c.Workers.Distance <= 0 {
		c.Workers.Distance = defaultWorkers()
	}
}

func (c *Config) normalizePlacement() {
	c.Placement.NoClusterDir = strings.TrimSpace(c.Placement.NoClusterDir)
	if c.Placement.NoClusterDir == "" {
		c.Placement.NoClusterDir = defaultNoClusterDir
	}
	c.Placement.NoDateDir = strings.TrimSpace(c.Placement.NoDateDir)
	if c.Placement.NoDateDir == "" {
		c.Placement.NoDateDir = defaultNoDateDir
	}
	c.Placement.Timezone = strings.TrimSpace(c.Placement.Timezone)
	if c.Placement.Timezone == "" {
		c.Placement.Timezone = defaultTimezone
	}
}

func (c *Config) normalizeProgress() {
	if c.Progress.IntervalMillis <= 0 {
		c.Progress.IntervalMillis = defaultProgressIntervalMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
