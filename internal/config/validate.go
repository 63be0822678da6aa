package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. It does not require the
// source and target directories; see ValidateRun.
func (c *Config) Validate() error {
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	if err := c.validatePlacement(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateRun checks the settings a sorting run needs beyond Validate: an
// existing source directory and a target root that is not the source itself.
func (c *Config) ValidateRun() error {
	source := strings.TrimSpace(c.Paths.SourceDir)
	target := strings.TrimSpace(c.Paths.TargetDir)
	if source == "" {
		return errors.New("paths.source_dir must be set (or pass --source)")
	}
	if target == "" {
		return errors.New("paths.target_dir must be set (or pass --target)")
	}
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("paths.source_dir %q is not a directory", source)
	}
	if filepath.Clean(source) == filepath.Clean(target) {
		return errors.New("paths.target_dir must differ from paths.source_dir")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Metadata <= 0 {
		return errors.New("workers.metadata must be positive")
	}
	if c.Workers.Distance <= 0 {
		return errors.New("workers.distance must be positive")
	}
	return nil
}

func (c *Config) validateClustering() error {
	cfg := c.Clustering
	if cfg.EpochGapDays <= 0 {
		return errors.New("clustering.epoch_gap_days must be positive")
	}
	if cfg.MinEpochSize < 2 {
		return errors.New("clustering.min_epoch_size must be at least 2")
	}
	if cfg.MinSamples < 1 {
		return errors.New("clustering.min_samples must be at least 1")
	}
	if cfg.MinClusterSize < 2 {
		return errors.New("clustering.min_cluster_size must be at least 2")
	}
	return nil
}

func (c *Config) validatePlacement() error {
	for key, value := range map[string]string{
		"placement.nocluster_dir": c.Placement.NoClusterDir,
		"placement.nodate_dir":    c.Placement.NoDateDir,
	} {
		if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
			return fmt.Errorf("%s must be a single folder name, got %q", key, value)
		}
	}
	// Cluster label folders are integers; an integer no-cluster folder would
	// interleave unclustered photos with a cluster's output.
	if _, err := strconv.Atoi(c.Placement.NoClusterDir); err == nil {
		return fmt.Errorf("placement.nocluster_dir must not be numeric, got %q", c.Placement.NoClusterDir)
	}
	loc, err := loadLocation(c.Placement.Timezone)
	if err != nil {
		return fmt.Errorf("placement.timezone: %w", err)
	}
	c.location = loc
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.IntervalMillis <= 0 || c.Progress.IntervalMillis > 1000 {
		return errors.New("progress.interval_ms must be between 1 and 1000")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
