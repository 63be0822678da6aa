package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the source, target, and log directories.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	TargetDir string `toml:"target_dir"`
	LogDir    string `toml:"log_dir"`
	EnvFile   string `toml:"env_file"`
}

// Workers controls parallelism for the metadata and distance stages.
type Workers struct {
	Metadata int `toml:"metadata"`
	Distance int `toml:"distance"`
}

// Clustering contains the epoch segmentation and density clustering thresholds.
type Clustering struct {
	// EpochGapDays splits epochs when consecutive photos are further apart
	// than this many days.
	EpochGapDays float64 `toml:"epoch_gap_days"`
	// MinEpochSize is the smallest epoch handed to the clustering oracle.
	// Smaller epochs are placed under the no-cluster area as a single group.
	MinEpochSize       int  `toml:"min_epoch_size"`
	MinSamples         int  `toml:"min_samples"`
	MinClusterSize     int  `toml:"min_cluster_size"`
	AllowSingleCluster bool `toml:"allow_single_cluster"`
}

// Placement contains destination folder naming and copy behaviour.
type Placement struct {
	NoClusterDir string `toml:"nocluster_dir"`
	NoDateDir    string `toml:"nodate_dir"`
	Timezone     string `toml:"timezone"`
	VerifyCopies bool   `toml:"verify_copies"`
	DryRun       bool   `toml:"dry_run"`
}

// Progress controls the distance matrix progress monitor.
type Progress struct {
	Enabled        bool `toml:"enabled"`
	IntervalMillis int  `toml:"interval_ms"`
}

// Manifest controls the optional per-run SQLite placement manifest.
type Manifest struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for eventsort.
//
// Configuration sections by subsystem:
//   - Paths: source tree, target root, and log directory
//   - Workers: metadata extraction and distance matrix parallelism
//   - Clustering: epoch gap and density clustering parameters
//   - Placement: no-cluster folder names, timezone, copy verification
//   - Progress: distance matrix monitor cadence
//   - Manifest: optional SQLite record of every placement in a run
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Workers    Workers    `toml:"workers"`
	Clustering Clustering `toml:"clustering"`
	Placement  Placement  `toml:"placement"`
	Progress   Progress   `toml:"progress"`
	Manifest   Manifest   `toml:"manifest"`
	Logging    Logging    `toml:"logging"`

	location *time.Location
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("eventsort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadEnvFile populates the process environment from a dotenv file. An explicit
// path must exist; the implicit ./.env is optional. Variables already set in the
// environment win over the file.
func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path)
	if explicit == "" {
		if value, ok := os.LookupEnv("EVENTSORT_ENV_FILE"); ok {
			explicit = strings.TrimSpace(value)
		}
	}
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return fmt.Errorf("paths.env_file: %w", err)
		}
		if err := godotenv.Load(expanded); err != nil {
			return fmt.Errorf("load env file %q: %w", expanded, err)
		}
		return nil
	}
	if info, err := os.Stat(".env"); err == nil && !info.IsDir() {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("load env file .env: %w", err)
		}
	}
	return nil
}

// EnsureDirectories creates directories the CLI writes to before any photo is
// processed. The target root is created lazily by the placement stage so a dry
// run leaves no trace on disk.
func (c *Config) EnsureDirectories() error {
	if dir := strings.TrimSpace(c.Paths.LogDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location returns the timezone used to interpret EXIF wall-clock timestamps
// and to format date labels.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.Local
	}
	return c.location
}

// ManifestPath returns the manifest database location, defaulting to a file in
// the target root.
func (c *Config) ManifestPath() string {
	if path := strings.TrimSpace(c.Manifest.Path); path != "" {
		return path
	}
	return filepath.Join(c.Paths.TargetDir, defaultManifestName)
}

// ProgressInterval returns the monitor cadence as a duration.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Progress.IntervalMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
