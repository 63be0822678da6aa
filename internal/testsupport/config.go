package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"eventsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a validated config seeded with unique temp directories
// per test. The source directory exists; the target does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.TargetDir = filepath.Join(base, "sorted")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workers.Metadata = 2
	cfgVal.Workers.Distance = 2
	cfgVal.Placement.Timezone = "UTC"
	cfgVal.Progress.Enabled = false
	cfgVal.Progress.IntervalMillis = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	MkdirAll(t, builder.cfg.Paths.SourceDir)
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return builder.cfg
}

// WithTimezone sets the placement timezone.
func WithTimezone(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Placement.Timezone = name
	}
}

// WithDryRun enables planning without copying.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Placement.DryRun = true
	}
}

// WithManifest enables the run manifest at its default location.
func WithManifest() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = true
	}
}

// WithVerifiedCopies enables checksum verification of every copy.
func WithVerifiedCopies() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Placement.VerifyCopies = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}

// Day returns the Unix timestamp for midnight UTC plus hour on the given date.
func Day(year int, month time.Month, day, hour int) int64 {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC).Unix()
}
