package config

import "runtime"

const (
	defaultConfigPath         = "~/.config/eventsort/config.toml"
	defaultLogDir             = "~/.local/share/eventsort/logs"
	defaultManifestName       = "eventsort-manifest.db"
	defaultEpochGapDays       = 7
	defaultMinEpochSize       = 10
	defaultMinSamples         = 1
	defaultMinClusterSize     = 10
	defaultNoClusterDir       = "nocluster"
	defaultNoDateDir          = "NODATE"
	defaultTimezone           = "Local"
	defaultProgressIntervalMS = 1000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	workers := defaultWorkers()
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Workers: Workers{
			Metadata: workers,
			Distance: workers,
		},
		Clustering: Clustering{
			EpochGapDays:       defaultEpochGapDays,
			MinEpochSize:       defaultMinEpochSize,
			MinSamples:         defaultMinSamples,
			MinClusterSize:     defaultMinClusterSize,
			AllowSingleCluster: true,
		},
		Placement: Placement{
			NoClusterDir: defaultNoClusterDir,
			NoDateDir:    defaultNoDateDir,
			Timezone:     defaultTimezone,
		},
		Progress: Progress{
			Enabled:        true,
			IntervalMillis: defaultProgressIntervalMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
