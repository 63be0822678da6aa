package pipeline

import (
	"time"

	"eventsort/internal/exifload"
	"eventsort/internal/placement"
)

// FailureSummary is a placement failure rendered for output.
type FailureSummary struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Error       string `json:"error"`
}

// Summary reports what a run did.
type Summary struct {
	RunID     string `json:"run_id"`
	SourceDir string `json:"source_dir"`
	TargetDir string `json:"target_dir"`
	DryRun    bool   `json:"dry_run"`

	Scan exifload.Stats `json:"scan"`

	Located int `json:"located"`
	Dated   int `json:"dated"`
	Undated int `json:"undated"`

	Epochs          int `json:"epochs"`
	ClusteredEpochs int `json:"clustered_epochs"`
	SmallEpochs     int `json:"small_epochs"`
	FallbackEpochs  int `json:"fallback_epochs"`
	Clusters        int `json:"clusters"`
	NoisePhotos     int `json:"noise_photos"`

	Groups     int `json:"groups"`
	Copied     int `json:"copied"`
	Planned    int `json:"planned"`
	Overwrites int `json:"overwrites"`

	Failures     []FailureSummary `json:"failures"`
	ManifestPath string           `json:"manifest_path,omitempty"`
	LogPath      string           `json:"log_path,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	// Placements lists every file outcome in placement order.
	Placements []placement.Placement `json:"-"`
}

// Failed reports whether any file could not be placed.
func (s *Summary) Failed() bool {
	return s != nil && len(s.Failures) > 0
}

// absorb copies the run's accumulated placement result into s, replacing
// any earlier copy.
func (s *Summary) absorb(res placement.Result, dryRun bool) {
	s.Placements = res.Placements
	s.Copied = res.Copied
	s.Overwrites = res.Overwrites
	s.Planned = 0
	if dryRun {
		s.Planned = len(res.Placements) - len(res.Failures)
	}
	s.Failures = make([]FailureSummary, 0, len(res.Failures))
	for _, f := range res.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		s.Failures = append(s.Failures, FailureSummary{Source: f.Source, Destination: f.Destination, Error: msg})
	}
}
