package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"eventsort/internal/cluster"
	"eventsort/internal/config"
	"eventsort/internal/epoch"
	"eventsort/internal/exifload"
	"eventsort/internal/geodist"
	"eventsort/internal/hdbscan"
	"eventsort/internal/logging"
	"eventsort/internal/manifest"
	"eventsort/internal/photo"
	"eventsort/internal/placement"
	"eventsort/internal/progress"
	"eventsort/internal/services"
)

// LockName is the lock file created in the target root while a run writes to it.
const LockName = ".eventsort.lock"

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithSource replaces the EXIF loader, mainly for tests.
func WithSource(src exifload.Source) Option {
	return func(r *Runner) { r.source = src }
}

// WithOracle replaces the clustering oracle.
func WithOracle(oracle cluster.Oracle) Option {
	return func(r *Runner) { r.oracle = oracle }
}

// WithProgress sets the progress reporter factory for the load and distance stages.
func WithProgress(factory progress.Factory) Option {
	return func(r *Runner) { r.progress = factory }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithLogPath records the per-run log file in the Summary.
func WithLogPath(path string) Option {
	return func(r *Runner) { r.logPath = path }
}

// Runner sorts the configured source tree into the target root.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	source   exifload.Source
	oracle   cluster.Oracle
	progress progress.Factory
	runID    string
	logPath  string
}

// NewRunner builds a Runner. Without options it reads EXIF with goexif,
// clusters with HDBSCAN, and reports no progress.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		oracle:   hdbscan.New(),
		progress: func(string) progress.Reporter { return progress.Nop },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.source == nil {
		r.source = exifload.NewLoader(cfg.Location(), logger)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r
}

// RunID returns the identifier stamped on this run's logs and manifest rows.
func (r *Runner) RunID() string { return r.runID }

// Run executes the whole pipeline. The Summary is returned whenever placement
// started, even when the error is non-nil; per-file failures produce an error
// wrapping services.ErrPlacement.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "run", "start", "config is required", nil)
	}
	if err := r.cfg.ValidateRun(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "run", "validate", "", err)
	}

	ctx = services.WithRunID(ctx, r.runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "pipeline"))
	dryRun := r.cfg.Placement.DryRun

	summary := &Summary{
		RunID:     r.runID,
		SourceDir: r.cfg.Paths.SourceDir,
		TargetDir: r.cfg.Paths.TargetDir,
		DryRun:    dryRun,
		LogPath:   r.logPath,
		StartedAt: time.Now(),
		Failures:  []FailureSummary{},
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	if !dryRun {
		unlock, err := r.lockTarget()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	logger.Info("sort started",
		logging.String("source", summary.SourceDir),
		logging.String("target", summary.TargetDir),
		logging.Bool("dry_run", dryRun),
	)

	records, err := r.load(services.WithStage(ctx, "metadata"), summary)
	if err != nil {
		return nil, err
	}

	var store *manifest.Store
	if r.cfg.Manifest.Enabled && !dryRun {
		store, err = manifest.Create(ctx, r.cfg.ManifestPath(), manifest.Run{
			ID:        r.runID,
			SourceDir: summary.SourceDir,
			TargetDir: summary.TargetDir,
			StartedAt: summary.StartedAt,
			DryRun:    dryRun,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "manifest", "create", r.cfg.ManifestPath(), err)
		}
		defer store.Close()
		summary.ManifestPath = store.Path()
	}

	policy := placement.Policy{
		Root:         r.cfg.Paths.TargetDir,
		NoClusterDir: r.cfg.Placement.NoClusterDir,
		NoDateDir:    r.cfg.Placement.NoDateDir,
		Location:     r.cfg.Location(),
	}
	placer := placement.NewPlacer(policy, placement.Options{
		DryRun: dryRun,
		Verify: r.cfg.Placement.VerifyCopies,
	}, logger)

	// placed accumulates every group's outcome; finish copies it into the
	// summary on every return path once placement has started.
	var placed placement.Result
	finish := func() *Summary {
		summary.absorb(placed, dryRun)
		return summary
	}
	place := func(groups []placement.Group) error {
		if len(groups) == 0 {
			return nil
		}
		res := placer.Place(groups...)
		summary.Groups += len(groups)
		placed.Merge(res)
		if store != nil {
			if err := store.Record(ctx, res.Placements, dryRun); err != nil {
				return services.Wrap(services.ErrFilesystem, "manifest", "record", "", err)
			}
		}
		return nil
	}

	part := photo.Triage(records)
	summary.Located = len(part.Located)
	summary.Dated = len(part.Dated)
	summary.Undated = len(part.Undated)
	logger.Info("metadata triaged",
		logging.Int("located", summary.Located),
		logging.Int("dated", summary.Dated),
		logging.Int("undated", summary.Undated),
	)

	noCluster := policy.DatedGroups(part.Dated)
	if g, ok := policy.UndatedGroup(part.Undated); ok {
		noCluster = append(noCluster, g)
	}
	if err := place(noCluster); err != nil {
		return finish(), err
	}

	epochs := epoch.Segment(part.Located, r.cfg.Clustering.EpochGapDays)
	summary.Epochs = len(epochs)
	logger.Info("epochs segmented",
		logging.Int("epochs", len(epochs)),
		logging.Float64("gap_days", r.cfg.Clustering.EpochGapDays),
	)

	assigner := cluster.NewAssigner(r.oracle, cluster.Params{
		MinSamples:         r.cfg.Clustering.MinSamples,
		MinClusterSize:     r.cfg.Clustering.MinClusterSize,
		AllowSingleCluster: r.cfg.Clustering.AllowSingleCluster,
	})
	for _, e := range epochs {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		groups := r.planEpoch(services.WithEpoch(services.WithStage(ctx, "clustering"), e.Index), policy, assigner, e, summary)
		if err := place(groups); err != nil {
			return finish(), err
		}
	}

	if store != nil {
		if err := store.Finish(ctx, time.Now()); err != nil {
			logger.Warn("manifest finish failed", logging.Error(err))
		}
	}

	finish()
	logger.Info("sort finished",
		logging.Int("copied", summary.Copied),
		logging.Int("planned", summary.Planned),
		logging.Int("groups", summary.Groups),
		logging.Int("overwrites", summary.Overwrites),
		logging.Int("failures", len(summary.Failures)),
		logging.Duration("elapsed", time.Since(summary.StartedAt)),
	)

	if n := len(summary.Failures); n > 0 {
		return summary, services.Wrap(services.ErrPlacement, "placement", "copy", fmt.Sprintf("%d file(s) could not be placed", n), nil)
	}
	return summary, nil
}

func (r *Runner) load(ctx context.Context, summary *Summary) ([]photo.Record, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "metadata"))

	exclude := []string{r.cfg.Paths.TargetDir}
	if dir := r.cfg.Paths.LogDir; dir != "" {
		exclude = append(exclude, dir)
	}
	paths, err := exifload.Discover(r.cfg.Paths.SourceDir, exclude, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, stats := exifload.LoadAll(paths, r.cfg.Workers.Metadata, r.source, r.progress("Reading metadata"), logger)
	summary.Scan = stats
	logger.Info("metadata loaded",
		logging.Int("files", stats.Files),
		logging.Int("images", stats.Images),
		logging.Int("skipped", stats.Skipped),
		logging.Int("unreadable", stats.Unreadable),
	)
	return records, nil
}

// planEpoch decides the groups for one epoch. Epochs below the configured
// size, and epochs whose clustering fails, become one no-cluster group.
func (r *Runner) planEpoch(ctx context.Context, policy placement.Policy, assigner *cluster.Assigner, e epoch.Epoch, summary *Summary) []placement.Group {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "clustering"))

	if e.Len() < r.cfg.Clustering.MinEpochSize {
		summary.SmallEpochs++
		g := policy.EpochGroup(e)
		logger.Debug("epoch below clustering threshold",
			logging.Int("photos", e.Len()),
			logging.Int("min_epoch_size", r.cfg.Clustering.MinEpochSize),
			logging.String("folder", g.Dir),
		)
		return []placement.Group{g}
	}

	started := time.Now()
	m := geodist.BuildMatrix(e.Records, geodist.Options{
		Workers:  r.cfg.Workers.Distance,
		Interval: r.cfg.ProgressInterval(),
		Reporter: r.progress(fmt.Sprintf("Epoch %d distances", e.Index)),
	})
	logger.Debug("distance matrix built",
		logging.Int("photos", e.Len()),
		logging.Int64("pairs", geodist.PairCount(e.Len())),
		logging.Duration("elapsed", time.Since(started)),
	)

	groups, err := assigner.Assign(e.Records, m)
	if err != nil {
		summary.FallbackEpochs++
		g := policy.EpochGroup(e)
		logging.WarnWithContext(logger, "clustering failed; placing epoch unclustered", "clustering_failed",
			logging.Int("photos", e.Len()),
			logging.Error(err),
			logging.String("folder", g.Dir),
			logging.String(logging.FieldImpact, "photos from this epoch are not split by event"),
		)
		return []placement.Group{g}
	}

	summary.ClusteredEpochs++
	for _, g := range groups {
		if g.Label == cluster.Noise {
			summary.NoisePhotos += len(g.Records)
			continue
		}
		summary.Clusters++
	}
	logger.Info("epoch clustered",
		logging.Int("photos", e.Len()),
		logging.Int("labels", len(groups)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return policy.ClusterGroups(groups)
}

// lockTarget takes the exclusive run lock in the target root.
func (r *Runner) lockTarget() (func(), error) {
	target := r.cfg.Paths.TargetDir
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "run", "create target", target, err)
	}
	lock := flock.New(filepath.Join(target, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "run", "acquire lock", lock.Path(), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBusy, "run", "acquire lock", "another sort is writing to "+target, nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil && !errors.Is(err, os.ErrClosed) {
			r.logger.Warn("release run lock", logging.Error(err))
		}
		_ = os.Remove(lock.Path())
	}, nil
}
