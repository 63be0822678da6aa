package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"eventsort/internal/config"
	"eventsort/internal/logging"
	"eventsort/internal/pipeline"
	"eventsort/internal/progress"
	"eventsort/internal/services"
)

type sortFlags struct {
	source     string
	target     string
	workers    int
	logLevel   string
	dryRun     bool
	jsonOut    bool
	noProgress bool
	manifest   bool
	verify     bool
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Copy photos from the source tree into event folders under the target",
		Long: `Sort reads capture time and GPS position from every image under the source
directory and copies each one into the target:

  nocluster/YYYY-MM          photos with a time but no position
  nocluster/NODATE           photos without a usable time
  nocluster/<dates>          located photos from an epoch too small to cluster
  <label>/<dates>            located photos grouped by place and time (-1 is noise)

Source files are never modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applySortFlags(cmd, *base, flags)
			if err != nil {
				return err
			}
			return runSort(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "Directory tree to scan for photos")
	cmd.Flags().StringVar(&flags.target, "target", "", "Root directory that receives the sorted copies")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel workers for metadata and distance stages")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan destinations without copying")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress reporting")
	cmd.Flags().BoolVar(&flags.manifest, "manifest", false, "Record every placement in the SQLite manifest")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Verify each copy with a checksum")
	return cmd
}

// applySortFlags returns a copy of cfg with command-line overrides applied
// and re-validated.
func applySortFlags(cmd *cobra.Command, cfg config.Config, flags sortFlags) (*config.Config, error) {
	set := cmd.Flags().Changed
	if set("source") {
		path, err := config.ExpandPath(strings.TrimSpace(flags.source))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "sort", "resolve --source", "", err)
		}
		cfg.Paths.SourceDir = path
	}
	if set("target") {
		path, err := config.ExpandPath(strings.TrimSpace(flags.target))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "sort", "resolve --target", "", err)
		}
		cfg.Paths.TargetDir = path
	}
	if set("workers") {
		cfg.Workers.Metadata = flags.workers
		cfg.Workers.Distance = flags.workers
	}
	if set("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(flags.logLevel))
	}
	if flags.dryRun {
		cfg.Placement.DryRun = true
	}
	if flags.manifest {
		cfg.Manifest.Enabled = true
	}
	if flags.verify {
		cfg.Placement.VerifyCopies = true
	}
	if flags.noProgress {
		cfg.Progress.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sort", "validate", "", err)
	}
	if err := cfg.ValidateRun(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "sort", "validate", "", err)
	}
	return &cfg, nil
}

func runSort(cmd *cobra.Command, cfg *config.Config, flags sortFlags) error {
	stderr := cmd.ErrOrStderr()
	runID := uuid.NewString()

	logger, logPath, err := logging.NewFromConfig(cfg, runID, stderr)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "sort", "init logging", "", err)
	}
	if removed := logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath); removed > 0 {
		logger.Debug("pruned old run logs", logging.Int("removed", removed))
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(cfg, logger,
		pipeline.WithRunID(runID),
		pipeline.WithLogPath(logPath),
		pipeline.WithProgress(progress.NewFactory(stderr, logger, cfg.Progress.Enabled)),
	)
	summary, runErr := runner.Run(runCtx)
	if summary == nil {
		return runErr
	}

	if flags.jsonOut {
		if err := writeSummaryJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
		return runErr
	}
	renderSummary(newStatusPrinter(cmd.OutOrStdout()), summary)
	return runErr
}
