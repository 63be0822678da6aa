package exifload

import (
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"eventsort/internal/logging"
	"eventsort/internal/photo"
	"eventsort/internal/progress"
)

// Stats summarises a LoadAll pass.
type Stats struct {
	Files      int `json:"files"`
	Images     int `json:"images"`
	Skipped    int `json:"skipped"`
	Unreadable int `json:"unreadable"`
}

// LoadAll loads every path with src on up to workers goroutines. Non-image
// and unreadable files are dropped. The returned records follow the order of
// paths regardless of which worker finished first.
func LoadAll(paths []string, workers int, src Source, reporter progress.Reporter, logger *slog.Logger) ([]photo.Record, Stats) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if reporter == nil {
		reporter = progress.Nop
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type result struct {
		rec photo.Record
		ok  bool
		err error
	}
	results := make([]result, len(paths))
	total := int64(len(paths))
	var done atomic.Int64
	reports := make(chan int64, 1)
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		reporter.Report(0, total)
		var last int64
		for n := range reports {
			if n > last && n < total {
				last = n
				reporter.Report(n, total)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			rec, ok, err := src.Load(path)
			results[i] = result{rec: rec, ok: ok, err: err}
			n := done.Add(1)
			select {
			case reports <- n:
			default:
			}
			return nil
		})
	}
	_ = g.Wait()
	close(reports)
	<-reporterDone
	if total > 0 {
		reporter.Report(total, total)
	}

	stats := Stats{Files: len(paths)}
	records := make([]photo.Record, 0, len(paths))
	for i, r := range results {
		switch {
		case r.err != nil:
			stats.Unreadable++
			logging.WarnWithContext(logger, "file unreadable; skipping", "metadata_unreadable",
				logging.String("path", paths[i]),
				logging.Error(r.err),
				logging.String(logging.FieldErrorHint, "check file permissions"),
				logging.String(logging.FieldImpact, "file is not sorted"),
			)
		case !r.ok:
			stats.Skipped++
		default:
			stats.Images++
			records = append(records, r.rec)
		}
	}
	return records, stats
}
