package geodist

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"eventsort/internal/photo"
	"eventsort/internal/progress"
)

// DefaultInterval is the monitor cadence when none is configured.
const DefaultInterval = time.Second

// Options configures BuildMatrix.
type Options struct {
	// Workers bounds the number of rows computed concurrently.
	Workers int
	// Interval is how often the monitor reports; capped at one second.
	Interval time.Duration
	// Reporter receives (pairs done, total pairs). It is only called from the
	// monitor goroutine.
	Reporter progress.Reporter
}

// PairCount returns n choose 2.
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}

// BuildMatrix computes the symmetric pairwise Distance matrix for records.
// Rows are spread across Workers goroutines; a monitor reports the number of
// finished pairs at Interval until every pair is done. The diagonal is zero.
// It returns nil for an empty input.
func BuildMatrix(records []photo.Record, opts Options) *mat.SymDense {
	n := len(records)
	if n == 0 {
		return nil
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	interval := opts.Interval
	if interval <= 0 || interval > DefaultInterval {
		interval = DefaultInterval
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Nop
	}

	m := mat.NewSymDense(n, nil)
	total := PairCount(n)
	var completed atomic.Int64

	finished := make(chan struct{})
	monitorDone := make(chan struct{})
	go monitor(&completed, total, interval, reporter, finished, monitorDone)

	// Each task owns row i of the upper triangle, so no two goroutines write
	// the same cell.
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n-1; i++ {
		g.Go(func() error {
			for j := i + 1; j < n; j++ {
				m.SetSym(i, j, Distance(records[i], records[j]))
			}
			completed.Add(int64(n - 1 - i))
			return nil
		})
	}
	_ = g.Wait()
	close(finished)
	<-monitorDone
	return m
}

// monitor reports progress on a ticker. It exits when the counter reaches
// total, reporting the exact final count once.
func monitor(completed *atomic.Int64, total int64, interval time.Duration, reporter progress.Reporter, finished <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	reporter.Report(0, total)
	for {
		select {
		case <-ticker.C:
			if n := completed.Load(); n < total {
				reporter.Report(n, total)
				continue
			}
		case <-finished:
		}
		reporter.Report(completed.Load(), total)
		return
	}
}
