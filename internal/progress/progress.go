// Package progress reports completion of long-running stages to a terminal
// progress bar or to the log.
package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"eventsort/internal/logging"
)

// Reporter receives completion counts. Implementations must be safe to call
// from a single monitor goroutine; callers never invoke Report concurrently.
type Reporter interface {
	Report(done, total int64)
}

type nopReporter struct{}

func (nopReporter) Report(int64, int64) {}

// Nop discards progress.
var Nop Reporter = nopReporter{}

// logStepPercent is the completion granularity of LogReporter.
const logStepPercent = 10

// Factory builds a Reporter for a named stage.
type Factory func(description string) Reporter

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewFactory picks a progress bar when w is a terminal and sampled log lines
// otherwise. A disabled factory returns Nop.
func NewFactory(w io.Writer, logger *slog.Logger, enabled bool) Factory {
	switch {
	case !enabled:
		return func(string) Reporter { return Nop }
	case IsTerminal(w):
		return func(description string) Reporter { return NewBar(w, description) }
	default:
		return func(description string) Reporter { return NewLogReporter(logger, description) }
	}
}

// Bar draws a progress bar.
type Bar struct {
	once sync.Once
	w    io.Writer
	desc string
	bar  *progressbar.ProgressBar
	done bool
}

// NewBar returns a Reporter that renders to w.
func NewBar(w io.Writer, description string) *Bar {
	return &Bar{w: w, desc: description}
}

// Report updates the bar and closes it once done reaches total.
func (b *Bar) Report(done, total int64) {
	b.once.Do(func() {
		b.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription(b.desc),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(0),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(b.w, "\n") }),
		)
	})
	if b.done {
		return
	}
	_ = b.bar.Set64(done)
	if done >= total {
		_ = b.bar.Finish()
		b.done = true
	}
}

// LogReporter logs progress each time completion enters a new 10% step.
type LogReporter struct {
	logger   *slog.Logger
	stage    string
	lastStep int
}

// NewLogReporter returns a Reporter that logs at most once per 10% step.
func NewLogReporter(logger *slog.Logger, stage string) *LogReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogReporter{logger: logger, stage: stage, lastStep: -1}
}

// Report logs the percentage when it crosses into a new step. An empty stage
// (total of zero) counts as complete.
func (r *LogReporter) Report(done, total int64) {
	percent := 100.0
	if total > 0 {
		percent = min(float64(done)*100/float64(total), 100)
	}
	step := int(percent / logStepPercent)
	if step <= r.lastStep {
		return
	}
	r.lastStep = step
	r.logger.Info("progress",
		logging.String(logging.FieldStage, r.stage),
		logging.Int64(logging.FieldProgressDone, done),
		logging.Int64(logging.FieldProgressTotal, total),
		logging.Float64(logging.FieldProgressPercent, float64(int(percent*10))/10),
	)
}
