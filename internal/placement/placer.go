package placement

import (
	"log/slog"
	"path/filepath"
	"sync"

	"eventsort/internal/fileutil"
	"eventsort/internal/logging"
)

// Placement is the outcome for one source file.
type Placement struct {
	Source      string
	Destination string
	Kind        Kind
	Label       int
	DateLabel   string
	// Overwrote is set when an earlier file from the same run had already
	// been copied to Destination.
	Overwrote bool
	Err       error
}

// Failure describes a file that could not be placed.
type Failure struct {
	Source      string
	Destination string
	Err         error
}

// Result accumulates placements across calls to Place.
type Result struct {
	Placements []Placement
	Failures   []Failure
	Copied     int
	Overwrites int
}

// Merge appends other into r.
func (r *Result) Merge(other Result) {
	r.Placements = append(r.Placements, other.Placements...)
	r.Failures = append(r.Failures, other.Failures...)
	r.Copied += other.Copied
	r.Overwrites += other.Overwrites
}

// Options configures a Placer.
type Options struct {
	// DryRun plans destinations without creating folders or copying.
	DryRun bool
	// Verify compares checksums of every copy.
	Verify bool
}

// Placer copies groups into their destination folders. A Placer remembers
// every destination it has written so later groups in the same run can report
// filename collisions.
type Placer struct {
	policy Policy
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	written map[string]string
}

// NewPlacer builds a Placer for policy.
func NewPlacer(policy Policy, opts Options, logger *slog.Logger) *Placer {
	return &Placer{
		policy:  policy,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "placement"),
		written: make(map[string]string),
	}
}

// Policy returns the folder policy used by the placer.
func (p *Placer) Policy() Policy { return p.policy }

// Place copies every member of groups into its folder under the member's base
// name. Sources are never modified. A failure to create a folder or copy a
// file is recorded and the remaining files are still processed.
func (p *Placer) Place(groups ...Group) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	var res Result
	for _, g := range groups {
		dir := p.policy.Destination(g)
		var dirErr error
		if !p.opts.DryRun {
			dirErr = fileutil.EnsureDir(dir)
			if dirErr != nil {
				logging.WarnWithContext(p.logger, "destination folder unavailable", "placement_dir_failed",
					logging.String("dir", dir),
					logging.Int("files", len(g.Records)),
					logging.Error(dirErr),
					logging.String(logging.FieldErrorHint, "check target permissions and free space"),
					logging.String(logging.FieldImpact, "files in this group were not copied"),
				)
			}
		}

		for _, rec := range g.Records {
			dst := filepath.Join(dir, filepath.Base(rec.Path()))
			pl := Placement{
				Source:      rec.Path(),
				Destination: dst,
				Kind:        g.Kind,
				Label:       g.Label,
				DateLabel:   g.DateLabel,
			}
			if prev, ok := p.written[dst]; ok && prev != rec.Path() {
				pl.Overwrote = true
				res.Overwrites++
				logging.WarnWithContext(p.logger, "destination name collision; earlier copy replaced", "placement_overwrite",
					logging.String("destination", dst),
					logging.String("previous_source", prev),
					logging.String("source", rec.Path()),
					logging.String(logging.FieldErrorHint, "rename one of the source files to keep both"),
					logging.String(logging.FieldImpact, "only the last file with this name is kept"),
				)
			}

			switch {
			case dirErr != nil:
				pl.Err = dirErr
			case !p.opts.DryRun:
				pl.Err = p.copy(rec.Path(), dst)
			}
			if pl.Err != nil {
				res.Failures = append(res.Failures, Failure{Source: rec.Path(), Destination: dst, Err: pl.Err})
				if dirErr == nil {
					logging.WarnWithContext(p.logger, "copy failed; continuing with remaining files", "placement_copy_failed",
						logging.String("source", rec.Path()),
						logging.String("destination", dst),
						logging.Error(pl.Err),
						logging.String(logging.FieldImpact, "file missing from sorted tree"),
					)
				}
			} else {
				p.written[dst] = rec.Path()
				if !p.opts.DryRun {
					res.Copied++
				}
			}
			res.Placements = append(res.Placements, pl)
		}

		p.logger.Debug("group placed",
			logging.String("kind", g.Kind.String()),
			logging.Int("label", g.Label),
			logging.String("dir", dir),
			logging.Int("files", len(g.Records)),
		)
	}
	return res
}

func (p *Placer) copy(src, dst string) error {
	if p.opts.Verify {
		return fileutil.CopyFileVerified(src, dst)
	}
	return fileutil.CopyFile(src, dst)
}
