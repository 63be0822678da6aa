// Package placement maps groups of photos to destination folders and copies
// them there.
package placement

import (
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"eventsort/internal/cluster"
	"eventsort/internal/epoch"
	"eventsort/internal/photo"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Kind records why a group ended up in its folder.
type Kind int

const (
	// KindDated groups photos with a capture time but no GPS, by month.
	KindDated Kind = iota
	// KindUndated holds photos without a usable capture time.
	KindUndated
	// KindSmallEpoch holds an epoch too small to cluster.
	KindSmallEpoch
	// KindCluster holds one label of a clustered epoch, noise included.
	KindCluster
)

func (k Kind) String() string {
	switch k {
	case KindDated:
		return "dated"
	case KindUndated:
		return "undated"
	case KindSmallEpoch:
		return "small_epoch"
	case KindCluster:
		return "cluster"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Group is a set of records copied into the same folder.
type Group struct {
	Kind Kind
	// Label is the cluster label for KindCluster groups.
	Label int
	// DateLabel is the folder name derived from the group's time range.
	DateLabel string
	// Dir is the destination folder relative to the target root.
	Dir     string
	Records []photo.Record
}

// DateLabel names a time range: "YYYY-MM-DD" when lo and hi fall on the same
// calendar day in loc, otherwise "YYYY-MM-DD_YYYY-MM-DD".
func DateLabel(lo, hi int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	first := time.Unix(lo, 0).In(loc).Format(dayLayout)
	last := time.Unix(hi, 0).In(loc).Format(dayLayout)
	if first == last {
		return first
	}
	return first + "_" + last
}

// MonthLabel names the calendar month containing ts in loc as "YYYY-MM".
func MonthLabel(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format(monthLayout)
}

// Policy derives destination folders. Folder names are relative to Root.
type Policy struct {
	Root         string
	NoClusterDir string
	NoDateDir    string
	Location     *time.Location
}

// Destination returns the absolute folder for g.
func (p Policy) Destination(g Group) string {
	return filepath.Join(p.Root, g.Dir)
}

// DatedGroups buckets dated-only records by capture month. Groups are
// ordered by month and keep the input order of their records.
func (p Policy) DatedGroups(records []photo.Record) []Group {
	byMonth := make(map[string][]photo.Record)
	for _, r := range records {
		ts, ok := r.Timestamp()
		if !ok {
			continue
		}
		month := MonthLabel(ts, p.Location)
		byMonth[month] = append(byMonth[month], r)
	}
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	slices.Sort(months)

	groups := make([]Group, 0, len(months))
	for _, month := range months {
		groups = append(groups, Group{
			Kind:      KindDated,
			Label:     cluster.Noise,
			DateLabel: month,
			Dir:       filepath.Join(p.NoClusterDir, month),
			Records:   byMonth[month],
		})
	}
	return groups
}

// UndatedGroup collects records without a capture time. It returns false when
// records is empty.
func (p Policy) UndatedGroup(records []photo.Record) (Group, bool) {
	if len(records) == 0 {
		return Group{}, false
	}
	return Group{
		Kind:      KindUndated,
		Label:     cluster.Noise,
		DateLabel: p.NoDateDir,
		Dir:       filepath.Join(p.NoClusterDir, p.NoDateDir),
		Records:   records,
	}, true
}

// EpochGroup places a whole epoch under the no-cluster folder, named by its
// date range.
func (p Policy) EpochGroup(e epoch.Epoch) Group {
	label := p.rangeLabel(e.Records)
	return Group{
		Kind:      KindSmallEpoch,
		Label:     cluster.Noise,
		DateLabel: label,
		Dir:       filepath.Join(p.NoClusterDir, label),
		Records:   e.Records,
	}
}

// ClusterGroups places each labelled group under a folder named for its
// label, then its date range. Noise uses "-1" like any other label.
func (p Policy) ClusterGroups(groups []cluster.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		label := p.rangeLabel(g.Records)
		out = append(out, Group{
			Kind:      KindCluster,
			Label:     g.Label,
			DateLabel: label,
			Dir:       filepath.Join(strconv.Itoa(g.Label), label),
			Records:   g.Records,
		})
	}
	return out
}

func (p Policy) rangeLabel(records []photo.Record) string {
	lo, hi, ok := photo.TimeRange(records)
	if !ok {
		return p.NoDateDir
	}
	return DateLabel(lo, hi, p.Location)
}
