// Package epoch splits located photos into runs of activity separated by idle
// gaps.
package epoch

import (
	"slices"

	"eventsort/internal/photo"
)

// DefaultGapDays is the idle gap that separates two epochs.
const DefaultGapDays = 7

const secondsPerDay = 86400

// Epoch is a maximal time-ordered run of located records with no internal gap
// larger than the segmentation threshold.
type Epoch struct {
	// Index is the zero-based position of the epoch in time order.
	Index   int
	Records []photo.Record
}

// Len returns the number of records in the epoch.
func (e Epoch) Len() int { return len(e.Records) }

// Start returns the earliest capture time in the epoch.
func (e Epoch) Start() int64 {
	if len(e.Records) == 0 {
		return 0
	}
	ts, _ := e.Records[0].Timestamp()
	return ts
}

// End returns the latest capture time in the epoch.
func (e Epoch) End() int64 {
	if len(e.Records) == 0 {
		return 0
	}
	ts, _ := e.Records[len(e.Records)-1].Timestamp()
	return ts
}

// Segment sorts located records by capture time and splits them wherever two
// consecutive records are more than gapDays apart. Records without a timestamp
// are ignored. The input slice is not modified. A non-positive gapDays selects
// DefaultGapDays.
func Segment(located []photo.Record, gapDays float64) []Epoch {
	if gapDays <= 0 {
		gapDays = DefaultGapDays
	}
	sorted := make([]photo.Record, 0, len(located))
	for _, r := range located {
		if _, ok := r.Timestamp(); ok {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	slices.SortStableFunc(sorted, func(a, b photo.Record) int {
		ta, _ := a.Timestamp()
		tb, _ := b.Timestamp()
		switch {
		case ta < tb:
			return -1
		case ta > tb:
			return 1
		}
		return 0
	})

	var epochs []Epoch
	start := 0
	prev, _ := sorted[0].Timestamp()
	for i := 1; i < len(sorted); i++ {
		ts, _ := sorted[i].Timestamp()
		if float64(ts-prev)/secondsPerDay > gapDays {
			epochs = append(epochs, Epoch{Index: len(epochs), Records: sorted[start:i:i]})
			start = i
		}
		prev = ts
	}
	epochs = append(epochs, Epoch{Index: len(epochs), Records: sorted[start:]})
	return epochs
}
