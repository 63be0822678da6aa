package photo

// Partition splits records by Class. Each slice keeps the input order.
type Partition struct {
	Located []Record
	Dated   []Record
	Undated []Record
}

// Len returns the number of records across all buckets.
func (p Partition) Len() int {
	return len(p.Located) + len(p.Dated) + len(p.Undated)
}

// Triage partitions records into located, dated-only, and undated buckets.
// Every input record lands in exactly one bucket.
func Triage(records []Record) Partition {
	var p Partition
	for _, r := range records {
		switch r.Class() {
		case Located:
			p.Located = append(p.Located, r)
		case Dated:
			p.Dated = append(p.Dated, r)
		default:
			p.Undated = append(p.Undated, r)
		}
	}
	return p
}

// TimeRange returns the smallest and largest capture time among records.
// ok is false when no record carries a timestamp.
func TimeRange(records []Record) (lo, hi int64, ok bool) {
	for _, r := range records {
		ts, has := r.Timestamp()
		if !has {
			continue
		}
		if !ok {
			lo, hi, ok = ts, ts, true
			continue
		}
		lo = min(lo, ts)
		hi = max(hi, ts)
	}
	return lo, hi, ok
}
