// Package photo holds the metadata record extracted from each image and the
// triage that routes records to the clustering or fallback paths.
package photo

import "fmt"

// Class is the triage bucket a record belongs to.
type Class int

const (
	// Located records have both coordinates and a capture time.
	Located Class = iota
	// Dated records have a capture time but no coordinates.
	Dated
	// Undated records have no capture time.
	Undated
)

func (c Class) String() string {
	switch c {
	case Located:
		return "located"
	case Dated:
		return "dated"
	case Undated:
		return "undated"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Coordinates is a position in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Record describes one image file. Records are immutable once built.
type Record struct {
	path      string
	format    string
	coords    Coordinates
	hasCoords bool
	timestamp int64
	hasTime   bool
}

// Option configures a Record under construction.
type Option func(*Record)

// WithCoordinates attaches a GPS position.
func WithCoordinates(lat, lon float64) Option {
	return func(r *Record) {
		r.coords = Coordinates{Lat: lat, Lon: lon}
		r.hasCoords = true
	}
}

// WithTimestamp attaches a capture time in epoch seconds.
func WithTimestamp(ts int64) Option {
	return func(r *Record) {
		r.timestamp = ts
		r.hasTime = true
	}
}

// NewRecord builds a record for the file at path. format is the detected image
// format (for example "jpeg").
func NewRecord(path, format string, opts ...Option) Record {
	r := Record{path: path, format: format}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Path returns the source file location.
func (r Record) Path() string { return r.path }

// Format returns the detected image format.
func (r Record) Format() string { return r.format }

// Coordinates returns the GPS position and whether one is present.
func (r Record) Coordinates() (Coordinates, bool) { return r.coords, r.hasCoords }

// Timestamp returns the capture time in epoch seconds and whether one is present.
func (r Record) Timestamp() (int64, bool) { return r.timestamp, r.hasTime }

// Class reports the triage bucket. A record with coordinates but no capture
// time is Undated.
func (r Record) Class() Class {
	switch {
	case !r.hasTime:
		return Undated
	case r.hasCoords:
		return Located
	default:
		return Dated
	}
}
