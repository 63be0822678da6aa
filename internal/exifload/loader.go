package exifload

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"eventsort/internal/logging"
	"eventsort/internal/photo"
	"eventsort/internal/services"
)

// exifLayout is the EXIF wall-clock timestamp format.
const exifLayout = "2006:01:02 15:04:05"

// Source produces a record for one file. ok is false when the file is not an
// image and must be skipped. A non-nil error means the file could not be read
// at all; it is skipped as well.
type Source interface {
	Load(path string) (rec photo.Record, ok bool, err error)
}

// Loader reads EXIF metadata with goexif.
type Loader struct {
	location *time.Location
	logger   *slog.Logger
}

// NewLoader returns a Loader that interprets EXIF wall-clock times in loc.
// GPS timestamps are always UTC.
func NewLoader(loc *time.Location, logger *slog.Logger) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{location: loc, logger: logging.NewComponentLogger(logger, "exif")}
}

// Load sniffs path and, for images, extracts coordinates and capture time.
func (l *Loader) Load(path string) (photo.Record, bool, error) {
	format, ok, err := Sniff(path)
	if err != nil {
		return photo.Record{}, false, services.Wrap(services.ErrFilesystem, "metadata", "sniff", path, err)
	}
	if !ok {
		l.logger.Debug("not an image; skipping", logging.String("path", path))
		return photo.Record{}, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return photo.Record{}, false, services.Wrap(services.ErrFilesystem, "metadata", "open", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		// No usable EXIF block; the image is still sorted, just without metadata.
		l.logger.Debug("no exif metadata", logging.String("path", path), logging.Error(err))
		return photo.NewRecord(path, format), true, nil
	}

	var opts []photo.Option
	if lat, lon, ok := l.coordinates(path, x); ok {
		opts = append(opts, photo.WithCoordinates(lat, lon))
	}
	if ts, ok := l.timestamp(path, x); ok {
		opts = append(opts, photo.WithTimestamp(ts))
	}
	return photo.NewRecord(path, format, opts...), true, nil
}

func (l *Loader) coordinates(path string, x *exif.Exif) (float64, float64, bool) {
	lat, lon, err := x.LatLong()
	if err != nil {
		if !isMissing(err) {
			l.logger.Debug("gps unreadable", logging.String("path", path), logging.Error(err))
		}
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		l.logger.Debug("gps out of range", logging.String("path", path),
			logging.Float64("lat", lat), logging.Float64("lon", lon))
		return 0, 0, false
	}
	return lat, lon, true
}

// timestamp returns the first parseable candidate among the original capture
// time, the file modification time recorded by the camera, and the GPS time.
func (l *Loader) timestamp(path string, x *exif.Exif) (int64, bool) {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		value, err := stringField(x, field)
		if err != nil {
			if !isMissing(err) {
				l.logger.Debug("timestamp unreadable", logging.String("path", path),
					logging.String("field", string(field)), logging.Error(err))
			}
			continue
		}
		t, err := time.ParseInLocation(exifLayout, value, l.location)
		if err != nil {
			l.logger.Debug("timestamp unparseable", logging.String("path", path),
				logging.String("field", string(field)), logging.String("value", value))
			continue
		}
		return t.Unix(), true
	}

	t, err := gpsTime(x)
	if err != nil {
		if !isMissing(err) {
			l.logger.Debug("gps timestamp unreadable", logging.String("path", path), logging.Error(err))
		}
		return 0, false
	}
	return t.Unix(), true
}

func stringField(x *exif.Exif, field exif.FieldName) (string, error) {
	tag, err := x.Get(field)
	if err != nil {
		return "", err
	}
	value, err := tag.StringVal()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(strings.TrimSpace(value), "\x00"), nil
}

// gpsTime combines GPSDateStamp ("YYYY:MM:DD") and GPSTimeStamp (three
// rationals) into a UTC instant.
func gpsTime(x *exif.Exif) (time.Time, error) {
	date, err := stringField(x, exif.GPSDateStamp)
	if err != nil {
		return time.Time{}, err
	}
	tag, err := x.Get(exif.GPSTimeStamp)
	if err != nil {
		return time.Time{}, err
	}
	var hms [3]int
	for i := range hms {
		v, err := rational(tag, i)
		if err != nil {
			return time.Time{}, err
		}
		hms[i] = int(v)
	}
	value := fmt.Sprintf("%s %02d:%02d:%02d", date, hms[0], hms[1], hms[2])
	return time.ParseInLocation(exifLayout, value, time.UTC)
}

func rational(tag *tiff.Tag, i int) (float64, error) {
	num, den, err := tag.Rat2(i)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, errors.New("zero denominator")
	}
	return float64(num) / float64(den), nil
}

func isMissing(err error) bool {
	return exif.IsTagNotPresentError(err)
}
