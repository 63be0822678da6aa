package geodist_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"eventsort/internal/geodist"
	"eventsort/internal/photo"
	"eventsort/internal/progress"
)

func TestGreatCircleKm(t *testing.T) {
	london := photo.Coordinates{Lat: 51.5074, Lon: -0.1278}
	paris := photo.Coordinates{Lat: 48.8566, Lon: 2.3522}

	tests := []struct {
		name string
		a, b photo.Coordinates
		want float64
		tol  float64
	}{
		{"same point", london, london, 0, 1e-9},
		{"london paris", london, paris, 343.5, 1},
		{"quarter meridian", photo.Coordinates{}, photo.Coordinates{Lat: 90}, math.Pi / 2 * geodist.EarthRadiusKm, 1e-6},
		{"antipodal", photo.Coordinates{}, photo.Coordinates{Lon: 180}, math.Pi * geodist.EarthRadiusKm, 1e-6},
		{"dateline crossing", photo.Coordinates{Lon: 179.5}, photo.Coordinates{Lon: -179.5}, math.Pi / 180 * geodist.EarthRadiusKm, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geodist.GreatCircleKm(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Fatalf("GreatCircleKm = %f, want %f±%g", got, tt.want, tt.tol)
			}
			if back := geodist.GreatCircleKm(tt.b, tt.a); back != got {
				t.Fatalf("not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestGreatCircleKmExactlySymmetric(t *testing.T) {
	london := photo.Coordinates{Lat: 51.5074, Lon: -0.1278}
	paris := photo.Coordinates{Lat: 48.8566, Lon: 2.3522}
	if ab, ba := geodist.GreatCircleKm(paris, london), geodist.GreatCircleKm(london, paris); ab != ba {
		t.Fatalf("paris->london %.17g, london->paris %.17g", ab, ba)
	}
	for i := range 200 {
		a := photo.Coordinates{Lat: -89 + float64(i*37%179), Lon: -179.9 + float64(i*61%359) + 0.123}
		b := photo.Coordinates{Lat: 88.7 - float64(i*13%177), Lon: 179.3 - float64(i*29%358) - 0.456}
		if ab, ba := geodist.GreatCircleKm(a, b), geodist.GreatCircleKm(b, a); ab != ba {
			t.Fatalf("%v <-> %v: %.17g vs %.17g", a, b, ab, ba)
		}
	}
}

func TestDistanceAddsHours(t *testing.T) {
	a := photo.NewRecord("a", "jpeg", photo.WithCoordinates(10, 10), photo.WithTimestamp(0))
	b := photo.NewRecord("b", "jpeg", photo.WithCoordinates(10, 10), photo.WithTimestamp(2*3600))
	if got := geodist.Distance(a, b); math.Abs(got-2) > 1e-9 {
		t.Fatalf("Distance = %f, want 2", got)
	}
	c := photo.NewRecord("c", "jpeg", photo.WithCoordinates(48.8566, 2.3522), photo.WithTimestamp(-1800))
	d := photo.NewRecord("d", "jpeg", photo.WithCoordinates(51.5074, -0.1278), photo.WithTimestamp(0))
	want := geodist.GreatCircleKm(photo.Coordinates{Lat: 48.8566, Lon: 2.3522}, photo.Coordinates{Lat: 51.5074, Lon: -0.1278}) + 0.5
	if got := geodist.Distance(c, d); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Distance = %f, want %f", got, want)
	}
	if geodist.Distance(c, d) != geodist.Distance(d, c) {
		t.Fatal("Distance must be symmetric")
	}
}

func TestBuildMatrixSymmetricZeroDiagonal(t *testing.T) {
	records := make([]photo.Record, 40)
	for i := range records {
		records[i] = photo.NewRecord("p", "jpeg",
			photo.WithCoordinates(45+float64(i%7)*0.3, 7-float64(i%5)*0.2),
			photo.WithTimestamp(int64(i*i*97)))
	}
	m := geodist.BuildMatrix(records, geodist.Options{Workers: 4})
	n, _ := m.Dims()
	if n != len(records) {
		t.Fatalf("matrix size %d, want %d", n, len(records))
	}
	for i := 0; i < n; i++ {
		if m.At(i, i) != 0 {
			t.Fatalf("diagonal (%d,%d) = %f", i, i, m.At(i, i))
		}
		for j := 0; j < n; j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Fatalf("asymmetric at (%d,%d)", i, j)
			}
			if m.At(i, j) < 0 {
				t.Fatalf("negative distance at (%d,%d)", i, j)
			}
			if i != j {
				if want := geodist.Distance(records[i], records[j]); math.Abs(m.At(i, j)-want) > 1e-9 {
					t.Fatalf("(%d,%d) = %f, want %f", i, j, m.At(i, j), want)
				}
			}
		}
	}
}

type recordingReporter struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (r *recordingReporter) Report(done, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]int64{done, total})
}

func TestBuildMatrixReportsFinalCount(t *testing.T) {
	records := make([]photo.Record, 25)
	for i := range records {
		records[i] = photo.NewRecord("p", "jpeg", photo.WithCoordinates(0, float64(i)), photo.WithTimestamp(int64(i)))
	}
	rep := &recordingReporter{}
	geodist.BuildMatrix(records, geodist.Options{Workers: 3, Interval: time.Millisecond, Reporter: rep})

	rep.mu.Lock()
	defer rep.mu.Unlock()
	if len(rep.calls) < 2 {
		t.Fatalf("expected initial and final reports, got %v", rep.calls)
	}
	total := geodist.PairCount(len(records))
	last := rep.calls[len(rep.calls)-1]
	if last != [2]int64{total, total} {
		t.Fatalf("final report = %v, want %d/%d", last, total, total)
	}
	var prev int64 = -1
	for _, call := range rep.calls {
		if call[0] < prev {
			t.Fatalf("progress went backwards: %v", rep.calls)
		}
		prev = call[0]
	}
}

func TestBuildMatrixSmallInputs(t *testing.T) {
	if m := geodist.BuildMatrix(nil, geodist.Options{}); m != nil {
		t.Fatal("expected nil matrix for no records")
	}
	one := []photo.Record{photo.NewRecord("a", "jpeg", photo.WithCoordinates(1, 1), photo.WithTimestamp(1))}
	m := geodist.BuildMatrix(one, geodist.Options{Reporter: progress.Nop})
	if n, _ := m.Dims(); n != 1 || m.At(0, 0) != 0 {
		t.Fatalf("unexpected single-record matrix")
	}
	if geodist.PairCount(1) != 0 || geodist.PairCount(10) != 45 {
		t.Fatal("unexpected pair counts")
	}
}
