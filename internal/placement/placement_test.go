package placement_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"eventsort/internal/cluster"
	"eventsort/internal/epoch"
	"eventsort/internal/logging"
	"eventsort/internal/photo"
	"eventsort/internal/placement"
)

func unix(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
}

func TestDateLabel(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int64
		loc    *time.Location
		want   string
	}{
		{"single instant", unix(2021, 7, 4, 12), unix(2021, 7, 4, 12), time.UTC, "2021-07-04"},
		{"same day", unix(2021, 7, 4, 0), unix(2021, 7, 4, 23), time.UTC, "2021-07-04"},
		{"two days", unix(2021, 7, 4, 23), unix(2021, 7, 5, 1), time.UTC, "2021-07-04_2021-07-05"},
		{"swapped bounds", unix(2021, 7, 5, 1), unix(2021, 7, 4, 23), time.UTC, "2021-07-04_2021-07-05"},
		{"year boundary", unix(2020, 12, 31, 10), unix(2021, 1, 2, 10), time.UTC, "2020-12-31_2021-01-02"},
		{"zone shifts day", unix(2021, 7, 4, 23), unix(2021, 7, 5, 1), time.FixedZone("UTC+3", 3*3600), "2021-07-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placement.DateLabel(tt.lo, tt.hi, tt.loc); got != tt.want {
				t.Fatalf("DateLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMonthLabel(t *testing.T) {
	if got := placement.MonthLabel(unix(2019, 3, 31, 23), time.UTC); got != "2019-03" {
		t.Fatalf("MonthLabel = %q", got)
	}
}

func policy(root string) placement.Policy {
	return placement.Policy{Root: root, NoClusterDir: "nocluster", NoDateDir: "NODATE", Location: time.UTC}
}

func rec(path string, ts int64) photo.Record {
	return photo.NewRecord(path, "jpeg", photo.WithCoordinates(1, 1), photo.WithTimestamp(ts))
}

func TestPolicyFolders(t *testing.T) {
	p := policy("/target")

	dated := p.DatedGroups([]photo.Record{
		photo.NewRecord("b.jpg", "jpeg", photo.WithTimestamp(unix(2020, 5, 2, 0))),
		photo.NewRecord("a.jpg", "jpeg", photo.WithTimestamp(unix(2019, 1, 9, 0))),
		photo.NewRecord("c.jpg", "jpeg", photo.WithTimestamp(unix(2020, 5, 30, 0))),
	})
	if len(dated) != 2 {
		t.Fatalf("expected 2 month groups, got %d", len(dated))
	}
	if dated[0].Dir != filepath.Join("nocluster", "2019-01") || dated[1].Dir != filepath.Join("nocluster", "2020-05") {
		t.Fatalf("unexpected month dirs: %q %q", dated[0].Dir, dated[1].Dir)
	}
	if len(dated[1].Records) != 2 || dated[1].Records[0].Path() != "b.jpg" {
		t.Fatalf("expected May group to keep input order, got %+v", dated[1].Records)
	}

	undated, ok := p.UndatedGroup([]photo.Record{photo.NewRecord("x.jpg", "jpeg")})
	if !ok || undated.Dir != filepath.Join("nocluster", "NODATE") || undated.Kind != placement.KindUndated {
		t.Fatalf("unexpected undated group: %+v", undated)
	}
	if _, ok := p.UndatedGroup(nil); ok {
		t.Fatal("expected no group for empty undated set")
	}

	small := p.EpochGroup(epoch.Epoch{Records: []photo.Record{rec("s.jpg", unix(2022, 8, 1, 9))}})
	if small.Dir != filepath.Join("nocluster", "2022-08-01") || small.Kind != placement.KindSmallEpoch {
		t.Fatalf("unexpected small epoch group: %+v", small)
	}

	clustered := p.ClusterGroups([]cluster.Group{
		{Label: -1, Records: []photo.Record{rec("n.jpg", unix(2022, 8, 1, 9)), rec("m.jpg", unix(2022, 8, 3, 9))}},
		{Label: 0, Records: []photo.Record{rec("z.jpg", unix(2022, 8, 2, 9))}},
	})
	if clustered[0].Dir != filepath.Join("-1", "2022-08-01_2022-08-03") {
		t.Fatalf("unexpected noise dir %q", clustered[0].Dir)
	}
	if clustered[1].Dir != filepath.Join("0", "2022-08-02") || clustered[1].Label != 0 {
		t.Fatalf("unexpected cluster dir %q", clustered[1].Dir)
	}
	if got := p.Destination(clustered[1]); got != filepath.Join("/target", "0", "2022-08-02") {
		t.Fatalf("Destination = %q", got)
	}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlacerCopiesAndKeepsSources(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	a := writeSource(t, src, "a.jpg", "A")
	b := writeSource(t, src, "b.jpg", "B")

	p := policy(target)
	placer := placement.NewPlacer(p, placement.Options{Verify: true}, logging.NewNop())
	group := p.EpochGroup(epoch.Epoch{Records: []photo.Record{rec(a, unix(2022, 8, 1, 9)), rec(b, unix(2022, 8, 1, 10))}})

	res := placer.Place(group)
	if len(res.Failures) != 0 || res.Copied != 2 || len(res.Placements) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if _, err := os.Stat(filepath.Join(target, "nocluster", "2022-08-01", name)); err != nil {
			t.Fatalf("expected copy of %s: %v", name, err)
		}
	}
	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("source %s must remain: %v", path, err)
		}
	}

	// Placing the same group again is idempotent.
	again := placer.Place(group)
	if len(again.Failures) != 0 || again.Overwrites != 0 {
		t.Fatalf("unexpected second pass: %+v", again)
	}
}

func TestPlacerCollisionOverwrites(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	first := writeSource(t, src, filepath.Join("cam1", "IMG_0001.jpg"), "first")
	second := writeSource(t, src, filepath.Join("cam2", "IMG_0001.jpg"), "second")

	p := policy(target)
	placer := placement.NewPlacer(p, placement.Options{}, logging.NewNop())
	res := placer.Place(p.EpochGroup(epoch.Epoch{Records: []photo.Record{
		rec(first, unix(2022, 8, 1, 9)),
		rec(second, unix(2022, 8, 1, 10)),
	}}))

	if len(res.Failures) != 0 {
		t.Fatalf("collision must not be a failure: %+v", res.Failures)
	}
	if res.Overwrites != 1 || !res.Placements[1].Overwrote {
		t.Fatalf("expected one overwrite, got %+v", res)
	}
	got, err := os.ReadFile(filepath.Join(target, "nocluster", "2022-08-01", "IMG_0001.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("expected last copy to win, got %q", got)
	}
}

func TestPlacerCollectsFailuresAndContinues(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()
	good := writeSource(t, src, "good.jpg", "ok")
	missing := filepath.Join(src, "vanished.jpg")

	// A file where the NODATE folder should be blocks that folder.
	writeSource(t, target, filepath.Join("nocluster", "NODATE"), "not a dir")

	p := policy(target)
	placer := placement.NewPlacer(p, placement.Options{}, logging.NewNop())
	undated, _ := p.UndatedGroup([]photo.Record{photo.NewRecord(good, "jpeg")})
	res := placer.Place(
		p.EpochGroup(epoch.Epoch{Records: []photo.Record{rec(missing, unix(2022, 8, 1, 9)), rec(good, unix(2022, 8, 1, 10))}}),
		undated,
	)

	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", res.Failures)
	}
	if res.Failures[0].Source != missing || res.Failures[1].Source != good {
		t.Fatalf("unexpected failure order: %+v", res.Failures)
	}
	if res.Copied != 1 {
		t.Fatalf("expected the good file copied once, got %d", res.Copied)
	}
	if _, err := os.Stat(filepath.Join(target, "nocluster", "2022-08-01", "good.jpg")); err != nil {
		t.Fatalf("expected good file placed: %v", err)
	}
}

func TestPlacerDryRunTouchesNothing(t *testing.T) {
	src := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	a := writeSource(t, src, "a.jpg", "A")

	p := policy(target)
	placer := placement.NewPlacer(p, placement.Options{DryRun: true}, logging.NewNop())
	res := placer.Place(p.EpochGroup(epoch.Epoch{Records: []photo.Record{rec(a, unix(2022, 8, 1, 9))}}))

	if res.Copied != 0 || len(res.Failures) != 0 || len(res.Placements) != 1 {
		t.Fatalf("unexpected dry run result: %+v", res)
	}
	if want := filepath.Join(target, "nocluster", "2022-08-01", "a.jpg"); res.Placements[0].Destination != want {
		t.Fatalf("planned destination %q, want %q", res.Placements[0].Destination, want)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the target, got %v", err)
	}
}

func TestResultMerge(t *testing.T) {
	var total placement.Result
	total.Merge(placement.Result{Copied: 2, Placements: make([]placement.Placement, 2)})
	total.Merge(placement.Result{Copied: 1, Overwrites: 1, Placements: make([]placement.Placement, 1), Failures: make([]placement.Failure, 1)})
	if total.Copied != 3 || total.Overwrites != 1 || len(total.Placements) != 3 || len(total.Failures) != 1 {
		t.Fatalf("unexpected merge: %+v", total)
	}
}
