package hdbscan

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"eventsort/internal/cluster"
)

// euclidean builds a distance matrix for points on a plane.
func euclidean(points [][2]float64) *mat.SymDense {
	m := mat.NewSymDense(len(points), nil)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			m.SetSym(i, j, math.Hypot(points[i][0]-points[j][0], points[i][1]-points[j][1]))
		}
	}
	return m
}

// blob places n points on a small irregular spiral around (cx, cy).
func blob(cx, cy float64, n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		r := 0.1 + 0.05*float64(i)
		a := float64(i) * 2.399
		out[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return out
}

func TestTwoSeparatedGroups(t *testing.T) {
	points := append(blob(0, 0, 10), blob(100, 100, 10)...)
	labels, err := New().Labels(euclidean(points), cluster.DefaultParams())
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	first, second := labels[0], labels[10]
	if first == cluster.Noise || second == cluster.Noise || first == second {
		t.Fatalf("expected two distinct clusters, got %v", labels)
	}
	for i, l := range labels {
		want := first
		if i >= 10 {
			want = second
		}
		if l != want {
			t.Fatalf("point %d labelled %d, want %d (%v)", i, l, want, labels)
		}
	}
	seen := map[int]bool{first: true, second: true}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected labels 0 and 1, got %v", labels)
	}
}

func TestTightGroupWithOutliers(t *testing.T) {
	points := blob(0, 0, 10)
	points = append(points, [2]float64{50, 0}, [2]float64{0, 80}, [2]float64{-120, 10}, [2]float64{30, -200}, [2]float64{400, 400})
	labels, err := New().Labels(euclidean(points), cluster.DefaultParams())
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	for i := 0; i < 10; i++ {
		if labels[i] != 0 {
			t.Fatalf("tight point %d labelled %d, want 0 (%v)", i, labels[i], labels)
		}
	}
	for i := 10; i < len(points); i++ {
		if labels[i] != cluster.Noise {
			t.Fatalf("outlier %d labelled %d, want noise (%v)", i, labels[i], labels)
		}
	}
}

func TestSingleClusterDisallowed(t *testing.T) {
	points := blob(0, 0, 10)
	points = append(points, [2]float64{50, 0}, [2]float64{0, 80})
	p := cluster.DefaultParams()
	p.AllowSingleCluster = false
	labels, err := New().Labels(euclidean(points), p)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	for i, l := range labels {
		if l != cluster.Noise {
			t.Fatalf("point %d labelled %d; without a split every point is noise", i, l)
		}
	}
}

func TestDeterministic(t *testing.T) {
	points := append(blob(0, 0, 12), blob(30, 5, 11)...)
	points = append(points, [2]float64{15, 40})
	m := euclidean(points)
	first, err := New().Labels(m, cluster.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		again, err := New().Labels(m, cluster.DefaultParams())
		if err != nil {
			t.Fatal(err)
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d differs at %d: %v vs %v", run, i, first, again)
			}
		}
	}
}

func TestDegenerateInputs(t *testing.T) {
	labels, err := New().Labels(mat.NewSymDense(1, nil), cluster.DefaultParams())
	if err != nil || len(labels) != 1 || labels[0] != cluster.Noise {
		t.Fatalf("single point: %v %v", labels, err)
	}

	bad := mat.NewSymDense(2, nil)
	bad.SetSym(0, 1, math.NaN())
	if _, err := New().Labels(bad, cluster.DefaultParams()); err == nil {
		t.Fatal("expected error for NaN distance")
	}
	bad.SetSym(0, 1, -1)
	if _, err := New().Labels(bad, cluster.DefaultParams()); err == nil {
		t.Fatal("expected error for negative distance")
	}
	if _, err := New().Labels(mat.NewSymDense(3, nil), cluster.Params{MinSamples: 1, MinClusterSize: 1}); err == nil {
		t.Fatal("expected error for min cluster size below 2")
	}
}

func TestIdenticalPointsFormOneCluster(t *testing.T) {
	labels, err := New().Labels(mat.NewSymDense(12, nil), cluster.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range labels {
		if l != 0 {
			t.Fatalf("point %d labelled %d, want 0", i, l)
		}
	}
}

func TestSingleLinkageSizes(t *testing.T) {
	edges := []edge{{0, 1, 1}, {2, 3, 1}, {1, 2, 5}}
	h := singleLinkage(4, edges)
	if h.root() != 6 {
		t.Fatalf("root = %d, want 6", h.root())
	}
	if h.size(6) != 4 || h.size(4) != 2 || h.size(5) != 2 {
		t.Fatalf("unexpected sizes: %+v", h.merges)
	}
	if got := len(h.descendants(6)); got != 7 {
		t.Fatalf("descendants = %d, want 7", got)
	}
}
