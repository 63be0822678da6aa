package cluster_test

import (
	"errors"
	"fmt"
	"testing"

	"gonum.org/v1/gonum/mat"

	"eventsort/internal/cluster"
	"eventsort/internal/photo"
	"eventsort/internal/services"
)

func records(n int) []photo.Record {
	out := make([]photo.Record, n)
	for i := range out {
		out[i] = photo.NewRecord(fmt.Sprintf("%02d.jpg", i), "jpeg", photo.WithCoordinates(1, 1), photo.WithTimestamp(int64(i)))
	}
	return out
}

func fixedLabels(labels ...int) cluster.Oracle {
	return cluster.OracleFunc(func(mat.Symmetric, cluster.Params) ([]int, error) {
		return append([]int(nil), labels...), nil
	})
}

func TestAssignGroupsByLabel(t *testing.T) {
	recs := records(6)
	a := cluster.NewAssigner(fixedLabels(1, -1, 0, 1, 0, -1), cluster.DefaultParams())
	groups, err := a.Assign(recs, mat.NewSymDense(6, nil))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	want := []struct {
		label int
		paths []string
	}{
		{-1, []string{"01.jpg", "05.jpg"}},
		{0, []string{"02.jpg", "04.jpg"}},
		{1, []string{"00.jpg", "03.jpg"}},
	}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, w := range want {
		if groups[i].Label != w.label {
			t.Fatalf("group %d label %d, want %d", i, groups[i].Label, w.label)
		}
		for j, p := range w.paths {
			if groups[i].Records[j].Path() != p {
				t.Fatalf("group %d record %d = %s, want %s", i, j, groups[i].Records[j].Path(), p)
			}
		}
	}
}

func TestAssignPassesParams(t *testing.T) {
	var got cluster.Params
	oracle := cluster.OracleFunc(func(m mat.Symmetric, p cluster.Params) ([]int, error) {
		got = p
		return make([]int, m.SymmetricDim()), nil
	})
	a := cluster.NewAssigner(oracle, cluster.DefaultParams())
	groups, err := a.Assign(records(3), mat.NewSymDense(3, nil))
	if err != nil {
		t.Fatal(err)
	}
	if got != (cluster.Params{MinSamples: 1, MinClusterSize: 10, AllowSingleCluster: true}) {
		t.Fatalf("unexpected params %+v", got)
	}
	if len(groups) != 1 || groups[0].Label != 0 || len(groups[0].Records) != 3 {
		t.Fatalf("expected one group of 3, got %+v", groups)
	}
}

func TestAssignErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		oracle cluster.Oracle
		m      mat.Symmetric
		marker error
	}{
		{"oracle failure", cluster.OracleFunc(func(mat.Symmetric, cluster.Params) ([]int, error) { return nil, boom }), mat.NewSymDense(3, nil), services.ErrClustering},
		{"short labels", fixedLabels(0, 0), mat.NewSymDense(3, nil), services.ErrClustering},
		{"bad label", fixedLabels(0, -2, 0), mat.NewSymDense(3, nil), services.ErrClustering},
		{"dimension mismatch", fixedLabels(0, 0, 0), mat.NewSymDense(2, nil), services.ErrClustering},
		{"nil matrix", fixedLabels(0, 0, 0), nil, services.ErrClustering},
		{"no oracle", nil, mat.NewSymDense(3, nil), services.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cluster.NewAssigner(tt.oracle, cluster.DefaultParams()).Assign(records(3), tt.m)
			if !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
		})
	}
}
