package hdbscan

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"eventsort/internal/cluster"
)

// Clusterer implements cluster.Oracle.
type Clusterer struct{}

// New returns a Clusterer.
func New() Clusterer { return Clusterer{} }

var _ cluster.Oracle = Clusterer{}

// Labels clusters the points described by the distance matrix m. It returns a
// label per row: cluster ids start at 0 and cluster.Noise marks points outside
// every selected cluster. Fewer than two points are all noise.
func (Clusterer) Labels(m mat.Symmetric, p cluster.Params) ([]int, error) {
	if m == nil {
		return nil, fmt.Errorf("hdbscan: nil distance matrix")
	}
	if p.MinClusterSize < 2 {
		return nil, fmt.Errorf("hdbscan: min cluster size must be at least 2, got %d", p.MinClusterSize)
	}
	if p.MinSamples < 1 {
		return nil, fmt.Errorf("hdbscan: min samples must be at least 1, got %d", p.MinSamples)
	}
	n := m.SymmetricDim()
	if err := checkDistances(m, n); err != nil {
		return nil, err
	}
	labels := make([]int, n)
	if n < 2 {
		for i := range labels {
			labels[i] = cluster.Noise
		}
		return labels, nil
	}

	core := coreDistances(m, n, min(p.MinSamples, n-1))
	reach := func(a, b int) float64 {
		return max(core[a], core[b], m.At(a, b))
	}
	h := singleLinkage(n, minimumSpanningTree(n, reach))
	tree := condense(h, p.MinClusterSize)
	selected := selectClusters(tree, p.AllowSingleCluster)
	tree.label(selected, p.AllowSingleCluster, labels)
	return labels, nil
}

func checkDistances(m mat.Symmetric, n int) error {
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := m.At(i, j)
			if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
				return fmt.Errorf("hdbscan: invalid distance %v at (%d,%d)", d, i, j)
			}
		}
	}
	return nil
}

// coreDistances returns, per point, the k-th smallest entry of its row where
// the point itself is entry 0.
func coreDistances(m mat.Symmetric, n, k int) []float64 {
	core := make([]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			row[j] = m.At(i, j)
		}
		row[i] = 0
		slices.Sort(row)
		core[i] = row[k]
	}
	return core
}

type edge struct {
	a, b   int
	weight float64
}

// minimumSpanningTree runs Prim's algorithm on the complete graph weighted by
// dist, starting from point 0.
func minimumSpanningTree(n int, dist func(a, b int) float64) []edge {
	inTree := make([]bool, n)
	best := make([]float64, n)
	from := make([]int, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	edges := make([]edge, 0, n-1)
	current := 0
	inTree[current] = true
	for len(edges) < n-1 {
		next := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if d := dist(current, j); d < best[j] {
				best[j] = d
				from[j] = current
			}
			if next == -1 || best[j] < best[next] {
				next = j
			}
		}
		edges = append(edges, edge{a: from[next], b: next, weight: best[next]})
		inTree[next] = true
		current = next
	}
	slices.SortStableFunc(edges, func(x, y edge) int {
		switch {
		case x.weight < y.weight:
			return -1
		case x.weight > y.weight:
			return 1
		}
		return 0
	})
	return edges
}
