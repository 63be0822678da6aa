package hdbscan

import (
	"math"
	"slices"

	"eventsort/internal/cluster"
)

// merge is one step of the single-linkage hierarchy. Node ids below the
// point count are points; merge k creates node points+k.
type merge struct {
	left, right int
	distance    float64
	size        int
}

type hierarchy struct {
	points int
	merges []merge
}

func (h hierarchy) root() int { return h.points + len(h.merges) - 1 }

func (h hierarchy) size(node int) int {
	if node < h.points {
		return 1
	}
	return h.merges[node-h.points].size
}

// descendants lists node and everything below it, level by level.
func (h hierarchy) descendants(node int) []int {
	var out []int
	queue := []int{node}
	for len(queue) > 0 {
		out = append(out, queue...)
		var next []int
		for _, x := range queue {
			if x >= h.points {
				m := h.merges[x-h.points]
				next = append(next, m.left, m.right)
			}
		}
		queue = next
	}
	return out
}

// singleLinkage turns sorted spanning tree edges into a merge hierarchy.
func singleLinkage(n int, edges []edge) hierarchy {
	parent := make([]int, 2*n-1)
	size := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
		if i < n {
			size[i] = 1
		}
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	h := hierarchy{points: n, merges: make([]merge, 0, len(edges))}
	for k, e := range edges {
		a, b := find(e.a), find(e.b)
		id := n + k
		parent[a], parent[b] = id, id
		size[id] = size[a] + size[b]
		h.merges = append(h.merges, merge{left: a, right: b, distance: e.weight, size: size[id]})
	}
	return h
}

// row is an edge of the condensed tree. A child below the point count is a
// point that left its parent cluster at lambda; otherwise it is a sub-cluster
// born at lambda.
type row struct {
	parent, child int
	lambda        float64
	size          int
}

type condensedTree struct {
	points int
	rows   []row
	// clusters is one past the largest cluster id.
	clusters int
}

func (t condensedTree) rootCluster() int { return t.points }

func lambdaOf(distance float64) float64 {
	if distance > 0 {
		return 1 / distance
	}
	return math.Inf(1)
}

// condense walks the hierarchy from the root. A split where both sides reach
// minSize creates two new clusters; otherwise the larger side keeps the
// parent's id and the points of any small side fall out of it.
func condense(h hierarchy, minSize int) condensedTree {
	root := h.root()
	relabel := map[int]int{root: h.points}
	nextLabel := h.points + 1
	ignore := make([]bool, root+1)
	var rows []row

	dropAll := func(parent, node int, lambda float64) {
		for _, sub := range h.descendants(node) {
			if sub < h.points {
				rows = append(rows, row{parent: parent, child: sub, lambda: lambda, size: 1})
			}
			ignore[sub] = true
		}
	}

	for _, node := range h.descendants(root) {
		if ignore[node] || node < h.points {
			continue
		}
		m := h.merges[node-h.points]
		lambda := lambdaOf(m.distance)
		parent := relabel[node]
		leftSize, rightSize := h.size(m.left), h.size(m.right)

		switch {
		case leftSize >= minSize && rightSize >= minSize:
			relabel[m.left] = nextLabel
			rows = append(rows, row{parent: parent, child: nextLabel, lambda: lambda, size: leftSize})
			nextLabel++
			relabel[m.right] = nextLabel
			rows = append(rows, row{parent: parent, child: nextLabel, lambda: lambda, size: rightSize})
			nextLabel++
		case leftSize < minSize && rightSize < minSize:
			dropAll(parent, m.left, lambda)
			dropAll(parent, m.right, lambda)
		case leftSize < minSize:
			relabel[m.right] = parent
			dropAll(parent, m.left, lambda)
		default:
			relabel[m.left] = parent
			dropAll(parent, m.right, lambda)
		}
	}
	return condensedTree{points: h.points, rows: rows, clusters: nextLabel}
}

// stabilities returns the excess of mass of every cluster id.
func (t condensedTree) stabilities() map[int]float64 {
	births := map[int]float64{t.rootCluster(): 0}
	for _, r := range t.rows {
		if r.child >= t.points {
			births[r.child] = r.lambda
		}
	}
	stability := make(map[int]float64, t.clusters-t.points)
	for c := t.points; c < t.clusters; c++ {
		stability[c] = 0
	}
	for _, r := range t.rows {
		delta := r.lambda - births[r.parent]
		if math.IsNaN(delta) {
			delta = 0
		}
		stability[r.parent] += delta * float64(r.size)
	}
	return stability
}

// selectClusters picks the excess-of-mass clusters, visiting the cluster tree
// bottom-up. The root is only eligible when allowSingle is set.
func selectClusters(t condensedTree, allowSingle bool) []int {
	stability := t.stabilities()
	children := make(map[int][]int)
	for _, r := range t.rows {
		if r.size > 1 {
			children[r.parent] = append(children[r.parent], r.child)
		}
	}

	nodes := make([]int, 0, len(stability))
	for c := t.clusters - 1; c >= t.points; c-- {
		nodes = append(nodes, c)
	}
	if !allowSingle {
		nodes = nodes[:len(nodes)-1]
	}

	isCluster := make(map[int]bool, len(nodes))
	for _, c := range nodes {
		isCluster[c] = true
	}
	for _, node := range nodes {
		var subtree float64
		for _, child := range children[node] {
			subtree += stability[child]
		}
		if subtree > stability[node] {
			isCluster[node] = false
			stability[node] = subtree
			continue
		}
		queue := slices.Clone(children[node])
		for len(queue) > 0 {
			sub := queue[0]
			queue = queue[1:]
			isCluster[sub] = false
			queue = append(queue, children[sub]...)
		}
	}

	var selected []int
	for c, ok := range isCluster {
		if ok {
			selected = append(selected, c)
		}
	}
	slices.Sort(selected)
	return selected
}

// label writes a label per point into out. A point belongs to its nearest
// selected ancestor. When the root is the only selected cluster a point keeps
// the root label only if it stayed until the root's last split.
func (t condensedTree) label(selected []int, allowSingle bool, out []int) {
	root := t.rootCluster()
	ids := make(map[int]int, len(selected))
	for i, c := range selected {
		ids[c] = i
	}

	owner := map[int]int{root: root}
	if _, ok := ids[root]; !ok {
		owner[root] = -1
	}
	pointLambda := make([]float64, t.points)
	rootMax := math.Inf(-1)
	for _, r := range t.rows {
		if r.parent == root {
			rootMax = max(rootMax, r.lambda)
		}
		if r.child < t.points {
			pointLambda[r.child] = r.lambda
			out[r.child] = cluster.Noise
			if o := owner[r.parent]; o >= 0 {
				out[r.child] = ids[o]
			}
			continue
		}
		if _, ok := ids[r.child]; ok {
			owner[r.child] = r.child
		} else {
			owner[r.child] = owner[r.parent]
		}
	}

	if !allowSingle || len(selected) != 1 || selected[0] != root {
		return
	}
	for p := range out {
		if pointLambda[p] < rootMax {
			out[p] = cluster.Noise
		}
	}
}
