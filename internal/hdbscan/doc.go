// Package hdbscan is a density-based clustering oracle for precomputed
// distance matrices.
//
// The algorithm follows the usual HDBSCAN steps:
//   - core distance of each point (distance to its min_samples-th neighbour)
//   - mutual reachability distance max(core_a, core_b, d(a, b))
//   - minimum spanning tree of the mutual reachability graph
//   - single-linkage hierarchy from the sorted tree edges
//   - condensed tree, dropping splits smaller than min_cluster_size
//   - excess-of-mass cluster selection and point labelling
//
// Ties are always broken towards the lowest index so identical input yields
// identical labels.
package hdbscan
