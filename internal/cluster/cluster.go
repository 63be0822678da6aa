// Package cluster groups an epoch's photos by the labels a density-based
// clustering oracle assigns to its distance matrix.
package cluster

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"

	"eventsort/internal/photo"
	"eventsort/internal/services"
)

// Noise is the label for points outside every dense region.
const Noise = -1

// Params are the fixed parameters handed to the oracle.
type Params struct {
	MinSamples         int
	MinClusterSize     int
	AllowSingleCluster bool
}

// DefaultParams returns the parameters used for every clustered epoch.
func DefaultParams() Params {
	return Params{MinSamples: 1, MinClusterSize: 10, AllowSingleCluster: true}
}

// Oracle assigns one label per matrix row. Labels are non-negative cluster ids
// or Noise. Implementations must be deterministic for a given matrix and
// parameters.
type Oracle interface {
	Labels(m mat.Symmetric, p Params) ([]int, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(m mat.Symmetric, p Params) ([]int, error)

// Labels calls f.
func (f OracleFunc) Labels(m mat.Symmetric, p Params) ([]int, error) { return f(m, p) }

// Group is the set of records sharing one label.
type Group struct {
	Label   int
	Records []photo.Record
}

// Assigner runs the oracle and groups records by label.
type Assigner struct {
	oracle Oracle
	params Params
}

// NewAssigner builds an Assigner around oracle.
func NewAssigner(oracle Oracle, params Params) *Assigner {
	return &Assigner{oracle: oracle, params: params}
}

// Params returns the parameters passed to the oracle.
func (a *Assigner) Params() Params { return a.params }

// Assign labels the rows of m, which must correspond one-to-one with records,
// and returns one Group per distinct label in ascending label order. Records
// within a group keep their input order, so a time-sorted epoch yields
// time-sorted groups. Noise forms an ordinary group.
func (a *Assigner) Assign(records []photo.Record, m mat.Symmetric) ([]Group, error) {
	if a == nil || a.oracle == nil {
		return nil, services.Wrap(services.ErrConfiguration, "cluster", "assign", "no clustering oracle configured", nil)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if m == nil || m.SymmetricDim() != len(records) {
		dim := 0
		if m != nil {
			dim = m.SymmetricDim()
		}
		return nil, services.Wrap(services.ErrClustering, "cluster", "assign",
			fmt.Sprintf("matrix has %d rows for %d records", dim, len(records)), nil)
	}

	labels, err := a.oracle.Labels(m, a.params)
	if err != nil {
		return nil, services.Wrap(services.ErrClustering, "cluster", "oracle", "", err)
	}
	if len(labels) != len(records) {
		return nil, services.Wrap(services.ErrClustering, "cluster", "oracle",
			fmt.Sprintf("returned %d labels for %d records", len(labels), len(records)), nil)
	}

	byLabel := make(map[int][]photo.Record)
	for i, label := range labels {
		if label < Noise {
			return nil, services.Wrap(services.ErrClustering, "cluster", "oracle",
				fmt.Sprintf("invalid label %d for row %d", label, i), nil)
		}
		byLabel[label] = append(byLabel[label], records[i])
	}

	keys := make([]int, 0, len(byLabel))
	for label := range byLabel {
		keys = append(keys, label)
	}
	slices.Sort(keys)

	groups := make([]Group, 0, len(keys))
	for _, label := range keys {
		groups = append(groups, Group{Label: label, Records: byLabel[label]})
	}
	return groups, nil
}
