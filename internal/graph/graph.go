// Package graph provides the weighted adjacency-list graph consumed by the
// graph steppers, plus the disjoint-set structure used for cycle detection.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyGraph is returned when an operation requires at least one node.
var ErrEmptyGraph = errors.New("graph is empty")

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrSelfLoop is returned when a node lists itself as a neighbor.
var ErrSelfLoop = errors.New("self-referencing edge")

// ErrNegativeWeight is returned when an edge weight is below zero.
var ErrNegativeWeight = errors.New("negative edge weight")

// ErrAsymmetric is returned when an undirected graph is missing the mirror
// of one of its edges.
var ErrAsymmetric = errors.New("missing mirror edge")

// Edge is one outgoing adjacency entry: the neighbor and the edge weight.
type Edge struct {
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Graph maps each node ID to its ordered list of outgoing edges. Neighbor
// order is meaningful: steppers consider edges in the order listed.
type Graph map[string][]Edge

// Nodes returns all node IDs sorted alphabetically.
func (g Graph) Nodes() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasNode reports whether the graph contains the given node.
func (g Graph) HasNode(id string) bool {
	_, ok := g[id]
	return ok
}

// Validate checks structural soundness: at least one node, no self-loops,
// and every neighbor reference resolving to a defined node.
func (g Graph) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGraph
	}
	for _, u := range g.Nodes() {
		for _, e := range g[u] {
			if e.To == u {
				return fmt.Errorf("%w: %s", ErrSelfLoop, u)
			}
			if !g.HasNode(e.To) {
				return fmt.Errorf("%w: edge %s-%s", ErrNodeNotFound, u, e.To)
			}
		}
	}
	return nil
}

// FirstNegativeEdge scans the whole graph in node order and returns the
// first edge with a negative weight, or ok=false if all weights are
// non-negative.
func (g Graph) FirstNegativeEdge() (from string, edge Edge, ok bool) {
	for _, u := range g.Nodes() {
		for _, e := range g[u] {
			if e.Weight < 0 {
				return u, e, true
			}
		}
	}
	return "", Edge{}, false
}

// ValidateUndirected checks Validate plus edge symmetry: every edge
// (u, v, w) must have a mirror (v, u, w).
func (g Graph) ValidateUndirected() error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, u := range g.Nodes() {
		for _, e := range g[u] {
			if !g.hasEdge(e.To, u, e.Weight) {
				return fmt.Errorf("%w: %s-%s (weight %v)", ErrAsymmetric, e.To, u, e.Weight)
			}
		}
	}
	return nil
}

func (g Graph) hasEdge(from, to string, weight float64) bool {
	for _, e := range g[from] {
		if e.To == to && e.Weight == weight {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for u, edges := range g {
		cp := make([]Edge, len(edges))
		copy(cp, edges)
		out[u] = cp
	}
	return out
}
