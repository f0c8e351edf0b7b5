// Package problem loads TOML problem-instance files: the input-collection
// layer that feeds validated arrays and graphs to the steppers.
//
// An array problem:
//
//	algorithm = "quicksort"
//	values = [38, 27, 43, 3, 9, 82, 10]
//
// A graph problem:
//
//	algorithm = "dijkstra"
//	start = "A"
//	undirected = true
//	edges = [
//	  { from = "A", to = "B", weight = 4 },
//	  { from = "A", to = "C", weight = 2 },
//	]
package problem

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/comet/internal/graph"
	"github.com/papapumpkin/comet/internal/stepper"
)

// ErrBadProblem is returned when a problem file is structurally invalid
// for its declared algorithm.
var ErrBadProblem = errors.New("invalid problem file")

// EdgeSpec is one edge entry in a graph problem.
type EdgeSpec struct {
	From   string  `toml:"from"`
	To     string  `toml:"to"`
	Weight float64 `toml:"weight"`
}

// Problem describes one algorithm run: which algorithm and its input.
type Problem struct {
	Algorithm  string     `toml:"algorithm"`
	Values     []float64  `toml:"values"`
	Target     float64    `toml:"target"`
	Start      string     `toml:"start"`
	Undirected bool       `toml:"undirected"`
	Nodes      []string   `toml:"nodes"` // optional isolated nodes
	Edges      []EdgeSpec `toml:"edges"`
}

// Load reads and decodes a problem file.
func Load(path string) (Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("problem: read %s: %w", path, err)
	}
	return Decode(raw)
}

// Decode parses TOML and checks the fields required by the declared
// algorithm are present.
func Decode(raw []byte) (Problem, error) {
	var p Problem
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Problem{}, fmt.Errorf("problem: parse: %w", err)
	}
	if err := p.validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func (p Problem) validate() error {
	switch p.Algorithm {
	case stepper.AlgoQuickSort, stepper.AlgoMergeSort:
		if len(p.Values) == 0 {
			return fmt.Errorf("%w: %s requires a non-empty values list", ErrBadProblem, p.Algorithm)
		}
	case stepper.AlgoLinearSearch:
		if len(p.Values) == 0 {
			return fmt.Errorf("%w: %s requires a non-empty values list", ErrBadProblem, p.Algorithm)
		}
	case stepper.AlgoDijkstra:
		if len(p.Edges) == 0 && len(p.Nodes) == 0 {
			return fmt.Errorf("%w: %s requires edges or nodes", ErrBadProblem, p.Algorithm)
		}
		if p.Start == "" {
			return fmt.Errorf("%w: %s requires a start node", ErrBadProblem, p.Algorithm)
		}
	case stepper.AlgoKruskal:
		// An empty graph is a legal Kruskal input (its forest is empty).
	default:
		return fmt.Errorf("%w: %w: %q", ErrBadProblem, stepper.ErrUnknownAlgorithm, p.Algorithm)
	}
	return nil
}

// Input assembles the stepper input. For graph problems the adjacency
// lists keep the file's edge order; with undirected set, the mirror of
// each edge is added when not already listed.
func (p Problem) Input() stepper.Input {
	in := stepper.Input{
		Values: p.Values,
		Target: p.Target,
		Start:  p.Start,
	}
	switch p.Algorithm {
	case stepper.AlgoDijkstra, stepper.AlgoKruskal:
		in.Graph = p.buildGraph()
	}
	return in
}

func (p Problem) buildGraph() graph.Graph {
	g := make(graph.Graph)
	ensure := func(id string) {
		if _, ok := g[id]; !ok {
			g[id] = nil
		}
	}
	for _, id := range p.Nodes {
		ensure(id)
	}
	for _, e := range p.Edges {
		ensure(e.From)
		ensure(e.To)
		g[e.From] = append(g[e.From], graph.Edge{To: e.To, Weight: e.Weight})
	}
	if p.Undirected {
		for _, e := range p.Edges {
			if !hasEdge(g, e.To, e.From, e.Weight) {
				g[e.To] = append(g[e.To], graph.Edge{To: e.From, Weight: e.Weight})
			}
		}
	}
	return g
}

func hasEdge(g graph.Graph, from, to string, weight float64) bool {
	for _, e := range g[from] {
		if e.To == to && e.Weight == weight {
			return true
		}
	}
	return false
}
