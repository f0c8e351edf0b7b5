package stepper

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/comet/internal/graph"
	"github.com/papapumpkin/comet/internal/trace"
)

// kruskal machine states.
const (
	krInit = iota
	krAbort
	krConsider
	krDecide
	krEOF
)

// WeightedEdge is one undirected edge in discovery order, each unordered
// pair appearing exactly once.
type WeightedEdge struct {
	U      string  `json:"u"`
	V      string  `json:"v"`
	Weight float64 `json:"weight"`
}

// Kruskal builds a minimum spanning forest by considering edges in
// ascending weight order and uniting components through a disjoint set.
// Disconnected input yields one tree per component.
type Kruskal struct {
	em emitter
	g  graph.Graph

	state    int
	errMsg   string
	edges    []WeightedEdge
	idx      int
	uf       *graph.UnionFind
	accepted []WeightedEdge
}

// NewKruskal creates a stepper over a cloned graph, treated as undirected.
func NewKruskal(g graph.Graph) *Kruskal {
	return &Kruskal{g: g.Clone(), state: krInit}
}

type krStartData struct {
	Graph       graph.Graph    `json:"graph"`
	Nodes       []string       `json:"nodes"`
	SortedEdges []WeightedEdge `json:"sorted_edges"`
}

type krEdgeData struct {
	U        string         `json:"u"`
	V        string         `json:"v"`
	Weight   float64        `json:"weight"`
	MSTEdges []WeightedEdge `json:"mst_edges"`
	Graph    graph.Graph    `json:"graph"`
}

type krDoneData struct {
	MSTEdges    []WeightedEdge `json:"mst_edges"`
	TotalWeight float64        `json:"total_weight"`
	Graph       graph.Graph    `json:"graph"`
}

// collectEdges gathers each unordered pair once, in discovery order (nodes
// alphabetical, adjacency order within a node), then sorts by weight. The
// sort is stable so equal weights keep discovery order.
func collectEdges(g graph.Graph) []WeightedEdge {
	seen := make(map[[2]string]bool)
	var edges []WeightedEdge
	for _, u := range g.Nodes() {
		for _, e := range g[u] {
			a, b := u, e.To
			if b < a {
				a, b = b, a
			}
			key := [2]string{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, WeightedEdge{U: u, V: e.To, Weight: e.Weight})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Weight < edges[j].Weight })
	return edges
}

// Next produces the next event of the run.
func (s *Kruskal) Next() (trace.Event, bool) {
	switch s.state {
	case krInit:
		if len(s.g) == 0 {
			// An empty graph has an empty forest; the trace is a lone
			// done event.
			s.state = krEOF
			return s.em.emit(trace.TypeDone, "Minimum-spanning-tree run completed",
				krDoneData{MSTEdges: []WeightedEdge{}, Graph: s.g}), true
		}
		if err := s.g.Validate(); err != nil {
			s.errMsg = fmt.Sprintf("Invalid graph: %v.", err)
			s.state = krAbort
			return s.em.emit(trace.TypeError, s.errMsg,
				krStartData{Graph: s.g, Nodes: s.g.Nodes()}), true
		}
		s.edges = collectEdges(s.g)
		s.uf = graph.NewUnionFind(s.g.Nodes())
		s.state = krConsider
		return s.em.emit(trace.TypeStart, "Edges sorted by ascending weight",
			krStartData{Graph: s.g, Nodes: s.g.Nodes(), SortedEdges: s.edges}), true

	case krAbort:
		s.state = krEOF
		return s.em.emit(trace.TypeDone, "Minimum-spanning-tree run aborted: "+s.errMsg,
			krDoneData{MSTEdges: []WeightedEdge{}, Graph: s.g}), true

	case krConsider:
		if s.idx == len(s.edges) {
			s.state = krEOF
			return s.em.emit(trace.TypeDone, "Minimum-spanning-tree run completed",
				krDoneData{MSTEdges: s.acceptedEdges(), TotalWeight: s.totalWeight(), Graph: s.g}), true
		}
		e := s.edges[s.idx]
		s.state = krDecide
		return s.em.emit(trace.TypeConsiderEdge,
			fmt.Sprintf("Considering edge %s-%s with weight %v", e.U, e.V, e.Weight),
			krEdgeData{U: e.U, V: e.V, Weight: e.Weight, MSTEdges: s.acceptedEdges(), Graph: s.g}), true

	case krDecide:
		e := s.edges[s.idx]
		s.idx++
		s.state = krConsider
		if s.uf.Union(e.U, e.V) {
			s.accepted = append(s.accepted, e)
			return s.em.emit(trace.TypeAddEdge,
				fmt.Sprintf("Adding edge %s-%s to the spanning forest (weight %v)", e.U, e.V, e.Weight),
				krEdgeData{U: e.U, V: e.V, Weight: e.Weight, MSTEdges: s.acceptedEdges(), Graph: s.g}), true
		}
		return s.em.emit(trace.TypeRejectEdge,
			fmt.Sprintf("Rejecting edge %s-%s; it would close a cycle", e.U, e.V),
			krEdgeData{U: e.U, V: e.V, Weight: e.Weight, MSTEdges: s.acceptedEdges(), Graph: s.g}), true

	default:
		return trace.Event{}, false
	}
}

// acceptedEdges returns the accepted set as a non-nil slice so the wire
// form is always a list.
func (s *Kruskal) acceptedEdges() []WeightedEdge {
	out := make([]WeightedEdge, len(s.accepted))
	copy(out, s.accepted)
	return out
}

func (s *Kruskal) totalWeight() float64 {
	var total float64
	for _, e := range s.accepted {
		total += e.Weight
	}
	return total
}
