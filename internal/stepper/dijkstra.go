package stepper

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/papapumpkin/comet/internal/graph"
	"github.com/papapumpkin/comet/internal/trace"
)

// InfSentinel is the wire form of an infinite distance. JSON has no +Inf,
// so unreachable nodes carry this string, distinct from every finite value.
const InfSentinel = "inf"

// dijkstra machine states.
const (
	djInit = iota
	djAbort
	djPop
	djNeighbors
	djEOF
)

// frontierItem is one (distance, node) entry in the min-priority frontier.
type frontierItem struct {
	dist float64
	node string
}

// frontier is a min-heap keyed by distance with natural node ordering as
// the tie-break.
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].node < f[j].node
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any) { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Dijkstra computes single-source shortest paths over a non-negative
// weighted graph, one event per pop, edge consideration or relaxation.
type Dijkstra struct {
	em    emitter
	g     graph.Graph
	start string

	state   int
	errMsg  string
	dist    map[string]float64
	prev    map[string]string
	visited map[string]bool
	pq      frontier

	cur          string // node being expanded
	curDist      float64
	edges        []graph.Edge // cur's adjacency list
	edgeIdx      int
	pendingRelax bool
}

// NewDijkstra creates a stepper for the given graph and start node. The
// graph is cloned; the caller's value is never mutated.
func NewDijkstra(g graph.Graph, start string) *Dijkstra {
	return &Dijkstra{g: g.Clone(), start: start, state: djInit}
}

type edgeRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type djStartData struct {
	Graph     graph.Graph    `json:"graph"`
	Start     string         `json:"start"`
	Distances map[string]any `json:"distances"`
}

type djVisitData struct {
	Node      string         `json:"node"`
	Distance  float64        `json:"distance"`
	Distances map[string]any `json:"distances"`
	Visited   []string       `json:"visited"`
	Graph     graph.Graph    `json:"graph"`
}

type djEdgeData struct {
	U         string         `json:"u"`
	V         string         `json:"v"`
	Weight    float64        `json:"weight"`
	Distances map[string]any `json:"distances"`
	Visited   []string       `json:"visited"`
	Graph     graph.Graph    `json:"graph"`
}

type djRelaxData struct {
	U           string         `json:"u"`
	V           string         `json:"v"`
	Weight      float64        `json:"weight"`
	OldDistance any            `json:"old_distance"`
	NewDistance float64        `json:"new_distance"`
	Distances   map[string]any `json:"distances"`
	Visited     []string       `json:"visited"`
	Graph       graph.Graph    `json:"graph"`
}

type djErrorData struct {
	Graph graph.Graph `json:"graph"`
	Start string      `json:"start"`
}

type djDoneData struct {
	FinalDistances map[string]any `json:"final_distances"`
	Predecessors   map[string]any `json:"predecessors"`
	TreeNodes      []string       `json:"tree_nodes"`
	TreeEdges      []edgeRef      `json:"tree_edges"`
	Graph          graph.Graph    `json:"graph"`
}

// wireDistances converts internal distances to the wire form, substituting
// the "inf" sentinel for unreachable nodes.
func wireDistances(dist map[string]float64) map[string]any {
	out := make(map[string]any, len(dist))
	for node, d := range dist {
		if math.IsInf(d, 1) {
			out[node] = InfSentinel
		} else {
			out[node] = d
		}
	}
	return out
}

// visitedNodes returns the finalized node set in sorted order.
func (s *Dijkstra) visitedNodes() []string {
	out := make([]string, 0, len(s.visited))
	for n := range s.visited {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Next produces the next event of the run.
func (s *Dijkstra) Next() (trace.Event, bool) {
	switch s.state {
	case djInit:
		if err := s.validate(); err != "" {
			s.errMsg = err
			s.state = djAbort
			return s.em.emit(trace.TypeError, err, djErrorData{Graph: s.g, Start: s.start}), true
		}
		s.dist = make(map[string]float64, len(s.g))
		s.prev = make(map[string]string)
		s.visited = make(map[string]bool)
		for node := range s.g {
			s.dist[node] = math.Inf(1)
		}
		s.dist[s.start] = 0
		heap.Push(&s.pq, frontierItem{dist: 0, node: s.start})
		s.state = djPop
		return s.em.emit(trace.TypeStart,
			fmt.Sprintf("Initial graph state, starting from %s", s.start),
			djStartData{Graph: s.g, Start: s.start, Distances: wireDistances(s.dist)}), true

	case djAbort:
		s.state = djEOF
		return s.em.emit(trace.TypeDone, "Shortest-path run aborted: "+s.errMsg,
			djErrorData{Graph: s.g, Start: s.start}), true

	case djPop:
		for s.pq.Len() > 0 {
			item := heap.Pop(&s.pq).(frontierItem)
			if s.visited[item.node] {
				continue // already finalized under a shorter distance
			}
			s.visited[item.node] = true
			s.cur = item.node
			s.curDist = item.dist
			s.edges = s.g[item.node]
			s.edgeIdx = 0
			s.pendingRelax = false
			s.state = djNeighbors
			return s.em.emit(trace.TypeVisit,
				fmt.Sprintf("Visiting node %s with distance %v", item.node, item.dist),
				djVisitData{
					Node:      item.node,
					Distance:  item.dist,
					Distances: wireDistances(s.dist),
					Visited:   s.visitedNodes(),
					Graph:     s.g,
				}), true
		}
		s.state = djEOF
		return s.em.emit(trace.TypeDone, "Shortest-path run completed", s.doneData()), true

	case djNeighbors:
		if e, ok := s.nextNeighborEvent(); ok {
			return e, true
		}
		s.state = djPop
		return s.Next()

	default:
		return trace.Event{}, false
	}
}

// validate runs the eager input checks in spec order and returns a
// human-readable message for the first failure.
func (s *Dijkstra) validate() string {
	if len(s.g) == 0 {
		return "Graph is empty."
	}
	if err := s.g.Validate(); err != nil {
		return fmt.Sprintf("Invalid graph: %v.", err)
	}
	if !s.g.HasNode(s.start) {
		return fmt.Sprintf("Start node %s not found in graph.", s.start)
	}
	if u, e, found := s.g.FirstNegativeEdge(); found {
		return fmt.Sprintf("Negative weight %v on edge %s-%s; shortest-path requires non-negative weights.", e.Weight, u, e.To)
	}
	return ""
}

// nextNeighborEvent advances through the current node's adjacency list,
// emitting consider_edge for each non-finalized neighbor and relax when the
// path through the current node strictly improves it. Returns ok=false when
// the list is exhausted.
func (s *Dijkstra) nextNeighborEvent() (trace.Event, bool) {
	if s.pendingRelax {
		e := s.edges[s.edgeIdx]
		old := s.dist[e.To]
		next := s.curDist + e.Weight
		s.dist[e.To] = next
		s.prev[e.To] = s.cur
		heap.Push(&s.pq, frontierItem{dist: next, node: e.To})
		s.pendingRelax = false
		s.edgeIdx++
		var oldWire any = InfSentinel
		if !math.IsInf(old, 1) {
			oldWire = old
		}
		return s.em.emit(trace.TypeRelax,
			fmt.Sprintf("Relaxing edge %s-%s; new distance to %s is %v", s.cur, e.To, e.To, next),
			djRelaxData{
				U: s.cur, V: e.To, Weight: e.Weight,
				OldDistance: oldWire, NewDistance: next,
				Distances: wireDistances(s.dist),
				Visited:   s.visitedNodes(),
				Graph:     s.g,
			}), true
	}

	for s.edgeIdx < len(s.edges) {
		e := s.edges[s.edgeIdx]
		if s.visited[e.To] {
			s.edgeIdx++
			continue
		}
		if s.curDist+e.Weight < s.dist[e.To] {
			s.pendingRelax = true // relax event follows on the next call
		}
		evt := s.em.emit(trace.TypeConsiderEdge,
			fmt.Sprintf("Considering edge %s-%s with weight %v", s.cur, e.To, e.Weight),
			djEdgeData{
				U: s.cur, V: e.To, Weight: e.Weight,
				Distances: wireDistances(s.dist),
				Visited:   s.visitedNodes(),
				Graph:     s.g,
			})
		if !s.pendingRelax {
			s.edgeIdx++
		}
		return evt, true
	}
	return trace.Event{}, false
}

// doneData assembles the terminal payload: final distances, predecessor
// map, and the shortest-path tree reachable from the start via predecessor
// links.
func (s *Dijkstra) doneData() djDoneData {
	preds := make(map[string]any, len(s.g))
	var treeNodes []string
	var treeEdges []edgeRef
	for _, node := range s.g.Nodes() {
		if p, ok := s.prev[node]; ok {
			preds[node] = p
			treeEdges = append(treeEdges, edgeRef{From: p, To: node})
		} else {
			preds[node] = nil
		}
		if !math.IsInf(s.dist[node], 1) {
			treeNodes = append(treeNodes, node)
		}
	}
	return djDoneData{
		FinalDistances: wireDistances(s.dist),
		Predecessors:   preds,
		TreeNodes:      treeNodes,
		TreeEdges:      treeEdges,
		Graph:          s.g,
	}
}
