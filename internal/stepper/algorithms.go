package stepper

import (
	"errors"
	"fmt"
	"sort"

	"github.com/papapumpkin/comet/internal/graph"
)

// Algorithm names accepted by NewStepper.
const (
	AlgoDijkstra     = "dijkstra"
	AlgoKruskal      = "kruskal"
	AlgoQuickSort    = "quicksort"
	AlgoMergeSort    = "mergesort"
	AlgoLinearSearch = "linearsearch"
)

// ErrUnknownAlgorithm is returned for an algorithm name outside the set above.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Input is the problem instance handed to a stepper. Array steppers read
// Values (and Target for the search); graph steppers read Graph (and Start
// for shortest path). Steppers re-validate their own minimal preconditions
// and answer bad input with an error/done event pair, never a Go error.
type Input struct {
	Values []float64
	Target float64
	Graph  graph.Graph
	Start  string
}

// Algorithms returns the known algorithm names, sorted.
func Algorithms() []string {
	names := []string{AlgoDijkstra, AlgoKruskal, AlgoQuickSort, AlgoMergeSort, AlgoLinearSearch}
	sort.Strings(names)
	return names
}

// NewStepper constructs the stepper for the named algorithm.
func NewStepper(algorithm string, in Input) (Stepper, error) {
	switch algorithm {
	case AlgoDijkstra:
		return NewDijkstra(in.Graph, in.Start), nil
	case AlgoKruskal:
		return NewKruskal(in.Graph), nil
	case AlgoQuickSort:
		return NewQuickSort(in.Values), nil
	case AlgoMergeSort:
		return NewMergeSort(in.Values), nil
	case AlgoLinearSearch:
		return NewLinearSearch(in.Values, in.Target), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
