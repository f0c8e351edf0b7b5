package stepper

import (
	"testing"

	"github.com/papapumpkin/comet/internal/graph"
	"github.com/papapumpkin/comet/internal/trace"
)

// collect drains a stepper into a validated trace.
func collect(t *testing.T, s Stepper) trace.Trace {
	t.Helper()
	tr, err := Collect(s)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return tr
}

// eventTypes lists the trace's event types in order.
func eventTypes(tr trace.Trace) []string {
	types := make([]string, tr.Len())
	for i := 0; i < tr.Len(); i++ {
		types[i] = tr.At(i).Type
	}
	return types
}

// countType returns how many events of the given type the trace holds.
func countType(tr trace.Trace, typ string) int {
	n := 0
	for i := 0; i < tr.Len(); i++ {
		if tr.At(i).Type == typ {
			n++
		}
	}
	return n
}

// floats converts a wire-form []any payload field back to float64s.
func floats(t *testing.T, v any) []float64 {
	t.Helper()
	raw, ok := v.([]any)
	if !ok {
		t.Fatalf("payload field is %T, want []any", v)
	}
	out := make([]float64, len(raw))
	for i, x := range raw {
		f, ok := x.(float64)
		if !ok {
			t.Fatalf("element %d is %T, want float64", i, x)
		}
		out[i] = f
	}
	return out
}

// finalArray extracts the sorted_array field of the terminal done event.
func finalArray(t *testing.T, tr trace.Trace) []float64 {
	t.Helper()
	done := tr.At(tr.Len() - 1)
	if done.Type != trace.TypeDone {
		t.Fatalf("terminal event is %q, want done", done.Type)
	}
	return floats(t, done.Data["sorted_array"])
}

// textbookGraph is the 6-node weighted graph used by the shortest-path
// walkthroughs.
func textbookGraph() graph.Graph {
	return graph.Graph{
		"A": {{To: "B", Weight: 4}, {To: "C", Weight: 2}},
		"B": {{To: "A", Weight: 4}, {To: "E", Weight: 3}},
		"C": {{To: "A", Weight: 2}, {To: "D", Weight: 2}, {To: "F", Weight: 4}},
		"D": {{To: "C", Weight: 2}, {To: "E", Weight: 3}},
		"E": {{To: "B", Weight: 3}, {To: "D", Weight: 3}, {To: "F", Weight: 1}},
		"F": {{To: "C", Weight: 4}, {To: "E", Weight: 1}},
	}
}

// TestTraceShape checks the shared trace invariants for every stepper on a
// representative valid input: steps count up from 0 with no gaps and the
// final event is a done event. Collect validates contiguity internally, so
// a nil error is most of the assertion.
func TestTraceShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Stepper
	}{
		{"dijkstra", NewDijkstra(textbookGraph(), "A")},
		{"kruskal", NewKruskal(textbookGraph())},
		{"quicksort", NewQuickSort([]float64{3, 1, 4, 1, 5})},
		{"mergesort", NewMergeSort([]float64{3, 1, 4, 1, 5})},
		{"linearsearch", NewLinearSearch([]float64{3, 1, 4}, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := collect(t, tt.s)
			if tr.At(0).Step != 0 {
				t.Errorf("first step = %d, want 0", tr.At(0).Step)
			}
			if got := tr.At(tr.Len() - 1).Type; got != trace.TypeDone {
				t.Errorf("terminal type = %q, want done", got)
			}
		})
	}
}

func TestStepperExhaustion(t *testing.T) {
	t.Parallel()

	s := NewLinearSearch([]float64{1}, 1)
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	// A drained stepper stays drained.
	if _, ok := s.Next(); ok {
		t.Error("Next returned an event after exhaustion")
	}
}

func TestNewStepper(t *testing.T) {
	t.Parallel()

	for _, name := range Algorithms() {
		if _, err := NewStepper(name, Input{Values: []float64{1}, Graph: graph.Graph{"A": nil}, Start: "A"}); err != nil {
			t.Errorf("NewStepper(%q) = %v, want nil", name, err)
		}
	}

	if _, err := NewStepper("bogosort", Input{}); err == nil {
		t.Error("NewStepper(bogosort) = nil error, want ErrUnknownAlgorithm")
	}
}

func TestInputNotMutated(t *testing.T) {
	t.Parallel()

	values := []float64{3, 1, 2}
	collect(t, NewQuickSort(values))
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("caller's input was mutated: %v", values)
	}

	collect(t, NewMergeSort(values))
	if values[0] != 3 {
		t.Errorf("caller's input was mutated: %v", values)
	}
}
