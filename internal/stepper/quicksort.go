package stepper

import (
	"fmt"

	"github.com/papapumpkin/comet/internal/trace"
)

// quick sort top-level states.
const (
	qsStart = iota
	qsError
	qsRun
	qsDone
	qsEOF
)

// quick sort frame phases.
const (
	qfSingle = iota // length-1 range, marked sorted immediately
	qfDivide        // announce the range before partitioning
	qfScan          // partition scan, comparing against the pivot
	qfSwap          // pending boundary swap from the last comparison
	qfPivot         // swap the pivot into its final slot
	qfLock          // mark the pivot's final position sorted, then recurse
)

// qsFrame is one pending index range on the work list, with the partition
// cursors needed to resume mid-scan.
type qsFrame struct {
	lo, hi int
	phase  int
	i, j   int // boundary and scan cursor
	pivot  int // pivot's final position, set by qfPivot
}

// QuickSort sorts an owned copy of the input with last-element-pivot
// partitioning, one event per comparison or swap. Adversarial input
// degrades to O(n^2) comparisons, which is inherent to the scheme.
type QuickSort struct {
	em    emitter
	arr   []float64
	state int
	stack []qsFrame
}

// NewQuickSort creates a stepper over an owned copy of values.
func NewQuickSort(values []float64) *QuickSort {
	return &QuickSort{arr: copyValues(values), state: qsStart}
}

// push adds a frame for an index range, skipping empty ranges.
func (s *QuickSort) push(lo, hi int) {
	switch {
	case lo > hi:
	case lo == hi:
		s.stack = append(s.stack, qsFrame{lo: lo, hi: hi, phase: qfSingle})
	default:
		s.stack = append(s.stack, qsFrame{lo: lo, hi: hi, phase: qfDivide})
	}
}

// Next produces the next event of the sort.
func (s *QuickSort) Next() (trace.Event, bool) {
	switch s.state {
	case qsStart:
		if len(s.arr) == 0 {
			s.state = qsError
			return s.em.emit(trace.TypeError, "Input array is empty.", arrayData{Array: s.arr}), true
		}
		s.push(0, len(s.arr)-1)
		s.state = qsRun
		return s.em.emit(trace.TypeStart, "Initial array state", arrayData{Array: s.arr}), true

	case qsError:
		s.state = qsEOF
		return s.em.emit(trace.TypeDone, "Quick sort aborted due to invalid input.",
			sortDoneData{SortedArray: s.arr}), true

	case qsRun:
		if e, ok := s.runFrame(); ok {
			return e, true
		}
		s.state = qsEOF
		return s.em.emit(trace.TypeDone, "Quick sort completed", sortDoneData{SortedArray: s.arr}), true

	default:
		return trace.Event{}, false
	}
}

// runFrame advances the top frame until it yields an event. Frames that
// finish without one (recursion bookkeeping) are popped and processing
// continues. Returns ok=false when the work list is empty.
func (s *QuickSort) runFrame() (trace.Event, bool) {
	for len(s.stack) > 0 {
		f := &s.stack[len(s.stack)-1]
		switch f.phase {
		case qfSingle:
			e := s.em.emit(trace.TypeSorted,
				fmt.Sprintf("Range [%d, %d] has a single element and is sorted", f.lo, f.hi),
				rangeData{Left: f.lo, Right: f.hi, Array: s.arr})
			s.stack = s.stack[:len(s.stack)-1]
			return e, true

		case qfDivide:
			f.phase = qfScan
			f.i = f.lo - 1
			f.j = f.lo
			return s.em.emit(trace.TypeDivide,
				fmt.Sprintf("Partitioning range [%d, %d] around pivot %v", f.lo, f.hi, s.arr[f.hi]),
				rangeData{Left: f.lo, Right: f.hi, Array: s.arr}), true

		case qfScan:
			if f.j == f.hi {
				f.phase = qfPivot
				continue
			}
			j, pivot := f.j, s.arr[f.hi]
			e := s.em.emit(trace.TypeCompare,
				fmt.Sprintf("Comparing arr[%d] (%v) with pivot %v", j, s.arr[j], pivot),
				compareData{I: j, J: f.hi, ValueI: s.arr[j], ValueJ: pivot, Array: s.arr})
			if s.arr[j] <= pivot {
				f.i++
				if f.i != j {
					f.phase = qfSwap
				} else {
					f.j++ // swapping an element with itself is elided
				}
			} else {
				f.j++
			}
			return e, true

		case qfSwap:
			s.arr[f.i], s.arr[f.j] = s.arr[f.j], s.arr[f.i]
			e := s.em.emit(trace.TypeSwap,
				fmt.Sprintf("Swapping arr[%d] (%v) and arr[%d] (%v)", f.i, s.arr[f.i], f.j, s.arr[f.j]),
				swapData{I: f.i, J: f.j, Array: s.arr})
			f.j++
			f.phase = qfScan
			return e, true

		case qfPivot:
			f.pivot = f.i + 1
			s.arr[f.pivot], s.arr[f.hi] = s.arr[f.hi], s.arr[f.pivot]
			f.phase = qfLock
			return s.em.emit(trace.TypeSwap,
				fmt.Sprintf("Placing pivot %v at its final position arr[%d]", s.arr[f.pivot], f.pivot),
				swapData{I: f.pivot, J: f.hi, Array: s.arr}), true

		case qfLock:
			lo, hi, p := f.lo, f.hi, f.pivot
			e := s.em.emit(trace.TypeSorted,
				fmt.Sprintf("Pivot at index %d is in its final sorted position", p),
				rangeData{Left: p, Right: p, Array: s.arr})
			// Pop this frame, then queue the two sides exclusive of the
			// pivot; the left side ends up on top so it runs first.
			s.stack = s.stack[:len(s.stack)-1]
			s.push(p+1, hi)
			s.push(lo, p-1)
			return e, true
		}
	}
	return trace.Event{}, false
}
