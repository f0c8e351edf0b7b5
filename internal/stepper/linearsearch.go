package stepper

import (
	"fmt"

	"github.com/papapumpkin/comet/internal/trace"
)

// linear search machine states.
const (
	lsStart = iota
	lsError
	lsVisit
	lsVerdict
	lsDone
	lsEOF
)

// LinearSearch scans an array left to right for the first occurrence of a
// target value, emitting one event per probe.
type LinearSearch struct {
	em     emitter
	arr    []float64
	target float64

	state    int
	i        int
	found    bool
	foundIdx int
}

// NewLinearSearch creates a stepper over an owned copy of values.
func NewLinearSearch(values []float64, target float64) *LinearSearch {
	return &LinearSearch{arr: copyValues(values), target: target, state: lsStart}
}

type searchArrayData struct {
	Array  []float64 `json:"array"`
	Target float64   `json:"target"`
}

type searchVisitData struct {
	Index  int       `json:"index"`
	Value  float64   `json:"value"`
	Target float64   `json:"target"`
	Array  []float64 `json:"array"`
}

type searchDoneData struct {
	Found  bool      `json:"found"`
	Index  *int      `json:"index,omitempty"`
	Target float64   `json:"target"`
	Array  []float64 `json:"array"`
}

// Next produces the next event of the scan.
func (s *LinearSearch) Next() (trace.Event, bool) {
	switch s.state {
	case lsStart:
		if len(s.arr) == 0 {
			s.state = lsError
			return s.em.emit(trace.TypeError, "Input array is empty.",
				searchArrayData{Array: s.arr, Target: s.target}), true
		}
		s.state = lsVisit
		return s.em.emit(trace.TypeStart,
			fmt.Sprintf("Initial array state, searching for %v", s.target),
			searchArrayData{Array: s.arr, Target: s.target}), true

	case lsError:
		s.state = lsEOF
		return s.em.emit(trace.TypeDone, "Linear search aborted due to invalid input.",
			searchDoneData{Found: false, Target: s.target, Array: s.arr}), true

	case lsVisit:
		i := s.i
		e := s.em.emit(trace.TypeVisit,
			fmt.Sprintf("Visiting index %d, comparing %v with target %v", i, s.arr[i], s.target),
			searchVisitData{Index: i, Value: s.arr[i], Target: s.target, Array: s.arr})
		if s.arr[i] == s.target {
			s.found = true
			s.foundIdx = i
			s.state = lsVerdict
		} else if s.i++; s.i == len(s.arr) {
			s.state = lsVerdict
		}
		return e, true

	case lsVerdict:
		s.state = lsDone
		if s.found {
			return s.em.emit(trace.TypeFound,
				fmt.Sprintf("Target %v found at index %d", s.target, s.foundIdx),
				searchVisitData{Index: s.foundIdx, Value: s.arr[s.foundIdx], Target: s.target, Array: s.arr}), true
		}
		return s.em.emit(trace.TypeNotFound,
			fmt.Sprintf("Target %v not found in the array", s.target),
			searchArrayData{Array: s.arr, Target: s.target}), true

	case lsDone:
		s.state = lsEOF
		data := searchDoneData{Found: s.found, Target: s.target, Array: s.arr}
		if s.found {
			idx := s.foundIdx
			data.Index = &idx
		}
		return s.em.emit(trace.TypeDone, "Linear search completed", data), true

	default:
		return trace.Event{}, false
	}
}
