package stepper

import (
	"fmt"

	"github.com/papapumpkin/comet/internal/trace"
)

// merge sort top-level states.
const (
	msStart = iota
	msError
	msRun
	msEOF
)

// merge sort frame phases.
const (
	mfSplit    = iota // divide a range and queue its halves
	mfMerge           // announce the merge of two sorted halves
	mfCompare         // compare the two heads
	mfCopy            // copy the chosen head into the scratch slot
	mfDrain           // drain the non-exhausted side
	mfCopyBack        // copy the merged scratch range back in place
	mfSorted          // mark the merged range sorted
)

// msFrame is one pending range on the work list with the merge cursors
// needed to resume mid-merge.
type msFrame struct {
	lo, mid, hi int
	phase       int
	i, j, k     int // left head, right head, scratch write cursor
	src         int // source index chosen by the last comparison
	x           int // copy-back cursor
}

// MergeSort sorts an owned copy of the input by recursive halving with a
// stable two-pointer merge: on equal keys the left head wins, so equal
// elements keep their original relative order.
type MergeSort struct {
	em    emitter
	arr   []float64
	tmp   []float64
	state int
	stack []msFrame
}

// NewMergeSort creates a stepper over an owned copy of values.
func NewMergeSort(values []float64) *MergeSort {
	arr := copyValues(values)
	return &MergeSort{arr: arr, tmp: make([]float64, len(arr)), state: msStart}
}

type overwriteData struct {
	Index        int       `json:"index"`
	Value        float64   `json:"value"`
	SourceIndex  int       `json:"source_index"`
	Array        []float64 `json:"array"`
	Scratch      []float64 `json:"scratch"`
	ScratchStart int       `json:"scratch_start"`
}

type copyBackData struct {
	Index int       `json:"index"`
	Value float64   `json:"value"`
	Array []float64 `json:"array"`
}

type mergeData struct {
	Left  int       `json:"left"`
	Right int       `json:"right"`
	Mid   int       `json:"mid"`
	Array []float64 `json:"array"`
}

// Next produces the next event of the sort.
func (s *MergeSort) Next() (trace.Event, bool) {
	switch s.state {
	case msStart:
		if len(s.arr) == 0 {
			s.state = msError
			return s.em.emit(trace.TypeError, "Input array is empty.", arrayData{Array: s.arr}), true
		}
		s.stack = append(s.stack, msFrame{lo: 0, hi: len(s.arr) - 1, phase: mfSplit})
		s.state = msRun
		return s.em.emit(trace.TypeStart, "Initial array state", arrayData{Array: s.arr}), true

	case msError:
		s.state = msEOF
		return s.em.emit(trace.TypeDone, "Merge sort aborted due to invalid input.",
			sortDoneData{SortedArray: s.arr}), true

	case msRun:
		if e, ok := s.runFrame(); ok {
			return e, true
		}
		s.state = msEOF
		return s.em.emit(trace.TypeDone, "Merge sort completed", sortDoneData{SortedArray: s.arr}), true

	default:
		return trace.Event{}, false
	}
}

// runFrame advances the top frame until it yields an event, popping frames
// that finish silently. Returns ok=false when the work list is empty.
func (s *MergeSort) runFrame() (trace.Event, bool) {
	for len(s.stack) > 0 {
		f := &s.stack[len(s.stack)-1]
		switch f.phase {
		case mfSplit:
			if f.lo >= f.hi {
				s.stack = s.stack[:len(s.stack)-1]
				continue
			}
			lo, hi := f.lo, f.hi
			mid := (lo + hi) / 2
			e := s.em.emit(trace.TypeDivide,
				fmt.Sprintf("Dividing range [%d, %d] into [%d, %d] and [%d, %d]", lo, hi, lo, mid, mid+1, hi),
				divideData{Left: lo, Right: hi, Mid: &mid, Array: s.arr})
			// Replace this frame with the merge of the two halves, then
			// the halves themselves; the left half ends up on top.
			s.stack = s.stack[:len(s.stack)-1]
			s.stack = append(s.stack,
				msFrame{lo: lo, mid: mid, hi: hi, phase: mfMerge},
				msFrame{lo: mid + 1, hi: hi, phase: mfSplit},
				msFrame{lo: lo, hi: mid, phase: mfSplit},
			)
			return e, true

		case mfMerge:
			f.i, f.j, f.k = f.lo, f.mid+1, f.lo
			f.phase = mfCompare
			return s.em.emit(trace.TypeMerge,
				fmt.Sprintf("Merging sorted ranges [%d, %d] and [%d, %d]", f.lo, f.mid, f.mid+1, f.hi),
				mergeData{Left: f.lo, Right: f.hi, Mid: f.mid, Array: s.arr}), true

		case mfCompare:
			if f.i > f.mid || f.j > f.hi {
				f.phase = mfDrain
				continue
			}
			e := s.em.emit(trace.TypeCompare,
				fmt.Sprintf("Comparing arr[%d] (%v) and arr[%d] (%v)", f.i, s.arr[f.i], f.j, s.arr[f.j]),
				compareData{I: f.i, J: f.j, ValueI: s.arr[f.i], ValueJ: s.arr[f.j], Array: s.arr})
			// Ties go to the left range to keep the sort stable.
			if s.arr[f.i] <= s.arr[f.j] {
				f.src = f.i
			} else {
				f.src = f.j
			}
			f.phase = mfCopy
			return e, true

		case mfCopy:
			e := s.copyToScratch(f, f.src)
			if f.src <= f.mid {
				f.i++
			} else {
				f.j++
			}
			f.phase = mfCompare
			return e, true

		case mfDrain:
			switch {
			case f.i <= f.mid:
				e := s.copyToScratch(f, f.i)
				f.i++
				return e, true
			case f.j <= f.hi:
				e := s.copyToScratch(f, f.j)
				f.j++
				return e, true
			default:
				f.x = f.lo
				f.phase = mfCopyBack
				continue
			}

		case mfCopyBack:
			if f.x > f.hi {
				f.phase = mfSorted
				continue
			}
			x := f.x
			s.arr[x] = s.tmp[x]
			f.x++
			return s.em.emit(trace.TypeCopyBack,
				fmt.Sprintf("Copying merged value %v back to arr[%d]", s.arr[x], x),
				copyBackData{Index: x, Value: s.arr[x], Array: s.arr}), true

		case mfSorted:
			e := s.em.emit(trace.TypeSorted,
				fmt.Sprintf("Range [%d, %d] is now sorted", f.lo, f.hi),
				rangeData{Left: f.lo, Right: f.hi, Array: s.arr})
			s.stack = s.stack[:len(s.stack)-1]
			return e, true
		}
	}
	return trace.Event{}, false
}

// copyToScratch writes arr[src] into the next scratch slot and emits the
// overwrite event, advancing the write cursor.
func (s *MergeSort) copyToScratch(f *msFrame, src int) trace.Event {
	k := f.k
	s.tmp[k] = s.arr[src]
	f.k++
	return s.em.emit(trace.TypeOverwrite,
		fmt.Sprintf("Writing arr[%d] (%v) into merge slot %d", src, s.arr[src], k),
		overwriteData{
			Index:        k,
			Value:        s.arr[src],
			SourceIndex:  src,
			Array:        s.arr,
			Scratch:      s.tmp[f.lo:f.k],
			ScratchStart: f.lo,
		})
}
