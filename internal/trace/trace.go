package trace

import (
	"errors"
	"fmt"
)

// ErrInvalidTrace is returned when a trace violates its structural
// invariants: it is empty, its step numbers do not increase by exactly one
// from zero, or its final event is not a "done" event.
var ErrInvalidTrace = errors.New("invalid trace")

// Trace is the complete ordered sequence of events produced by one stepper
// run. It is immutable once constructed and safe for concurrent reads.
type Trace struct {
	events []Event
}

// FromEvents constructs a Trace, validating the structural invariants.
func FromEvents(events []Event) (Trace, error) {
	if len(events) == 0 {
		return Trace{}, fmt.Errorf("%w: empty", ErrInvalidTrace)
	}
	for i, e := range events {
		if e.Step != i {
			return Trace{}, fmt.Errorf("%w: event %d has step %d", ErrInvalidTrace, i, e.Step)
		}
	}
	if last := events[len(events)-1]; last.Type != TypeDone {
		return Trace{}, fmt.Errorf("%w: terminal event is %q, want %q", ErrInvalidTrace, last.Type, TypeDone)
	}
	owned := make([]Event, len(events))
	copy(owned, events)
	return Trace{events: owned}, nil
}

// Len returns the number of events in the trace.
func (t Trace) Len() int { return len(t.events) }

// At returns the event at index i. The index must be in [0, Len).
func (t Trace) At(i int) Event { return t.events[i] }

// Events returns a copy of the event slice.
func (t Trace) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Equal reports whether two traces are structurally equal event by event.
func (t Trace) Equal(other Trace) bool {
	if len(t.events) != len(other.events) {
		return false
	}
	for i, e := range t.events {
		if !e.Equal(other.events[i]) {
			return false
		}
	}
	return true
}

// Encode flattens the trace to an ordered list of portable records, the
// persisted wire form.
func (t Trace) Encode() []map[string]any {
	records := make([]map[string]any, len(t.events))
	for i, e := range t.events {
		records[i] = e.Encode()
	}
	return records
}

// DecodeRecords rebuilds a Trace from persisted records. Structural
// problems in any record surface as ErrInvalidEvent; trace-level invariant
// violations surface as ErrInvalidTrace.
func DecodeRecords(records []map[string]any) (Trace, error) {
	events := make([]Event, 0, len(records))
	for i, r := range records {
		e, err := Decode(r)
		if err != nil {
			return Trace{}, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, e)
	}
	return FromEvents(events)
}
