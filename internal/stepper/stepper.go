// Package stepper implements the five instrumented algorithms. Each stepper
// is an explicit state machine: one call to Next produces exactly one event
// and returns control, driven by a work list of frames rather than a
// suspended call stack. Every event embeds the full renderable state for
// its step, so playback never has to replay deltas.
package stepper

import (
	"github.com/papapumpkin/comet/internal/trace"
)

// Stepper lazily produces the finite, one-shot event sequence of a single
// algorithm run. Next returns false once the sequence is exhausted; the
// final event of every sequence has type "done". A consumer may stop
// early at any point without side effects.
type Stepper interface {
	Next() (trace.Event, bool)
}

// Collect drains a stepper and assembles the validated trace.
func Collect(s Stepper) (trace.Trace, error) {
	var events []trace.Event
	for {
		e, ok := s.Next()
		if !ok {
			break
		}
		events = append(events, e)
	}
	return trace.FromEvents(events)
}

// Run constructs the named stepper and collects its full trace in one call.
// It is the entry point the CLI and MCP server use.
func Run(algorithm string, in Input) (trace.Trace, error) {
	s, err := NewStepper(algorithm, in)
	if err != nil {
		return trace.Trace{}, err
	}
	return Collect(s)
}

// emitter threads the step counter shared by a whole run. The counter is a
// plain value advanced by emit; it is never reached through a closure or
// package variable.
type emitter struct {
	step int
}

// emit builds the next event and advances the counter.
func (em *emitter) emit(typ, details string, data any) trace.Event {
	e := trace.New(em.step, typ, details, data)
	em.step++
	return e
}

// copyValues returns an owned copy of the caller's array. Steppers never
// mutate caller-supplied input.
func copyValues(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
