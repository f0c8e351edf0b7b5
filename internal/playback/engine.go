// Package playback navigates a finished trace and projects the renderable
// snapshot for the current position. Because every event embeds its full
// state, a snapshot is a pure function of the current event alone; the
// engine never replays or diffs earlier events.
package playback

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/comet/internal/trace"
)

// ErrSeekOutOfRange is returned when Seek targets an index outside the
// trace. The engine's position is left unchanged.
var ErrSeekOutOfRange = errors.New("seek index out of range")

// Snapshot is the renderable state at one trace position: the current
// event's type and details as context plus its self-sufficient data.
// Renderers consume this and nothing else.
type Snapshot struct {
	Step    int          `json:"step"`
	Type    string       `json:"type"`
	Details string       `json:"details"`
	Data    trace.Fields `json:"data"`
}

// Engine is a cursor over an immutable trace. Multiple engines may read
// the same trace concurrently; each owns only its position.
type Engine struct {
	trace trace.Trace
	index int
}

// NewEngine creates an engine positioned at the first event. A trace that
// fails its structural invariants is rejected during construction, so any
// trace reaching here is non-empty; the zero Trace is still refused.
func NewEngine(t trace.Trace) (*Engine, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: empty", trace.ErrInvalidTrace)
	}
	return &Engine{trace: t}, nil
}

// Len returns the number of events in the trace.
func (e *Engine) Len() int { return e.trace.Len() }

// Index returns the current 0-based position.
func (e *Engine) Index() int { return e.index }

// Current returns the event at the current position.
func (e *Engine) Current() trace.Event { return e.trace.At(e.index) }

// Next advances one position and returns the new current event. At the
// final index it is a no-op and reports ok=false.
func (e *Engine) Next() (trace.Event, bool) {
	if e.index >= e.trace.Len()-1 {
		return trace.Event{}, false
	}
	e.index++
	return e.Current(), true
}

// Prev steps back one position and returns the new current event. At index
// 0 it is a no-op and reports ok=false.
func (e *Engine) Prev() (trace.Event, bool) {
	if e.index == 0 {
		return trace.Event{}, false
	}
	e.index--
	return e.Current(), true
}

// Seek jumps to index i. Returns ErrSeekOutOfRange, without moving, if i
// is outside [0, Len-1].
func (e *Engine) Seek(i int) (trace.Event, error) {
	if i < 0 || i >= e.trace.Len() {
		return trace.Event{}, fmt.Errorf("%w: %d not in [0, %d]", ErrSeekOutOfRange, i, e.trace.Len()-1)
	}
	e.index = i
	return e.Current(), nil
}

// SeekStart positions the engine at the first event.
func (e *Engine) SeekStart() trace.Event {
	e.index = 0
	return e.Current()
}

// SeekEnd positions the engine at the terminal done event.
func (e *Engine) SeekEnd() trace.Event {
	e.index = e.trace.Len() - 1
	return e.Current()
}

// Snapshot projects the renderable state for the current position from the
// current event only.
func (e *Engine) Snapshot() Snapshot {
	cur := e.Current()
	return Snapshot{
		Step:    cur.Step,
		Type:    cur.Type,
		Details: cur.Details,
		Data:    cur.Data,
	}
}
