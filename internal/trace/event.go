// Package trace defines the event schema shared by every algorithm stepper
// and the ordered, immutable trace those steppers produce. An Event carries
// everything a renderer needs to draw the state at that step; nothing is
// reconstructed by replaying deltas from earlier events.
package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Event types emitted by the steppers. Each stepper draws from a small
// closed subset of these.
const (
	TypeStart        = "start"
	TypeVisit        = "visit"
	TypeCompare      = "compare"
	TypeSwap         = "swap"
	TypeRelax        = "relax"
	TypeDivide       = "divide"
	TypeMerge        = "merge"
	TypeConsiderEdge = "consider_edge"
	TypeAddEdge      = "add_edge"
	TypeRejectEdge   = "reject_edge"
	TypeOverwrite    = "overwrite"
	TypeCopyBack     = "copy_back"
	TypeSorted       = "sorted"
	TypeFound        = "found"
	TypeNotFound     = "not_found"
	TypeError        = "error"
	TypeDone         = "done"
)

// ErrInvalidEvent is returned when decoding a wire record that is missing
// one of the required step/type/details keys or carries a non-integer step.
var ErrInvalidEvent = errors.New("invalid event record")

// Keys reserved for the event envelope in the wire record. Data fields live
// alongside them at the top level, so payload builders must not reuse them.
const (
	keyStep    = "step"
	keyType    = "type"
	keyDetails = "details"
)

// Fields is an event's data payload in wire-normalized form: every value is
// one of the JSON scalar/slice/map kinds (float64 for all numbers). Keeping
// payloads normalized from the moment they are built means structural
// equality survives an encode/decode round trip.
type Fields map[string]any

// Event is one immutable record of a single algorithmic step. Data must be
// self-sufficient: the full renderable state at this step is embedded, with
// no implicit dependency on any other event.
type Event struct {
	Step    int
	Type    string
	Details string
	Data    Fields
}

// DataOf flattens a typed payload struct into normalized Fields by passing
// it through JSON. It panics on values that cannot be marshaled, which only
// happens for programming errors in a payload definition.
func DataOf(v any) Fields {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("trace: unmarshalable payload %T: %v", v, err))
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		panic(fmt.Sprintf("trace: payload %T is not an object: %v", v, err))
	}
	return f
}

// New constructs an Event from a typed payload, flattening it to Fields.
// Pass nil data for events that carry no payload.
func New(step int, typ, details string, data any) Event {
	e := Event{Step: step, Type: typ, Details: details, Data: Fields{}}
	if data == nil {
		return e
	}
	if f, ok := data.(Fields); ok {
		e.Data = f
		return e
	}
	e.Data = DataOf(data)
	return e
}

// Equal reports structural equality of two events on step, type, details
// and data.
func (e Event) Equal(other Event) bool {
	return e.Step == other.Step &&
		e.Type == other.Type &&
		e.Details == other.Details &&
		reflect.DeepEqual(e.Data, other.Data)
}

// Encode flattens the event to a single portable map: step, type and
// details at the top level with all data fields spread alongside them.
func (e Event) Encode() map[string]any {
	record := make(map[string]any, len(e.Data)+3)
	for k, v := range e.Data {
		record[k] = v
	}
	record[keyStep] = float64(e.Step)
	record[keyType] = e.Type
	record[keyDetails] = e.Details
	return record
}

// Decode rebuilds an Event from a portable flat map. All keys other than
// step, type and details become the event's data. Returns ErrInvalidEvent
// if a required key is missing or malformed.
func Decode(record map[string]any) (Event, error) {
	rawStep, ok := record[keyStep]
	if !ok {
		return Event{}, fmt.Errorf("%w: missing %q", ErrInvalidEvent, keyStep)
	}
	step, ok := asInt(rawStep)
	if !ok {
		return Event{}, fmt.Errorf("%w: step %v is not an integer", ErrInvalidEvent, rawStep)
	}
	typ, ok := record[keyType].(string)
	if !ok {
		return Event{}, fmt.Errorf("%w: missing %q", ErrInvalidEvent, keyType)
	}
	details, ok := record[keyDetails].(string)
	if !ok {
		return Event{}, fmt.Errorf("%w: missing %q", ErrInvalidEvent, keyDetails)
	}

	data := make(Fields, len(record))
	for k, v := range record {
		switch k {
		case keyStep, keyType, keyDetails:
			continue
		}
		data[k] = v
	}
	return Event{Step: step, Type: typ, Details: details, Data: data}, nil
}

// asInt accepts the numeric types a JSON decoder or caller may hand us and
// reports whether the value is a whole number.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
