// Package telemetry provides a JSONL event stream for recording comet runs.
// Every stepper run, trace save and archive write is recorded as a
// structured JSON record, making sessions auditable and analyzable.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record kinds identify the type of telemetry record.
const (
	KindRunStart    = "run_start"
	KindRunDone     = "run_done"
	KindTraceSaved  = "trace_saved"
	KindRunArchived = "run_archived"
	KindTraceLoaded = "trace_loaded"
)

// Record represents a single telemetry entry. Each carries a timestamp, a
// kind tag, the algorithm in play, and optional structured data.
type Record struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Algorithm string    `json:"algorithm,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry records to a JSONL file. It is safe for
// concurrent use by multiple goroutines. A nil *Emitter is a valid no-op
// emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL records to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single record to the JSONL file. Calling Emit on a nil
// Emitter is a no-op.
func (e *Emitter) Emit(rec Record) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if err := e.enc.Encode(rec); err != nil {
		return fmt.Errorf("telemetry: encode record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
