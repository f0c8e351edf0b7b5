// Package store persists traces: a portable JSON file form, a SQLite
// archive of named runs, and a directory watcher for exported trace files.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/papapumpkin/comet/internal/trace"
)

// MarshalTrace encodes a trace to its portable form: a JSON list of flat
// records with step, type and details at the top level and the event's
// data fields spread alongside them.
func MarshalTrace(t trace.Trace) ([]byte, error) {
	raw, err := json.MarshalIndent(t.Encode(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: marshal trace: %w", err)
	}
	return raw, nil
}

// UnmarshalTrace decodes the portable form back into a validated trace.
// A top-level value that is not a list, or a record missing step, type or
// details, fails with a wrapped trace.ErrInvalidTrace / trace.ErrInvalidEvent.
func UnmarshalTrace(raw []byte) (trace.Trace, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return trace.Trace{}, fmt.Errorf("store: %w: payload is not a list of records: %v", trace.ErrInvalidTrace, err)
	}
	t, err := trace.DecodeRecords(records)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("store: decode trace: %w", err)
	}
	return t, nil
}

// SaveTrace writes the portable form to path.
func SaveTrace(path string, t trace.Trace) error {
	raw, err := MarshalTrace(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

// LoadTrace reads and decodes the portable form from path.
func LoadTrace(path string) (trace.Trace, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("store: read %s: %w", path, err)
	}
	return UnmarshalTrace(raw)
}
