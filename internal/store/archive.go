package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/comet/internal/trace"
)

// ErrRunNotFound is returned when an archive lookup references a run ID
// that does not exist.
var ErrRunNotFound = errors.New("run not found")

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    algorithm  TEXT NOT NULL,
    events     INTEGER NOT NULL,
    trace      TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Run is one archived stepper run.
type Run struct {
	ID        int64
	Name      string
	Algorithm string
	Events    int
	CreatedAt time.Time
}

// Archive stores named runs and their full traces in a local SQLite
// database in WAL mode.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) a SQLite database at dbPath, enables WAL
// mode and busy timeout, and creates the schema if it does not exist.
func OpenArchive(ctx context.Context, dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open archive: %w", err)
	}

	// SQLite supports a single writer; one pooled connection avoids
	// SQLITE_BUSY contention between connections that each need their own
	// PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// SaveRun archives a trace under a name and returns the new run ID.
func (a *Archive) SaveRun(ctx context.Context, name, algorithm string, t trace.Trace) (int64, error) {
	raw, err := MarshalTrace(t)
	if err != nil {
		return 0, err
	}
	res, err := a.db.ExecContext(ctx,
		"INSERT INTO runs (name, algorithm, events, trace) VALUES (?, ?, ?, ?)",
		name, algorithm, t.Len(), string(raw))
	if err != nil {
		return 0, fmt.Errorf("store: save run %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: save run id: %w", err)
	}
	return id, nil
}

// LoadRun returns an archived run's trace by ID.
func (a *Archive) LoadRun(ctx context.Context, id int64) (trace.Trace, error) {
	var raw string
	err := a.db.QueryRowContext(ctx, "SELECT trace FROM runs WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Trace{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return trace.Trace{}, fmt.Errorf("store: load run %d: %w", id, err)
	}
	return UnmarshalTrace([]byte(raw))
}

// ListRuns returns all archived runs, newest first, without their traces.
func (a *Archive) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, name, algorithm, events, created_at FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts string
		if err := rows.Scan(&r.ID, &r.Name, &r.Algorithm, &r.Events, &ts); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		createdAt, parseErr := parseTimestamp(ts)
		if parseErr != nil {
			return nil, fmt.Errorf("store: parse run timestamp: %w", parseErr)
		}
		r.CreatedAt = createdAt
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes an archived run. Returns ErrRunNotFound if no row
// matched.
func (a *Archive) DeleteRun(ctx context.Context, id int64) error {
	res, err := a.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete run rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// timestampFormats lists the formats SQLite drivers may produce for
// CURRENT_TIMESTAMP. modernc.org/sqlite typically returns RFC 3339, while
// canonical SQLite returns the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339,
	time.DateTime,
}

// parseTimestamp attempts to parse a SQLite timestamp string using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
