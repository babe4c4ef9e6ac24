package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/metronome/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Store persists the frame trace to SQLite.
//
// The database is configured with:
//   - WAL mode for concurrent reads during recording
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// A single connection is used: the trace has exactly one writer, the
// frame-owner thread driving the engine.
type Store struct {
	db *sql.DB
}

// Open creates or opens a trace database at the given path.
// Idempotent: the schema is applied with IF NOT EXISTS.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect trace database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply trace schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record implements engine.Recorder.
//
// Failures are logged and recording continues: a broken trace sink must
// not corrupt the frame that produced the event.
func (s *Store) Record(ev engine.TraceEvent) {
	_, err := s.db.Exec(
		`INSERT INTO trace_events (seq, frame, phase, kind, unit, tag, name, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Seq, ev.Frame, ev.Phase, ev.Kind, ev.Unit, ev.Tag, ev.Name, ev.Detail,
	)
	if err != nil {
		slog.Error("trace write failed", "seq", ev.Seq, "kind", ev.Kind, "error", err)
	}
}

// Events returns every recorded event in seq order.
func (s *Store) Events(ctx context.Context) ([]engine.TraceEvent, error) {
	return s.query(ctx,
		`SELECT seq, frame, phase, kind, unit, tag, name, detail
		 FROM trace_events ORDER BY seq`)
}

// FrameEvents returns the events of one frame in seq order.
func (s *Store) FrameEvents(ctx context.Context, frame int64) ([]engine.TraceEvent, error) {
	return s.query(ctx,
		`SELECT seq, frame, phase, kind, unit, tag, name, detail
		 FROM trace_events WHERE frame = ? ORDER BY seq`, frame)
}

// LastFrame returns the highest recorded frame number, 0 if empty.
func (s *Store) LastFrame(ctx context.Context) (int64, error) {
	var frame sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(frame) FROM trace_events`).Scan(&frame)
	if err != nil {
		return 0, fmt.Errorf("read last frame: %w", err)
	}
	return frame.Int64, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]engine.TraceEvent, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query trace events: %w", err)
	}
	defer rows.Close()

	var events []engine.TraceEvent
	for rows.Next() {
		var ev engine.TraceEvent
		if err := rows.Scan(&ev.Seq, &ev.Frame, &ev.Phase, &ev.Kind, &ev.Unit, &ev.Tag, &ev.Name, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan trace event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace events: %w", err)
	}
	return events, nil
}
