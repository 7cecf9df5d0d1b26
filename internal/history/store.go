package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Run is one recorded download run.
type Run struct {
	ID          string
	Playlist    string
	Destination string

	Total       int
	Stored      int
	Skipped     int
	FetchFailed int
	StoreFailed int
	Cancelled   int
	Bytes       int64

	// Error is the run-level failure (manifest not saved), empty on success.
	Error string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Errors returns the number of songs that failed in the run.
func (r *Run) Errors() int {
	return r.FetchFailed + r.StoreFailed
}

// SongEvent is the outcome of one song in a run.
type SongEvent struct {
	ID      int64
	RunID   string
	ISRC    string
	Artist  string
	Title   string
	Outcome string
	Locator string
	Path    string
	Error   string
}

// Store persists runs in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	s, err := NewStore(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps db and creates the history tables if they are missing.
func NewStore(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished run and its song events in one transaction.
// Event RunIDs are set to run.ID.
func (s *Store) Record(ctx context.Context, run *Run, events []*SongEvent) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, playlist, destination, total, stored, skipped,
			fetch_failed, store_failed, cancelled, bytes, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Playlist, run.Destination, run.Total, run.Stored, run.Skipped,
		run.FetchFailed, run.StoreFailed, run.Cancelled, run.Bytes, run.Error,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO song_events (run_id, isrc, artist, title, outcome, locator, path, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare song event: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		e.RunID = run.ID
		result, err := stmt.ExecContext(ctx, e.RunID, e.ISRC, e.Artist, e.Title, e.Outcome, e.Locator, e.Path, e.Error)
		if err != nil {
			return fmt.Errorf("insert song event: %w", err)
		}
		if e.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("recorded run", "run_id", run.ID, "songs", len(events))
	return nil
}

// ListRuns returns the most recent runs first. A limit of 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, playlist, destination, total, stored, skipped, fetch_failed,
			store_failed, cancelled, bytes, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Playlist, &r.Destination, &r.Total, &r.Stored, &r.Skipped,
			&r.FetchFailed, &r.StoreFailed, &r.Cancelled, &r.Bytes, &r.Error,
			&r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// SongEvents returns the song events of a run in the order they were recorded.
func (s *Store) SongEvents(ctx context.Context, runID string) ([]*SongEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, isrc, artist, title, outcome, locator, path, error
		FROM song_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list song events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*SongEvent
	for rows.Next() {
		e := &SongEvent{}
		if err := rows.Scan(&e.ID, &e.RunID, &e.ISRC, &e.Artist, &e.Title, &e.Outcome, &e.Locator, &e.Path, &e.Error); err != nil {
			return nil, fmt.Errorf("scan song event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate song events: %w", err)
	}

	return events, nil
}
