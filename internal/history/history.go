// Package history persists a record of playback runs in SQLite, giving
// the history command and the TUI something to show about past
// sessions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run outcomes. A run either reaches the last note, is stopped by the
// user, or fails before playing anything.
const (
	OutcomeFinished = "finished"
	OutcomeStopped  = "stopped"
	OutcomeFailed   = "failed"
)

// Store records playback runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Run is one playback attempt of a song.
type Run struct {
	ID        int64
	Song      string
	Path      string
	Manual    bool
	Speed     float64
	Played    int
	Total     int
	Outcome   string
	StartedAt time.Time
	EndedAt   time.Time
}

// NewStore opens (or creates) the run database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent and is
	// plenty for this write-light workload.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -64000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			song TEXT NOT NULL,
			path TEXT NOT NULL,
			manual BOOLEAN NOT NULL DEFAULT 0,
			speed REAL NOT NULL,
			played INTEGER NOT NULL,
			total INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
		CREATE INDEX IF NOT EXISTS idx_runs_song ON runs(song, started_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts a finished run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	query := `
		INSERT INTO runs (song, path, manual, speed, played, total, outcome, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		run.Song,
		run.Path,
		run.Manual,
		run.Speed,
		run.Played,
		run.Total,
		run.Outcome,
		run.StartedAt.Unix(),
		run.EndedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

// Recent returns the most recent runs, newest first. A limit of zero or
// less returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, song, path, manual, speed, played, total, outcome, started_at, ended_at
		FROM runs
		ORDER BY started_at DESC, id DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// BySong returns the runs recorded for a song name, newest first.
func (s *Store) BySong(ctx context.Context, song string, limit int) ([]Run, error) {
	query := `
		SELECT id, song, path, manual, speed, played, total, outcome, started_at, ended_at
		FROM runs
		WHERE song = ?
		ORDER BY started_at DESC, id DESC
	`

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, song)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for song: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var startedUnix, endedUnix int64

		err := rows.Scan(
			&r.ID,
			&r.Song,
			&r.Path,
			&r.Manual,
			&r.Speed,
			&r.Played,
			&r.Total,
			&r.Outcome,
			&startedUnix,
			&endedUnix,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		r.StartedAt = time.Unix(startedUnix, 0)
		r.EndedAt = time.Unix(endedUnix, 0)

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}

	return count, nil
}

// Cleanup removes runs that ended more than maxAge ago, returning the
// number of rows deleted.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE ended_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
