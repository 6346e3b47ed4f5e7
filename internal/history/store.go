// Package history records getset runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/getset/internal/filelock"
	"github.com/harrison/getset/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Step is one attempted command of a recorded run.
type Step struct {
	Position int
	Title    string
	Duration time.Duration
	Success  bool
	Status   string
}

// Run is a recorded invocation.
type Run struct {
	ID        string
	File      string
	Filter    string
	StartedAt time.Time
	Success   bool
	Total     time.Duration
	Error     string
	Steps     []Step
}

// NewRun builds the record of a finished run from its summary. runErr is the
// error returned by the orchestrator, if any.
func NewRun(file, filter string, startedAt time.Time, summary *models.RunSummary, runErr error) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		File:      file,
		Filter:    filter,
		StartedAt: startedAt,
		Success:   runErr == nil && summary.Success(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if summary == nil {
		return run
	}

	run.Total = summary.Total
	for i, r := range summary.Results {
		run.Steps = append(run.Steps, Step{Position: i + 1, Title: r.Title, Duration: r.Duration, Success: true})
	}
	if f := summary.Failed; f != nil {
		run.Steps = append(run.Steps, Step{
			Position: len(run.Steps) + 1,
			Title:    f.Title,
			Duration: f.Duration,
			Status:   f.Status,
		})
	}
	return run
}

// Store manages the run history database
type Store struct {
	db       *sql.DB
	dbPath   string
	lockPath string
}

// NewStore opens (creating if needed) the database at dbPath. Writes are
// serialised across processes with a lock file next to the database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases alive across queries.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if dbPath != ":memory:" {
		store.lockPath = dbPath + ".lock"
	}
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores run and its steps in one transaction.
func (s *Store) Record(ctx context.Context, run *Run) error {
	return s.withWriteLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (id, file, filter, started_at, success, total_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.File, run.Filter, run.StartedAt.UnixNano(), run.Success, run.Total.Milliseconds(), run.Error,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, step := range run.Steps {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO steps (run_id, position, title, duration_ms, success, status) VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, step.Position, step.Title, step.Duration.Milliseconds(), step.Success, step.Status,
			)
			if err != nil {
				return fmt.Errorf("insert step %d: %w", step.Position, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first, with their steps.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, filter, started_at, success, total_ms, error FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []*Run
	for rows.Next() {
		var (
			run       Run
			startedAt int64
			totalMs   int64
		)
		if err := rows.Scan(&run.ID, &run.File, &run.Filter, &startedAt, &run.Success, &totalMs, &run.Error); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt)
		run.Total = time.Duration(totalMs) * time.Millisecond
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	// Release the single connection before loading steps.
	rows.Close()

	for _, run := range runs {
		steps, err := s.steps(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Steps = steps
	}
	return runs, nil
}

func (s *Store) steps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, duration_ms, success, status FROM steps WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			step       Step
			durationMs int64
		)
		if err := rows.Scan(&step.Position, &step.Title, &durationMs, &step.Success, &step.Status); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		step.Duration = time.Duration(durationMs) * time.Millisecond
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.withWriteLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixNano())
		if err != nil {
			return fmt.Errorf("delete runs: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func (s *Store) withWriteLock(ctx context.Context, fn func() error) error {
	if s.lockPath == "" {
		return fn()
	}
	return filelock.WithLock(ctx, s.lockPath, fn)
}
