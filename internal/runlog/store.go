// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog persists synthesis runs and their per-iteration
// convergence series in a SQLite database, for listing and export by
// external reporting.
package runlog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const dbFile = "synthesis.db"

// Store manages the run database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens or creates the run database at runsDir/synthesis.db,
// creating the schema if needed.
func NewStore(cfg types.RunLogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.RunsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runs directory: %w", err)
	}

	dbPath := filepath.Join(cfg.RunsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	s := &Store{db: db, log: slog.Default().With("component", "runlog")}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			intent TEXT NOT NULL,
			theorem TEXT,
			verified INTEGER NOT NULL DEFAULT 0,
			steps INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS iterations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			step INTEGER NOT NULL,
			status TEXT NOT NULL,
			summary TEXT,
			potential REAL NOT NULL,
			PRIMARY KEY (run_id, step)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_iterations_run_id ON iterations(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded synthesis run. It implements the orchestrator's
// observer hook; recording failures are logged, never surfaced into the
// refinement loop.
type Run struct {
	ID    string
	store *Store
}

// BeginRun inserts a new run row and returns its handle.
func (s *Store) BeginRun(intent string) (*Run, error) {
	id := ulid.Make().String()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, intent, started_at) VALUES (?, ?, ?)`,
		id, intent, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// ObserveIteration records one refinement iteration.
func (r *Run) ObserveIteration(step int, result types.VerificationResult, potential float64) {
	_, err := r.store.db.Exec(
		`INSERT OR REPLACE INTO iterations (run_id, step, status, summary, potential)
		 VALUES (?, ?, ?, ?, ?)`,
		r.ID, step, string(result.Status), result.Summary, potential,
	)
	if err != nil {
		r.store.log.Error("failed to record iteration", "run_id", r.ID, "step", step, "error", err)
	}
}

// Finish updates the run row with the solve outcome.
func (r *Run) Finish(result types.SolveResult) error {
	verified := 0
	if result.Verified {
		verified = 1
	}
	_, err := r.store.db.Exec(
		`UPDATE runs SET theorem = ?, verified = ?, steps = ?, finished_at = ? WHERE id = ?`,
		result.Logical.TheoremName, verified, result.Steps,
		time.Now().UTC().Format(time.RFC3339), r.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", r.ID, err)
	}
	return nil
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string `json:"id" yaml:"id"`
	Intent     string `json:"intent" yaml:"intent"`
	Theorem    string `json:"theorem" yaml:"theorem"`
	Verified   bool   `json:"verified" yaml:"verified"`
	Steps      int    `json:"steps" yaml:"steps"`
	StartedAt  string `json:"started_at" yaml:"started_at"`
	FinishedAt string `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// IterationRecord is one recorded refinement iteration.
type IterationRecord struct {
	Step      int     `json:"step" yaml:"step"`
	Status    string  `json:"status" yaml:"status"`
	Summary   string  `json:"summary" yaml:"summary"`
	Potential float64 `json:"potential" yaml:"potential"`
}

// RunExport bundles a run with its convergence series.
type RunExport struct {
	RunSummary `yaml:",inline"`
	Iterations []IterationRecord `json:"iterations" yaml:"iterations"`
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, intent, COALESCE(theorem, ''), verified, steps, started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var verified int
		if err := rows.Scan(&r.ID, &r.Intent, &r.Theorem, &verified, &r.Steps, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Verified = verified != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Export returns one run with its full iteration series.
func (s *Store) Export(runID string) (*RunExport, error) {
	var export RunExport
	var verified int
	err := s.db.QueryRow(
		`SELECT id, intent, COALESCE(theorem, ''), verified, steps, started_at, COALESCE(finished_at, '')
		 FROM runs WHERE id = ?`, runID,
	).Scan(&export.ID, &export.Intent, &export.Theorem, &verified, &export.Steps, &export.StartedAt, &export.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", runID, err)
	}
	export.Verified = verified != 0

	rows, err := s.db.Query(
		`SELECT step, status, COALESCE(summary, ''), potential
		 FROM iterations WHERE run_id = ? ORDER BY step`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying iterations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it IterationRecord
		if err := rows.Scan(&it.Step, &it.Status, &it.Summary, &it.Potential); err != nil {
			return nil, fmt.Errorf("scanning iteration row: %w", err)
		}
		export.Iterations = append(export.Iterations, it)
	}
	return &export, rows.Err()
}
