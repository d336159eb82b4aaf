// Package storage provides SQLite-based persistence for recorded runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// RunRecord is the summary of one recorded mission.
type RunRecord struct {
	ID            string // ULID, assigned by SaveRun when empty
	Seed          int64
	Turns         int
	Preset        string
	Mission       string // IN_PROGRESS, EXTRACTED or FAILED
	FailureReason string
	Power         int
	FinalHash     string
	CatalogDigest string
	ArtifactPath  string
	CreatedAt     time.Time
}

// RunStats aggregates the run history.
type RunStats struct {
	Runs      int
	Extracted int
	Failed    int
	AvgTurns  float64
	LastRun   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			preset TEXT NOT NULL DEFAULT '',
			mission TEXT NOT NULL,
			failure_reason TEXT,
			power INTEGER NOT NULL DEFAULT 0,
			final_hash TEXT NOT NULL,
			catalog_digest TEXT NOT NULL DEFAULT '',
			artifact_path TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS turn_hashes (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			turn INTEGER NOT NULL,
			hash TEXT NOT NULL,
			PRIMARY KEY (run_id, turn)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores a run and its per-turn state hashes in one transaction.
// Returns the run id.
func (s *Store) SaveRun(run RunRecord, turnHashes []string) (string, error) {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs
		 (run_id, seed, turns, preset, mission, failure_reason, power, final_hash, catalog_digest, artifact_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Seed,
		run.Turns,
		run.Preset,
		run.Mission,
		nullString(run.FailureReason),
		run.Power,
		run.FinalHash,
		run.CatalogDigest,
		nullString(run.ArtifactPath),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO turn_hashes (run_id, turn, hash) VALUES (?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("storage: cannot prepare turn hashes: %w", err)
	}
	defer stmt.Close()
	for i, h := range turnHashes {
		if _, err := stmt.Exec(run.ID, i+1, h); err != nil {
			return "", fmt.Errorf("storage: cannot save turn %d hash: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `run_id, seed, turns, preset, mission, failure_reason, power,
		        final_hash, catalog_digest, artifact_path, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var r RunRecord
	var failure, artifact sql.NullString
	var createdAt any
	err := row.Scan(
		&r.ID,
		&r.Seed,
		&r.Turns,
		&r.Preset,
		&r.Mission,
		&failure,
		&r.Power,
		&r.FinalHash,
		&r.CatalogDigest,
		&artifact,
		&createdAt,
	)
	if err != nil {
		return r, err
	}
	r.FailureReason = failure.String
	r.ArtifactPath = artifact.String
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// Run retrieves a run by id. Returns nil when it does not exist.
func (s *Store) Run(id string) (*RunRecord, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE run_id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, run_id DESC
		 LIMIT ?`,
		limit,
	)
}

// RunsBySeed retrieves every run recorded for a seed, newest first.
func (s *Store) RunsBySeed(seed int64) ([]RunRecord, error) {
	return s.queryRuns(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE seed = ?
		 ORDER BY created_at DESC, run_id DESC`,
		seed,
	)
}

func (s *Store) queryRuns(query string, args ...any) ([]RunRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// TurnHashes returns the stored state hashes of a run in turn order.
func (s *Store) TurnHashes(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT hash FROM turn_hashes WHERE run_id = ? ORDER BY turn`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query turn hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return hashes, nil
}

// Stats retrieves aggregated statistics over all runs.
func (s *Store) Stats() (*RunStats, error) {
	stats := &RunStats{}
	var lastRun any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(mission = 'EXTRACTED'), 0),
		        COALESCE(SUM(mission = 'FAILED'), 0),
		        COALESCE(AVG(turns), 0),
		        MAX(created_at)
		 FROM runs`,
	).Scan(&stats.Runs, &stats.Extracted, &stats.Failed, &stats.AvgTurns, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)
	return stats, nil
}

// ClearRuns deletes every stored run and its turn hashes.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM turn_hashes"); err != nil {
		return fmt.Errorf("storage: cannot clear turn hashes: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTime handles both time.Time and the string form SQLite returns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
