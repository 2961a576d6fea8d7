// Package storage provides SQLite-based persistence for finished harvest runs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Outcome values stored for a finished run.
const (
	OutcomeWin      = "win"
	OutcomeGameOver = "game_over"
)

// ErrInvalidRun is returned by SaveRun for rows that cannot describe a finished run.
var ErrInvalidRun = errors.New("storage: invalid run")

// Store manages the SQLite database connection for the results ledger.
type Store struct {
	db *sql.DB
}

// Run is one finished run: the state of the session when it reached GAME_OVER or WIN.
type Run struct {
	ID        int64
	Outcome   string // OutcomeWin or OutcomeGameOver
	Level     int    // Level the run ended on
	Score     int    // Player score on that level
	AIScore   int    // Competitor score on that level
	Harvested int    // Player points across all levels
	Duration  int    // Simulated seconds played
	CreatedAt time.Time
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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			outcome TEXT NOT NULL,
			level INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			ai_score INTEGER NOT NULL DEFAULT 0,
			harvested INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(harvested DESC, level DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
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

// SaveRun records a finished run and returns the ID of the inserted record.
func (s *Store) SaveRun(run Run) (int64, error) {
	if run.Outcome != OutcomeWin && run.Outcome != OutcomeGameOver {
		return 0, fmt.Errorf("%w: unknown outcome %q", ErrInvalidRun, run.Outcome)
	}
	if run.Level < 1 || run.Score < 0 || run.AIScore < 0 || run.Harvested < 0 {
		return 0, fmt.Errorf("%w: level %d, scores %d/%d, harvested %d",
			ErrInvalidRun, run.Level, run.Score, run.AIScore, run.Harvested)
	}

	result, err := s.db.Exec(
		`INSERT INTO runs (outcome, level, score, ai_score, harvested, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Outcome, run.Level, run.Score, run.AIScore, run.Harvested, run.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, outcome, level, score, ai_score, harvested, duration_secs, created_at`

// TopRuns retrieves the best N runs: most points harvested, then furthest level,
// then fastest.
func (s *Store) TopRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY harvested DESC, level DESC, duration_secs ASC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RecentRuns retrieves the most recently recorded runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query recent runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Outcome, &r.Level, &r.Score, &r.AIScore, &r.Harvested, &r.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// BestHarvest returns the most points harvested in a single run.
// Returns 0 if no runs exist.
func (s *Store) BestHarvest() (int, error) {
	var best sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(harvested) FROM runs").Scan(&best); err != nil {
		return 0, fmt.Errorf("storage: cannot query best harvest: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return int(best.Int64), nil
}

// ClearRuns deletes all recorded runs.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// RunStats contains aggregated statistics over all runs.
type RunStats struct {
	Runs          int
	Wins          int
	BestHarvest   int
	AvgHarvest    float64
	TotalSeconds  int64
	FurthestLevel int
	LastPlayed    time.Time
}

// Stats retrieves aggregated statistics over all recorded runs.
func (s *Store) Stats() (*RunStats, error) {
	stats := &RunStats{}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(harvested), 0),
		        COALESCE(AVG(harvested), 0),
		        COALESCE(SUM(duration_secs), 0),
		        COALESCE(MAX(level), 0),
		        MAX(created_at)
		 FROM runs`,
		OutcomeWin,
	).Scan(&stats.Runs, &stats.Wins, &stats.BestHarvest, &stats.AvgHarvest,
		&stats.TotalSeconds, &stats.FurthestLevel, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}
