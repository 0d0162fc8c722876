package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamcutter/imgrip/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    family      TEXT NOT NULL,
    output_dir  TEXT NOT NULL DEFAULT '',
    succeeded   INTEGER NOT NULL DEFAULT 0,
    total       INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    started_at  TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

const timeLayout = time.RFC3339Nano

// SQLiteState keeps one row per routed file.
type SQLiteState struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

func NewSQLite(dbPath string) (*SQLiteState, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteState{db: db, dbPath: dbPath}, nil
}

func (s *SQLiteState) Record(report domain.Report) error {
	if report.Job.ID == "" {
		return fmt.Errorf("record %s: missing job id", report.Job.SourcePath)
	}

	var errText string
	if report.Err != nil {
		errText = report.Err.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO runs
		(id, source, family, output_dir, succeeded, total, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Job.ID, report.Job.SourcePath, string(report.Job.Family), report.Job.OutputDir,
		report.Tally.Succeeded, report.Tally.Total, errText,
		report.StartedAt.UTC().Format(timeLayout), report.FinishedAt.UTC().Format(timeLayout))
	return err
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *SQLiteState) Recent(limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recent(limit)
}

func (s *SQLiteState) recent(limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, source, family, output_dir, succeeded, total, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var run domain.Run
		var family, startedAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.Source, &family, &run.OutputDir,
			&run.Succeeded, &run.Total, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, err
		}

		run.Family = domain.Family(family)
		run.StartedAt, _ = time.Parse(timeLayout, startedAt)
		run.FinishedAt, _ = time.Parse(timeLayout, finishedAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ExportJSON writes the most recent runs to w as an indented JSON array.
func (s *SQLiteState) ExportJSON(w io.Writer, limit int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs, err := s.recent(limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []domain.Run{}
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Clear removes every recorded run.
func (s *SQLiteState) Clear() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM runs")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteState) Close() error {
	return s.db.Close()
}

func (s *SQLiteState) Path() string {
	return s.dbPath
}
