// Package history provides the SQLite archive of completed pipeline runs.
// It is a post-run transcript store for the history command; no run ever
// resumes from it.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mull-cli/mull/internal/decision"
)

// RunStatus is the terminal status of an archived run.
type RunStatus string

const (
	RunDone   RunStatus = "done"
	RunFailed RunStatus = "failed"
)

// Record is one archived run.
type Record struct {
	ID           string               `json:"id"`
	Input        string               `json:"input"`
	Clarified    string               `json:"clarified"`
	Options      []string             `json:"options"`
	Assumptions  []decision.Assumption `json:"assumptions"`
	Synthesis    string               `json:"synthesis"`
	Status       RunStatus            `json:"status"`
	FailureStage string               `json:"failure_stage,omitempty"`
	InputTokens  int64                `json:"input_tokens"`
	OutputTokens int64                `json:"output_tokens"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
}

// NewRecord builds a record from a finished (or partially finished) run.
// failureStage is empty for successful runs.
func NewRecord(st *decision.State, failureStage string, inputTok, outputTok int64, startedAt time.Time) Record {
	status := RunDone
	if failureStage != "" {
		status = RunFailed
	}
	return Record{
		ID:           uuid.New().String(),
		Input:        st.OriginalInput(),
		Clarified:    st.ClarifiedQuestion(),
		Options:      st.ExploredOptions(),
		Assumptions:  st.ChallengedAssumptions(),
		Synthesis:    st.Synthesis(),
		Status:       status,
		FailureStage: failureStage,
		InputTokens:  inputTok,
		OutputTokens: outputTok,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
	}
}

// DB wraps an SQLite database connection holding run transcripts.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens an SQLite database at the given path, creating parent
// directories if needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	input         TEXT NOT NULL,
	clarified     TEXT NOT NULL DEFAULT '',
	options       TEXT NOT NULL DEFAULT '[]',
	assumptions   TEXT NOT NULL DEFAULT '[]',
	synthesis     TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	failure_stage TEXT NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate history schema: %w", err)
	}
	return nil
}

// SaveRun archives one run transcript.
func (db *DB) SaveRun(rec Record) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	options, err := json.Marshal(rec.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	assumptions, err := json.Marshal(rec.Assumptions)
	if err != nil {
		return fmt.Errorf("marshal assumptions: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO runs (id, input, clarified, options, assumptions, synthesis,
			status, failure_stage, input_tokens, output_tokens, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Input, rec.Clarified, string(options), string(assumptions),
		rec.Synthesis, string(rec.Status), rec.FailureStage,
		rec.InputTokens, rec.OutputTokens, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(`
		SELECT id, input, clarified, options, assumptions, synthesis,
			status, failure_stage, input_tokens, output_tokens, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns one archived run by ID, or by unambiguous ID prefix.
func (db *DB) GetRun(id string) (*Record, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, input, clarified, options, assumptions, synthesis,
			status, failure_stage, input_tokens, output_tokens, started_at, finished_at
		FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("run prefix %s is ambiguous", id)
	}
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var options, assumptions, status string
	if err := rows.Scan(&rec.ID, &rec.Input, &rec.Clarified, &options, &assumptions,
		&rec.Synthesis, &status, &rec.FailureStage,
		&rec.InputTokens, &rec.OutputTokens, &rec.StartedAt, &rec.FinishedAt); err != nil {
		return Record{}, fmt.Errorf("scan run: %w", err)
	}
	rec.Status = RunStatus(status)
	if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
		return Record{}, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal([]byte(assumptions), &rec.Assumptions); err != nil {
		return Record{}, fmt.Errorf("unmarshal assumptions: %w", err)
	}
	return rec, nil
}
