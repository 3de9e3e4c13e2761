// Package journal records sync runs in a local SQLite database.
//
// Uploads are not transactional across chunks: a transport failure leaves
// earlier chunks committed on the service. The journal exists so an operator
// can see, after the fact, which files were touched and which chunks were
// actually sent in each run before re-running.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Journal is an append-only record of sync runs. It implements the sync
// package's RunLog interface once a run has been started.
type Journal struct {
	conn  *sql.DB
	path  string
	runID int64
}

// Open creates or opens the journal database at path. The caller must call
// Close when done.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	j := &Journal{conn: conn, path: path}
	if err := j.initSchema(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		project    TEXT NOT NULL,
		dry_run    INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_at   TEXT,
		status     TEXT
	);

	CREATE TABLE IF NOT EXISTS files (
		run_id     INTEGER NOT NULL REFERENCES runs(id),
		name       TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		detail     TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		run_id     INTEGER NOT NULL REFERENCES runs(id),
		chunk_idx  INTEGER NOT NULL,
		size       INTEGER NOT NULL,
		dry_run    INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_run ON chunks(run_id);
	`
	if _, err := j.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// BeginRun opens a new run record. Must be called before RecordFile or
// RecordChunk.
func (j *Journal) BeginRun(project string, dryRun bool) error {
	res, err := j.conn.Exec(
		"INSERT INTO runs (project, dry_run, started_at) VALUES (?, ?, ?)",
		project, boolInt(dryRun), now())
	if err != nil {
		return fmt.Errorf("failed to begin run: %w", err)
	}
	j.runID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	return nil
}

// RecordFile records the outcome of one script file in the current run.
func (j *Journal) RecordFile(name, outcome, detail string) error {
	if j.runID == 0 {
		return fmt.Errorf("no run in progress")
	}
	_, err := j.conn.Exec(
		"INSERT INTO files (run_id, name, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		j.runID, name, outcome, detail, now())
	if err != nil {
		return fmt.Errorf("failed to record file outcome: %w", err)
	}
	return nil
}

// RecordChunk records one submitted (or dry-run) upload chunk.
func (j *Journal) RecordChunk(index, size int, dryRun bool) error {
	if j.runID == 0 {
		return fmt.Errorf("no run in progress")
	}
	_, err := j.conn.Exec(
		"INSERT INTO chunks (run_id, chunk_idx, size, dry_run, created_at) VALUES (?, ?, ?, ?, ?)",
		j.runID, index, size, boolInt(dryRun), now())
	if err != nil {
		return fmt.Errorf("failed to record chunk: %w", err)
	}
	return nil
}

// FinishRun closes the current run with a final status ("ok", "aborted",
// "failed").
func (j *Journal) FinishRun(status string) error {
	if j.runID == 0 {
		return fmt.Errorf("no run in progress")
	}
	_, err := j.conn.Exec(
		"UPDATE runs SET ended_at = ?, status = ? WHERE id = ?",
		now(), status, j.runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	j.runID = 0
	return nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.conn == nil {
		return nil
	}
	if err := j.conn.Close(); err != nil {
		return fmt.Errorf("failed to close journal database: %w", err)
	}
	j.conn = nil
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
