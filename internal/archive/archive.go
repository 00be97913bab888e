// Package archive stores completed tasks in a SQLite database, keeping the
// live queue file small while preserving full history.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pmorel/tasker/internal/queue"
)

// timeLayout is fixed-width so stored UTC timestamps order lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS completed_tasks (
	id           TEXT PRIMARY KEY,
	completed_at TEXT NOT NULL,
	record       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completed_at ON completed_tasks (completed_at);
`

// Archive is a SQLite-backed store of completed task records.
type Archive struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Archive inserts a completed task. Re-archiving the same id overwrites the
// previous row, so a re-run task keeps its latest record.
func (a *Archive) Archive(t *queue.Task) error {
	record, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal archived task: %w", err)
	}

	completedAt := time.Now()
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}

	_, err = a.db.Exec(
		`INSERT INTO completed_tasks (id, completed_at, record) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET completed_at = excluded.completed_at, record = excluded.record`,
		t.ID, completedAt.UTC().Format(timeLayout), string(record),
	)
	if err != nil {
		return fmt.Errorf("insert archived task: %w", err)
	}
	return nil
}

// List returns the most recently completed tasks, newest first.
func (a *Archive) List(limit int) ([]*queue.Task, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.Query(
		`SELECT record FROM completed_tasks ORDER BY completed_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var tasks []*queue.Task
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		var t queue.Task
		if err := json.Unmarshal([]byte(record), &t); err != nil {
			return nil, fmt.Errorf("decode archived task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// CompletedToday counts tasks completed since local midnight.
func (a *Archive) CompletedToday(now time.Time) (int, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var n int
	err := a.db.QueryRow(
		`SELECT COUNT(*) FROM completed_tasks WHERE completed_at >= ?`,
		midnight.UTC().Format(timeLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count archive: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

var _ queue.Archiver = (*Archive)(nil)
