package queue

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore persists tasks as a JSONL append log. Every read replays the log
// into memory; every mutation rewrites the full log to a temp file and
// atomically renames it over the old one, so a crash mid-write never loses
// the previous consistent state.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	archiver Archiver
}

// NewFileStore creates a FileStore backed by the JSONL file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SetArchiver configures the archive that receives completed tasks.
func (s *FileStore) SetArchiver(a Archiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiver = a
}

// Add validates and appends a new pending record, returning the stored task.
func (s *FileStore) Add(description string, priority int, tags []string, notes string) (*Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}

	t := &Task{
		ID:          GenerateTaskID(),
		Description: description,
		Priority:    ClampPriority(priority),
		Tags:        tags,
		Notes:       notes,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(t); err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// List returns tasks matching the filter, newest CreatedAt first. An empty
// filter status means no filter; an unknown one is a validation error.
func (s *FileStore) List(filter ListFilter) ([]*Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidStatus(filter.Status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	var tasks []*Task
	for _, t := range all {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// Get reads a single task by id.
func (s *FileStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateStatus overwrites a record's status, stamps the matching timestamp,
// merges the supplied fields, and on completion duplicates the record into
// the archive.
func (s *FileStore) UpdateStatus(id string, status Status, fields StatusFields) (*Task, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	var updated *Task
	for _, t := range all {
		if t.ID != id {
			continue
		}
		applyStatus(t, status, fields)
		updated = t
		break
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if err := s.save(all); err != nil {
		return nil, err
	}

	if status == StatusCompleted && s.archiver != nil {
		// Best effort: a broken archive must not take the live queue down.
		if err := s.archiver.Archive(updated.Clone()); err != nil {
			slog.Warn("archive completed task", "task_id", id, "error", err)
		}
	}

	return updated.Clone(), nil
}

// Delete removes a record in any status. The second delete of the same id
// returns false without error.
func (s *FileStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return false, err
	}

	kept := all[:0]
	found := false
	for _, t := range all {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Counts tallies the live queue by status.
func (s *FileStore) Counts() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.load()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, t := range all {
		switch t.Status {
		case StatusPending:
			st.Pending++
		case StatusInProgress:
			st.InProgress++
		case StatusCompleted:
			st.Completed++
		case StatusFailed:
			st.Failed++
		}
	}
	st.Total = len(all)
	return st, nil
}

// applyStatus is the single place lifecycle fields are written. Exactly the
// timestamp matching the new status survives, keeping records consistent
// even across manual status edits.
func applyStatus(t *Task, status Status, fields StatusFields) {
	now := time.Now()
	t.Status = status
	t.Attempts += fields.AttemptDelta

	switch status {
	case StatusPending:
		t.StartedAt = nil
		t.CompletedAt = nil
		t.FailedAt = nil
		t.LastError = ""
		t.Result = nil
	case StatusInProgress:
		t.StartedAt = &now
		t.CompletedAt = nil
		t.FailedAt = nil
		t.LastError = ""
		t.Result = nil
	case StatusCompleted:
		t.CompletedAt = &now
		t.FailedAt = nil
		t.LastError = ""
		t.Result = fields.Result
	case StatusFailed:
		t.FailedAt = &now
		t.CompletedAt = nil
		t.LastError = fields.LastError
		t.Result = nil
	}
}

// load replays the JSONL log. Unparsable lines are skipped and logged so one
// bad record never makes the whole queue unreadable.
func (s *FileStore) load() ([]*Task, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open queue: %w", err)
	}
	defer f.Close()

	var tasks []*Task
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var t Task
		if err := json.Unmarshal(line, &t); err != nil {
			slog.Warn("skipping corrupt queue record", "line", lineNo, "error", err)
			continue
		}
		tasks = append(tasks, &t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan queue: %w", err)
	}
	return tasks, nil
}

// append adds one record to the end of the log without rewriting it.
func (s *FileStore) append(t *Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append queue: %w", err)
	}
	return nil
}

// save rewrites the whole log atomically via temp file + rename.
func (s *FileStore) save(tasks []*Task) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}

	var buf strings.Builder
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task %s: %w", t.ID, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write queue tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename queue: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
