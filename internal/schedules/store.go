package schedules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrScheduleNotFound is returned for operations on unknown schedule ids.
var ErrScheduleNotFound = errors.New("schedule not found")

// FileStore persists schedule entries in a single JSON file, rewritten
// atomically on every mutation.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Create validates the cron expression, assigns an id, and persists the entry.
func (s *FileStore) Create(entry *Entry) error {
	if _, err := ParseCron(entry.CronSpec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = GenerateScheduleID()
	}
	entry.CreatedAt = time.Now()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.save(entries)
}

// Get reads one entry by id.
func (s *FileStore) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrScheduleNotFound
}

// Update rewrites an existing entry.
func (s *FileStore) Update(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == entry.ID {
			entries[i] = entry
			return s.save(entries)
		}
	}
	return ErrScheduleNotFound
}

// Delete removes an entry by id.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrScheduleNotFound
	}
	return s.save(kept)
}

// List returns all entries, newest first.
func (s *FileStore) List() ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *FileStore) load() ([]*Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schedules: %w", err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create schedules dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write schedules tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename schedules: %w", err)
	}
	return nil
}
