// Package storage holds auxiliary on-disk records that are not the task
// queue itself.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pmorel/tasker/internal/events"
)

// ExecLogger persists every bus event to a single JSONL audit log, giving a
// replayable record of what the system did while running unattended.
type ExecLogger struct {
	mu          sync.Mutex
	path        string
	unsubscribe func()
}

// NewExecLogger subscribes to all bus events and appends them to path.
func NewExecLogger(path string, bus *events.Bus) *ExecLogger {
	el := &ExecLogger{path: path}
	el.unsubscribe = bus.Subscribe(el.handleEvent)
	return el
}

// Close unsubscribes the logger from the event bus.
func (el *ExecLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *ExecLogger) handleEvent(e events.Event) {
	_ = el.writeEvent(e)
}

func (el *ExecLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(el.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(el.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
