// Package heartbeat provides liveness detection for the autonomous loop.
package heartbeat

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Status represents the liveness state of the loop.
type Status string

const (
	StatusAlive Status = "alive"
	StatusStale Status = "stale"
	StatusDead  Status = "dead"
)

// Heartbeat is the data written to the heartbeat file.
type Heartbeat struct {
	PID       int       `json:"pid"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Interval  string    `json:"interval"`
}

// Writer records loop liveness to a file. It is beat-driven: the poll loop
// calls Beat once per cycle, so the file's age directly reflects whether the
// loop is still cycling.
type Writer struct {
	path     string
	interval time.Duration

	mu      sync.Mutex
	started time.Time
}

// NewWriter creates a heartbeat writer. interval is the loop's poll interval,
// recorded in the file so readers can judge staleness.
func NewWriter(path string, interval time.Duration) *Writer {
	return &Writer{path: path, interval: interval}
}

// Beat writes the heartbeat file. Write failures are swallowed; liveness
// reporting must never interrupt the loop.
func (w *Writer) Beat(state string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started.IsZero() {
		w.started = time.Now()
	}

	hb := Heartbeat{
		PID:       os.Getpid(),
		State:     state,
		StartedAt: w.started,
		Timestamp: time.Now(),
		Uptime:    time.Since(w.started).Truncate(time.Second).String(),
		Interval:  w.interval.String(),
	}

	data, err := json.MarshalIndent(hb, "", "  ")
	if err != nil {
		return
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	os.Rename(tmp, w.path)
}

// Stop removes the heartbeat file so readers see a clean shutdown.
func (w *Writer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	os.Remove(w.path)
}

// Check reads a heartbeat file and returns the liveness status.
// maxAge determines how old a heartbeat can be before it's considered stale.
func Check(path string, maxAge time.Duration) (Status, *Heartbeat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusDead, nil, nil
		}
		return StatusDead, nil, fmt.Errorf("read heartbeat: %w", err)
	}

	var hb Heartbeat
	if err := json.Unmarshal(data, &hb); err != nil {
		return StatusDead, nil, fmt.Errorf("unmarshal heartbeat: %w", err)
	}

	age := time.Since(hb.Timestamp)
	if age > maxAge {
		return StatusStale, &hb, nil
	}

	return StatusAlive, &hb, nil
}
