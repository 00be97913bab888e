package heartbeat

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBeatAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	w := NewWriter(path, 30*time.Second)

	w.Beat("polling")

	status, hb, err := Check(path, time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusAlive {
		t.Errorf("status: got %q, want %q", status, StatusAlive)
	}
	if hb == nil || hb.PID != os.Getpid() {
		t.Errorf("heartbeat: %+v", hb)
	}
	if hb.State != "polling" {
		t.Errorf("State: got %q", hb.State)
	}
	if hb.Interval != "30s" {
		t.Errorf("Interval: got %q", hb.Interval)
	}
}

func TestCheckMissingFile(t *testing.T) {
	status, hb, err := Check(filepath.Join(t.TempDir(), "absent.json"), time.Minute)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusDead || hb != nil {
		t.Errorf("got %q, %+v", status, hb)
	}
}

func TestCheckStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	w := NewWriter(path, time.Second)
	w.Beat("polling")

	time.Sleep(30 * time.Millisecond)

	status, hb, err := Check(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != StatusStale {
		t.Errorf("status: got %q, want %q", status, StatusStale)
	}
	if hb == nil {
		t.Error("stale check should still return the record")
	}
}

func TestStopRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.json")
	w := NewWriter(path, time.Second)
	w.Beat("polling")
	w.Stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("heartbeat file still present: %v", err)
	}
}
