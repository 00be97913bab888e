package config

import (
	"os"
	"path/filepath"
)

// TaskerPath returns the root directory for tasker data.
// It uses $TASKER_PATH if set, otherwise defaults to ~/.tasker.
func TaskerPath() string {
	if v := os.Getenv("TASKER_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tasker")
	}
	return filepath.Join(home, ".tasker")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(TaskerPath(), "config.jsonc")
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(TaskerPath(), ".env")
}

// QueuePath returns the path to the task queue log.
func QueuePath() string {
	return filepath.Join(TaskerPath(), "queue.jsonl")
}

// ArchivePath returns the path to the completed-task archive database.
func ArchivePath() string {
	return filepath.Join(TaskerPath(), "archive.db")
}

// SchedulesPath returns the path to the schedules file.
func SchedulesPath() string {
	return filepath.Join(TaskerPath(), "schedules.json")
}

// HeartbeatPath returns the path to the loop heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(TaskerPath(), "heartbeat.json")
}

// ExecLogPath returns the path to the execution audit log.
func ExecLogPath() string {
	return filepath.Join(TaskerPath(), "execution.jsonl")
}
