// Package schedules creates queue tasks on a recurring cron schedule.
package schedules

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template defines the task enqueued on each trigger.
type Template struct {
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Entry is one recurring schedule.
type Entry struct {
	ID        string     `json:"id"`
	CronSpec  string     `json:"cron_spec"`
	Template  Template   `json:"template"`
	Enabled   bool       `json:"enabled"`
	MaxRuns   int        `json:"max_runs,omitempty"`
	RunCount  int        `json:"run_count"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GenerateScheduleID creates a unique schedule identifier with "sched_" prefix.
func GenerateScheduleID() string {
	u := uuid.New().String()
	return "sched_" + strings.ReplaceAll(u[:8], "-", "")
}
