// Package queue provides the persistent task queue and its lifecycle model.
package queue

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

const (
	// MinPriority and MaxPriority bound the priority scale; 5 is highest.
	MinPriority = 1
	MaxPriority = 5

	// DefaultPriority is assigned when the caller passes zero.
	DefaultPriority = 3
)

// ClampPriority forces p into the [MinPriority, MaxPriority] range.
// Zero means "unset" and maps to DefaultPriority.
func ClampPriority(p int) int {
	if p == 0 {
		return DefaultPriority
	}
	if p < MinPriority {
		return MinPriority
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

// ActionResult records the outcome of one action performed by the executor.
type ActionResult struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ExecutionResult is the payload an Executor reports on success. The queue
// stores and displays it but never inspects it beyond ActionsExecuted.
type ExecutionResult struct {
	Response        string         `json:"response,omitempty"`
	ActionsExecuted int            `json:"actions_executed"`
	Results         []ActionResult `json:"results,omitempty"`
	FinishedAt      time.Time      `json:"finished_at"`
}

// Task is one queued unit of work. JSON field names follow the on-disk
// record schema; new fields must stay optional so older records still parse.
type Task struct {
	ID          string           `json:"id"`
	Description string           `json:"task"`
	Priority    int              `json:"priority"`
	Tags        []string         `json:"tags,omitempty"`
	Notes       string           `json:"description,omitempty"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Attempts    int              `json:"attempts"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	FailedAt    *time.Time       `json:"failed_at,omitempty"`
	LastError   string           `json:"last_error,omitempty"`
	Result      *ExecutionResult `json:"execution_result,omitempty"`
}

// Clone returns a deep copy so callers can hold a snapshot across store writes.
func (t *Task) Clone() *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		c.StartedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	if t.FailedAt != nil {
		ts := *t.FailedAt
		c.FailedAt = &ts
	}
	if t.Result != nil {
		r := *t.Result
		if t.Result.Results != nil {
			r.Results = append([]ActionResult(nil), t.Result.Results...)
		}
		c.Result = &r
	}
	return &c
}

// GenerateTaskID creates a unique task identifier.
func GenerateTaskID() string {
	u := uuid.New().String()
	return "task_" + strings.ReplaceAll(u[:8], "-", "")
}
