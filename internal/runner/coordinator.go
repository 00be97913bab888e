// Package runner drives task execution: the Coordinator runs a single task
// through its lifecycle, and the PollLoop repeatedly picks the next pending
// task and hands it to the Coordinator.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pmorel/tasker/internal/events"
	"github.com/pmorel/tasker/internal/queue"
)

// ErrNotPending is returned when Run is asked to execute a task that is not
// in the pending state.
var ErrNotPending = errors.New("task is not pending")

// Executor produces an execution result for a task. A returned error means
// the attempt failed; action-level failures live inside the result.
type Executor interface {
	Execute(ctx context.Context, t *queue.Task) (*queue.ExecutionResult, error)
}

// Outcome reports how a single execution attempt ended.
type Outcome struct {
	Success bool
	Task    *queue.Task
	Err     error
}

// Coordinator moves one task at a time through pending → in_progress →
// completed/failed, persisting every transition before and after execution.
type Coordinator struct {
	store queue.Store
	exec  Executor
	bus   *events.Bus
}

func NewCoordinator(store queue.Store, exec Executor, bus *events.Bus) *Coordinator {
	return &Coordinator{store: store, exec: exec, bus: bus}
}

// Run executes a single task. The in_progress transition is persisted before
// the executor starts, so a crash mid-execution leaves an honest record. The
// returned error covers store failures only; an execution failure is a
// successful Run with Outcome.Success=false and the task marked failed.
func (c *Coordinator) Run(ctx context.Context, t *queue.Task) (*Outcome, error) {
	if t.Status != queue.StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, t.ID, t.Status)
	}

	started, err := c.store.UpdateStatus(t.ID, queue.StatusInProgress, queue.StatusFields{AttemptDelta: 1})
	if err != nil {
		return nil, fmt.Errorf("mark in_progress: %w", err)
	}

	c.publish(events.TaskStartedPayload{TaskID: started.ID, Attempt: started.Attempts})
	slog.Info("executing task", "task_id", started.ID, "attempt", started.Attempts, "priority", started.Priority)

	begin := time.Now()
	result, execErr := c.exec.Execute(ctx, started)
	if execErr != nil {
		failed, err := c.store.UpdateStatus(t.ID, queue.StatusFailed, queue.StatusFields{LastError: execErr.Error()})
		if err != nil {
			return nil, fmt.Errorf("mark failed: %w", err)
		}
		c.publish(events.TaskFailedPayload{TaskID: failed.ID, Error: failed.LastError, Attempts: failed.Attempts})
		slog.Warn("task failed", "task_id", failed.ID, "attempts", failed.Attempts, "error", execErr)
		return &Outcome{Success: false, Task: failed, Err: execErr}, nil
	}

	completed, err := c.store.UpdateStatus(t.ID, queue.StatusCompleted, queue.StatusFields{Result: result})
	if err != nil {
		return nil, fmt.Errorf("mark completed: %w", err)
	}
	c.publish(events.TaskCompletedPayload{
		TaskID:          completed.ID,
		ActionsExecuted: result.ActionsExecuted,
		Duration:        time.Since(begin),
	})
	slog.Info("task completed", "task_id", completed.ID, "actions", result.ActionsExecuted, "duration", time.Since(begin))
	return &Outcome{Success: true, Task: completed}, nil
}

func (c *Coordinator) publish(payload events.EventPayload) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.NewTypedEvent(events.SourceRunner, payload))
}
