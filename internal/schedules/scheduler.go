package schedules

import (
	"context"
	"log/slog"
	"time"

	"github.com/pmorel/tasker/internal/events"
	"github.com/pmorel/tasker/internal/queue"
)

// Scheduler checks the schedule store once a minute and enqueues a task for
// every entry whose cron expression matches.
type Scheduler struct {
	store *FileStore
	queue queue.Store
	bus   *events.Bus
}

func NewScheduler(store *FileStore, q queue.Store, bus *events.Bus) *Scheduler {
	return &Scheduler{store: store, queue: q, bus: bus}
}

// Run ticks every minute until the context is cancelled. Store errors are
// logged and retried next minute; schedules are auxiliary and must never
// take the main loop down.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("schedule loop started")
	defer slog.Info("schedule loop stopped")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Check(now)
		}
	}
}

// Check triggers every entry due at now. Exposed so one sweep can be driven
// directly.
func (s *Scheduler) Check(now time.Time) {
	entries, err := s.store.List()
	if err != nil {
		slog.Warn("list schedules", "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		expr, err := ParseCron(entry.CronSpec)
		if err != nil {
			slog.Warn("invalid cron in stored schedule", "schedule_id", entry.ID, "error", err)
			continue
		}
		if !expr.Matches(now) {
			continue
		}
		// Guard against double-firing when two sweeps land in one minute.
		if entry.LastRunAt != nil && now.Sub(*entry.LastRunAt) < time.Minute {
			continue
		}

		s.trigger(entry, now)
	}
}

func (s *Scheduler) trigger(entry *Entry, now time.Time) {
	tmpl := entry.Template
	task, err := s.queue.Add(tmpl.Description, tmpl.Priority, tmpl.Tags, tmpl.Notes)
	if err != nil {
		slog.Error("enqueue scheduled task", "schedule_id", entry.ID, "error", err)
		return
	}

	entry.RunCount++
	entry.LastRunAt = &now
	if entry.MaxRuns > 0 && entry.RunCount >= entry.MaxRuns {
		entry.Enabled = false
		slog.Info("schedule reached max runs, disabled", "schedule_id", entry.ID, "runs", entry.RunCount)
	}
	if err := s.store.Update(entry); err != nil {
		slog.Warn("update schedule after trigger", "schedule_id", entry.ID, "error", err)
	}

	if s.bus != nil {
		s.bus.Publish(events.NewTypedEvent(events.SourceSchedules, events.ScheduleTriggerPayload{
			ScheduleID: entry.ID,
			TaskID:     task.ID,
		}))
	}

	slog.Info("schedule triggered", "schedule_id", entry.ID, "task_id", task.ID)
}
