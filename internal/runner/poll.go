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

// DefaultPollInterval is how often the loop checks for pending work when no
// interval is configured.
const DefaultPollInterval = 30 * time.Second

// Heartbeat receives a liveness signal on every poll cycle.
type Heartbeat interface {
	Beat(state string)
}

// PollLoop runs tasks one at a time: on every tick it picks the single best
// pending task, runs it to completion, and goes back to sleep. One worker
// means at most one task is ever in_progress.
type PollLoop struct {
	store       queue.Store
	coordinator *Coordinator
	bus         *events.Bus
	interval    time.Duration
	heartbeat   Heartbeat
}

func NewPollLoop(store queue.Store, coordinator *Coordinator, bus *events.Bus, interval time.Duration) *PollLoop {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollLoop{
		store:       store,
		coordinator: coordinator,
		bus:         bus,
		interval:    interval,
	}
}

// SetHeartbeat attaches a liveness writer, called once per cycle.
func (l *PollLoop) SetHeartbeat(hb Heartbeat) {
	l.heartbeat = hb
}

// Run polls until the context is cancelled. Individual task failures keep
// the loop going; a store error is fatal because every subsequent cycle
// would hit it too.
func (l *PollLoop) Run(ctx context.Context) error {
	slog.Info("poll loop started", "interval", l.interval)
	if l.bus != nil {
		l.bus.Publish(events.NewEvent(events.EventLoopStarted, events.SourceRunner, map[string]any{
			"interval": l.interval.String(),
		}))
	}
	defer func() {
		slog.Info("poll loop stopped")
		if l.bus != nil {
			l.bus.Publish(events.NewEvent(events.EventLoopStopped, events.SourceRunner, nil))
		}
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// The loop starts idle; the first cycle runs after one full interval.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := l.cycle(ctx); err != nil {
			return err
		}
	}
}

// RunOnce executes the single best pending task, if any. Returns the outcome
// or nil when the queue has no pending work.
func (l *PollLoop) RunOnce(ctx context.Context) (*Outcome, error) {
	next, err := queue.Next(l.store)
	if err != nil {
		return nil, fmt.Errorf("pick next task: %w", err)
	}
	if next == nil {
		return nil, nil
	}
	return l.coordinator.Run(ctx, next)
}

func (l *PollLoop) cycle(ctx context.Context) error {
	if l.heartbeat != nil {
		l.heartbeat.Beat("polling")
	}

	outcome, err := l.RunOnce(ctx)
	if err != nil {
		// Execution errors are terminal states for the task, not the loop;
		// anything surfacing here is a store problem.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		// A concurrent mutator can delete or re-status the selected task
		// between the queue snapshot and dispatch. The task is simply gone;
		// the next cycle picks a fresh one.
		if errors.Is(err, queue.ErrNotFound) || errors.Is(err, ErrNotPending) {
			slog.Debug("selected task gone before dispatch", "error", err)
			return nil
		}
		return err
	}
	if outcome == nil {
		slog.Debug("no pending tasks")
	}
	return nil
}
