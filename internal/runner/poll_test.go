package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pmorel/tasker/internal/queue"
)

func TestRunOncePicksHighestPriority(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{result: &queue.ExecutionResult{ActionsExecuted: 1}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, time.Minute)

	store.Add("low", 1, nil, "")
	urgent, _ := store.Add("urgent", 5, nil, "")

	outcome, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if outcome == nil || outcome.Task.ID != urgent.ID {
		t.Fatalf("ran wrong task: %+v", outcome)
	}
}

func TestRunOnceEmptyQueue(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, time.Minute)

	outcome, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if outcome != nil {
		t.Fatalf("expected nil outcome, got %+v", outcome)
	}
	if exec.calls != 0 {
		t.Error("executor called on an empty queue")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{result: &queue.ExecutionResult{}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestRunSurvivesTaskFailures(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{err: errors.New("model unavailable")}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, 10*time.Millisecond)

	a, _ := store.Add("first", 3, nil, "")
	b, _ := store.Add("second", 3, nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}

	// Both tasks should have been attempted despite the first failing.
	for _, id := range []string{a.ID, b.ID} {
		got, _ := store.Get(id)
		if got.Status != queue.StatusFailed {
			t.Errorf("%s: status %q, want failed", id, got.Status)
		}
	}
}

// vanishedStore reports a pending task that is already gone from the backing
// store, the state a concurrent delete leaves between selection and dispatch.
type vanishedStore struct {
	queue.Store
}

func (s *vanishedStore) List(filter queue.ListFilter) ([]*queue.Task, error) {
	return []*queue.Task{{
		ID:        "task_gone1234",
		Status:    queue.StatusPending,
		Priority:  3,
		CreatedAt: time.Now(),
	}}, nil
}

func TestRunSurvivesTaskDeletedMidCycle(t *testing.T) {
	store := &vanishedStore{Store: newTestQueue(t)}
	exec := &fakeExecutor{result: &queue.ExecutionResult{}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	// Every cycle hits the deleted task; the loop must keep polling until
	// the context expires instead of dying on the first one.
	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	if exec.calls != 0 {
		t.Error("executor ran a task that no longer exists")
	}
}

// restatusedStore hands out a task that a concurrent mutator already moved
// out of pending.
type restatusedStore struct {
	queue.Store
}

func (s *restatusedStore) List(filter queue.ListFilter) ([]*queue.Task, error) {
	return []*queue.Task{{
		ID:        "task_busy5678",
		Status:    queue.StatusInProgress,
		Priority:  3,
		CreatedAt: time.Now(),
	}}, nil
}

func TestRunSkipsTaskRestatusedMidCycle(t *testing.T) {
	store := &restatusedStore{Store: newTestQueue(t)}
	exec := &fakeExecutor{result: &queue.ExecutionResult{}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v", err)
	}
	if exec.calls != 0 {
		t.Error("executor ran a task that is not pending")
	}
}

func TestRunIdlesBeforeFirstCycle(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{result: &queue.ExecutionResult{}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, time.Hour)

	store.Add("waits a full interval", 3, nil, "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	if exec.calls != 0 {
		t.Error("task executed before the first tick")
	}
}

type fakeHeartbeat struct {
	beats int
}

func (f *fakeHeartbeat) Beat(state string) { f.beats++ }

func TestRunBeatsHeartbeat(t *testing.T) {
	store := newTestQueue(t)
	exec := &fakeExecutor{result: &queue.ExecutionResult{}}
	loop := NewPollLoop(store, NewCoordinator(store, exec, nil), nil, 10*time.Millisecond)

	hb := &fakeHeartbeat{}
	loop.SetHeartbeat(hb)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	loop.Run(ctx)

	if hb.beats == 0 {
		t.Fatal("heartbeat never called")
	}
}
