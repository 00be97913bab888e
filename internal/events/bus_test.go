package events

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	ch, cancel := bus.SubscribeChan(4)
	defer cancel()

	bus.Publish(NewTypedEvent(SourceCLI, TaskCreatedPayload{
		TaskID:      "task_abc12345",
		Description: "water the plants",
		Priority:    3,
	}))

	e := waitFor(t, ch)
	if e.Type != EventTaskCreated {
		t.Errorf("Type: got %q, want %q", e.Type, EventTaskCreated)
	}
	if e.Source != SourceCLI {
		t.Errorf("Source: got %q", e.Source)
	}

	payload, ok := ExtractPayload[TaskCreatedPayload](e)
	if !ok {
		t.Fatal("ExtractPayload failed")
	}
	if payload.TaskID != "task_abc12345" || payload.Priority != 3 {
		t.Errorf("payload: %+v", payload)
	}
}

func TestSubscribeFiltersByType(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	ch, cancel := bus.SubscribeChan(4, EventTaskFailed)
	defer cancel()

	bus.Publish(NewTypedEvent(SourceRunner, TaskStartedPayload{TaskID: "task_1", Attempt: 1}))
	bus.Publish(NewTypedEvent(SourceRunner, TaskFailedPayload{TaskID: "task_1", Error: "boom", Attempts: 1}))

	e := waitFor(t, ch)
	if e.Type != EventTaskFailed {
		t.Fatalf("got %q through a task.failed subscription", e.Type)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	ch, cancel := bus.SubscribeChan(4)

	bus.Publish(NewEvent(EventTaskDeleted, SourceGateway, map[string]any{"task_id": "task_1"}))
	waitFor(t, ch)

	cancel()
	bus.Publish(NewEvent(EventTaskDeleted, SourceGateway, map[string]any{"task_id": "task_2"}))

	select {
	case e, ok := <-ch:
		if ok {
			t.Fatalf("received %q after unsubscribe", e.Type)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHistory(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	for i := 0; i < 5; i++ {
		bus.Publish(NewEvent(EventTaskUpdated, SourceGateway, map[string]any{"n": i}))
	}

	// Dispatch is asynchronous; give the ring buffer a moment to fill.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(bus.History(10)) == 5 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	hist := bus.History(3)
	if len(hist) != 3 {
		t.Fatalf("History(3): got %d events", len(hist))
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewBus(4)
	bus.Close()

	// Must not panic.
	bus.Publish(NewEvent(EventTaskCreated, SourceCLI, nil))
	bus.Close()
}

func TestCloseDuringPublish(t *testing.T) {
	bus := NewBus(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			bus.Publish(NewEvent(EventTaskUpdated, SourceRunner, map[string]any{"n": i}))
		}
	}()

	// Close while the publisher is mid-flight; no send may panic.
	time.Sleep(time.Millisecond)
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not finish")
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Add(NewEvent(EventTaskUpdated, SourceRunner, map[string]any{"n": i}))
	}

	got := rb.Get(3)
	if len(got) != 3 {
		t.Fatalf("Get(3): got %d", len(got))
	}
	// Oldest surviving entry is n=2.
	if got[0].Payload["n"] != 2 {
		t.Errorf("oldest: got %v, want 2", got[0].Payload["n"])
	}
	if got[2].Payload["n"] != 4 {
		t.Errorf("newest: got %v, want 4", got[2].Payload["n"])
	}
}
