package gateway

import (
	"github.com/pmorel/tasker/internal/events"
	"github.com/pmorel/tasker/internal/queue"
)

// TaskHandler serves task operations for both the HTTP API and the WS hub,
// publishing a bus event after every successful mutation.
type TaskHandler struct {
	store queue.Store
	bus   *events.Bus
}

func NewTaskHandler(store queue.Store, bus *events.Bus) *TaskHandler {
	return &TaskHandler{store: store, bus: bus}
}

// Submit enqueues a new task and returns its id.
func (h *TaskHandler) Submit(description string, priority int, tags []string, notes string) (string, error) {
	t, err := h.store.Add(description, priority, tags, notes)
	if err != nil {
		return "", err
	}
	h.publish(events.TaskCreatedPayload{
		TaskID:      t.ID,
		Description: t.Description,
		Priority:    t.Priority,
		Tags:        t.Tags,
	})
	return t.ID, nil
}

// List returns tasks matching the filter.
func (h *TaskHandler) List(status string, limit int) (any, error) {
	tasks, err := h.store.List(queue.ListFilter{Status: queue.Status(status), Limit: limit})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*queue.Task{}
	}
	return tasks, nil
}

// Delete removes a task; the second delete of an id reports false.
func (h *TaskHandler) Delete(id string) (bool, error) {
	deleted, err := h.store.Delete(id)
	if err != nil {
		return false, err
	}
	if deleted {
		h.publish(events.TaskDeletedPayload{TaskID: id})
	}
	return deleted, nil
}

// UpdateStatus manually moves a task to a new status.
func (h *TaskHandler) UpdateStatus(id string, status queue.Status, lastError string) (*queue.Task, error) {
	t, err := h.store.UpdateStatus(id, status, queue.StatusFields{LastError: lastError})
	if err != nil {
		return nil, err
	}
	h.publish(events.TaskUpdatedPayload{TaskID: t.ID, Status: string(t.Status)})
	return t, nil
}

func (h *TaskHandler) publish(payload events.EventPayload) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(events.NewTypedEvent(events.SourceGateway, payload))
}
