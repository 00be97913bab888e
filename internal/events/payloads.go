package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type TaskCreatedPayload struct {
	TaskID      string   `json:"task_id"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Tags        []string `json:"tags,omitempty"`
}

func (TaskCreatedPayload) EventType() EventType { return EventTaskCreated }

type TaskStartedPayload struct {
	TaskID  string `json:"task_id"`
	Attempt int    `json:"attempt"`
}

func (TaskStartedPayload) EventType() EventType { return EventTaskStarted }

type TaskCompletedPayload struct {
	TaskID          string        `json:"task_id"`
	ActionsExecuted int           `json:"actions_executed"`
	Duration        time.Duration `json:"duration,omitempty"`
}

func (TaskCompletedPayload) EventType() EventType { return EventTaskCompleted }

type TaskFailedPayload struct {
	TaskID   string `json:"task_id"`
	Error    string `json:"error"`
	Attempts int    `json:"attempts"`
}

func (TaskFailedPayload) EventType() EventType { return EventTaskFailed }

type TaskUpdatedPayload struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

func (TaskUpdatedPayload) EventType() EventType { return EventTaskUpdated }

type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
}

func (TaskDeletedPayload) EventType() EventType { return EventTaskDeleted }

type ScheduleTriggerPayload struct {
	ScheduleID string `json:"schedule_id"`
	TaskID     string `json:"task_id"`
}

func (ScheduleTriggerPayload) EventType() EventType { return EventScheduleTrigger }

// NewTypedEvent builds an Event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// ExtractPayload decodes an event's payload map back into its typed form.
func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}
