package ws

import (
	"encoding/json"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	frame := Frame{
		Type:   FrameTypeRequest,
		ID:     "42",
		Method: string(MethodSubmitTask),
		Params: json.RawMessage(`{"description":"water plants","priority":2}`),
	}

	data, err := MarshalFrame(frame)
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}

	got, err := UnmarshalFrame(data)
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if got.Type != FrameTypeRequest || got.ID != "42" || got.Method != string(MethodSubmitTask) {
		t.Errorf("got %+v", got)
	}
}

func TestNewResponseFrame(t *testing.T) {
	f, err := NewResponseFrame("7", true, map[string]string{"id": "task_abc"}, "")
	if err != nil {
		t.Fatalf("NewResponseFrame: %v", err)
	}
	if f.Type != FrameTypeResponse || f.OK == nil || !*f.OK {
		t.Errorf("got %+v", f)
	}

	var payload map[string]string
	if err := json.Unmarshal(f.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["id"] != "task_abc" {
		t.Errorf("payload: %v", payload)
	}
}

func TestNewEventFrame(t *testing.T) {
	f, err := NewEventFrame("task.created", map[string]any{"task_id": "task_1"})
	if err != nil {
		t.Fatalf("NewEventFrame: %v", err)
	}
	if f.Type != FrameTypeEvent || f.Event != "task.created" {
		t.Errorf("got %+v", f)
	}
}
