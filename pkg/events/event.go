package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeEmbedDocument = "EMBED_DOCUMENT"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "EMBED_DOCUMENT").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() json.RawMessage

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() json.RawMessage {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New wraps data in an envelope of the given type.
func New(eventType string, data interface{}) (BaseEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return BaseEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return BaseEvent{
		Type:       eventType,
		Data:       raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		Type:       e.EventType(),
		Data:       e.Payload(),
		OccurredAt: e.Timestamp(),
	})
}

// Decode reads an envelope and unmarshals its data into out when the type matches.
func Decode(raw []byte, wantType string, out interface{}) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type != wantType {
		return e, fmt.Errorf("unexpected event type %q, want %q", e.Type, wantType)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return e, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return e, nil
}
