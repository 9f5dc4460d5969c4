package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the JSON envelope for every message this service publishes. The
// key doubles as the Kafka partition key so events for one aggregate stay
// ordered.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Key           string          `json:"key"`
	Source        string          `json:"source"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent builds an envelope around the given payload with a fresh ID and
// timestamp.
func NewEvent(eventType, key, source string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        key,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// WithCorrelationID tags the event with the request's correlation ID.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// Marshal serializes the envelope to JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent parses an envelope from JSON.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
