package events

import (
	"context"
	"time"
)

const (
	TypeQueryAnswered     = "query.answered"
	TypeQueryFailed       = "query.failed"
	TypeAnswerRefined     = "answer.refined"
	TypeKnowledgeIngested = "knowledge.ingested"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the subject suffix for this event (e.g., "query.answered").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

// NoopPublisher drops every event. Used when no bus is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
