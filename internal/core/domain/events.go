package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventPropertyCreated       = "property.created"
	EventPropertyStatusChanged = "property.status_changed"
	EventPropertyDeleted       = "property.deleted"
	EventAgentProvisioned      = "agent.provisioned"
)

// Event - доменное событие для внешних подписчиков.
type Event struct {
	ID          uuid.UUID
	Type        string
	AggregateID uuid.UUID
	ActorID     uuid.UUID
	OccurredAt  time.Time
	Attributes  map[string]string
}

func NewEvent(eventType string, aggregateID, actorID uuid.UUID, attrs map[string]string) Event {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
		Attributes:  attrs,
	}
}
