package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	eventVersion   = "1"
	publishTimeout = 10 * time.Second
)

// messagePublisher реализуется *rabbitmq_producer.Publisher.
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// eventMessage - тело сообщения в обменнике событий.
type eventMessage struct {
	EventID     string            `json:"event_id"`
	Type        string            `json:"type"`
	AggregateID string            `json:"aggregate_id"`
	ActorID     string            `json:"actor_id"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Attributes  map[string]string `json:"attributes"`
}

// EventPublisherAdapter публикует доменные события в RabbitMQ.
// Ключ маршрутизации совпадает с типом события, например property.created.
type EventPublisherAdapter struct {
	producer messagePublisher
}

func NewEventPublisherAdapter(producer messagePublisher) (*EventPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &EventPublisherAdapter{producer: producer}, nil
}

func (a *EventPublisherAdapter) Publish(ctx context.Context, event domain.Event) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "EventPublisherAdapter",
		"event_type":   event.Type,
		"event_id":     event.ID.String(),
		"aggregate_id": event.AggregateID.String(),
	})

	attrs := event.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}

	body, err := json.Marshal(eventMessage{
		EventID:     event.ID.String(),
		Type:        event.Type,
		AggregateID: event.AggregateID.String(),
		ActorID:     event.ActorID.String(),
		OccurredAt:  event.OccurredAt,
		Attributes:  attrs,
	})
	if err != nil {
		adapterLogger.Error("Failed to marshal event to JSON", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal event %s: %w", event.Type, err)
	}

	// Подписчики полагаются на схему конверта, поэтому невалидное событие не уходит в брокер
	if err := contracts.ValidateEvent(contracts.MarketplaceEvent, eventVersion, body); err != nil {
		adapterLogger.Error("Event does not match schema", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid event %s: %w", event.Type, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Headers: amqp.Table{
			"event-type":    event.Type,
			"event-version": eventVersion,
		},
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, event.Type, msg); err != nil {
		adapterLogger.Error("Failed to publish event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish event %s: %w", event.Type, err)
	}

	adapterLogger.Debug("Event published", nil)
	return nil
}

// NoopEventPublisher используется, когда брокер не настроен.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(ctx context.Context, event domain.Event) error {
	contextkeys.LoggerFromContext(ctx).Debug("Event publishing disabled, event dropped", port.Fields{"event_type": event.Type})
	return nil
}
