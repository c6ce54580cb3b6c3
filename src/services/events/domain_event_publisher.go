package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"agendaapi/src/domain"
	"agendaapi/src/infra/kafka"
)

const sourceService = "agenda-api"

// MessageProducer é o lado de publicação do kafka.KafkaClient.
type MessageProducer interface {
	Produce(messages []kafka.Message, topic string) error
}

type DomainEventPublisher struct {
	logger   *slog.Logger
	producer MessageProducer
	topic    string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	producer MessageProducer,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// DomainEventWithMetadata wraps a domain event with metadata needed for headers
type DomainEventWithMetadata struct {
	domain.DomainEvent
	EventID   string
	EventType string
}

// NewDomainEvent monta um evento com id novo. reference é "<entity_type>:<id>".
func NewDomainEvent(eventType string, entityType string, entityID int64, properties map[string]domain.PropertyChange) DomainEventWithMetadata {
	if properties == nil {
		properties = map[string]domain.PropertyChange{}
	}

	return DomainEventWithMetadata{
		DomainEvent: domain.DomainEvent{
			Data: domain.EventData{
				Reference:  fmt.Sprintf("%s:%d", entityType, entityID),
				Type:       entityType,
				Properties: properties,
			},
			OccurredAt: time.Now().UTC(),
		},
		EventID:   uuid.New().String(),
		EventType: eventType,
	}
}

// PublishDomainEvents publishes a batch of domain events to Kafka
func (p *DomainEventPublisher) PublishDomainEvents(ctx context.Context, events []DomainEventWithMetadata) error {
	if len(events) == 0 {
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))

	for _, eventWithMetadata := range events {
		eventBytes, err := json.Marshal(eventWithMetadata.DomainEvent)
		if err != nil {
			p.logger.Error("Failed to marshal domain event",
				"error", err,
				"event_id", eventWithMetadata.EventID,
				"entity_reference", eventWithMetadata.Data.Reference)
			continue
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     eventWithMetadata.Data.Reference, // mesma partição para o mesmo item
			Value:   eventBytes,
			Headers: p.createEventHeaders(eventWithMetadata),
		})

		p.logger.Debug("Prepared domain event for publishing",
			"event_id", eventWithMetadata.EventID,
			"entity_reference", eventWithMetadata.Data.Reference,
			"event_type", eventWithMetadata.EventType)
	}

	if err := p.producer.Produce(kafkaMessages, p.topic); err != nil {
		p.logger.Error("Failed to publish domain events to Kafka",
			"error", err,
			"topic", p.topic,
			"events_count", len(kafkaMessages))
		return fmt.Errorf("failed to publish domain events to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("Published domain events",
		"topic", p.topic,
		"events_count", len(kafkaMessages))

	return nil
}

// createEventHeaders creates Kafka headers for event filtering
func (p *DomainEventPublisher) createEventHeaders(eventWithMetadata DomainEventWithMetadata) map[string]string {
	headers := map[string]string{
		"event_type":     eventWithMetadata.EventType,
		"source_service": sourceService,
		"schema_version": "v1",
		"event_id":       eventWithMetadata.EventID,
	}

	if eventWithMetadata.Data.Type != "" {
		headers["entity_type"] = eventWithMetadata.Data.Type
	}

	if fieldsChanged := changedFields(eventWithMetadata.DomainEvent); len(fieldsChanged) > 0 {
		headers["fields_changed"] = strings.Join(fieldsChanged, ",")
	}

	return headers
}

func changedFields(event domain.DomainEvent) []string {
	fields := make([]string, 0, len(event.Data.Properties))
	for field := range event.Data.Properties {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// PublishSingleEvent is a convenience method to publish a single domain event
func (p *DomainEventPublisher) PublishSingleEvent(ctx context.Context, event DomainEventWithMetadata) error {
	return p.PublishDomainEvents(ctx, []DomainEventWithMetadata{event})
}
