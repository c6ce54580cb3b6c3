package fakes

import (
	"context"
	"sync"

	"agendaapi/src/services/events"
)

type EventPublisher struct {
	mu     sync.Mutex
	events []events.DomainEventWithMetadata
	Err    error
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

func (p *EventPublisher) PublishSingleEvent(ctx context.Context, event events.DomainEventWithMetadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *EventPublisher) Events() []events.DomainEventWithMetadata {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.DomainEventWithMetadata{}, p.events...)
}

// EventTypes devolve os tipos na ordem de publicação.
func (p *EventPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType)
	}
	return types
}
