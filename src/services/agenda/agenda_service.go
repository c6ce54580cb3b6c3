package agenda

import (
	"context"
	"log/slog"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

type ItemReader interface {
	GetItem(ctx context.Context, id int64) (entities.Item, error)
	ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error)
}

type ItemWriter interface {
	CreateItem(ctx context.Context, item entities.Item) (entities.Item, error)
	UpdateItem(ctx context.Context, item entities.Item) error
	DeleteItem(ctx context.Context, id int64) ([]int64, error)
	SetTree(ctx context.Context, positions []domain.TreePosition) error
	UpsertContentItem(ctx context.Context, content entities.ContentObject) (int64, bool, error)
	DeleteContentItem(ctx context.Context, kind entities.ContentKind, objectID int64) (int64, bool, error)
}

type SpeakerWriter interface {
	AddSpeaker(ctx context.Context, speaker entities.Speaker) (entities.Speaker, error)
	UpdateSpeaker(ctx context.Context, speaker entities.Speaker) error
	DeleteSpeaker(ctx context.Context, itemID int64, speakerID int64) error
}

type EventPublisher interface {
	PublishSingleEvent(ctx context.Context, event events.DomainEventWithMetadata) error
}

type AgendaService struct {
	logger        *slog.Logger
	items         ItemReader
	primary       ItemReader
	itemWriter    ItemWriter
	speakerWriter SpeakerWriter
	publisher     EventPublisher
}

// NewAgendaService: items atende as leituras (pode ser cacheado); primary é
// consultado nas escritas, onde as regras precisam do estado atual.
// publisher nil desliga a publicação de eventos.
func NewAgendaService(
	logger *slog.Logger,
	items ItemReader,
	primary ItemReader,
	itemWriter ItemWriter,
	speakerWriter SpeakerWriter,
	publisher EventPublisher,
) *AgendaService {
	return &AgendaService{
		logger:        logger,
		items:         items,
		primary:       primary,
		itemWriter:    itemWriter,
		speakerWriter: speakerWriter,
		publisher:     publisher,
	}
}

// publish nunca falha a operação: a escrita já foi confirmada no banco.
func (s *AgendaService) publish(ctx context.Context, event events.DomainEventWithMetadata) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishSingleEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish agenda event",
			"error", err,
			"event_type", event.EventType,
			"entity_reference", event.Data.Reference)
	}
}
