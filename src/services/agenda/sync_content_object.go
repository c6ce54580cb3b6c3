package agenda

import (
	"context"
	"fmt"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

// SyncContentObject mantém o item da pauta de um conteúdo (moção, eleição)
// alinhado com o módulo dono: cria ou atualiza a cópia do título, ou apaga
// o item quando o conteúdo foi apagado.
func (s *AgendaService) SyncContentObject(ctx context.Context, content entities.ContentObject, deleted bool) error {
	if !content.Kind.Valid() {
		return domain.NewValidationError("kind", fmt.Sprintf("%q is not a valid choice.", content.Kind))
	}
	if content.ID <= 0 {
		return domain.NewValidationError("id", "A valid integer is required.")
	}

	if deleted {
		itemID, found, err := s.itemWriter.DeleteContentItem(ctx, content.Kind, content.ID)
		if err != nil {
			return fmt.Errorf("AgendaService.SyncContentObject - %w", err)
		}
		if found {
			s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemDeleted, entityTypeItem, itemID, nil))
		}
		return nil
	}

	itemID, created, err := s.itemWriter.UpsertContentItem(ctx, content)
	if err != nil {
		return fmt.Errorf("AgendaService.SyncContentObject - %w", err)
	}

	changes := map[string]domain.PropertyChange{
		"content_object":       {New: fmt.Sprintf("%s:%d", content.Kind, content.ID)},
		"get_title":            {New: content.Title},
		"get_title_supplement": {New: content.TitleSupplement},
	}
	eventType := domain.EventTypeItemUpdated
	if created {
		eventType = domain.EventTypeItemCreated
		changes["title"] = domain.PropertyChange{New: content.Title}
	}

	s.publish(ctx, events.NewDomainEvent(eventType, entityTypeItem, itemID, changes))

	return nil
}
