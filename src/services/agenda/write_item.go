package agenda

import (
	"context"
	"errors"
	"fmt"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

const (
	msgParentDoesNotExist = "Invalid hyperlink - Object does not exist."
	msgParentIsDescendant = "An item can not be its own child."

	entityTypeItem    = "item"
	entityTypeSpeaker = "speaker"
)

// ItemChange recebe o estado atual do item e devolve o novo.
// É onde o adapter aplica o payload já validado.
type ItemChange func(current entities.Item) (entities.Item, error)

func (s *AgendaService) CreateItem(ctx context.Context, item entities.Item) (entities.Item, error) {
	if err := s.validateParent(ctx, item); err != nil {
		return entities.Item{}, err
	}

	created, err := s.itemWriter.CreateItem(ctx, item)
	if err != nil {
		return entities.Item{}, fmt.Errorf("AgendaService.CreateItem - %w", err)
	}

	s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemCreated, entityTypeItem, created.ID, itemChanges(entities.Item{}, created)))

	return created, nil
}

// UpdateItem carrega o item do banco, aplica change e grava o resultado.
// id, oradores e conteúdo não mudam por aqui.
func (s *AgendaService) UpdateItem(ctx context.Context, id int64, change ItemChange) (entities.Item, error) {
	current, err := s.primary.GetItem(ctx, id)
	if err != nil {
		return entities.Item{}, fmt.Errorf("AgendaService.UpdateItem - %w", err)
	}

	updated, err := change(current)
	if err != nil {
		return entities.Item{}, err
	}
	updated.ID = current.ID
	updated.Speakers = current.Speakers
	updated.Content = current.Content

	if err := s.validateParent(ctx, updated); err != nil {
		return entities.Item{}, err
	}

	if err := s.itemWriter.UpdateItem(ctx, updated); err != nil {
		return entities.Item{}, fmt.Errorf("AgendaService.UpdateItem - %w", err)
	}

	if changes := itemChanges(current, updated); len(changes) > 0 {
		s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemUpdated, entityTypeItem, updated.ID, changes))
	}

	return updated, nil
}

// DeleteItem apaga o item. Os filhos sobem para a raiz e cada um recebe
// seu próprio evento de atualização.
func (s *AgendaService) DeleteItem(ctx context.Context, id int64) error {
	detached, err := s.itemWriter.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("AgendaService.DeleteItem - %w", err)
	}

	s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemDeleted, entityTypeItem, id, nil))
	for _, childID := range detached {
		s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemUpdated, entityTypeItem, childID, map[string]domain.PropertyChange{
			"parent": {Old: id, New: nil},
		}))
	}

	return nil
}

// validateParent exige que o pai exista e que não seja o próprio item nem um descendente dele.
func (s *AgendaService) validateParent(ctx context.Context, item entities.Item) error {
	if item.ParentID == nil {
		return nil
	}

	parentID := *item.ParentID
	if item.ID != 0 && parentID == item.ID {
		return domain.NewValidationError("parent", msgParentIsDescendant)
	}

	if _, err := s.primary.GetItem(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return domain.NewValidationError("parent", msgParentDoesNotExist)
		}
		return fmt.Errorf("AgendaService.validateParent - %w", err)
	}

	if item.ID == 0 {
		return nil
	}

	all, err := s.primary.ListItems(ctx, domain.ItemFilter{})
	if err != nil {
		return fmt.Errorf("AgendaService.validateParent - %w", err)
	}

	parents := make(map[int64]*int64, len(all))
	for _, candidate := range all {
		parents[candidate.ID] = candidate.ParentID
	}

	// sobe a partir do novo pai; encontrar o item significa ciclo
	seen := map[int64]bool{}
	for current := &parentID; current != nil && !seen[*current]; current = parents[*current] {
		if *current == item.ID {
			return domain.NewValidationError("parent", msgParentIsDescendant)
		}
		seen[*current] = true
	}

	return nil
}

func itemChanges(previous entities.Item, next entities.Item) map[string]domain.PropertyChange {
	changes := map[string]domain.PropertyChange{}

	track := func(field string, before interface{}, after interface{}, changed bool) {
		if changed {
			changes[field] = domain.PropertyChange{Old: before, New: after}
		}
	}

	track("item_number", previous.ItemNumber, next.ItemNumber, previous.ItemNumber != next.ItemNumber)
	track("title", previous.Title, next.Title, previous.Title != next.Title)
	track("text", previous.Text, next.Text, previous.Text != next.Text)
	track("comment", previous.Comment, next.Comment, previous.Comment != next.Comment)
	track("closed", previous.Closed, next.Closed, previous.Closed != next.Closed)
	track("type", int(previous.Type), int(next.Type), previous.Type != next.Type)
	track("duration", previous.Duration, next.Duration, previous.Duration != next.Duration)
	track("weight", previous.Weight, next.Weight, previous.Weight != next.Weight)
	track("speaker_list_closed", previous.SpeakerListClosed, next.SpeakerListClosed, previous.SpeakerListClosed != next.SpeakerListClosed)
	track("parent", int64Value(previous.ParentID), int64Value(next.ParentID), !sameInt64(previous.ParentID, next.ParentID))

	return changes
}

func int64Value(value *int64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func sameInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
