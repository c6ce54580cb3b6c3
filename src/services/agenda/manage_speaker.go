package agenda

import (
	"context"
	"fmt"
	"time"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

// SpeakerChange recebe o orador atual e devolve o novo.
type SpeakerChange func(current entities.Speaker) (entities.Speaker, error)

// AddSpeaker coloca o usuário no fim da fila de espera do item.
func (s *AgendaService) AddSpeaker(ctx context.Context, itemID int64, userID int64) (entities.Speaker, error) {
	item, err := s.primary.GetItem(ctx, itemID)
	if err != nil {
		return entities.Speaker{}, fmt.Errorf("AgendaService.AddSpeaker - %w", err)
	}

	if item.SpeakerListClosed {
		return entities.Speaker{}, domain.ErrSpeakerListClosed
	}

	maxWeight := 0
	for _, speaker := range item.Speakers {
		if !speaker.IsWaiting() {
			continue
		}
		if speaker.UserID == userID {
			return entities.Speaker{}, domain.ErrAlreadyOnSpeakerList
		}
		if speaker.Weight != nil && *speaker.Weight > maxWeight {
			maxWeight = *speaker.Weight
		}
	}

	weight := maxWeight + 1
	speaker, err := s.speakerWriter.AddSpeaker(ctx, entities.Speaker{
		ItemID: itemID,
		UserID: userID,
		Weight: &weight,
	})
	if err != nil {
		return entities.Speaker{}, fmt.Errorf("AgendaService.AddSpeaker - %w", err)
	}

	s.publish(ctx, events.NewDomainEvent(domain.EventTypeSpeakerAdded, entityTypeSpeaker, speaker.ID, map[string]domain.PropertyChange{
		"item":   {New: itemID},
		"user":   {New: userID},
		"weight": {New: weight},
	}))

	return speaker, nil
}

func (s *AgendaService) RemoveSpeaker(ctx context.Context, itemID int64, speakerID int64) error {
	if err := s.speakerWriter.DeleteSpeaker(ctx, itemID, speakerID); err != nil {
		return fmt.Errorf("AgendaService.RemoveSpeaker - %w", err)
	}

	s.publish(ctx, events.NewDomainEvent(domain.EventTypeSpeakerRemoved, entityTypeSpeaker, speakerID, map[string]domain.PropertyChange{
		"item": {Old: itemID},
	}))

	return nil
}

// UpdateSpeaker registra início/fim da fala e a posição na fila.
// O orador precisa pertencer ao item.
func (s *AgendaService) UpdateSpeaker(ctx context.Context, itemID int64, speakerID int64, change SpeakerChange) (entities.Speaker, error) {
	item, err := s.primary.GetItem(ctx, itemID)
	if err != nil {
		return entities.Speaker{}, fmt.Errorf("AgendaService.UpdateSpeaker - %w", err)
	}

	current, ok := item.SpeakerByID(speakerID)
	if !ok {
		return entities.Speaker{}, fmt.Errorf("AgendaService.UpdateSpeaker - speaker %d of item %d: %w", speakerID, itemID, domain.ErrEntityNotFound)
	}

	updated, err := change(current)
	if err != nil {
		return entities.Speaker{}, err
	}
	updated.ID = current.ID
	updated.ItemID = current.ItemID

	if updated.BeginTime != nil && updated.EndTime != nil && updated.EndTime.Before(*updated.BeginTime) {
		return entities.Speaker{}, domain.NewValidationError("end_time", "The end time must not be before the begin time.")
	}

	if err := s.speakerWriter.UpdateSpeaker(ctx, updated); err != nil {
		return entities.Speaker{}, fmt.Errorf("AgendaService.UpdateSpeaker - %w", err)
	}

	if changes := speakerChanges(current, updated); len(changes) > 0 {
		s.publish(ctx, events.NewDomainEvent(domain.EventTypeSpeakerUpdated, entityTypeSpeaker, updated.ID, changes))
	}

	return updated, nil
}

func speakerChanges(previous entities.Speaker, next entities.Speaker) map[string]domain.PropertyChange {
	changes := map[string]domain.PropertyChange{}

	if previous.UserID != next.UserID {
		changes["user"] = domain.PropertyChange{Old: previous.UserID, New: next.UserID}
	}
	if !sameTime(previous.BeginTime, next.BeginTime) {
		changes["begin_time"] = domain.PropertyChange{Old: previous.BeginTime, New: next.BeginTime}
	}
	if !sameTime(previous.EndTime, next.EndTime) {
		changes["end_time"] = domain.PropertyChange{Old: previous.EndTime, New: next.EndTime}
	}
	if !sameInt(previous.Weight, next.Weight) {
		changes["weight"] = domain.PropertyChange{Old: previous.Weight, New: next.Weight}
	}

	return changes
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
