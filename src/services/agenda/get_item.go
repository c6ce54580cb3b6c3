package agenda

import (
	"context"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
)

func (s *AgendaService) GetItem(ctx context.Context, id int64) (entities.Item, error) {
	return s.items.GetItem(ctx, id)
}

func (s *AgendaService) ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error) {
	return s.items.ListItems(ctx, filter)
}
