package agenda

import (
	"context"
	"fmt"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

// SortTree aplica a árvore enviada pelo cliente: cada nó recebe o pai em que
// está e weight igual à posição entre os irmãos. Itens fora da árvore não mudam.
func (s *AgendaService) SortTree(ctx context.Context, tree []*domain.ItemTreeNode) error {
	all, err := s.primary.ListItems(ctx, domain.ItemFilter{})
	if err != nil {
		return fmt.Errorf("AgendaService.SortTree - %w", err)
	}

	current := make(map[int64]entities.Item, len(all))
	for _, item := range all {
		current[item.ID] = item
	}

	positions := make([]domain.TreePosition, 0, len(all))
	seen := make(map[int64]bool)

	var walk func(nodes []*domain.ItemTreeNode, parentID *int64) error
	walk = func(nodes []*domain.ItemTreeNode, parentID *int64) error {
		for weight, node := range nodes {
			if node == nil {
				continue
			}
			if seen[node.ID] {
				return domain.NewValidationError("tree", fmt.Sprintf("Item %d is more than once in the tree.", node.ID))
			}
			if _, ok := current[node.ID]; !ok {
				return domain.NewValidationError("tree", fmt.Sprintf("Item %d is not in the database.", node.ID))
			}
			seen[node.ID] = true

			positions = append(positions, domain.TreePosition{ID: node.ID, ParentID: parentID, Weight: weight})

			id := node.ID
			if err := walk(node.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(tree, nil); err != nil {
		return err
	}

	changed := make([]domain.TreePosition, 0, len(positions))
	for _, position := range positions {
		item := current[position.ID]
		if item.Weight != position.Weight || !sameInt64(item.ParentID, position.ParentID) {
			changed = append(changed, position)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := s.itemWriter.SetTree(ctx, changed); err != nil {
		return fmt.Errorf("AgendaService.SortTree - %w", err)
	}

	for _, position := range changed {
		item := current[position.ID]
		moved := item
		moved.ParentID = position.ParentID
		moved.Weight = position.Weight

		s.publish(ctx, events.NewDomainEvent(domain.EventTypeItemUpdated, entityTypeItem, item.ID, itemChanges(item, moved)))
	}

	return nil
}
