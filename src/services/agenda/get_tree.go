package agenda

import (
	"context"
	"fmt"

	"agendaapi/src/domain"
)

// GetTree monta a floresta da pauta. Os irmãos ficam na ordem da listagem
// (weight, id). Um item cujo pai ficou de fora do filtro vira raiz.
func (s *AgendaService) GetTree(ctx context.Context, filter domain.ItemFilter) ([]*domain.ItemTreeNode, error) {
	items, err := s.items.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("AgendaService.GetTree - %w", err)
	}

	nodes := make(map[int64]*domain.ItemTreeNode, len(items))
	for _, item := range items {
		nodes[item.ID] = &domain.ItemTreeNode{ID: item.ID, Children: make([]*domain.ItemTreeNode, 0)}
	}

	roots := make([]*domain.ItemTreeNode, 0)
	for _, item := range items {
		node := nodes[item.ID]
		if item.ParentID != nil {
			if parent, ok := nodes[*item.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}
