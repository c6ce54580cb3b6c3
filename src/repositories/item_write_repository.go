package repositories

import (
	"context"
	"fmt"
	"log"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/postgres"
)

// CacheInvalidator é implementado pelo CachedItemQueryRepository.
type CacheInvalidator interface {
	InvalidateByItemIDs(ctx context.Context, itemIDs []int64) error
}

type ItemWriteRepository struct {
	writePool *pgxpool.Pool
	cache     CacheInvalidator
}

func NewItemWriteRepository(writePool *pgxpool.Pool, cache CacheInvalidator) *ItemWriteRepository {
	return &ItemWriteRepository{writePool: writePool, cache: cache}
}

func (r *ItemWriteRepository) CreateItem(ctx context.Context, item entities.Item) (entities.Item, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return entities.Item{}, fmt.Errorf("ItemWriteRepository.CreateItem - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("agenda_item").
		SetMap(itemValues(item)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return entities.Item{}, fmt.Errorf("ItemWriteRepository.CreateItem - failed to build query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&item.ID); err != nil {
		return entities.Item{}, fmt.Errorf("ItemWriteRepository.CreateItem - insert failed: %w", err)
	}

	if err := replaceTags(ctx, tx, item.ID, item.TagIDs); err != nil {
		return entities.Item{}, fmt.Errorf("ItemWriteRepository.CreateItem - %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entities.Item{}, fmt.Errorf("ItemWriteRepository.CreateItem - failed to commit: %w", err)
	}

	if item.TagIDs == nil {
		item.TagIDs = []int64{}
	}
	item.Speakers = []entities.Speaker{}

	r.invalidate(ctx, item.ID)

	return item, nil
}

// UpdateItem grava os campos base e as tags. Oradores e conteúdo têm escrita própria.
func (r *ItemWriteRepository) UpdateItem(ctx context.Context, item entities.Item) error {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Update("agenda_item").
		SetMap(itemValues(item)).
		Where(sq.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - failed to build query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - item %d: %w", item.ID, domain.ErrEntityNotFound)
	}

	if err := replaceTags(ctx, tx, item.ID, item.TagIDs); err != nil {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ItemWriteRepository.UpdateItem - failed to commit: %w", err)
	}

	r.invalidate(ctx, item.ID)

	return nil
}

// DeleteItem remove o item. Os filhos sobem para a raiz; seus ids são devolvidos
// em ordem crescente.
func (r *ItemWriteRepository) DeleteItem(ctx context.Context, id int64) ([]int64, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `UPDATE agenda_item SET parent_id = NULL WHERE parent_id = $1 RETURNING id`, id)
	if err != nil {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - failed to detach children: %w", err)
	}
	detached, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - failed to read children: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM agenda_item WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - item %d: %w", id, domain.ErrEntityNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ItemWriteRepository.DeleteItem - failed to commit: %w", err)
	}

	sort.Slice(detached, func(i, j int) bool { return detached[i] < detached[j] })
	r.invalidate(ctx, append([]int64{id}, detached...)...)

	return detached, nil
}

// SetTree grava pai e weight de vários itens de uma vez.
func (r *ItemWriteRepository) SetTree(ctx context.Context, positions []domain.TreePosition) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ItemWriteRepository.SetTree - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	itemIDs := make([]int64, 0, len(positions))
	for _, position := range positions {
		batch.Queue(`UPDATE agenda_item SET parent_id = $2, weight = $3 WHERE id = $1`,
			position.ID, postgres.NewNullInt64(position.ParentID), position.Weight)
		itemIDs = append(itemIDs, position.ID)
	}

	results := tx.SendBatch(ctx, batch)
	for _, position := range positions {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("ItemWriteRepository.SetTree - item %d: %w", position.ID, err)
		}
		if tag.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("ItemWriteRepository.SetTree - item %d: %w", position.ID, domain.ErrEntityNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("ItemWriteRepository.SetTree - %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ItemWriteRepository.SetTree - failed to commit: %w", err)
	}

	r.invalidate(ctx, itemIDs...)

	return nil
}

// UpsertContentItem garante um item para o conteúdo e atualiza a cópia do título.
// Devolve o id do item e se ele acabou de ser criado.
func (r *ItemWriteRepository) UpsertContentItem(ctx context.Context, content entities.ContentObject) (int64, bool, error) {
	query := `
		INSERT INTO 
			agenda_item (title, content_type, object_id, content_title, content_title_supplement)
		VALUES 
			($1, $2, $3, $4, $5)
		ON CONFLICT (content_type, object_id) DO UPDATE SET
			content_title = excluded.content_title,
			content_title_supplement = excluded.content_title_supplement
		RETURNING 
			id, (xmax = 0) AS inserted`

	var (
		itemID   int64
		inserted bool
	)
	err := r.writePool.QueryRow(ctx, query,
		truncate(content.Title, 255),
		string(content.Kind),
		content.ID,
		truncate(content.Title, 255),
		truncate(content.TitleSupplement, 255),
	).Scan(&itemID, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("ItemWriteRepository.UpsertContentItem - %s %d: %w", content.Kind, content.ID, err)
	}

	r.invalidate(ctx, itemID)

	return itemID, inserted, nil
}

// DeleteContentItem apaga o item do conteúdo. found é falso quando não havia item.
func (r *ItemWriteRepository) DeleteContentItem(ctx context.Context, kind entities.ContentKind, objectID int64) (int64, bool, error) {
	var itemID int64
	err := r.writePool.QueryRow(ctx,
		`DELETE FROM agenda_item WHERE content_type = $1 AND object_id = $2 RETURNING id`,
		string(kind), objectID,
	).Scan(&itemID)
	if postgres.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ItemWriteRepository.DeleteContentItem - %s %d: %w", kind, objectID, err)
	}

	r.invalidate(ctx, itemID)

	return itemID, true, nil
}

func (r *ItemWriteRepository) invalidate(ctx context.Context, itemIDs ...int64) {
	invalidateCache(ctx, r.cache, itemIDs)
}

func itemValues(item entities.Item) map[string]interface{} {
	return map[string]interface{}{
		"item_number":         item.ItemNumber,
		"title":               item.Title,
		"text":                item.Text,
		"comment":             item.Comment,
		"closed":              item.Closed,
		"type":                int(item.Type),
		"duration":            item.Duration,
		"weight":              item.Weight,
		"parent_id":           postgres.NewNullInt64(item.ParentID),
		"speaker_list_closed": item.SpeakerListClosed,
	}
}

func replaceTags(ctx context.Context, tx pgx.Tx, itemID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM agenda_item_tags WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = []interface{}{itemID, tagID}
	}

	// CopyFrom grava na ordem das linhas, então o id da ligação segue a ordem das tags
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"agenda_item_tags"}, []string{"item_id", "tag_id"}, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy tags: %w", err)
	}
	return nil
}

// invalidateCache roda antes da escrita retornar, para que a próxima leitura
// já não encontre o valor antigo. A escrita já foi confirmada, então o
// cancelamento do request não interrompe a limpeza e a falha só é logada.
func invalidateCache(ctx context.Context, cache CacheInvalidator, itemIDs []int64) {
	if cache == nil || len(itemIDs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheInvalidateTimeout)
	defer cancel()

	if err := cache.InvalidateByItemIDs(ctx, itemIDs); err != nil {
		log.Printf("Failed to invalidate cache for items %v: %v", itemIDs, err)
	}
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
