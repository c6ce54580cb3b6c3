package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var itemColumns = []string{
	"i.id",
	"i.item_number",
	"i.title",
	"i.text",
	"i.comment",
	"i.closed",
	"i.type",
	"i.duration",
	"i.weight",
	"i.parent_id",
	"i.speaker_list_closed",
	"i.content_type",
	"i.object_id",
	"i.content_title",
	"i.content_title_supplement",
}

type ItemQueryRepository struct {
	pool *pgxpool.Pool
}

func NewItemQueryRepository(pool *pgxpool.Pool) *ItemQueryRepository {
	return &ItemQueryRepository{pool: pool}
}

func (r *ItemQueryRepository) GetItem(ctx context.Context, id int64) (entities.Item, error) {
	items, err := r.ListItems(ctx, domain.ItemFilter{IDs: []int64{id}})
	if err != nil {
		return entities.Item{}, err
	}
	if len(items) == 0 {
		return entities.Item{}, fmt.Errorf("ItemQueryRepository.GetItem - item %d: %w", id, domain.ErrEntityNotFound)
	}
	return items[0], nil
}

// ListItems devolve os itens na ordem da pauta (weight, id), já com oradores e tags.
func (r *ItemQueryRepository) ListItems(ctx context.Context, filter domain.ItemFilter) ([]entities.Item, error) {
	builder := psql.Select(itemColumns...).From("agenda_item i").OrderBy("i.weight", "i.id")

	if filter.IDs != nil {
		builder = builder.Where(sq.Eq{"i.id": filter.IDs})
	}
	if filter.Type != nil {
		builder = builder.Where(sq.Eq{"i.type": *filter.Type})
	}
	if filter.Closed != nil {
		builder = builder.Where(sq.Eq{"i.closed": *filter.Closed})
	}
	if filter.ParentID != nil {
		builder = builder.Where(sq.Eq{"i.parent_id": *filter.ParentID})
	}
	if filter.TagID != nil {
		builder = builder.Where("EXISTS (SELECT 1 FROM agenda_item_tags t WHERE t.item_id = i.id AND t.tag_id = ?)", *filter.TagID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ItemQueryRepository.ListItems - failed to build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ItemQueryRepository.ListItems - item query failed: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Item, 0)
	itemIDs := make([]int64, 0)

	for rows.Next() {
		var (
			item            entities.Item
			itemType        int
			contentType     *string
			objectID        *int64
			contentTitle    string
			contentSubtitle string
		)

		err := rows.Scan(
			&item.ID,
			&item.ItemNumber,
			&item.Title,
			&item.Text,
			&item.Comment,
			&item.Closed,
			&itemType,
			&item.Duration,
			&item.Weight,
			&item.ParentID,
			&item.SpeakerListClosed,
			&contentType,
			&objectID,
			&contentTitle,
			&contentSubtitle,
		)
		if err != nil {
			return nil, fmt.Errorf("ItemQueryRepository.ListItems - failed to scan item: %w", err)
		}

		item.Type = entities.ItemType(itemType)
		if contentType != nil && objectID != nil {
			item.Content = &entities.ContentObject{
				Kind:            entities.ContentKind(*contentType),
				ID:              *objectID,
				Title:           contentTitle,
				TitleSupplement: contentSubtitle,
			}
		}

		items = append(items, item)
		itemIDs = append(itemIDs, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ItemQueryRepository.ListItems - error iterating items: %w", err)
	}

	if len(items) == 0 {
		return items, nil
	}

	speakers, err := r.speakersByItem(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	tags, err := r.tagsByItem(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Speakers = speakers[items[i].ID]
		if items[i].Speakers == nil {
			items[i].Speakers = []entities.Speaker{}
		}
		items[i].TagIDs = tags[items[i].ID]
		if items[i].TagIDs == nil {
			items[i].TagIDs = []int64{}
		}
	}

	return items, nil
}

// Ordem da lista de oradores: quem ainda não tem weight (já falou ou fala agora)
// primeiro pela hora de início, depois a fila pelo weight.
func (r *ItemQueryRepository) speakersByItem(ctx context.Context, itemIDs []int64) (map[int64][]entities.Speaker, error) {
	query := `
		SELECT 
			id, item_id, user_id, begin_time, end_time, weight
		FROM 
			agenda_speaker
		WHERE 
			item_id = ANY($1)
		ORDER BY 
			item_id, weight NULLS FIRST, begin_time, id`

	rows, err := r.pool.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("ItemQueryRepository.speakersByItem - speaker query failed: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]entities.Speaker, len(itemIDs))
	for rows.Next() {
		var speaker entities.Speaker
		if err := rows.Scan(&speaker.ID, &speaker.ItemID, &speaker.UserID, &speaker.BeginTime, &speaker.EndTime, &speaker.Weight); err != nil {
			return nil, fmt.Errorf("ItemQueryRepository.speakersByItem - failed to scan speaker: %w", err)
		}
		result[speaker.ItemID] = append(result[speaker.ItemID], speaker)
	}

	return result, rows.Err()
}

// A ordem das tags é a ordem de associação (id da tabela de ligação).
func (r *ItemQueryRepository) tagsByItem(ctx context.Context, itemIDs []int64) (map[int64][]int64, error) {
	query := `
		SELECT 
			item_id, tag_id
		FROM 
			agenda_item_tags
		WHERE 
			item_id = ANY($1)
		ORDER BY 
			item_id, id`

	rows, err := r.pool.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("ItemQueryRepository.tagsByItem - tag query failed: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]int64, len(itemIDs))
	for rows.Next() {
		var itemID, tagID int64
		if err := rows.Scan(&itemID, &tagID); err != nil {
			return nil, fmt.Errorf("ItemQueryRepository.tagsByItem - failed to scan tag: %w", err)
		}
		result[itemID] = append(result[itemID], tagID)
	}

	return result, rows.Err()
}
