package test_seeder

import (
	"context"

	"agendaapi/src/domain/entities"
)

func (ts TestSeeder) SelectSpeakersByItemID(ctx context.Context, itemID int64) ([]entities.Speaker, error) {
	query := `SELECT id, item_id, user_id, begin_time, end_time, weight
			  FROM agenda_speaker WHERE item_id = $1 ORDER BY id`

	rows, err := ts.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var speakers []entities.Speaker
	for rows.Next() {
		var speaker entities.Speaker
		if err := rows.Scan(&speaker.ID, &speaker.ItemID, &speaker.UserID, &speaker.BeginTime, &speaker.EndTime, &speaker.Weight); err != nil {
			return nil, err
		}
		speakers = append(speakers, speaker)
	}

	return speakers, rows.Err()
}

func (ts TestSeeder) SelectTagIDsByItemID(ctx context.Context, itemID int64) ([]int64, error) {
	rows, err := ts.pool.Query(ctx, `SELECT tag_id FROM agenda_item_tags WHERE item_id = $1 ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tagIDs []int64
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, tagID)
	}

	return tagIDs, rows.Err()
}

// CountItemsByContent conta os itens ligados ao conteúdo (0 ou 1 pela constraint).
func (ts TestSeeder) CountItemsByContent(ctx context.Context, kind entities.ContentKind, objectID int64) (int, error) {
	var count int
	err := ts.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM agenda_item WHERE content_type = $1 AND object_id = $2`,
		string(kind), objectID,
	).Scan(&count)
	return count, err
}
