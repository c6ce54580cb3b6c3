package test_seeder

import (
	"context"
	"fmt"

	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/postgres"
)

func (ts TestSeeder) InsertTag(ctx context.Context, tag *entities.Tag) {
	err := ts.pool.QueryRow(ctx, `INSERT INTO core_tag (name) VALUES ($1) RETURNING id`, tag.Name).Scan(&tag.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertTag failed: %v", err))
	}
}

// InsertItem grava o item com content, tags (na ordem dada) e oradores, preenchendo os ids.
func (ts TestSeeder) InsertItem(ctx context.Context, item *entities.Item) {
	var contentType, objectID interface{}
	contentTitle, contentSubtitle := "", ""
	if item.Content != nil {
		contentType = string(item.Content.Kind)
		objectID = item.Content.ID
		contentTitle = item.Content.Title
		contentSubtitle = item.Content.TitleSupplement
	}

	query := `
		INSERT INTO agenda_item (item_number, title, text, comment, closed, type, duration, weight, parent_id,
			speaker_list_closed, content_type, object_id, content_title, content_title_supplement)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		item.ItemNumber,
		item.Title,
		item.Text,
		item.Comment,
		item.Closed,
		int(item.Type),
		item.Duration,
		item.Weight,
		postgres.NewNullInt64(item.ParentID),
		item.SpeakerListClosed,
		contentType,
		objectID,
		contentTitle,
		contentSubtitle,
	).Scan(&item.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertItem failed: %v", err))
	}

	for _, tagID := range item.TagIDs {
		_, err := ts.pool.Exec(ctx, `INSERT INTO agenda_item_tags (item_id, tag_id) VALUES ($1, $2)`, item.ID, tagID)
		if err != nil {
			panic(fmt.Sprintf("Seeder.InsertItem tag %d failed: %v", tagID, err))
		}
	}

	for i := range item.Speakers {
		item.Speakers[i].ItemID = item.ID
		ts.InsertSpeaker(ctx, &item.Speakers[i])
	}
}

func (ts TestSeeder) InsertSpeaker(ctx context.Context, speaker *entities.Speaker) {
	query := `
		INSERT INTO agenda_speaker (item_id, user_id, begin_time, end_time, weight)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		speaker.ItemID,
		speaker.UserID,
		postgres.NewNullTime(speaker.BeginTime),
		postgres.NewNullTime(speaker.EndTime),
		postgres.NewNullInt(speaker.Weight),
	).Scan(&speaker.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertSpeaker failed: %v", err))
	}
}
