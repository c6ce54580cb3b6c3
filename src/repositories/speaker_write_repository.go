package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/postgres"
)

type SpeakerWriteRepository struct {
	writePool *pgxpool.Pool
	cache     CacheInvalidator
}

func NewSpeakerWriteRepository(writePool *pgxpool.Pool, cache CacheInvalidator) *SpeakerWriteRepository {
	return &SpeakerWriteRepository{writePool: writePool, cache: cache}
}

func (r *SpeakerWriteRepository) AddSpeaker(ctx context.Context, speaker entities.Speaker) (entities.Speaker, error) {
	query := `
		INSERT INTO 
			agenda_speaker (item_id, user_id, begin_time, end_time, weight)
		VALUES 
			($1, $2, $3, $4, $5)
		RETURNING 
			id`

	err := r.writePool.QueryRow(ctx, query,
		speaker.ItemID,
		speaker.UserID,
		postgres.NewNullTime(speaker.BeginTime),
		postgres.NewNullTime(speaker.EndTime),
		postgres.NewNullInt(speaker.Weight),
	).Scan(&speaker.ID)
	if postgres.IsForeignKeyViolation(err) {
		return entities.Speaker{}, fmt.Errorf("SpeakerWriteRepository.AddSpeaker - item %d: %w", speaker.ItemID, domain.ErrEntityNotFound)
	}
	if err != nil {
		return entities.Speaker{}, fmt.Errorf("SpeakerWriteRepository.AddSpeaker - insert failed: %w", err)
	}

	invalidateCache(ctx, r.cache, []int64{speaker.ItemID})

	return speaker, nil
}

func (r *SpeakerWriteRepository) UpdateSpeaker(ctx context.Context, speaker entities.Speaker) error {
	query := `
		UPDATE 
			agenda_speaker
		SET 
			user_id = $3, begin_time = $4, end_time = $5, weight = $6
		WHERE 
			id = $1 AND item_id = $2`

	tag, err := r.writePool.Exec(ctx, query,
		speaker.ID,
		speaker.ItemID,
		speaker.UserID,
		postgres.NewNullTime(speaker.BeginTime),
		postgres.NewNullTime(speaker.EndTime),
		postgres.NewNullInt(speaker.Weight),
	)
	if err != nil {
		return fmt.Errorf("SpeakerWriteRepository.UpdateSpeaker - update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SpeakerWriteRepository.UpdateSpeaker - speaker %d of item %d: %w", speaker.ID, speaker.ItemID, domain.ErrEntityNotFound)
	}

	invalidateCache(ctx, r.cache, []int64{speaker.ItemID})

	return nil
}

func (r *SpeakerWriteRepository) DeleteSpeaker(ctx context.Context, itemID int64, speakerID int64) error {
	tag, err := r.writePool.Exec(ctx, `DELETE FROM agenda_speaker WHERE id = $1 AND item_id = $2`, speakerID, itemID)
	if err != nil {
		return fmt.Errorf("SpeakerWriteRepository.DeleteSpeaker - delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SpeakerWriteRepository.DeleteSpeaker - speaker %d of item %d: %w", speakerID, itemID, domain.ErrEntityNotFound)
	}

	invalidateCache(ctx, r.cache, []int64{itemID})

	return nil
}
