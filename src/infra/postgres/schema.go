package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema cria as tabelas da pauta. content_type/object_id formam a referência
// genérica ao assunto do item; content_title* são cópias mantidas pelo consumidor.
const Schema = `
CREATE TABLE IF NOT EXISTS core_tag (
	id   BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS agenda_item (
	id                       BIGSERIAL PRIMARY KEY,
	item_number              VARCHAR(255) NOT NULL DEFAULT '',
	title                    VARCHAR(255) NOT NULL,
	text                     TEXT NOT NULL DEFAULT '',
	comment                  TEXT NOT NULL DEFAULT '',
	closed                   BOOLEAN NOT NULL DEFAULT FALSE,
	type                     SMALLINT NOT NULL DEFAULT 1,
	duration                 VARCHAR(5) NOT NULL DEFAULT '',
	weight                   INTEGER NOT NULL DEFAULT 0,
	parent_id                BIGINT REFERENCES agenda_item (id) ON DELETE SET NULL,
	speaker_list_closed      BOOLEAN NOT NULL DEFAULT FALSE,
	content_type             VARCHAR(32),
	object_id                BIGINT,
	content_title            VARCHAR(255) NOT NULL DEFAULT '',
	content_title_supplement VARCHAR(255) NOT NULL DEFAULT '',
	UNIQUE (content_type, object_id)
);

CREATE INDEX IF NOT EXISTS agenda_item_parent_idx ON agenda_item (parent_id);

CREATE TABLE IF NOT EXISTS agenda_item_tags (
	id      BIGSERIAL PRIMARY KEY,
	item_id BIGINT NOT NULL REFERENCES agenda_item (id) ON DELETE CASCADE,
	tag_id  BIGINT NOT NULL REFERENCES core_tag (id) ON DELETE CASCADE,
	UNIQUE (item_id, tag_id)
);

CREATE TABLE IF NOT EXISTS agenda_speaker (
	id         BIGSERIAL PRIMARY KEY,
	item_id    BIGINT NOT NULL REFERENCES agenda_item (id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL,
	begin_time TIMESTAMPTZ,
	end_time   TIMESTAMPTZ,
	weight     INTEGER
);

CREATE INDEX IF NOT EXISTS agenda_speaker_item_idx ON agenda_speaker (item_id);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres.EnsureSchema - %w", err)
	}
	return nil
}
