package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agendaapi/src/domain/entities"
	"agendaapi/src/helper/env"
	"agendaapi/src/infra/postgres"
)

// meeting é uma pauta: um item raiz com os subitens na ordem.
type meeting struct {
	root     entities.Item
	children []entities.Item
}

func newSQLClient(maxConnections int) (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func seedPostgres(ctx context.Context, stats *runStats, numMeetings, bulkSize, numConsumers, numTags int) error {
	db, err := newSQLClient(numConsumers + 2)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	tagIDs, err := seedTags(ctx, db, numTags)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	meetings := make(chan meeting, bulkSize*numConsumers)

	for i := 0; i < numConsumers; i++ {
		wg.Add(1)
		go copyConsumer(ctx, &wg, db, meetings, bulkSize, i+1, stats)
	}

	wg.Add(1)
	go generate(ctx, &wg, meetings, numMeetings, func() meeting { return fakeMeeting(tagIDs) })

	wg.Wait()
	return nil
}

func seedTags(ctx context.Context, db *pgxpool.Pool, n int) ([]int64, error) {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("%s-%d", faker.Word(), i))
	}

	rows, err := db.Query(ctx, `
		INSERT INTO core_tag (name) SELECT unnest($1::text[])
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, names)
	if err != nil {
		return nil, fmt.Errorf("seedTags - %w", err)
	}

	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func fakeMeeting(tagIDs []int64) meeting {
	m := meeting{root: fakeItem(tagIDs)}
	m.root.Weight = rand.Intn(1000)

	numChildren := rand.Intn(6)
	for i := 0; i < numChildren; i++ {
		child := fakeItem(tagIDs)
		child.Weight = i
		m.children = append(m.children, child)
	}
	return m
}

func fakeItem(tagIDs []int64) entities.Item {
	item := entities.Item{
		Title:    gofakeit.Sentence(4),
		Text:     faker.Paragraph(),
		Closed:   gofakeit.Bool(),
		Type:     entities.ItemTypes[rand.Intn(len(entities.ItemTypes))],
		Duration: fmt.Sprintf("%02d:%02d", rand.Intn(3), rand.Intn(60)),
	}

	for _, index := range rand.Perm(len(tagIDs))[:rand.Intn(min(4, len(tagIDs)+1))] {
		item.TagIDs = append(item.TagIDs, tagIDs[index])
	}

	// quem já falou vem primeiro, depois a fila
	start := gofakeit.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UTC()
	numSpeakers := rand.Intn(7)
	for i := 0; i < numSpeakers; i++ {
		speaker := entities.Speaker{UserID: int64(gofakeit.Number(1, 5000))}
		if i < 2 {
			begin := start.Add(time.Duration(i) * 5 * time.Minute)
			end := begin.Add(time.Duration(gofakeit.Number(30, 300)) * time.Second)
			speaker.BeginTime, speaker.EndTime = &begin, &end
		} else {
			weight := i
			speaker.Weight = &weight
		}
		item.Speakers = append(item.Speakers, speaker)
	}

	return item
}

func copyConsumer(ctx context.Context, wg *sync.WaitGroup, db *pgxpool.Pool, meetings <-chan meeting, bulkSize, consumerID int, stats *runStats) {
	defer wg.Done()
	log.Printf("Consumer %d started", consumerID)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	bundle := make([]meeting, 0, bulkSize)

	flush := func() {
		if len(bundle) == 0 {
			return
		}
		if err := bulkInsert(ctx, db, bundle); err != nil {
			log.Printf("Consumer %d: bulk insert failed: %v", consumerID, err)
			stats.failed()
		} else {
			stats.done(len(bundle))
		}
		bundle = make([]meeting, 0, bulkSize)
	}

	for {
		select {
		case m, ok := <-meetings:
			if !ok {
				flush()
				log.Printf("Consumer %d stopping.", consumerID)
				return
			}
			bundle = append(bundle, m)
			if len(bundle) >= bulkSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			return
		}
	}
}

// bulkInsert reserva os ids na sequence para poder ligar pai, tags e oradores
// antes do COPY, que não devolve ids.
func bulkInsert(ctx context.Context, db *pgxpool.Pool, bundle []meeting) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	total := 0
	for _, m := range bundle {
		total += 1 + len(m.children)
	}

	rows, err := tx.Query(ctx, `SELECT nextval(pg_get_serial_sequence('agenda_item', 'id')) FROM generate_series(1, $1)`, total)
	if err != nil {
		return fmt.Errorf("failed to reserve item ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return fmt.Errorf("failed to reserve item ids: %w", err)
	}

	itemRows := make([][]any, 0, total)
	tagRows := make([][]any, 0)
	speakerRows := make([][]any, 0)

	add := func(item entities.Item) {
		item.ID, ids = ids[0], ids[1:]

		// um terço dos itens trata de uma moção
		var contentType any
		var objectID any
		if item.ID%3 == 0 {
			contentType, objectID = string(entities.ContentKindMotion), item.ID
		}

		itemRows = append(itemRows, []any{
			item.ID, item.Title, item.Text, item.Closed, int16(item.Type), item.Duration, item.Weight,
			item.ParentID, contentType, objectID,
		})
		for _, tagID := range item.TagIDs {
			tagRows = append(tagRows, []any{item.ID, tagID})
		}
		for _, speaker := range item.Speakers {
			speakerRows = append(speakerRows, []any{item.ID, speaker.UserID, speaker.BeginTime, speaker.EndTime, speaker.Weight})
		}
	}

	for _, m := range bundle {
		rootID := ids[0]
		add(m.root)
		for _, child := range m.children {
			child.ParentID = &rootID
			add(child)
		}
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"agenda_item", []string{"id", "title", "text", "closed", "type", "duration", "weight", "parent_id", "content_type", "object_id"}, itemRows},
		{"agenda_item_tags", []string{"item_id", "tag_id"}, tagRows},
		{"agenda_speaker", []string{"item_id", "user_id", "begin_time", "end_time", "weight"}, speakerRows},
	}

	for _, c := range copies {
		if len(c.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", c.table, err)
		}
	}

	return tx.Commit(ctx)
}
