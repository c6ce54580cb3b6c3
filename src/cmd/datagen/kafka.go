package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"

	"agendaapi/src/adapters/kafka/consumers"
	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/kafka"
)

func fakeContentObjectMessage() consumers.ContentObjectMessage {
	kind := entities.ContentKinds[rand.Intn(len(entities.ContentKinds))]

	msg := consumers.ContentObjectMessage{
		Kind:  string(kind),
		ID:    int64(gofakeit.Number(1, 10000)),
		Title: faker.Sentence(),
		// uma em vinte mensagens apaga o conteúdo
		Deleted: rand.Intn(20) == 0,
	}
	if kind == entities.ContentKindMotion {
		msg.TitleSupplement = fmt.Sprintf("(%s)", gofakeit.Name())
	}
	return msg
}

func produceContentObjects(ctx context.Context, stats *runStats, brokers, topic string, total, batchSize int, delay time.Duration) error {
	kafkaClient, err := kafka.NewKafkaClient(brokers, "", batchSize)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}
	defer kafkaClient.Close()

	sent := 0
	for total == -1 || sent < total {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		size := batchSize
		if total != -1 && total-sent < size {
			size = total - sent
		}

		messages := make([]kafka.Message, 0, size)
		for i := 0; i < size; i++ {
			msg := fakeContentObjectMessage()
			value, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("failed to marshal message: %w", err)
			}
			// mesma chave = mesma partição = ordem preservada por conteúdo
			messages = append(messages, kafka.Message{Key: fmt.Sprintf("%s:%d", msg.Kind, msg.ID), Value: value})
		}

		if err := kafkaClient.Produce(messages, topic); err != nil {
			log.Printf("Failed to send batch: %v", err)
			stats.failed()
			continue
		}

		sent += size
		stats.done(size)

		if delay > 0 {
			time.Sleep(delay)
		}
	}

	return nil
}
