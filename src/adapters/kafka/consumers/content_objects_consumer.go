package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/infra/kafka"
)

// ContentObjectMessage representa o schema da mensagem Kafka publicada pelos
// módulos donos de conteúdo (moções, eleições).
type ContentObjectMessage struct {
	Kind            string `json:"kind"`
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	TitleSupplement string `json:"title_supplement"`
	Deleted         bool   `json:"deleted"`
}

type ContentSyncer interface {
	SyncContentObject(ctx context.Context, content entities.ContentObject, deleted bool) error
}

type ContentObjectsConsumer struct {
	logger *slog.Logger
	syncer ContentSyncer
}

func NewContentObjectsConsumer(logger *slog.Logger, syncer ContentSyncer) *ContentObjectsConsumer {
	return &ContentObjectsConsumer{
		logger: logger,
		syncer: syncer,
	}
}

func (c *ContentObjectsConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting content objects consumer", "topic", topic)

	return kafkaClient.Consumer(ctx, c.HandleMessages, topic)
}

// HandleMessages aplica um lote. Dentro do lote vale a última mensagem de cada
// conteúdo. Mensagens malformadas ou inválidas são logadas e descartadas;
// qualquer outro erro devolve o lote inteiro para reprocessamento.
func (c *ContentObjectsConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Info("Processing content objects batch", "count", len(messages))

	latest := make(map[string]ContentObjectMessage, len(messages))
	order := make([]string, 0, len(messages))

	for _, msg := range messages {
		var contentMsg ContentObjectMessage
		if err := json.Unmarshal(msg.Value, &contentMsg); err != nil {
			c.logger.Error("Skipping malformed content object message",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			continue
		}

		key := fmt.Sprintf("%s:%d", contentMsg.Kind, contentMsg.ID)
		if _, exists := latest[key]; !exists {
			order = append(order, key)
		}
		latest[key] = contentMsg
	}

	skipped := 0
	for _, key := range order {
		contentMsg := latest[key]
		content := entities.ContentObject{
			Kind:            entities.ContentKind(contentMsg.Kind),
			ID:              contentMsg.ID,
			Title:           contentMsg.Title,
			TitleSupplement: contentMsg.TitleSupplement,
		}

		err := c.syncer.SyncContentObject(ctx, content, contentMsg.Deleted)
		if errors.Is(err, domain.ErrValidation) {
			c.logger.Warn("Skipping invalid content object message",
				"error", err,
				"content", key)
			skipped++
			continue
		}
		if err != nil {
			c.logger.Error("Failed to sync content object",
				"error", err,
				"content", key)
			return fmt.Errorf("ContentObjectsConsumer.HandleMessages - content %s: %w", key, err)
		}
	}

	c.logger.Info("Successfully processed content objects batch",
		"count", len(messages),
		"contentsAggregated", len(order),
		"skipped", skipped)

	return nil
}
