package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/infra/kafka"
	"agendaapi/src/services/events"
)

type recordingProducer struct {
	topic    string
	messages []kafka.Message
	err      error
}

func (p *recordingProducer) Produce(messages []kafka.Message, topic string) error {
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return p.err
}

var _ = Describe("DomainEventPublisher", func() {
	var (
		producer  *recordingProducer
		publisher *events.DomainEventPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		producer = &recordingProducer{}
		publisher = events.NewDomainEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, "agenda-events")
	})

	It("should publish the event keyed by its reference with filtering headers", func() {
		// ARRANGE
		event := events.NewDomainEvent(domain.EventTypeItemUpdated, "item", 12, map[string]domain.PropertyChange{
			"title":  {Old: "a", New: "b"},
			"closed": {Old: false, New: true},
		})

		// ACT
		err := publisher.PublishSingleEvent(ctx, event)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(producer.topic).To(Equal("agenda-events"))
		Expect(producer.messages).To(HaveLen(1))

		message := producer.messages[0]
		Expect(message.Key).To(Equal("item:12"))
		Expect(message.Headers).To(Equal(map[string]string{
			"event_type":     "agenda.item.updated",
			"source_service": "agenda-api",
			"schema_version": "v1",
			"event_id":       event.EventID,
			"entity_type":    "item",
			"fields_changed": "closed,title",
		}))

		var body domain.DomainEvent
		Expect(json.Unmarshal(message.Value, &body)).To(Succeed())
		Expect(body.Data.Reference).To(Equal("item:12"))
		Expect(body.Data.Properties).To(HaveKeyWithValue("title", domain.PropertyChange{Old: "a", New: "b"}))
	})

	It("should give every event a new uuid", func() {
		first := events.NewDomainEvent(domain.EventTypeItemCreated, "item", 1, nil)
		second := events.NewDomainEvent(domain.EventTypeItemCreated, "item", 1, nil)

		Expect(uuid.Validate(first.EventID)).To(Succeed())
		Expect(first.EventID).NotTo(Equal(second.EventID))
		Expect(first.Data.Properties).NotTo(BeNil())
	})

	It("should not call kafka for an empty batch", func() {
		Expect(publisher.PublishDomainEvents(ctx, nil)).To(Succeed())
		Expect(producer.messages).To(BeEmpty())
	})

	It("should wrap producer failures", func() {
		producer.err = errors.New("broker down")

		err := publisher.PublishSingleEvent(ctx, events.NewDomainEvent(domain.EventTypeItemDeleted, "item", 3, nil))

		Expect(err).To(MatchError(ContainSubstring("agenda-events")))
		Expect(errors.Unwrap(err)).To(MatchError("broker down"))
	})
})
