package agenda_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
	"agendaapi/src/test_artefacts/comparer"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("Item writes", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("CreateItem", func() {
		It("should store the item and publish a created event", func() {
			// ARRANGE
			service, store, publisher := newService(stubs.NewItemStub().WithID(1).Get())
			item := stubs.NewItemStub().WithID(0).WithTitle("Verschiedenes").WithParentID(1).Get()

			// ACT
			created, err := service.CreateItem(ctx, item)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal(int64(2)))

			stored, err := store.GetItem(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Title).To(Equal("Verschiedenes"))

			Expect(publisher.EventTypes()).To(Equal([]string{domain.EventTypeItemCreated}))
			Expect(publisher.Events()[0].Data.Reference).To(Equal("item:2"))
			Expect(publisher.Events()[0].Data.Properties).To(HaveKey("title"))
		})

		It("should refuse a parent that does not exist", func() {
			service, _, publisher := newService()
			item := stubs.NewItemStub().WithID(0).WithParentID(42).Get()

			_, err := service.CreateItem(ctx, item)

			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(err.(*domain.ValidationError).ByField()).To(HaveKeyWithValue("parent", []string{"Invalid hyperlink - Object does not exist."}))
			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	Context("UpdateItem", func() {
		It("should apply the change on the current state and publish only changed fields", func() {
			// ARRANGE
			speaker := stubs.NewSpeakerStub().WithID(7).Get()
			content := stubs.NewContentObjectStub().WithID(3).Get()
			service, store, publisher := newService(
				stubs.NewItemStub().WithID(1).WithTitle("Alt").WithSpeakers(speaker).WithContent(content).Get(),
			)

			// ACT
			updated, err := service.UpdateItem(ctx, 1, func(current entities.Item) (entities.Item, error) {
				current.Title = "Neu"
				current.ID = 99
				current.Speakers = nil
				return current, nil
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ID).To(Equal(int64(1)))
			Expect(updated.Speakers).To(HaveLen(1))
			Expect(updated.Content.ID).To(Equal(int64(3)))

			stored, _ := store.GetItem(ctx, 1)
			Expect(stored.Title).To(Equal("Neu"))

			published := publisher.Events()
			Expect(published).To(HaveLen(1))
			Expect(published[0].EventType).To(Equal(domain.EventTypeItemUpdated))
			Expect(published[0].Data.Properties).To(Equal(map[string]domain.PropertyChange{
				"title": {Old: "Alt", New: "Neu"},
			}))
		})

		It("should not publish when nothing changed", func() {
			service, _, publisher := newService(stubs.NewItemStub().WithID(1).Get())

			_, err := service.UpdateItem(ctx, 1, func(current entities.Item) (entities.Item, error) {
				return current, nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.Events()).To(BeEmpty())
		})

		It("should return the error of the change untouched", func() {
			service, _, _ := newService(stubs.NewItemStub().WithID(1).Get())
			validationErr := domain.NewValidationError("title", "This field may not be blank.")

			_, err := service.UpdateItem(ctx, 1, func(current entities.Item) (entities.Item, error) {
				return entities.Item{}, validationErr
			})

			Expect(err).To(BeIdenticalTo(validationErr))
		})

		It("should fail with not found for an unknown item", func() {
			service, _, _ := newService()

			_, err := service.UpdateItem(ctx, 5, func(current entities.Item) (entities.Item, error) {
				Fail("change must not be called")
				return current, nil
			})

			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})

		DescribeTable("should refuse a parent that would create a cycle",
			func(itemID int64, parentID int64) {
				service, _, _ := newService(
					stubs.NewItemStub().WithID(1).Get(),
					stubs.NewItemStub().WithID(2).WithParentID(1).Get(),
					stubs.NewItemStub().WithID(3).WithParentID(2).Get(),
				)

				_, err := service.UpdateItem(ctx, itemID, func(current entities.Item) (entities.Item, error) {
					current.ParentID = &parentID
					return current, nil
				})

				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(err.(*domain.ValidationError).ByField()).To(HaveKeyWithValue("parent", []string{"An item can not be its own child."}))
			},
			Entry("itself", int64(2), int64(2)),
			Entry("its child", int64(1), int64(2)),
			Entry("its grandchild", int64(1), int64(3)),
		)

		It("should accept moving an item under a sibling", func() {
			service, store, _ := newService(
				stubs.NewItemStub().WithID(1).Get(),
				stubs.NewItemStub().WithID(2).Get(),
			)

			_, err := service.UpdateItem(ctx, 2, func(current entities.Item) (entities.Item, error) {
				parentID := int64(1)
				current.ParentID = &parentID
				return current, nil
			})

			Expect(err).NotTo(HaveOccurred())
			stored, _ := store.GetItem(ctx, 2)
			Expect(*stored.ParentID).To(Equal(int64(1)))
		})
	})

	Context("DeleteItem", func() {
		It("should delete the item and detach its children", func() {
			service, store, publisher := newService(
				stubs.NewItemStub().WithID(1).Get(),
				stubs.NewItemStub().WithID(2).WithParentID(1).Get(),
			)

			err := service.DeleteItem(ctx, 1)

			Expect(err).NotTo(HaveOccurred())
			_, err = store.GetItem(ctx, 1)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			child, _ := store.GetItem(ctx, 2)
			Expect(child.ParentID).To(BeNil())
			Expect(publisher.EventTypes()).To(Equal([]string{domain.EventTypeItemDeleted, domain.EventTypeItemUpdated}))
		})

		It("should publish the parent change of every detached child", func() {
			// ARRANGE
			service, _, publisher := newService(
				stubs.NewItemStub().WithID(1).Get(),
				stubs.NewItemStub().WithID(2).WithParentID(1).Get(),
				stubs.NewItemStub().WithID(3).Get(),
				stubs.NewItemStub().WithID(4).WithParentID(1).Get(),
			)

			// ACT
			err := service.DeleteItem(ctx, 1)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			detached := map[string]domain.PropertyChange{"parent": {Old: int64(1), New: nil}}
			Expect(publisher.Events()).To(BeComparableTo([]events.DomainEventWithMetadata{
				events.NewDomainEvent(domain.EventTypeItemDeleted, "item", 1, nil),
				events.NewDomainEvent(domain.EventTypeItemUpdated, "item", 2, detached),
				events.NewDomainEvent(domain.EventTypeItemUpdated, "item", 4, detached),
			}, comparer.IgnoreEventMetadata()))
		})

		It("should fail with not found for an unknown item", func() {
			service, _, publisher := newService()

			err := service.DeleteItem(ctx, 1)

			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	It("should not fail a write when publishing fails", func() {
		service, _, publisher := newService(stubs.NewItemStub().WithID(1).Get())
		publisher.Err = errors.New("kafka down")

		Expect(service.DeleteItem(ctx, 1)).To(Succeed())
	})
})
