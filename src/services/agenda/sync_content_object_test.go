package agenda_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("SyncContentObject", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should create an item for a new content object", func() {
		// ARRANGE
		service, store, publisher := newService()
		motion := stubs.NewContentObjectStub().WithKind(entities.ContentKindMotion).WithID(7).WithTitle("Antrag", "A1").Get()

		// ACT
		err := service.SyncContentObject(ctx, motion, false)

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		items, _ := store.ListItems(ctx, domain.ItemFilter{})
		Expect(items).To(HaveLen(1))
		Expect(items[0].Content).To(Equal(&motion))
		Expect(items[0].GetTitle()).To(Equal("Antrag"))
		Expect(publisher.EventTypes()).To(Equal([]string{domain.EventTypeItemCreated}))
		Expect(publisher.Events()[0].Data.Reference).To(Equal(fmt.Sprintf("item:%d", items[0].ID)))
		Expect(publisher.Events()[0].Data.Properties).To(HaveKeyWithValue("title", domain.PropertyChange{New: "Antrag"}))
	})

	It("should keep one item per content object and refresh its title", func() {
		motion := stubs.NewContentObjectStub().WithKind(entities.ContentKindMotion).WithID(7).WithTitle("Antrag", "").Get()
		service, store, publisher := newService(stubs.NewItemStub().WithID(3).WithContent(motion).Get())

		renamed := motion
		renamed.Title = "Geänderter Antrag"
		err := service.SyncContentObject(ctx, renamed, false)

		Expect(err).NotTo(HaveOccurred())
		items, _ := store.ListItems(ctx, domain.ItemFilter{})
		Expect(items).To(HaveLen(1))
		Expect(items[0].ID).To(Equal(int64(3)))
		Expect(items[0].GetTitle()).To(Equal("Geänderter Antrag"))
		Expect(publisher.EventTypes()).To(Equal([]string{domain.EventTypeItemUpdated}))
		Expect(publisher.Events()[0].Data.Properties).NotTo(HaveKey("title"))
	})

	It("should delete the item of a deleted content object", func() {
		assignment := stubs.NewContentObjectStub().WithKind(entities.ContentKindAssignment).WithID(2).Get()
		service, store, publisher := newService(stubs.NewItemStub().WithID(3).WithContent(assignment).Get())

		err := service.SyncContentObject(ctx, assignment, true)

		Expect(err).NotTo(HaveOccurred())
		_, err = store.GetItem(ctx, 3)
		Expect(err).To(MatchError(domain.ErrEntityNotFound))
		Expect(publisher.EventTypes()).To(Equal([]string{domain.EventTypeItemDeleted}))
	})

	It("should ignore the deletion of a content object without item", func() {
		service, _, publisher := newService()

		err := service.SyncContentObject(ctx, stubs.NewContentObjectStub().Get(), true)

		Expect(err).NotTo(HaveOccurred())
		Expect(publisher.Events()).To(BeEmpty())
	})

	It("should refuse an unknown content kind", func() {
		service, _, _ := newService()

		err := service.SyncContentObject(ctx, stubs.NewContentObjectStub().WithKind("topic").Get(), false)

		Expect(err).To(MatchError(domain.ErrValidation))
	})
})
