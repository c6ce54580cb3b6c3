package repositories_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/repositories"
	"agendaapi/src/test_artefacts/comparer"
	"agendaapi/src/test_artefacts/stubs"
	"agendaapi/src/test_artefacts/test_seeder"
)

var _ = Describe("Item repositories", func() {
	var (
		ctx                    context.Context
		testSeeder             test_seeder.TestSeeder
		itemQueryRepository    *repositories.ItemQueryRepository
		itemWriteRepository    *repositories.ItemWriteRepository
		speakerWriteRepository *repositories.SpeakerWriteRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		readWriteClient := newTestDatabase()

		testSeeder = test_seeder.New(readWriteClient.GetWritePool())
		testSeeder.EnsureSchema(ctx)
		testSeeder.TruncateTables(ctx)

		cache := repositories.NewCachedItemQueryRepository(nil, nil)
		itemQueryRepository = repositories.NewItemQueryRepository(readWriteClient.GetWritePool())
		itemWriteRepository = repositories.NewItemWriteRepository(readWriteClient.GetWritePool(), cache)
		speakerWriteRepository = repositories.NewSpeakerWriteRepository(readWriteClient.GetWritePool(), cache)
	})

	Context("ItemQueryRepository", func() {
		It("should load speakers in list order and tags in association order", func() {
			// ARRANGE
			tagA := &entities.Tag{Name: "Finanzen"}
			tagB := &entities.Tag{Name: "Satzung"}
			testSeeder.InsertTag(ctx, tagA)
			testSeeder.InsertTag(ctx, tagB)

			spokenAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
			item := stubs.NewItemStub().
				WithTagIDs(tagB.ID, tagA.ID).
				WithContent(stubs.NewContentObjectStub().WithKind(entities.ContentKindMotion).WithID(7).WithTitle("Antrag", "(A1)").Get()).
				WithSpeakers(
					stubs.NewSpeakerStub().WithUserID(1).WithWeight(2).Get(),
					stubs.NewSpeakerStub().WithUserID(2).Spoken(spokenAt, time.Minute).Get(),
					stubs.NewSpeakerStub().WithUserID(3).WithWeight(1).Get(),
				).Get()
			testSeeder.InsertItem(ctx, &item)

			// ACT
			loaded, err := itemQueryRepository.GetItem(ctx, item.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.TagIDs).To(Equal([]int64{tagB.ID, tagA.ID}))
			Expect(loaded.Content).To(Equal(&entities.ContentObject{
				Kind: entities.ContentKindMotion, ID: 7, Title: "Antrag", TitleSupplement: "(A1)",
			}))

			userIDs := make([]int64, 0, len(loaded.Speakers))
			for _, speaker := range loaded.Speakers {
				userIDs = append(userIDs, speaker.UserID)
			}
			// quem já falou (weight nulo) primeiro, depois a fila por weight
			Expect(userIDs).To(Equal([]int64{2, 3, 1}))
			Expect(loaded.Speakers[0].BeginTime).To(BeComparableTo(&spokenAt, comparer.TimeWithinTolerance(1)))
		})

		It("should filter by tag and keep the agenda order", func() {
			tag := &entities.Tag{Name: "Wahlen"}
			testSeeder.InsertTag(ctx, tag)

			first := stubs.NewItemStub().WithWeight(2).WithTagIDs(tag.ID).Get()
			second := stubs.NewItemStub().WithWeight(1).WithTagIDs(tag.ID).Get()
			other := stubs.NewItemStub().WithWeight(0).Get()
			testSeeder.InsertItem(ctx, &first)
			testSeeder.InsertItem(ctx, &second)
			testSeeder.InsertItem(ctx, &other)

			items, err := itemQueryRepository.ListItems(ctx, domain.ItemFilter{TagID: &tag.ID})

			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(items[0].ID).To(Equal(second.ID))
			Expect(items[1].ID).To(Equal(first.ID))
			Expect(items[0].Speakers).NotTo(BeNil())
		})

		It("should return not found for a missing item", func() {
			_, err := itemQueryRepository.GetItem(ctx, 404)

			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})

	Context("ItemWriteRepository", func() {
		It("should create and update an item replacing its tags", func() {
			tagA := &entities.Tag{Name: "A"}
			tagB := &entities.Tag{Name: "B"}
			testSeeder.InsertTag(ctx, tagA)
			testSeeder.InsertTag(ctx, tagB)

			created, err := itemWriteRepository.CreateItem(ctx, stubs.NewItemStub().WithTitle("Bericht").WithTagIDs(tagA.ID).Get())
			Expect(err).NotTo(HaveOccurred())

			created.Title = "Bericht des Vorstands"
			created.TagIDs = []int64{tagB.ID, tagA.ID}
			Expect(itemWriteRepository.UpdateItem(ctx, created)).To(Succeed())

			loaded, err := itemQueryRepository.GetItem(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Title).To(Equal("Bericht des Vorstands"))
			Expect(testSeeder.SelectTagIDsByItemID(ctx, created.ID)).To(Equal([]int64{tagB.ID, tagA.ID}))
		})

		It("should move the children to the root when the parent is deleted", func() {
			parent := stubs.NewItemStub().Get()
			testSeeder.InsertItem(ctx, &parent)
			child := stubs.NewItemStub().WithParentID(parent.ID).Get()
			testSeeder.InsertItem(ctx, &child)
			other := stubs.NewItemStub().WithParentID(parent.ID).Get()
			testSeeder.InsertItem(ctx, &other)

			detached, err := itemWriteRepository.DeleteItem(ctx, parent.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(detached).To(Equal([]int64{child.ID, other.ID}))
			loaded, err := itemQueryRepository.GetItem(ctx, child.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ParentID).To(BeNil())

			_, err = itemWriteRepository.DeleteItem(ctx, parent.ID)
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})

		It("should store a tree in one transaction", func() {
			root := stubs.NewItemStub().Get()
			leaf := stubs.NewItemStub().Get()
			testSeeder.InsertItem(ctx, &root)
			testSeeder.InsertItem(ctx, &leaf)

			err := itemWriteRepository.SetTree(ctx, []domain.TreePosition{
				{ID: root.ID, Weight: 0},
				{ID: leaf.ID, ParentID: &root.ID, Weight: 0},
			})

			Expect(err).NotTo(HaveOccurred())
			loaded, _ := itemQueryRepository.GetItem(ctx, leaf.ID)
			Expect(*loaded.ParentID).To(Equal(root.ID))

			err = itemWriteRepository.SetTree(ctx, []domain.TreePosition{{ID: root.ID, Weight: 3}, {ID: 999, Weight: 1}})
			Expect(err).To(MatchError(domain.ErrEntityNotFound))
			loaded, _ = itemQueryRepository.GetItem(ctx, root.ID)
			Expect(loaded.Weight).To(Equal(0))
		})

		It("should keep one item per content object", func() {
			content := stubs.NewContentObjectStub().WithKind(entities.ContentKindAssignment).WithID(3).WithTitle("Vorstandswahl", "").Get()

			firstID, created, err := itemWriteRepository.UpsertContentItem(ctx, content)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			content.Title = "Wahl des Vorstands"
			secondID, created, err := itemWriteRepository.UpsertContentItem(ctx, content)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())

			Expect(secondID).To(Equal(firstID))
			Expect(testSeeder.CountItemsByContent(ctx, entities.ContentKindAssignment, 3)).To(Equal(1))
			loaded, _ := itemQueryRepository.GetItem(ctx, firstID)
			Expect(loaded.GetTitle()).To(Equal("Wahl des Vorstands"))

			deletedID, found, err := itemWriteRepository.DeleteContentItem(ctx, entities.ContentKindAssignment, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(deletedID).To(Equal(firstID))

			_, found, err = itemWriteRepository.DeleteContentItem(ctx, entities.ContentKindAssignment, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})
	})

	Context("SpeakerWriteRepository", func() {
		It("should add, update and delete speakers of an item", func() {
			item := stubs.NewItemStub().Get()
			testSeeder.InsertItem(ctx, &item)

			speaker, err := speakerWriteRepository.AddSpeaker(ctx, stubs.NewSpeakerStub().WithItemID(item.ID).WithUserID(8).WithWeight(1).Get())
			Expect(err).NotTo(HaveOccurred())

			begin := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
			speaker.BeginTime = &begin
			speaker.Weight = nil
			Expect(speakerWriteRepository.UpdateSpeaker(ctx, speaker)).To(Succeed())

			stored, err := testSeeder.SelectSpeakersByItemID(ctx, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(1))
			Expect(stored[0].Weight).To(BeNil())
			Expect(stored[0].BeginTime.Equal(begin)).To(BeTrue())

			Expect(speakerWriteRepository.DeleteSpeaker(ctx, item.ID+1, speaker.ID)).To(MatchError(domain.ErrEntityNotFound))
			Expect(speakerWriteRepository.DeleteSpeaker(ctx, item.ID, speaker.ID)).To(Succeed())
		})

		It("should return not found for a missing item", func() {
			_, err := speakerWriteRepository.AddSpeaker(ctx, stubs.NewSpeakerStub().WithItemID(12345).Get())

			Expect(err).To(MatchError(domain.ErrEntityNotFound))
		})
	})
})
