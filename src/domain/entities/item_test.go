package entities_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain/entities"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("Item", func() {
	Context("GetTitle", func() {
		It("should prefer the title of the content object", func() {
			content := stubs.NewContentObjectStub().WithTitle("Antrag 1", "von Max").Get()
			item := stubs.NewItemStub().WithTitle("eigener Titel").WithContent(content).Get()

			Expect(item.GetTitle()).To(Equal("Antrag 1"))
			Expect(item.GetTitleSupplement()).To(Equal("von Max"))
		})

		It("should fall back to its own title", func() {
			item := stubs.NewItemStub().WithTitle("Sonstiges").Get()

			Expect(item.GetTitle()).To(Equal("Sonstiges"))
			Expect(item.GetTitleSupplement()).To(BeEmpty())
		})
	})

	DescribeTable("ItemNo",
		func(prefix string, number string, expected string) {
			item := stubs.NewItemStub().WithItemNumber(number).Get()

			Expect(item.ItemNo(prefix)).To(Equal(expected))
		},
		Entry("with prefix", "TOP", "3", "TOP 3"),
		Entry("without prefix", "", "3", "3"),
		Entry("without number", "TOP", "", ""),
	)

	It("should find its speakers by id", func() {
		speaker := stubs.NewSpeakerStub().WithID(4).Get()
		item := stubs.NewItemStub().WithSpeakers(speaker).Get()

		found, ok := item.SpeakerByID(4)
		Expect(ok).To(BeTrue())
		Expect(found.ItemID).To(Equal(item.ID))

		_, ok = item.SpeakerByID(5)
		Expect(ok).To(BeFalse())
	})

	It("should only accept the known item types", func() {
		Expect(entities.ItemTypeAgenda.Valid()).To(BeTrue())
		Expect(entities.ItemTypeHidden.Valid()).To(BeTrue())
		Expect(entities.ItemType(0).Valid()).To(BeFalse())
		Expect(entities.ContentKind("topic").Valid()).To(BeFalse())
	})
})

var _ = Describe("Speaker", func() {
	It("should be waiting until the speech begins", func() {
		waiting := stubs.NewSpeakerStub().Get()
		spoken := stubs.NewSpeakerStub().Spoken(time.Now(), time.Minute).Get()

		Expect(waiting.IsWaiting()).To(BeTrue())
		Expect(spoken.IsWaiting()).To(BeFalse())
	})
})
