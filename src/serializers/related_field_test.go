package serializers_test

import (
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain/entities"
	"agendaapi/src/helper/urls"
	"agendaapi/src/serializers"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("RelatedContentField", func() {
	var field *serializers.RelatedContentField

	BeforeEach(func() {
		field = serializers.NewRelatedContentField(newRegistry())
	})

	It("should map every content kind to a detail route", func() {
		for _, kind := range entities.ContentKinds {
			route, ok := field.RouteFor(kind)
			Expect(ok).To(BeTrue(), string(kind))
			Expect(route).To(Equal(string(kind) + "-detail"))
		}
		Expect(field.CheckRoutes()).To(Succeed())
	})

	It("should follow the scheme the request arrived with", func() {
		req := httptest.NewRequest("GET", "http://agenda.local/item/1/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		content := stubs.NewContentObjectStub().WithKind(entities.ContentKindMotion).WithID(7).Get()

		link, err := field.ToRepresentation(req, &content)

		Expect(err).NotTo(HaveOccurred())
		Expect(*link).To(Equal("https://agenda.local/motion/7/"))
	})

	It("should return nil when there is no content object", func() {
		req := httptest.NewRequest("GET", "http://example.org/item/1/", nil)

		link, err := field.ToRepresentation(req, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(link).To(BeNil())
	})

	It("should refuse an unknown kind", func() {
		req := httptest.NewRequest("GET", "http://example.org/item/1/", nil)
		content := stubs.NewContentObjectStub().WithKind("topic").Get()

		_, err := field.ToRepresentation(req, &content)

		Expect(err).To(MatchError(serializers.ErrUnknownContentKind))
	})

	It("should fail without a request", func() {
		content := stubs.NewContentObjectStub().Get()

		_, err := field.ToRepresentation(nil, &content)

		Expect(err).To(MatchError(urls.ErrMissingRequest))
	})

	It("should report a kind whose route is not registered", func() {
		field = serializers.NewRelatedContentField(newRegistry("assignment-detail"))

		Expect(field.CheckRoutes()).To(MatchError(urls.ErrNoReverseMatch))
	})
})
