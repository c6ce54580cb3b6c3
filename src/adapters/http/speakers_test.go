package http_test

import (
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/test_artefacts/comparer"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("Speaker endpoints", func() {
	Context("POST manage_speaker/", func() {
		It("should add the user to the list of speakers", func() {
			// ARRANGE
			api := newTestAPI(stubs.NewItemStub().WithID(1).Get())

			// ACT
			response := api.do(http.MethodPost, "/rest/agenda/item/1/manage_speaker/", map[string]interface{}{"user": 5})

			// ASSERT
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(json.RawMessage(response.Body.Bytes())).To(BeComparableTo(
				json.RawMessage(`{"detail": "User 5 was successfully added to the list of speakers."}`),
				comparer.JSONRawMessage(),
			))
			Expect(api.publisher.EventTypes()).To(Equal([]string{domain.EventTypeSpeakerAdded}))
		})

		It("should refuse a closed list with the reason in detail", func() {
			api := newTestAPI(stubs.NewItemStub().WithID(1).WithSpeakerListClosed(true).Get())

			response := api.do(http.MethodPost, "/rest/agenda/item/1/manage_speaker/", map[string]interface{}{"user": 5})

			Expect(response.Code).To(Equal(http.StatusBadRequest))
			Expect(decode[map[string]string](response)).To(HaveKeyWithValue("detail", domain.ErrSpeakerListClosed.Error()))
		})

		It("should refuse a request without user", func() {
			api := newTestAPI(stubs.NewItemStub().WithID(1).Get())

			response := api.do(http.MethodPost, "/rest/agenda/item/1/manage_speaker/", map[string]interface{}{})

			Expect(response.Code).To(Equal(http.StatusBadRequest))
			Expect(decode[map[string]string](response)).To(HaveKeyWithValue("detail", "Invalid user ID."))
		})

		It("should answer 404 for an unknown item", func() {
			api := newTestAPI()

			response := api.do(http.MethodPost, "/rest/agenda/item/3/manage_speaker/", map[string]interface{}{"user": 5})

			Expect(response.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("DELETE manage_speaker/", func() {
		It("should remove the speaker", func() {
			item := stubs.NewItemStub().WithID(1).WithSpeakers(
				stubs.NewSpeakerStub().WithID(4).WithUserID(5).WithWeight(1).Get(),
			).Get()
			api := newTestAPI(item)

			response := api.do(http.MethodDelete, "/rest/agenda/item/1/manage_speaker/", map[string]interface{}{"speaker": 4})

			Expect(response.Code).To(Equal(http.StatusOK))
			body := decode[map[string]interface{}](api.do(http.MethodGet, "/rest/agenda/item/1/", nil))
			Expect(body["speaker_set"]).To(BeEmpty())
		})
	})

	Context("PATCH speakers/{speaker_id}/", func() {
		It("should record when the speaker started and stopped", func() {
			item := stubs.NewItemStub().WithID(1).WithSpeakers(
				stubs.NewSpeakerStub().WithID(4).WithUserID(5).WithWeight(1).Get(),
			).Get()
			api := newTestAPI(item)
			begin := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

			response := api.do(http.MethodPatch, "/rest/agenda/item/1/speakers/4/", map[string]interface{}{
				"begin_time": begin.Format(time.RFC3339),
				"end_time":   begin.Add(5 * time.Minute).Format(time.RFC3339),
				"weight":     nil,
			})

			Expect(response.Code).To(Equal(http.StatusOK))
			body := decode[map[string]interface{}](response)
			Expect(body["user"]).To(Equal("http://example.org/rest/users/user/5/"))
			Expect(body["begin_time"]).To(Equal("2024-03-01T10:00:00Z"))
			Expect(body["weight"]).To(BeNil())
		})

		It("should reject an end before the begin", func() {
			item := stubs.NewItemStub().WithID(1).WithSpeakers(
				stubs.NewSpeakerStub().WithID(4).WithUserID(5).WithWeight(1).Get(),
			).Get()
			api := newTestAPI(item)

			response := api.do(http.MethodPatch, "/rest/agenda/item/1/speakers/4/", map[string]interface{}{
				"begin_time": "2024-03-01T10:00:00Z",
				"end_time":   "2024-03-01T09:00:00Z",
			})

			Expect(response.Code).To(Equal(http.StatusBadRequest))
			Expect(decode[map[string][]string](response)).To(HaveKey("end_time"))
		})

		It("should answer 404 for a speaker of another item", func() {
			api := newTestAPI(stubs.NewItemStub().WithID(1).Get())

			response := api.do(http.MethodPatch, "/rest/agenda/item/1/speakers/99/", map[string]interface{}{"weight": 2})

			Expect(response.Code).To(Equal(http.StatusNotFound))
		})
	})
})
