package serializers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"agendaapi/src/domain"
	"agendaapi/src/helper/urls"
	"agendaapi/src/serializers"
	"agendaapi/src/test_artefacts/comparer"
	"agendaapi/src/test_artefacts/stubs"
)

var _ = Describe("SpeakerSerializer", func() {
	var (
		serializer *serializers.SpeakerSerializer
		req        *http.Request
		err        error
	)

	BeforeEach(func() {
		serializer, err = serializers.NewSpeakerSerializer(newRegistry())
		Expect(err).NotTo(HaveOccurred())

		req = httptest.NewRequest("GET", "http://example.org/item/1/", nil)
	})

	Context("Serialize", func() {
		When("the speaker is waiting", func() {
			It("should expose exactly the five documented fields", func() {
				// ARRANGE
				speaker := stubs.NewSpeakerStub().WithUserID(12).WithWeight(3).Get()

				// ACT
				result, err := serializer.Serialize(req, speaker)
				Expect(err).NotTo(HaveOccurred())
				raw, err := json.Marshal(result)
				Expect(err).NotTo(HaveOccurred())

				var fields map[string]interface{}
				Expect(json.Unmarshal(raw, &fields)).To(Succeed())

				// ASSERT
				Expect(fields).To(HaveLen(5))
				Expect(fields).To(HaveKeyWithValue("id", BeNumerically("==", speaker.ID)))
				Expect(fields).To(HaveKeyWithValue("user", "http://example.org/user/12/"))
				Expect(fields).To(HaveKeyWithValue("begin_time", BeNil()))
				Expect(fields).To(HaveKeyWithValue("end_time", BeNil()))
				Expect(fields).To(HaveKeyWithValue("weight", BeNumerically("==", 3)))
			})
		})

		When("the speaker has spoken", func() {
			It("should render begin and end time in UTC", func() {
				// ARRANGE
				begin := time.Date(2015, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
				speaker := stubs.NewSpeakerStub().Spoken(begin, 2*time.Minute).Get()

				// ACT
				result, err := serializer.Serialize(req, speaker)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(result.BeginTime.Location()).To(Equal(time.UTC))
				Expect(*result.BeginTime).To(BeTemporally("==", begin))
				Expect(*result.EndTime).To(BeTemporally("==", begin.Add(2*time.Minute)))
				Expect(result.Weight).To(BeNil())
			})
		})

		When("the request is missing", func() {
			It("should fail with ErrMissingRequest", func() {
				_, err := serializer.Serialize(nil, stubs.NewSpeakerStub().Get())

				Expect(err).To(MatchError(urls.ErrMissingRequest))
			})
		})
	})

	Context("Deserialize", func() {
		When("the payload comes from Serialize", func() {
			It("should reproduce the writable fields", func() {
				// ARRANGE
				begin := time.Date(2015, 3, 1, 10, 0, 0, 123456000, time.UTC)
				original := stubs.NewSpeakerStub().Spoken(begin, 90*time.Second).WithWeight(4).Get()

				dto, err := serializer.Serialize(req, original)
				Expect(err).NotTo(HaveOccurred())
				payload, err := json.Marshal(dto)
				Expect(err).NotTo(HaveOccurred())

				// ACT
				result, err := serializer.Deserialize(payload, false, nil)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(BeComparableTo(
					original,
					comparer.IgnoreGeneratedIDs(),
					comparer.TimeWithinTolerance(0),
				))
			})
		})

		When("the payload is partial", func() {
			It("should keep the fields of the instance that are not sent", func() {
				// ARRANGE
				instance := stubs.NewSpeakerStub().WithUserID(8).WithWeight(2).Get()
				payload := []byte(`{"begin_time": "2015-03-01T10:00:00Z"}`)

				// ACT
				result, err := serializer.Deserialize(payload, true, &instance)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(result.ID).To(Equal(instance.ID))
				Expect(result.UserID).To(Equal(int64(8)))
				Expect(*result.Weight).To(Equal(2))
				Expect(*result.BeginTime).To(BeTemporally("==", time.Date(2015, 3, 1, 10, 0, 0, 0, time.UTC)))
				Expect(result.EndTime).To(BeNil())
			})

			It("should clear a nullable field sent as null", func() {
				instance := stubs.NewSpeakerStub().WithWeight(2).Get()

				result, err := serializer.Deserialize([]byte(`{"weight": null}`), true, &instance)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Weight).To(BeNil())
			})
		})

		When("the datetime omits seconds or zone", func() {
			DescribeTable("should accept every documented datetime form",
				func(value string, expected time.Time) {
					// ARRANGE
					instance := stubs.NewSpeakerStub().Get()
					payload, _ := json.Marshal(map[string]string{"begin_time": value})

					// ACT
					result, err := serializer.Deserialize(payload, true, &instance)

					// ASSERT
					Expect(err).NotTo(HaveOccurred())
					Expect(result.BeginTime.Location()).To(Equal(time.UTC))
					Expect(*result.BeginTime).To(BeTemporally("==", expected))
				},
				Entry("full with fraction", "2015-03-01T10:00:00.250000Z", time.Date(2015, 3, 1, 10, 0, 0, 250000000, time.UTC)),
				Entry("minutes with zone", "2015-03-01T10:00Z", time.Date(2015, 3, 1, 10, 0, 0, 0, time.UTC)),
				Entry("minutes with offset", "2015-03-01T10:00+01:00", time.Date(2015, 3, 1, 9, 0, 0, 0, time.UTC)),
				Entry("seconds without zone", "2015-03-01T10:00:00", time.Date(2015, 3, 1, 10, 0, 0, 0, time.UTC)),
				Entry("fraction without zone", "2015-03-01T10:00:00.5", time.Date(2015, 3, 1, 10, 0, 0, 500000000, time.UTC)),
				Entry("minutes without zone", "2015-03-01T10:00", time.Date(2015, 3, 1, 10, 0, 0, 0, time.UTC)),
			)

			It("should still refuse a date without time", func() {
				instance := stubs.NewSpeakerStub().Get()

				_, err := serializer.Deserialize([]byte(`{"begin_time": "2015-03-01"}`), true, &instance)

				Expect(err).To(MatchError(domain.ErrValidation))
			})
		})

		When("the weight does not fit the database column", func() {
			It("should report the bound it exceeds", func() {
				instance := stubs.NewSpeakerStub().Get()

				_, err := serializer.Deserialize([]byte(`{"weight": -2147483649}`), true, &instance)

				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(err.(*domain.ValidationError).ByField()).To(Equal(map[string][]string{
					"weight": {"Ensure this value is greater than or equal to -2147483648."},
				}))
			})
		})

		When("the payload is invalid", func() {
			It("should report every invalid field", func() {
				// ARRANGE
				payload := []byte(`{"begin_time": "yesterday", "weight": "heavy"}`)

				// ACT
				_, err := serializer.Deserialize(payload, false, nil)

				// ASSERT
				Expect(err).To(MatchError(domain.ErrValidation))

				var validationErr *domain.ValidationError
				Expect(errors.As(err, &validationErr)).To(BeTrue())
				Expect(validationErr.ByField()).To(Equal(map[string][]string{
					"user":       {"This field is required."},
					"begin_time": {"Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."},
					"weight":     {"A valid integer is required."},
				}))
			})

			It("should refuse a user that is not a user hyperlink", func() {
				payload := []byte(`{"user": "http://example.org/motion/3/"}`)

				_, err := serializer.Deserialize(payload, false, nil)

				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(err.(*domain.ValidationError).ByField()).To(HaveKeyWithValue("user", []string{"Invalid hyperlink - Incorrect URL match."}))
			})

			It("should refuse a user given as a raw id", func() {
				_, err := serializer.Deserialize([]byte(`{"user": 3}`), false, nil)

				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(err.(*domain.ValidationError).ByField()).To(HaveKeyWithValue("user", []string{"Incorrect type. Expected URL string, received int."}))
			})

			It("should refuse a payload that is not an object", func() {
				_, err := serializer.Deserialize([]byte(`[1, 2]`), false, nil)

				Expect(err).To(MatchError(domain.ErrValidation))
			})
		})
	})

	Context("NewSpeakerSerializer", func() {
		It("should require the user route", func() {
			_, err := serializers.NewSpeakerSerializer(newRegistry("user-detail"))

			Expect(err).To(HaveOccurred())
		})
	})
})
