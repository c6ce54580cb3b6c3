package serializers

import (
	"fmt"
	"net/http"
	"time"

	"agendaapi/src/domain/entities"
)

const (
	RouteUserDetail = "user-detail"
)

// SpeakerDTO é a representação externa de um orador: exatamente estes cinco campos.
type SpeakerDTO struct {
	ID        int64      `json:"id"`
	User      string     `json:"user"`
	BeginTime *time.Time `json:"begin_time"`
	EndTime   *time.Time `json:"end_time"`
	Weight    *int       `json:"weight"`
}

type SpeakerSerializer struct {
	urls Reverser
}

func NewSpeakerSerializer(reverser Reverser) (*SpeakerSerializer, error) {
	if !reverser.HasRoute(RouteUserDetail) {
		return nil, fmt.Errorf("serializers.NewSpeakerSerializer - route %q is not registered", RouteUserDetail)
	}
	return &SpeakerSerializer{urls: reverser}, nil
}

func (s *SpeakerSerializer) Serialize(req *http.Request, speaker entities.Speaker) (SpeakerDTO, error) {
	userURL, err := s.urls.Reverse(RouteUserDetail, speaker.UserID, req)
	if err != nil {
		return SpeakerDTO{}, fmt.Errorf("SpeakerSerializer.Serialize - speaker %d: %w", speaker.ID, err)
	}

	return SpeakerDTO{
		ID:        speaker.ID,
		User:      userURL,
		BeginTime: utcTime(speaker.BeginTime),
		EndTime:   utcTime(speaker.EndTime),
		Weight:    speaker.Weight,
	}, nil
}

func (s *SpeakerSerializer) SerializeMany(req *http.Request, speakers []entities.Speaker) ([]SpeakerDTO, error) {
	result := make([]SpeakerDTO, 0, len(speakers))
	for _, speaker := range speakers {
		dto, err := s.Serialize(req, speaker)
		if err != nil {
			return nil, err
		}
		result = append(result, dto)
	}
	return result, nil
}

// Deserialize valida o payload e aplica os campos graváveis (user, begin_time,
// end_time, weight) sobre instance. Com instance nil, parte de um orador vazio.
// O id é somente leitura e é ignorado.
func (s *SpeakerSerializer) Deserialize(payload []byte, partial bool, instance *entities.Speaker) (entities.Speaker, error) {
	var speaker entities.Speaker
	if instance != nil {
		speaker = *instance
	}

	reader, err := newFieldReader(payload, partial)
	if err != nil {
		return entities.Speaker{}, err
	}

	var userID *int64
	reader.Hyperlink("user", RouteUserDetail, true, false, s.urls, &userID)
	if userID != nil {
		speaker.UserID = *userID
	}

	reader.NullableTime("begin_time", &speaker.BeginTime)
	reader.NullableTime("end_time", &speaker.EndTime)
	reader.NullableInt("weight", &speaker.Weight)

	if err := reader.err(); err != nil {
		return entities.Speaker{}, err
	}

	return speaker, nil
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := t.UTC()
	return &value
}
