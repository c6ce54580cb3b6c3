package stubs

import (
	"time"

	"agendaapi/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type SpeakerStub struct {
	speaker entities.Speaker
}

func NewSpeakerStub() SpeakerStub {
	weight := gofakeit.Number(1, 100)

	speaker := entities.Speaker{
		ID:     int64(gofakeit.Number(1, 1000000)),
		ItemID: int64(gofakeit.Number(1, 1000000)),
		UserID: int64(gofakeit.Number(1, 100000)),
		Weight: &weight,
	}

	return SpeakerStub{speaker: speaker}
}

func (ss SpeakerStub) WithID(id int64) SpeakerStub {
	ss.speaker.ID = id
	return ss
}

func (ss SpeakerStub) WithItemID(itemID int64) SpeakerStub {
	ss.speaker.ItemID = itemID
	return ss
}

func (ss SpeakerStub) WithUserID(userID int64) SpeakerStub {
	ss.speaker.UserID = userID
	return ss
}

func (ss SpeakerStub) WithWeight(weight int) SpeakerStub {
	ss.speaker.Weight = &weight
	return ss
}

func (ss SpeakerStub) WithoutWeight() SpeakerStub {
	ss.speaker.Weight = nil
	return ss
}

// Spoken marca o orador como já tendo falado, como acontece ao fim da fala.
func (ss SpeakerStub) Spoken(begin time.Time, duration time.Duration) SpeakerStub {
	begin = begin.UTC()
	end := begin.Add(duration)
	ss.speaker.BeginTime = &begin
	ss.speaker.EndTime = &end
	ss.speaker.Weight = nil
	return ss
}

func (ss SpeakerStub) Get() entities.Speaker {
	return ss.speaker
}
