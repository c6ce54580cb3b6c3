package stubs

import (
	"agendaapi/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

type ContentObjectStub struct {
	content entities.ContentObject
}

func NewContentObjectStub() ContentObjectStub {
	content := entities.ContentObject{
		Kind:            entities.ContentKindMotion,
		ID:              int64(gofakeit.Number(1, 100000)),
		Title:           faker.Sentence(),
		TitleSupplement: "",
	}

	return ContentObjectStub{content: content}
}

func (cs ContentObjectStub) WithKind(kind entities.ContentKind) ContentObjectStub {
	cs.content.Kind = kind
	return cs
}

func (cs ContentObjectStub) WithID(id int64) ContentObjectStub {
	cs.content.ID = id
	return cs
}

func (cs ContentObjectStub) WithTitle(title string, supplement string) ContentObjectStub {
	cs.content.Title = title
	cs.content.TitleSupplement = supplement
	return cs
}

func (cs ContentObjectStub) Get() entities.ContentObject {
	return cs.content
}
