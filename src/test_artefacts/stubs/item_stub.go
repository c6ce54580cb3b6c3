package stubs

import (
	"agendaapi/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

type ItemStub struct {
	item entities.Item
}

func NewItemStub() ItemStub {
	item := entities.Item{
		ID:         int64(gofakeit.Number(1, 1000000)),
		ItemNumber: "",
		Title:      faker.Sentence(),
		Text:       faker.Paragraph(),
		Comment:    "",
		Closed:     false,
		Type:       entities.ItemTypeAgenda,
		Duration:   "00:15",
		Weight:     0,
		TagIDs:     []int64{},
		Speakers:   []entities.Speaker{},
	}

	return ItemStub{item: item}
}

func (is ItemStub) WithID(id int64) ItemStub {
	is.item.ID = id
	return is
}

func (is ItemStub) WithTitle(title string) ItemStub {
	is.item.Title = title
	return is
}

func (is ItemStub) WithItemNumber(itemNumber string) ItemStub {
	is.item.ItemNumber = itemNumber
	return is
}

func (is ItemStub) WithType(itemType entities.ItemType) ItemStub {
	is.item.Type = itemType
	return is
}

func (is ItemStub) WithWeight(weight int) ItemStub {
	is.item.Weight = weight
	return is
}

func (is ItemStub) WithParentID(parentID int64) ItemStub {
	is.item.ParentID = &parentID
	return is
}

func (is ItemStub) WithClosed(closed bool) ItemStub {
	is.item.Closed = closed
	return is
}

func (is ItemStub) WithSpeakerListClosed(closed bool) ItemStub {
	is.item.SpeakerListClosed = closed
	return is
}

func (is ItemStub) WithTagIDs(tagIDs ...int64) ItemStub {
	is.item.TagIDs = tagIDs
	return is
}

func (is ItemStub) WithSpeakers(speakers ...entities.Speaker) ItemStub {
	for i := range speakers {
		speakers[i].ItemID = is.item.ID
	}
	is.item.Speakers = speakers
	return is
}

func (is ItemStub) WithContent(content entities.ContentObject) ItemStub {
	is.item.Content = &content
	return is
}

func (is ItemStub) Get() entities.Item {
	return is.item
}
