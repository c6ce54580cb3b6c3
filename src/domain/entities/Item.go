package entities

import "strings"

type ItemType int

const (
	ItemTypeAgenda ItemType = 1
	ItemTypeHidden ItemType = 2
)

var ItemTypes = []ItemType{ItemTypeAgenda, ItemTypeHidden}

func (t ItemType) Valid() bool {
	return t == ItemTypeAgenda || t == ItemTypeHidden
}

// É um ponto da pauta de uma reunião.
type Item struct {
	ID                int64    `json:"id"`
	ItemNumber        string   `json:"item_number"`
	Title             string   `json:"title"`
	Text              string   `json:"text"`
	Comment           string   `json:"comment"`
	Closed            bool     `json:"closed"`
	Type              ItemType `json:"type"`
	Duration          string   `json:"duration"`
	Weight            int      `json:"weight"`
	ParentID          *int64   `json:"parent_id,omitempty"`
	SpeakerListClosed bool     `json:"speaker_list_closed"`

	// Ordem de associação.
	TagIDs   []int64   `json:"tag_ids"`
	Speakers []Speaker `json:"speakers"`

	// Nil quando o item não trata de nenhuma outra entidade.
	Content *ContentObject `json:"content,omitempty"`
}

// GetTitle returns the title of the content object when there is one.
func (i Item) GetTitle() string {
	if i.Content != nil {
		return i.Content.Title
	}
	return i.Title
}

func (i Item) GetTitleSupplement() string {
	if i.Content != nil {
		return i.Content.TitleSupplement
	}
	return ""
}

// ItemNo returns the number shown in the agenda, e.g. "TOP 3".
func (i Item) ItemNo(prefix string) string {
	if i.ItemNumber == "" {
		return ""
	}
	return strings.TrimSpace(prefix + " " + i.ItemNumber)
}

// SpeakerByID returns the speaker with the given id, if it belongs to the item.
func (i Item) SpeakerByID(speakerID int64) (Speaker, bool) {
	for _, speaker := range i.Speakers {
		if speaker.ID == speakerID {
			return speaker, true
		}
	}
	return Speaker{}, false
}
