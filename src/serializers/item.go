package serializers

import (
	"fmt"
	"net/http"

	"agendaapi/src/domain/entities"
	"agendaapi/src/helper/urls"
)

const (
	RouteItemDetail = "item-detail"
	RouteTagDetail  = "tag-detail"

	titleMaxLength    = 255
	durationMaxLength = 5
)

// ItemDTO é a representação externa de um item da pauta. As colunas internas
// da referência genérica (content_type, object_id) nunca aparecem aqui.
type ItemDTO struct {
	ID                 int64        `json:"id"`
	URL                string       `json:"url"`
	ItemNumber         string       `json:"item_number"`
	Title              string       `json:"title"`
	Text               string       `json:"text"`
	Comment            string       `json:"comment"`
	Closed             bool         `json:"closed"`
	Type               int          `json:"type"`
	Duration           string       `json:"duration"`
	Weight             int          `json:"weight"`
	Parent             *string      `json:"parent"`
	SpeakerListClosed  bool         `json:"speaker_list_closed"`
	Tags               []string     `json:"tags"`
	GetTitle           string       `json:"get_title"`
	GetTitleSupplement string       `json:"get_title_supplement"`
	ItemNo             string       `json:"item_no"`
	SpeakerSet         []SpeakerDTO `json:"speaker_set"`
	ContentObject      *string      `json:"content_object"`
}

type ItemSerializer struct {
	urls          Reverser
	speakers      *SpeakerSerializer
	contentObject *RelatedContentField
	numberPrefix  string
}

// NewItemSerializer falha quando alguma rota usada nos hyperlinks não está
// registrada, para que o erro apareça na inicialização e não em uma resposta.
func NewItemSerializer(reverser Reverser, numberPrefix string) (*ItemSerializer, error) {
	for _, route := range []string{RouteItemDetail, RouteTagDetail} {
		if !reverser.HasRoute(route) {
			return nil, fmt.Errorf("serializers.NewItemSerializer - route %q: %w", route, urls.ErrNoReverseMatch)
		}
	}

	speakers, err := NewSpeakerSerializer(reverser)
	if err != nil {
		return nil, err
	}

	contentObject := NewRelatedContentField(reverser)
	if err := contentObject.CheckRoutes(); err != nil {
		return nil, fmt.Errorf("serializers.NewItemSerializer - %w", err)
	}

	return &ItemSerializer{
		urls:          reverser,
		speakers:      speakers,
		contentObject: contentObject,
		numberPrefix:  numberPrefix,
	}, nil
}

func (s *ItemSerializer) Speakers() *SpeakerSerializer {
	return s.speakers
}

func (s *ItemSerializer) Serialize(req *http.Request, item entities.Item) (*ItemDTO, error) {
	if req == nil {
		return nil, urls.ErrMissingRequest
	}

	selfURL, err := s.urls.Reverse(RouteItemDetail, item.ID, req)
	if err != nil {
		return nil, fmt.Errorf("ItemSerializer.Serialize - item %d: %w", item.ID, err)
	}

	var parentURL *string
	if item.ParentID != nil {
		link, err := s.urls.Reverse(RouteItemDetail, *item.ParentID, req)
		if err != nil {
			return nil, fmt.Errorf("ItemSerializer.Serialize - parent of item %d: %w", item.ID, err)
		}
		parentURL = &link
	}

	tags := make([]string, 0, len(item.TagIDs))
	for _, tagID := range item.TagIDs {
		link, err := s.urls.Reverse(RouteTagDetail, tagID, req)
		if err != nil {
			return nil, fmt.Errorf("ItemSerializer.Serialize - tag %d of item %d: %w", tagID, item.ID, err)
		}
		tags = append(tags, link)
	}

	speakerSet, err := s.speakers.SerializeMany(req, item.Speakers)
	if err != nil {
		return nil, fmt.Errorf("ItemSerializer.Serialize - item %d: %w", item.ID, err)
	}

	contentURL, err := s.contentObject.ToRepresentation(req, item.Content)
	if err != nil {
		return nil, fmt.Errorf("ItemSerializer.Serialize - item %d: %w", item.ID, err)
	}

	return &ItemDTO{
		ID:                 item.ID,
		URL:                selfURL,
		ItemNumber:         item.ItemNumber,
		Title:              item.Title,
		Text:               item.Text,
		Comment:            item.Comment,
		Closed:             item.Closed,
		Type:               int(item.Type),
		Duration:           item.Duration,
		Weight:             item.Weight,
		Parent:             parentURL,
		SpeakerListClosed:  item.SpeakerListClosed,
		Tags:               tags,
		GetTitle:           item.GetTitle(),
		GetTitleSupplement: item.GetTitleSupplement(),
		ItemNo:             item.ItemNo(s.numberPrefix),
		SpeakerSet:         speakerSet,
		ContentObject:      contentURL,
	}, nil
}

func (s *ItemSerializer) SerializeMany(req *http.Request, items []entities.Item) ([]*ItemDTO, error) {
	result := make([]*ItemDTO, 0, len(items))
	for _, item := range items {
		dto, err := s.Serialize(req, item)
		if err != nil {
			return nil, err
		}
		result = append(result, dto)
	}
	return result, nil
}

// Deserialize aplica os campos base graváveis sobre instance (nil = criação).
// Campos calculados e aninhados (get_title, speaker_set, tags, content_object...)
// são somente leitura e ignorados se vierem no payload.
func (s *ItemSerializer) Deserialize(payload []byte, partial bool, instance *entities.Item) (entities.Item, error) {
	item := entities.Item{Type: entities.ItemTypeAgenda}
	if instance != nil {
		item = *instance
	}

	reader, err := newFieldReader(payload, partial)
	if err != nil {
		return entities.Item{}, err
	}

	reader.String("item_number", false, true, titleMaxLength, &item.ItemNumber)
	reader.String("title", true, false, titleMaxLength, &item.Title)
	reader.String("text", false, true, 0, &item.Text)
	reader.String("comment", false, true, 0, &item.Comment)
	reader.Bool("closed", &item.Closed)
	reader.String("duration", false, true, durationMaxLength, &item.Duration)
	reader.Int("weight", false, &item.Weight)
	reader.Bool("speaker_list_closed", &item.SpeakerListClosed)

	itemType := int(item.Type)
	reader.Choice("type", itemTypeChoices(), &itemType)
	item.Type = entities.ItemType(itemType)

	reader.Hyperlink("parent", RouteItemDetail, false, true, s.urls, &item.ParentID)

	if err := reader.err(); err != nil {
		return entities.Item{}, err
	}

	return item, nil
}

func itemTypeChoices() []int {
	choices := make([]int, 0, len(entities.ItemTypes))
	for _, itemType := range entities.ItemTypes {
		choices = append(choices, int(itemType))
	}
	return choices
}
