package domain

import "time"

const (
	EventTypeItemCreated    = "agenda.item.created"
	EventTypeItemUpdated    = "agenda.item.updated"
	EventTypeItemDeleted    = "agenda.item.deleted"
	EventTypeSpeakerAdded   = "agenda.speaker.added"
	EventTypeSpeakerUpdated = "agenda.speaker.updated"
	EventTypeSpeakerRemoved = "agenda.speaker.removed"
)

// DomainEvent é o payload publicado para os outros módulos.
type DomainEvent struct {
	Data       EventData `json:"data"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventData struct {
	// Reference identifica a entidade alterada, ex: "item:12".
	Reference  string                    `json:"reference"`
	Type       string                    `json:"type"`
	Properties map[string]PropertyChange `json:"properties"`
}

type PropertyChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}
