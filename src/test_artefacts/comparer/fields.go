package comparer

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"agendaapi/src/domain"
	"agendaapi/src/domain/entities"
	"agendaapi/src/services/events"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// IgnoreGeneratedIDs ignora os ids que só o banco conhece: id do item, id do
// orador e a ligação do orador com o item.
func IgnoreGeneratedIDs() cmp.Option {
	return cmp.Options{
		IgnoreFieldsFor[entities.Item]("ID"),
		IgnoreFieldsFor[entities.Speaker]("ID", "ItemID"),
	}
}

// IgnoreEventMetadata compara eventos só pelo tipo e pelo conteúdo.
func IgnoreEventMetadata() cmp.Option {
	return cmp.Options{
		IgnoreFieldsFor[events.DomainEventWithMetadata]("EventID"),
		IgnoreFieldsFor[domain.DomainEvent]("OccurredAt"),
	}
}
