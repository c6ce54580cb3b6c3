package serializers

import (
	"errors"
	"fmt"
	"net/http"

	"agendaapi/src/domain/entities"
	"agendaapi/src/helper/urls"
)

var ErrUnknownContentKind = errors.New("unknown content kind")

// contentRoutes liga cada tipo de conteúdo à rota de detalhe do módulo dono.
// Renomear a entidade não muda a rota.
var contentRoutes = map[entities.ContentKind]string{
	entities.ContentKindMotion:     "motion-detail",
	entities.ContentKindAssignment: "assignment-detail",
}

// RelatedContentField renders the subject of an agenda item as a hyperlink. Read only.
type RelatedContentField struct {
	urls   Reverser
	routes map[entities.ContentKind]string
}

func NewRelatedContentField(reverser Reverser) *RelatedContentField {
	return &RelatedContentField{urls: reverser, routes: contentRoutes}
}

// CheckRoutes garante, na inicialização, que todo tipo de conteúdo tem rota registrada.
func (f *RelatedContentField) CheckRoutes() error {
	for _, kind := range entities.ContentKinds {
		route, ok := f.routes[kind]
		if !ok {
			return fmt.Errorf("content kind %q: %w", kind, ErrUnknownContentKind)
		}
		if !f.urls.HasRoute(route) {
			return fmt.Errorf("content kind %q needs route %q: %w", kind, route, urls.ErrNoReverseMatch)
		}
	}
	return nil
}

func (f *RelatedContentField) RouteFor(kind entities.ContentKind) (string, bool) {
	route, ok := f.routes[kind]
	return route, ok
}

// ToRepresentation returns the absolute URL of the content object, or nil when
// the item has no subject.
func (f *RelatedContentField) ToRepresentation(req *http.Request, content *entities.ContentObject) (*string, error) {
	if req == nil {
		return nil, urls.ErrMissingRequest
	}
	if content == nil {
		return nil, nil
	}

	route, ok := f.routes[content.Kind]
	if !ok {
		return nil, fmt.Errorf("RelatedContentField.ToRepresentation - %q: %w", content.Kind, ErrUnknownContentKind)
	}

	link, err := f.urls.Reverse(route, content.ID, req)
	if err != nil {
		return nil, fmt.Errorf("RelatedContentField.ToRepresentation - %s %d: %w", content.Kind, content.ID, err)
	}

	return &link, nil
}
