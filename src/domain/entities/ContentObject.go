package entities

// ContentKind identifica o tipo de entidade sobre a qual um item da pauta trata.
type ContentKind string

const (
	ContentKindMotion     ContentKind = "motion"
	ContentKindAssignment ContentKind = "assignment" // eleição
)

// ContentKinds lists every kind an agenda item can reference.
var ContentKinds = []ContentKind{
	ContentKindMotion,
	ContentKindAssignment,
}

func (k ContentKind) Valid() bool {
	for _, kind := range ContentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ContentObject é a referência tipada ao "assunto" de um item da pauta.
// Title e TitleSupplement são cópias mantidas pelo consumidor de eventos dos módulos donos.
type ContentObject struct {
	Kind            ContentKind `json:"kind"`
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	TitleSupplement string      `json:"title_supplement"`
}
