package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")

	ErrValidation = errors.New("validation error")

	ErrSpeakerListClosed = errors.New("The list of speakers is closed.")

	ErrAlreadyOnSpeakerList = errors.New("User is already on the list of speakers.")
)

// ############################################################
// ################# ERROS DE VALIDAÇÃO #######################
// ############################################################

// FieldError descreve um erro de validação de um único campo.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError agrupa os erros por campo de uma escrita.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ByField groups the messages by field name, keeping their order.
func (e *ValidationError) ByField() map[string][]string {
	grouped := make(map[string][]string, len(e.Errors))
	for _, fieldErr := range e.Errors {
		grouped[fieldErr.Field] = append(grouped[fieldErr.Field], fieldErr.Message)
	}
	return grouped
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// ############################################################
// ################# LEITURA DA PAUTA #########################
// ############################################################

// ItemFilter restringe a listagem de itens. Campos nulos não filtram.
type ItemFilter struct {
	IDs      []int64
	Type     *int
	Closed   *bool
	ParentID *int64
	TagID    *int64
}

// ItemTreeNode é um nó da árvore da pauta (pai -> filhos, na ordem do weight).
type ItemTreeNode struct {
	ID       int64           `json:"id"`
	Children []*ItemTreeNode `json:"children"`
}

// TreePosition é a posição de um item depois de reordenar a pauta.
type TreePosition struct {
	ID       int64
	ParentID *int64
	Weight   int
}
