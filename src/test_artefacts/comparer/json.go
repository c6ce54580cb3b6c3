package comparer

import (
	"bytes"
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// JSONRawMessage compara json.RawMessage pelo conteúdo: ordem das chaves e espaços
// não importam. Números são comparados pelo texto, então 5 e 5.0 diferem, como
// diferem para um cliente que espera um inteiro.
func JSONRawMessage() cmp.Option {
	return cmp.Comparer(func(x, y json.RawMessage) bool {
		x, y = bytes.TrimSpace(x), bytes.TrimSpace(y)
		if len(x) == 0 || len(y) == 0 {
			return len(x) == len(y)
		}

		xValue, err := decodeJSON(x)
		if err != nil {
			return false
		}
		yValue, err := decodeJSON(y)
		if err != nil {
			return false
		}

		return cmp.Equal(xValue, yValue)
	})
}

func decodeJSON(raw json.RawMessage) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
