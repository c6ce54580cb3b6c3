package serializers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"agendaapi/src/domain"
)

const (
	msgRequired          = "This field is required."
	msgNull              = "This field may not be null."
	msgBlank             = "This field may not be blank."
	msgInvalidString     = "Not a valid string."
	msgInvalidInteger    = "A valid integer is required."
	msgInvalidBoolean    = "Must be a valid boolean."
	msgInvalidDatetime   = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
	msgNoURLMatch        = "Invalid hyperlink - No URL match."
	msgIncorrectURLMatch = "Invalid hyperlink - Incorrect URL match."
	msgNotADictionary    = "Invalid data. Expected a dictionary."
)

// Reverser resolve nomes de rota em URLs absolutas e vice-versa.
type Reverser interface {
	Reverse(name string, id int64, req *http.Request) (string, error)
	Resolve(rawURL string) (string, int64, error)
	HasRoute(name string) bool
}

// fieldReader lê um payload JSON campo a campo, acumulando os erros de validação.
// Em modo parcial (PATCH) campos ausentes nunca são obrigatórios.
type fieldReader struct {
	data    map[string]json.RawMessage
	partial bool
	errs    []domain.FieldError
}

func newFieldReader(payload []byte, partial bool) (*fieldReader, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(payload, &data); err != nil || data == nil {
		return nil, domain.NewValidationError("non_field_errors", msgNotADictionary)
	}

	return &fieldReader{data: data, partial: partial}, nil
}

func (fr *fieldReader) fail(name string, message string) {
	fr.errs = append(fr.errs, domain.FieldError{Field: name, Message: message})
}

// lookup devolve o valor bruto do campo. ok é falso quando o campo está ausente
// ou quando é nulo e null não é permitido (o erro já foi registrado).
func (fr *fieldReader) lookup(name string, required bool, allowNull bool) (json.RawMessage, bool) {
	raw, present := fr.data[name]
	if !present {
		if required && !fr.partial {
			fr.fail(name, msgRequired)
		}
		return nil, false
	}

	if isNull(raw) {
		if !allowNull {
			fr.fail(name, msgNull)
		}
		return nil, false
	}

	return raw, true
}

func (fr *fieldReader) present(name string) bool {
	_, ok := fr.data[name]
	return ok
}

func (fr *fieldReader) err() error {
	if len(fr.errs) == 0 {
		return nil
	}
	return &domain.ValidationError{Errors: fr.errs}
}

func (fr *fieldReader) String(name string, required bool, allowBlank bool, maxLength int, dst *string) {
	raw, ok := fr.lookup(name, required, false)
	if !ok {
		return
	}

	var value string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &value); err != nil {
			fr.fail(name, msgInvalidString)
			return
		}
	default:
		// números são aceitos e convertidos, como nos formulários
		if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
			fr.fail(name, msgInvalidString)
			return
		}
		value = string(raw)
	}

	value = strings.TrimSpace(value)
	if value == "" && !allowBlank {
		fr.fail(name, msgBlank)
		return
	}
	if maxLength > 0 && utf8.RuneCountInString(value) > maxLength {
		fr.fail(name, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLength))
		return
	}

	*dst = value
}

func (fr *fieldReader) Bool(name string, dst *bool) {
	raw, ok := fr.lookup(name, false, false)
	if !ok {
		return
	}

	value, valid := parseBool(raw)
	if !valid {
		fr.fail(name, msgInvalidBoolean)
		return
	}

	*dst = value
}

func (fr *fieldReader) Int(name string, required bool, dst *int) {
	raw, ok := fr.lookup(name, required, false)
	if !ok {
		return
	}

	value, valid := parseInt(raw)
	if !valid {
		fr.fail(name, msgInvalidInteger)
		return
	}
	if !fr.withinColumnRange(name, value) {
		return
	}

	*dst = value
}

func (fr *fieldReader) NullableInt(name string, dst **int) {
	raw, ok := fr.lookup(name, false, true)
	if !ok {
		if fr.present(name) && isNull(fr.data[name]) {
			*dst = nil
		}
		return
	}

	value, valid := parseInt(raw)
	if !valid {
		fr.fail(name, msgInvalidInteger)
		return
	}
	if !fr.withinColumnRange(name, value) {
		return
	}

	*dst = &value
}

// withinColumnRange limita inteiros ao INTEGER do postgres.
func (fr *fieldReader) withinColumnRange(name string, value int) bool {
	switch {
	case value > math.MaxInt32:
		fr.fail(name, fmt.Sprintf("Ensure this value is less than or equal to %d.", math.MaxInt32))
		return false
	case value < math.MinInt32:
		fr.fail(name, fmt.Sprintf("Ensure this value is greater than or equal to %d.", math.MinInt32))
		return false
	}
	return true
}

// Choice lê um inteiro que precisa estar entre as opções dadas.
func (fr *fieldReader) Choice(name string, choices []int, dst *int) {
	raw, ok := fr.lookup(name, false, false)
	if !ok {
		return
	}

	value, valid := parseInt(raw)
	if valid {
		for _, choice := range choices {
			if choice == value {
				*dst = value
				return
			}
		}
	}

	fr.fail(name, fmt.Sprintf("%q is not a valid choice.", strings.Trim(string(raw), `"`)))
}

func (fr *fieldReader) NullableTime(name string, dst **time.Time) {
	raw, ok := fr.lookup(name, false, true)
	if !ok {
		if fr.present(name) && isNull(fr.data[name]) {
			*dst = nil
		}
		return
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		fr.fail(name, msgInvalidDatetime)
		return
	}

	value, valid := parseDatetime(text)
	if !valid {
		fr.fail(name, msgInvalidDatetime)
		return
	}

	*dst = &value
}

// datetimeLayouts seguem YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z].
// Sem fuso o valor é tratado como UTC.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func parseDatetime(text string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if value, err := time.Parse(layout, text); err == nil {
			return value.UTC(), true
		}
	}
	return time.Time{}, false
}

// Hyperlink lê uma URL que precisa resolver para a rota esperada e devolve o id.
// Com allowNull, um null explícito zera dst.
func (fr *fieldReader) Hyperlink(name string, route string, required bool, allowNull bool, reverser Reverser, dst **int64) {
	raw, ok := fr.lookup(name, required, allowNull)
	if !ok {
		if allowNull && fr.present(name) && isNull(fr.data[name]) {
			*dst = nil
		}
		return
	}

	var link string
	if err := json.Unmarshal(raw, &link); err != nil {
		fr.fail(name, fmt.Sprintf("Incorrect type. Expected URL string, received %s.", jsonTypeName(raw)))
		return
	}

	resolved, id, err := reverser.Resolve(link)
	if err != nil {
		fr.fail(name, msgNoURLMatch)
		return
	}
	if resolved != route {
		fr.fail(name, msgIncorrectURLMatch)
		return
	}

	*dst = &id
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseInt(raw json.RawMessage) (int, bool) {
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}

	// aceita "3.0", recusa "3.5"
	if value, err := strconv.Atoi(text); err == nil {
		return value, true
	}
	if value, err := strconv.ParseFloat(text, 64); err == nil && value == float64(int(value)) {
		return int(value), true
	}
	return 0, false
}

func parseBool(raw json.RawMessage) (bool, bool) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, false
	}

	switch typed := value.(type) {
	case bool:
		return typed, true
	case float64:
		if typed == 1 {
			return true, true
		}
		if typed == 0 {
			return false, true
		}
	case string:
		switch strings.ToLower(typed) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return false, false
}

func jsonTypeName(raw json.RawMessage) string {
	switch raw[0] {
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	default:
		if strings.ContainsAny(string(raw), ".eE") {
			return "float"
		}
		return "int"
	}
}
