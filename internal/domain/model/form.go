package model

import "time"

// FieldType: тип поля формы.
type FieldType string

// Допустимые типы полей.
const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
)

// Valid сообщает, входит ли тип в допустимый набор.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldNumber, FieldCheckbox, FieldDate, FieldFile:
		return true
	}
	return false
}

// Field: описание поля внутри формы.
// Label одновременно служит ключом ответа в заявке.
// Хранится в JSONB-колонке forms.fields, поэтому с json-тегами.
type Field struct {
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Form: шаблон анкеты. Хранится в таблице forms.
type Form struct {
	// ID: UUID, генерируется базой
	ID string
	// Name: заголовок формы
	Name string
	// Fields: упорядоченный список полей, порядок значим
	Fields []Field
	// CreatedAt: время создания, не меняется
	CreatedAt time.Time
}

// FormSummary: краткое представление формы для списков.
type FormSummary struct {
	ID   string
	Name string
}
