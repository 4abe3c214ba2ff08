// Пакет api: HTTP-контракт сервиса.
// Типы запросов и ответов, интерфейс обработчиков, привязка параметров
// и маршруты chi, описанные в openapi.yaml.
package api

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// FieldType: тип поля формы.
type FieldType string

// Значения FieldType.
const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
)

// FieldDefinition: поле формы.
type FieldDefinition struct {
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// FormInput: тело POST/PUT /api/forms.
type FormInput struct {
	Name   string            `json:"name"`
	Fields []FieldDefinition `json:"fields"`
}

// FormSummary: элемент списка форм.
type FormSummary struct {
	Id   openapi_types.UUID `json:"id"`
	Name string             `json:"name"`
}

// Form: форма целиком.
type Form struct {
	Id        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	Fields    []FieldDefinition  `json:"fields"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Answers: ответы заявки по label поля.
type Answers map[string]json.RawMessage

// Submission: заявка.
type Submission struct {
	Id          openapi_types.UUID `json:"id"`
	Form        openapi_types.UUID `json:"form"`
	Answers     Answers            `json:"answers"`
	Photos      []string           `json:"photos"`
	Notes       string             `json:"notes"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

// NotesInput: тело PUT /api/submissions/{id}/notes.
type NotesInput struct {
	Notes *string `json:"notes"`
}

// Message: ответ операций удаления.
type Message struct {
	Message string `json:"message"`
}

// Stats: сводка для дашборда.
type Stats struct {
	Forms            int        `json:"forms"`
	Submissions      int        `json:"submissions"`
	Photos           int        `json:"photos"`
	LastSubmissionAt *time.Time `json:"lastSubmissionAt,omitempty"`
}

// ListSubmissionsParams: параметры GET /api/submissions.
type ListSubmissionsParams struct {
	Form *openapi_types.UUID `form:"form,omitempty" json:"form,omitempty"`
}
