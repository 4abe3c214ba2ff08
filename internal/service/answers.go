// answers.go: разбор поля data из multipart-запроса
// и проверка ответов по текущим полям формы.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/vehicle-intake/internal/domain/model"
)

// dateLayout: формат значения поля типа date (как у <input type="date">).
const dateLayout = "2006-01-02"

// submissionData: содержимое поля data.
// _notes поддерживается для совместимости со старыми клиентами.
type submissionData struct {
	Answers model.Answers `json:"answers"`
	Notes   *string       `json:"_notes"`
}

// parseSubmissionData разбирает JSON-строку data.
// Пустая строка означает заявку без ответов.
func parseSubmissionData(data string) (*submissionData, error) {
	parsed := &submissionData{}
	if strings.TrimSpace(data) == "" {
		parsed.Answers = model.Answers{}
		return parsed, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(parsed); err != nil {
		return nil, fmt.Errorf("%w: поле data не является корректным JSON-объектом: %v", ErrValidation, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: поле data содержит лишние данные", ErrValidation)
	}
	if parsed.Answers == nil {
		parsed.Answers = model.Answers{}
	}
	return parsed, nil
}

// validateAnswers проверяет ответы по полям формы и нормализует их.
// Ответы на неизвестные поля сохраняются без проверки.
// Поля типа file в ответах не участвуют, их данные приходят как файлы.
func validateAnswers(fields []model.Field, answers model.Answers) error {
	for _, f := range fields {
		if f.Type == model.FieldFile {
			continue
		}

		a, ok := answers[f.Label]
		if ok && a.Kind == model.AnswerRaw && a.IsEmpty() {
			delete(answers, f.Label)
			ok = false
		}

		if !ok {
			if f.Required && f.Type != model.FieldCheckbox {
				return fmt.Errorf("%w: поле %q обязательно", ErrValidation, f.Label)
			}
			continue
		}

		normalized, err := checkAnswer(f, a)
		if err != nil {
			return err
		}
		if f.Required && f.Type != model.FieldCheckbox && normalized.IsEmpty() {
			return fmt.Errorf("%w: поле %q обязательно", ErrValidation, f.Label)
		}
		answers[f.Label] = normalized
	}
	return nil
}

// checkAnswer проверяет соответствие значения типу поля.
func checkAnswer(f model.Field, a model.Answer) (model.Answer, error) {
	switch f.Type {
	case model.FieldCheckbox:
		if a.Kind != model.AnswerFlag {
			return a, fmt.Errorf("%w: поле %q ожидает true/false", ErrValidation, f.Label)
		}
		return a, nil

	case model.FieldNumber:
		text, ok := numberText(a)
		if !ok {
			return a, fmt.Errorf("%w: поле %q ожидает число", ErrValidation, f.Label)
		}
		if strings.TrimSpace(text) != "" {
			if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
				return a, fmt.Errorf("%w: поле %q ожидает число, получено %q", ErrValidation, f.Label, text)
			}
		}
		return model.TextAnswer(text), nil

	case model.FieldDate:
		if a.Kind != model.AnswerText {
			return a, fmt.Errorf("%w: поле %q ожидает дату", ErrValidation, f.Label)
		}
		if v := strings.TrimSpace(a.Text); v != "" {
			if _, err := time.Parse(dateLayout, v); err != nil {
				return a, fmt.Errorf("%w: поле %q ожидает дату в формате ГГГГ-ММ-ДД, получено %q", ErrValidation, f.Label, a.Text)
			}
		}
		return a, nil

	default:
		if a.Kind != model.AnswerText {
			return a, fmt.Errorf("%w: поле %q ожидает строку", ErrValidation, f.Label)
		}
		return a, nil
	}
}

// numberText возвращает текст числа. Числовой JSON принимается наравне со строкой.
func numberText(a model.Answer) (string, bool) {
	switch a.Kind {
	case model.AnswerText:
		return a.Text, true
	case model.AnswerRaw:
		var n json.Number
		if err := json.Unmarshal(a.Raw, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}
