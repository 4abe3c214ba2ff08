package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidAnswer: значение ответа не является корректным JSON.
var ErrInvalidAnswer = errors.New("некорректное значение ответа")

// AnswerKind: вариант значения ответа.
type AnswerKind uint8

const (
	// AnswerText: строка (text, textarea, number, date)
	AnswerText AnswerKind = iota
	// AnswerFlag: логическое значение (checkbox)
	AnswerFlag
	// AnswerRaw: произвольный JSON из старых заявок, хранится как есть
	AnswerRaw
)

// Answer: значение ответа на одно поле формы.
// В JSON кодируется как строка, bool или исходное значение.
type Answer struct {
	Kind AnswerKind
	Text string
	Flag bool
	Raw  json.RawMessage
}

// Answers: ответы заявки, ключ = label поля.
type Answers map[string]Answer

// TextAnswer создаёт строковый ответ.
func TextAnswer(s string) Answer {
	return Answer{Kind: AnswerText, Text: s}
}

// FlagAnswer создаёт ответ для checkbox.
func FlagAnswer(b bool) Answer {
	return Answer{Kind: AnswerFlag, Flag: b}
}

// IsEmpty сообщает, что ответ не содержит значения.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case AnswerText:
		return len(bytes.TrimSpace([]byte(a.Text))) == 0
	case AnswerRaw:
		raw := bytes.TrimSpace(a.Raw)
		return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
	}
	return false
}

// MarshalJSON реализует json.Marshaler.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerFlag:
		return json.Marshal(a.Flag)
	case AnswerRaw:
		if len(a.Raw) == 0 {
			return []byte("null"), nil
		}
		return a.Raw, nil
	default:
		return json.Marshal(a.Text)
	}
}

// UnmarshalJSON реализует json.Unmarshaler.
// Строки и bool раскладываются по вариантам, остальное сохраняется как AnswerRaw.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*a = Answer{Kind: AnswerRaw}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*a = FlagAnswer(b)
		return nil
	}

	if !json.Valid(trimmed) {
		return ErrInvalidAnswer
	}
	*a = Answer{Kind: AnswerRaw, Raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}
