package model

import (
	"encoding/json"
	"testing"
)

func TestAnswer_UnmarshalVariants(t *testing.T) {
	var answers Answers
	payload := `{"VIN":"1HGCM82633A004352","Has Keys?":true,"Legacy":42,"Empty":null}`
	if err := json.Unmarshal([]byte(payload), &answers); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}

	if a := answers["VIN"]; a.Kind != AnswerText || a.Text != "1HGCM82633A004352" {
		t.Errorf("VIN = %+v, ожидается строковый ответ", a)
	}
	if a := answers["Has Keys?"]; a.Kind != AnswerFlag || !a.Flag {
		t.Errorf("Has Keys? = %+v, ожидается true", a)
	}
	if a := answers["Legacy"]; a.Kind != AnswerRaw || string(a.Raw) != "42" {
		t.Errorf("Legacy = %+v, ожидается raw 42", a)
	}
	if a := answers["Empty"]; !a.IsEmpty() {
		t.Errorf("Empty = %+v, ожидается пустой ответ", a)
	}
}

func TestAnswer_MarshalKeepsShape(t *testing.T) {
	answers := Answers{
		"Make":      TextAnswer("Honda"),
		"Has Keys?": FlagAnswer(false),
		"Legacy":    {Kind: AnswerRaw, Raw: json.RawMessage(`[1,2]`)},
	}

	data, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Marshal вернул ошибку: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal вернул ошибку: %v", err)
	}
	if got["Make"] != "Honda" {
		t.Errorf("Make = %v, ожидается Honda", got["Make"])
	}
	if got["Has Keys?"] != false {
		t.Errorf("Has Keys? = %v, ожидается false", got["Has Keys?"])
	}
	if arr, ok := got["Legacy"].([]any); !ok || len(arr) != 2 {
		t.Errorf("Legacy = %v, ожидается массив из двух элементов", got["Legacy"])
	}
}

func TestAnswer_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		a    Answer
		want bool
	}{
		{"пустая строка", TextAnswer(""), true},
		{"пробелы", TextAnswer("   "), true},
		{"строка", TextAnswer("x"), false},
		{"false", FlagAnswer(false), false},
		{"raw null", Answer{Kind: AnswerRaw, Raw: json.RawMessage("null")}, true},
		{"raw число", Answer{Kind: AnswerRaw, Raw: json.RawMessage("0")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, ожидается %v", got, tt.want)
			}
		})
	}
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range []FieldType{FieldText, FieldTextarea, FieldNumber, FieldCheckbox, FieldDate, FieldFile} {
		if !ft.Valid() {
			t.Errorf("%q должен быть допустимым типом", ft)
		}
	}
	for _, ft := range []FieldType{"", "select", "TEXT"} {
		if ft.Valid() {
			t.Errorf("%q не должен быть допустимым типом", ft)
		}
	}
}
