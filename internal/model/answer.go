package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AnswerKind discriminates the shape held by an AnswerValue
type AnswerKind int

const (
	AnswerAbsent  AnswerKind = iota // Unanswered / null
	AnswerText                      // text, textarea, radio, dropdown
	AnswerChoices                   // checkbox
	AnswerNumber                    // legacy numeric values
	AnswerBool                      // legacy boolean values
)

// AnswerValue is a tagged union over the answer shapes a question can hold.
// It also carries the comparison value of a visibility condition.
type AnswerValue struct {
	Kind    AnswerKind
	Text    string
	Choices []string
	Number  float64
	Bool    bool
}

// TextAnswer wraps a string answer
func TextAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerText, Text: s}
}

// ChoicesAnswer wraps a checkbox selection
func ChoicesAnswer(c ...string) AnswerValue {
	return AnswerValue{Kind: AnswerChoices, Choices: append([]string{}, c...)}
}

func NumberAnswer(n float64) AnswerValue {
	return AnswerValue{Kind: AnswerNumber, Number: n}
}

func BoolAnswer(b bool) AnswerValue {
	return AnswerValue{Kind: AnswerBool, Bool: b}
}

// TextValue is TextAnswer for condition values
func TextValue(s string) *AnswerValue {
	v := TextAnswer(s)
	return &v
}

func NumberValue(n float64) *AnswerValue {
	v := NumberAnswer(n)
	return &v
}

// Defined reports whether the value holds anything at all
func (v AnswerValue) Defined() bool {
	return v.Kind != AnswerAbsent
}

// Answered applies the completion rule: arrays need at least one element,
// strings need non-blank content, any other defined value counts.
func (v AnswerValue) Answered() bool {
	switch v.Kind {
	case AnswerChoices:
		return len(v.Choices) > 0
	case AnswerText:
		return strings.TrimSpace(v.Text) != ""
	case AnswerNumber, AnswerBool:
		return true
	}
	return false
}

// StrictEqual compares type-sensitively: "1" never equals 1, and
// choice lists never equal anything (they are compared by identity upstream).
func (v AnswerValue) StrictEqual(other AnswerValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case AnswerText:
		return v.Text == other.Text
	case AnswerNumber:
		return v.Number == other.Number
	case AnswerBool:
		return v.Bool == other.Bool
	}
	return false
}

// Display renders the value for read-only review
func (v AnswerValue) Display() string {
	switch v.Kind {
	case AnswerText:
		return v.Text
	case AnswerChoices:
		return strings.Join(v.Choices, ", ")
	case AnswerNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case AnswerBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerText:
		return json.Marshal(v.Text)
	case AnswerChoices:
		if v.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Choices)
	case AnswerNumber:
		return json.Marshal(v.Number)
	case AnswerBool:
		return json.Marshal(v.Bool)
	}
	return []byte("null"), nil
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
	case '[':
		var items []interface{}
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		choices := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				choices = append(choices, s)
				continue
			}
			choices = append(choices, fmt.Sprint(item))
		}
		*v = AnswerValue{Kind: AnswerChoices, Choices: choices}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolAnswer(b)
	case '{':
		return fmt.Errorf("answer value cannot be an object")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberAnswer(n)
	}
	return nil
}

func (v AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch v.Kind {
	case AnswerText:
		return bson.MarshalValue(v.Text)
	case AnswerChoices:
		if v.Choices == nil {
			return bson.MarshalValue([]string{})
		}
		return bson.MarshalValue(v.Choices)
	case AnswerNumber:
		return bson.MarshalValue(v.Number)
	case AnswerBool:
		return bson.MarshalValue(v.Bool)
	}
	return bsontype.Null, nil, nil
}

func (v *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*v = TextAnswer(raw.StringValue())
	case bsontype.Array:
		values, err := raw.Array().Values()
		if err != nil {
			return err
		}
		choices := make([]string, 0, len(values))
		for _, item := range values {
			if s, ok := item.StringValueOK(); ok {
				choices = append(choices, s)
				continue
			}
			choices = append(choices, item.String())
		}
		*v = AnswerValue{Kind: AnswerChoices, Choices: choices}
	case bsontype.Double:
		*v = NumberAnswer(raw.Double())
	case bsontype.Int32:
		*v = NumberAnswer(float64(raw.Int32()))
	case bsontype.Int64:
		*v = NumberAnswer(float64(raw.Int64()))
	case bsontype.Boolean:
		*v = BoolAnswer(raw.Boolean())
	default:
		*v = AnswerValue{}
	}
	return nil
}

// Answers maps question ids to their current values
type Answers map[string]AnswerValue

// Get returns the defined value for id
func (a Answers) Get(id string) (AnswerValue, bool) {
	v, ok := a[id]
	if !ok || !v.Defined() {
		return AnswerValue{}, false
	}
	return v, true
}

// Has reports whether id has a defined entry
func (a Answers) Has(id string) bool {
	_, ok := a.Get(id)
	return ok
}

// Clone copies the map and its choice slices
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.Choices != nil {
			v.Choices = append([]string{}, v.Choices...)
		}
		out[k] = v
	}
	return out
}

// Compact drops entries that decoded as null
func (a Answers) Compact() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.Defined() {
			out[k] = v
		}
	}
	return out
}
