package model

import (
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Response is a submitted answer map. One document per (survey, user);
// resubmission replaces it.
type Response struct {
	ID        string    `json:"id" bson:"_id"`
	SurveyID  string    `json:"surveyId" bson:"surveyId"`
	UserID    string    `json:"userId" bson:"userId"`
	Answers   Answers   `json:"answers" bson:"answers"`
	Progress  int       `json:"progress" bson:"progress"` // Completion percent at submit time
	Completed bool      `json:"completed" bson:"completed"`
	Timestamp Timestamp `json:"timestamp" bson:"timestamp"`
}

// ResponseID is the deterministic document id for a user's response
func ResponseID(surveyID, userID string) string {
	return surveyID + "_" + userID
}

// ResponseGroup holds responses submitted on one UTC calendar date
type ResponseGroup struct {
	DateKey   string     `json:"dateKey"`
	Responses []Response `json:"responses"`
}

// PageAnswers is one page of a response reorganized for review
type PageAnswers struct {
	PageTitle string             `json:"pageTitle"`
	Answers   []AnsweredQuestion `json:"answers"`
}

// AnsweredQuestion pairs a question's metadata with the stored value
type AnsweredQuestion struct {
	ID              string       `json:"id"`
	Label           string       `json:"label"`
	Description     string       `json:"description"`
	DescriptionHTML string       `json:"descriptionHtml,omitempty"`
	Type            QuestionType `json:"type"`
	Value           AnswerValue  `json:"value"`
	Display         string       `json:"display"`
}

// Timestamp is a submission time that also decodes the legacy encodings
// (epoch milliseconds and date strings) found in older documents.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates to millisecond precision, the resolution stored
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Time = parseTimestampString(s)
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func (t Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.Time.UTC())
}

func (t *Timestamp) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bsontype.DateTime:
		t.Time = raw.Time().UTC()
	case bsontype.Int64:
		t.Time = time.UnixMilli(raw.Int64()).UTC()
	case bsontype.Int32:
		t.Time = time.UnixMilli(int64(raw.Int32())).UTC()
	case bsontype.Double:
		t.Time = time.UnixMilli(int64(raw.Double())).UTC()
	case bsontype.Timestamp:
		sec, _ := raw.Timestamp()
		t.Time = time.Unix(int64(sec), 0).UTC()
	case bsontype.String:
		t.Time = parseTimestampString(raw.StringValue())
	default:
		t.Time = time.Now().UTC()
	}
	return nil
}

// parseTimestampString accepts RFC 3339, plain dates and numeric millis.
// Unparseable input falls back to the current time.
func parseTimestampString(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC()
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Now().UTC()
}
