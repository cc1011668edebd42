package model

// QuestionType defines the input rendered for a question
type QuestionType string

const (
	QuestionTypeText     QuestionType = "text"
	QuestionTypeTextarea QuestionType = "textarea"
	QuestionTypeRadio    QuestionType = "radio"
	QuestionTypeCheckbox QuestionType = "checkbox"
	QuestionTypeDropdown QuestionType = "dropdown"
	QuestionTypeNone     QuestionType = "none" // Display-only, no answer

	// Older schemas used these for display-only blocks
	QuestionTypeDisplay QuestionType = "display"
	QuestionTypeHeading QuestionType = "heading"
)

// Answerable reports whether the question collects an answer
func (t QuestionType) Answerable() bool {
	switch t {
	case QuestionTypeNone, QuestionTypeDisplay, QuestionTypeHeading:
		return false
	}
	return true
}

// HasOptions reports whether the type renders a fixed option list
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeRadio || t == QuestionTypeCheckbox || t == QuestionTypeDropdown
}

// Valid reports whether the tag is one the form renderer understands
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeRadio, QuestionTypeCheckbox,
		QuestionTypeDropdown, QuestionTypeNone, QuestionTypeDisplay, QuestionTypeHeading:
		return true
	}
	return false
}

// BackgroundColor is the card tint shown behind a question
type BackgroundColor string

const (
	BackgroundDefault BackgroundColor = "default"
	BackgroundGreen   BackgroundColor = "green"
	BackgroundYellow  BackgroundColor = "yellow"
	BackgroundRed     BackgroundColor = "red"
)

// Valid reports whether the color belongs to the fixed palette (empty means default)
func (c BackgroundColor) Valid() bool {
	switch c {
	case "", BackgroundDefault, BackgroundGreen, BackgroundYellow, BackgroundRed:
		return true
	}
	return false
}

// LogicOperator combines the sub-conditions of a multi-condition rule
type LogicOperator string

const (
	OperatorAnd LogicOperator = "AND"
	OperatorOr  LogicOperator = "OR"
)

// Question is a single authored item on a page
type Question struct {
	ID              string          `json:"id" bson:"id"`
	Label           string          `json:"label" bson:"label"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	Type            QuestionType    `json:"type" bson:"type"`
	Options         []string        `json:"options" bson:"options"`
	BackgroundColor BackgroundColor `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	VideoURL        string          `json:"videoUrl,omitempty" bson:"videoUrl,omitempty"`
	VideoKey        string          `json:"videoKey,omitempty" bson:"videoKey,omitempty"` // Blob store object key
	VisibleIf       *VisibleIf      `json:"visibleIf,omitempty" bson:"visibleIf,omitempty"`
}

// VisibleIf gates a question on earlier answers.
// Single form: QuestionID + Value. Multi form: Operator + Conditions.
type VisibleIf struct {
	QuestionID string        `json:"questionId,omitempty" bson:"questionId,omitempty"`
	Value      *AnswerValue  `json:"value,omitempty" bson:"value,omitempty"`
	Operator   LogicOperator `json:"operator,omitempty" bson:"operator,omitempty"`
	Conditions []Condition   `json:"conditions" bson:"conditions"` // nil for the single form
}

// Condition is one equality check inside a multi-condition rule
type Condition struct {
	QuestionID string       `json:"questionId" bson:"questionId"`
	Value      *AnswerValue `json:"value" bson:"value"`
}

// IsMulti reports whether the rule uses the AND/OR form
func (v *VisibleIf) IsMulti() bool {
	return v != nil && v.Conditions != nil
}

// Hierarchy is the presentation nesting of a conditional question
type Hierarchy struct {
	Depth   int      `json:"depth"`
	Parents []string `json:"parents"`
}
