package model

import "time"

// FormState is the working state of a user filling out a survey.
// It is owned by the form service and persisted as a draft between requests.
type FormState struct {
	SurveyID    string    `json:"surveyId"`
	UserID      string    `json:"userId"`
	CurrentPage int       `json:"currentPage"`
	Answers     Answers   `json:"answers"`
	IsUpdate    bool      `json:"isUpdate"` // A prior submission exists
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FormQuestion is a visible question prepared for the live form
type FormQuestion struct {
	Question
	DescriptionHTML string       `json:"descriptionHtml,omitempty"`
	Depth           int          `json:"depth"`
	Parents         []string     `json:"parents"`
	Answer          *AnswerValue `json:"answer,omitempty"`
}

// PageView is one page of the live form as the user currently sees it
type PageView struct {
	SurveyID   string         `json:"surveyId"`
	Title      string         `json:"title"`
	PageIndex  int            `json:"pageIndex"`
	PageCount  int            `json:"pageCount"`
	Progress   int            `json:"progress"`   // Position in the page sequence
	Completion int            `json:"completion"` // Answered share of visible questions
	Questions  []FormQuestion `json:"questions"`
	IsUpdate   bool           `json:"isUpdate"`
}

// ResponseSummary is one row of the admin response listing
type ResponseSummary struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Email           string    `json:"email"`
	CustomerName    string    `json:"customerName,omitempty"`
	FirstFieldTitle string    `json:"firstFieldTitle"`
	Completion      int       `json:"completion"`
	Completed       bool      `json:"completed"`
	Timestamp       Timestamp `json:"timestamp"`
}

// SummaryGroup is a date bucket of the admin listing
type SummaryGroup struct {
	DateKey   string            `json:"dateKey"`
	Responses []ResponseSummary `json:"responses"`
}

// ResponseListing is the admin review page payload
type ResponseListing struct {
	SurveyID string         `json:"surveyId"`
	Title    string         `json:"title"`
	Total    int            `json:"total"`
	Latest   *Timestamp     `json:"latest,omitempty"`
	Groups   []SummaryGroup `json:"groups"`
}

// ResponseDetail is a single response reorganized by page
type ResponseDetail struct {
	Response Response      `json:"response"`
	Email    string        `json:"email"`
	Pages    []PageAnswers `json:"pages"`
}
