package model

import "time"

// Survey is an authored form: ordered pages of ordered questions
type Survey struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Pages     []Page    `json:"pages" bson:"pages"`
	CreatedBy string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Page groups questions rendered together in the live form
type Page struct {
	Title     string     `json:"title" bson:"title"`
	Questions []Question `json:"questions" bson:"questions"`
}

// SurveyListItem is the light projection used by survey pickers
type SurveyListItem struct {
	ID    string `json:"id" bson:"_id"`
	Title string `json:"title" bson:"title"`
}

// Questions returns every question of the survey in page order
func (s *Survey) Questions() []Question {
	if s == nil {
		return nil
	}
	var out []Question
	for _, p := range s.Pages {
		out = append(out, p.Questions...)
	}
	return out
}

// FindQuestion locates a question by id, returning its page and position
func (s *Survey) FindQuestion(id string) (pageIdx, questionIdx int, ok bool) {
	if s == nil {
		return 0, 0, false
	}
	for pi, p := range s.Pages {
		for qi, q := range p.Questions {
			if q.ID == id {
				return pi, qi, true
			}
		}
	}
	return 0, 0, false
}

// DefaultSurvey returns the template used when an admin creates a new survey
func DefaultSurvey(id string) *Survey {
	return &Survey{
		ID:    id,
		Title: "Untitled Survey",
		Pages: []Page{
			{
				Title: "Page 1",
				Questions: []Question{
					{
						ID:              "q1",
						Label:           "Untitled Question",
						Type:            QuestionTypeText,
						Options:         []string{},
						BackgroundColor: BackgroundDefault,
					},
				},
			},
		},
	}
}
