package handler

import "surveyflow/internal/model"

// SaveSurveyRequest is the full schema an admin saves from the editor
type SaveSurveyRequest struct {
	Title string        `json:"title" validate:"required,max=200"`
	Pages []PageRequest `json:"pages" validate:"required,min=1,dive"`
}

type PageRequest struct {
	Title     string            `json:"title" validate:"max=200"`
	Questions []QuestionRequest `json:"questions" validate:"dive"`
}

type QuestionRequest struct {
	ID              string           `json:"id" validate:"required,max=100"`
	Label           string           `json:"label" validate:"max=1000"`
	Description     string           `json:"description"`
	Type            string           `json:"type" validate:"required,oneof=text textarea radio checkbox dropdown none display heading"`
	Options         []string         `json:"options" validate:"dive,max=500"`
	BackgroundColor string           `json:"backgroundColor" validate:"omitempty,oneof=default green yellow red"`
	VideoURL        string           `json:"videoUrl" validate:"omitempty,url"`
	VisibleIf       *model.VisibleIf `json:"visibleIf"`
}

// ToSurvey builds the domain schema. The editor echoes videoUrl back; the
// object key behind it is restored from the stored survey.
func (req *SaveSurveyRequest) ToSurvey(id string) *model.Survey {
	survey := &model.Survey{
		ID:    id,
		Title: req.Title,
		Pages: make([]model.Page, 0, len(req.Pages)),
	}
	for _, p := range req.Pages {
		page := model.Page{Title: p.Title, Questions: make([]model.Question, 0, len(p.Questions))}
		for _, q := range p.Questions {
			page.Questions = append(page.Questions, model.Question{
				ID:              q.ID,
				Label:           q.Label,
				Description:     q.Description,
				Type:            model.QuestionType(q.Type),
				Options:         q.Options,
				BackgroundColor: model.BackgroundColor(q.BackgroundColor),
				VideoURL:        q.VideoURL,
				VisibleIf:       q.VisibleIf,
			})
		}
		survey.Pages = append(survey.Pages, page)
	}
	return survey
}

// AnswerRequest carries a single answer change; null clears the answer
type AnswerRequest struct {
	Value model.AnswerValue `json:"value"`
}

type PageRequestBody struct {
	Page *int `json:"page" validate:"required,min=0"`
}

// FormResponse is returned when a user opens a survey
type FormResponse struct {
	State *model.FormState `json:"state"`
	Page  *model.PageView  `json:"page"`
}

// SubmitResponse acknowledges a submission
type SubmitResponse struct {
	ResponseID string          `json:"responseId"`
	Completion int             `json:"completion"`
	Timestamp  model.Timestamp `json:"timestamp"`
}
