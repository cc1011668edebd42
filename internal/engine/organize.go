package engine

import (
	"fmt"

	"surveyflow/internal/model"
)

// OrganizeByPage rebuilds a flat answer map into page order for review.
// Visibility is not re-checked and pages without answers are dropped.
func OrganizeByPage(answers model.Answers, survey *model.Survey) []model.PageAnswers {
	out := []model.PageAnswers{}
	if survey == nil {
		return out
	}

	for i, page := range survey.Pages {
		var entries []model.AnsweredQuestion
		for _, q := range page.Questions {
			v, ok := answers.Get(q.ID)
			if !ok {
				continue
			}
			entries = append(entries, model.AnsweredQuestion{
				ID:          q.ID,
				Label:       orDefault(q.Label, "Question"),
				Description: q.Description,
				Type:        model.QuestionType(orDefault(string(q.Type), string(model.QuestionTypeText))),
				Value:       v,
				Display:     v.Display(),
			})
		}
		if len(entries) == 0 {
			continue
		}
		out = append(out, model.PageAnswers{
			PageTitle: orDefault(page.Title, fmt.Sprintf("Page %d", i+1)),
			Answers:   entries,
		})
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
