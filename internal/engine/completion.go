package engine

import (
	"math"

	"surveyflow/internal/model"
)

// CompletionPercent is the rounded share of visible, answerable questions
// holding a non-empty answer. No such questions scores 0.
func CompletionPercent(answers model.Answers, survey *model.Survey) int {
	if survey == nil {
		return 0
	}

	total, answered := 0, 0
	for _, page := range survey.Pages {
		for _, q := range page.Questions {
			if !q.Type.Answerable() || !IsVisible(q, answers) {
				continue
			}
			total++
			if v, ok := answers.Get(q.ID); ok && v.Answered() {
				answered++
			}
		}
	}
	return percent(answered, total)
}

func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}

// PageProgress is the position indicator shown in the live form
func PageProgress(index, total int) int {
	if total <= 0 {
		return 0
	}
	if index < 0 {
		index = 0
	}
	if index >= total {
		index = total - 1
	}
	return percent(index+1, total)
}
