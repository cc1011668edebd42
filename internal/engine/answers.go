package engine

import (
	"sort"

	"surveyflow/internal/model"
)

// ApplyAnswer records value for questionID and drops every answer whose
// question is no longer visible, repeating until nothing else changes.
// An absent value clears the entry. The input map is left untouched.
func ApplyAnswer(questions []model.Question, answers model.Answers, questionID string, value model.AnswerValue) model.Answers {
	next := answers.Clone()
	if value.Defined() {
		next[questionID] = value
	} else {
		delete(next, questionID)
	}
	PruneHidden(questions, next)
	return next
}

// PruneHidden removes, in place, answers held by hidden conditional questions.
// It returns the ids removed.
func PruneHidden(questions []model.Question, answers model.Answers) []string {
	var removed []string
	for {
		changed := false
		for _, q := range questions {
			if q.VisibleIf == nil {
				continue
			}
			if _, ok := answers[q.ID]; !ok {
				continue
			}
			if !IsVisible(q, answers) {
				delete(answers, q.ID)
				removed = append(removed, q.ID)
				changed = true
			}
		}
		if !changed {
			return removed
		}
	}
}

// DropUnknown removes, in place, answers to question ids the survey no
// longer has. Drafts and prior submissions outlive schema edits.
// It returns the ids removed, sorted.
func DropUnknown(questions []model.Question, answers model.Answers) []string {
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	var removed []string
	for id := range answers {
		if !known[id] {
			delete(answers, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}
