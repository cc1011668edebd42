// Package engine holds the pure survey logic: visibility, nesting,
// completion scoring and review-time reshaping of answers. Nothing here
// performs I/O and every function is total over malformed schemas.
package engine

import "surveyflow/internal/model"

// IsVisible decides whether q is shown for the given answers.
// Malformed conditions fail closed.
func IsVisible(q model.Question, answers model.Answers) bool {
	rule := q.VisibleIf
	if rule == nil {
		return true
	}

	if rule.IsMulti() {
		return multiConditionMet(rule, answers)
	}
	if rule.QuestionID != "" {
		return conditionMet(rule.QuestionID, rule.Value, answers)
	}
	return false
}

func multiConditionMet(rule *model.VisibleIf, answers model.Answers) bool {
	switch rule.Operator {
	case "", model.OperatorAnd:
		for _, c := range rule.Conditions {
			if !conditionMet(c.QuestionID, c.Value, answers) {
				return false
			}
		}
		return true
	case model.OperatorOr:
		for _, c := range rule.Conditions {
			if conditionMet(c.QuestionID, c.Value, answers) {
				return true
			}
		}
		return false
	}
	return false
}

// conditionMet is strict equality between the stored answer and the expected value.
// A condition without a value is never satisfied.
func conditionMet(questionID string, expected *model.AnswerValue, answers model.Answers) bool {
	if questionID == "" || expected == nil || !expected.Defined() {
		return false
	}
	got, ok := answers.Get(questionID)
	if !ok {
		return false
	}
	return got.StrictEqual(*expected)
}

// VisibleQuestions filters questions down to those currently shown, keeping order
func VisibleQuestions(questions []model.Question, answers model.Answers) []model.Question {
	out := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}
