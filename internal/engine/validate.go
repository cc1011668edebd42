package engine

import (
	"fmt"
	"strings"

	"surveyflow/internal/model"
)

// Issue is one problem found in an authored survey
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every issue found by ValidateSurvey
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, is.Path+": "+is.Message)
	}
	return "invalid survey: " + strings.Join(msgs, "; ")
}

type questionRef struct {
	page int
	path string
}

// ValidateSurvey checks a survey before it is saved. Unlike the rest of the
// engine it is strict: cycles and dangling condition references are rejected.
func ValidateSurvey(s *model.Survey) error {
	if s == nil {
		return &ValidationError{Issues: []Issue{{Path: "survey", Message: "is required"}}}
	}

	v := &validator{refs: make(map[string]questionRef)}
	if strings.TrimSpace(s.Title) == "" {
		v.add("title", "is required")
	}
	if len(s.Pages) == 0 {
		v.add("pages", "at least one page is required")
	}

	// ids first so conditions may point forward within a page
	for pi, page := range s.Pages {
		for qi, q := range page.Questions {
			path := fmt.Sprintf("pages[%d].questions[%d]", pi, qi)
			if q.ID == "" {
				v.add(path+".id", "is required")
				continue
			}
			if prev, dup := v.refs[q.ID]; dup {
				v.add(path+".id", fmt.Sprintf("duplicate id %q (also at %s)", q.ID, prev.path))
				continue
			}
			v.refs[q.ID] = questionRef{page: pi, path: path}
		}
	}

	for pi, page := range s.Pages {
		for qi, q := range page.Questions {
			path := fmt.Sprintf("pages[%d].questions[%d]", pi, qi)
			if !q.Type.Valid() {
				v.add(path+".type", fmt.Sprintf("unknown type %q", q.Type))
			}
			if !q.BackgroundColor.Valid() {
				v.add(path+".backgroundColor", fmt.Sprintf("unknown color %q", q.BackgroundColor))
			}
			if q.VisibleIf != nil {
				v.checkRule(path+".visibleIf", pi, q.ID, q.VisibleIf)
			}
		}
	}

	v.checkCycles(s.Questions())

	if len(v.issues) > 0 {
		return &ValidationError{Issues: v.issues}
	}
	return nil
}

type validator struct {
	refs   map[string]questionRef
	issues []Issue
}

func (v *validator) add(path, msg string) {
	v.issues = append(v.issues, Issue{Path: path, Message: msg})
}

func (v *validator) checkRule(path string, page int, self string, rule *model.VisibleIf) {
	if !rule.IsMulti() {
		if rule.QuestionID == "" {
			v.add(path+".questionId", "is required")
			return
		}
		v.checkCondition(path, page, self, rule.QuestionID, rule.Value)
		return
	}

	switch rule.Operator {
	case "", model.OperatorAnd, model.OperatorOr:
	default:
		v.add(path+".operator", fmt.Sprintf("unknown operator %q", rule.Operator))
	}
	if len(rule.Conditions) == 0 {
		v.add(path+".conditions", "at least one condition is required")
	}
	for ci, c := range rule.Conditions {
		cpath := fmt.Sprintf("%s.conditions[%d]", path, ci)
		if c.QuestionID == "" {
			v.add(cpath+".questionId", "is required")
			continue
		}
		v.checkCondition(cpath, page, self, c.QuestionID, c.Value)
	}
}

func (v *validator) checkCondition(path string, page int, self, target string, value *model.AnswerValue) {
	if value == nil || !value.Defined() {
		v.add(path+".value", "is required")
	}
	if target == self {
		v.add(path+".questionId", "question cannot depend on itself")
		return
	}
	ref, ok := v.refs[target]
	if !ok {
		v.add(path+".questionId", fmt.Sprintf("unknown question %q", target))
		return
	}
	if ref.page != page {
		v.add(path+".questionId", fmt.Sprintf("question %q is on another page", target))
	}
}

// checkCycles reports each condition cycle once, using every referenced
// question as an edge (not only the display parent).
func (v *validator) checkCycles(questions []model.Question) {
	edges := make(map[string][]string, len(questions))
	for _, q := range questions {
		edges[q.ID] = dependencies(q.VisibleIf)
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(questions))
	var stack []string

	var visit func(id string)
	visit = func(id string) {
		state[id] = inProgress
		stack = append(stack, id)
		for _, dep := range edges[id] {
			if _, known := edges[dep]; !known || dep == id {
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(dep)
			case inProgress:
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), dep)
				path := "questions"
				if ref, ok := v.refs[dep]; ok {
					path = ref.path + ".visibleIf"
				}
				v.add(path, "condition cycle: "+strings.Join(cycle, " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, q := range questions {
		if q.ID != "" && state[q.ID] == unvisited {
			visit(q.ID)
		}
	}
}

func dependencies(rule *model.VisibleIf) []string {
	if rule == nil {
		return nil
	}
	if !rule.IsMulti() {
		if rule.QuestionID == "" {
			return nil
		}
		return []string{rule.QuestionID}
	}
	deps := make([]string, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		if c.QuestionID != "" {
			deps = append(deps, c.QuestionID)
		}
	}
	return deps
}
