package engine

import "surveyflow/internal/model"

// QuestionIndex maps question ids to questions. Later duplicates win.
func QuestionIndex(questions []model.Question) map[string]model.Question {
	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return byID
}

// Hierarchy walks the condition chain above id to compute its display nesting.
// Multi-condition rules nest under their first condition's question.
// A revisited id ends the walk, so cyclic schemas still terminate.
func Hierarchy(id string, byID map[string]model.Question) model.Hierarchy {
	return hierarchy(id, byID, make(map[string]bool))
}

func hierarchy(id string, byID map[string]model.Question, visited map[string]bool) model.Hierarchy {
	q, ok := byID[id]
	if !ok || visited[id] {
		return model.Hierarchy{Parents: []string{}}
	}
	visited[id] = true

	parentID := displayParent(q.VisibleIf)
	if parentID == "" {
		return model.Hierarchy{Parents: []string{}}
	}

	parent := hierarchy(parentID, byID, visited)
	parents := make([]string, 0, len(parent.Parents)+1)
	parents = append(parents, parent.Parents...)
	parents = append(parents, parentID)
	return model.Hierarchy{Depth: parent.Depth + 1, Parents: parents}
}

func displayParent(rule *model.VisibleIf) string {
	if rule == nil {
		return ""
	}
	if rule.IsMulti() && len(rule.Conditions) > 0 && rule.Conditions[0].QuestionID != "" {
		return rule.Conditions[0].QuestionID
	}
	return rule.QuestionID
}
