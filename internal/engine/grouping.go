package engine

import (
	"sort"

	"surveyflow/internal/model"
)

const dateKeyLayout = "2006-01-02"

// DateKey is the UTC calendar date of a response timestamp
func DateKey(ts model.Timestamp) string {
	return ts.UTC().Format(dateKeyLayout)
}

// SortNewestFirst returns a copy ordered by timestamp, newest first.
// Equal timestamps keep their input order.
func SortNewestFirst(responses []model.Response) []model.Response {
	out := make([]model.Response, len(responses))
	copy(out, responses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp.Time)
	})
	return out
}

// GroupByDate buckets responses by UTC date. Groups are ordered by date
// descending; within a group the caller's order is kept.
func GroupByDate(responses []model.Response) []model.ResponseGroup {
	groups := []model.ResponseGroup{}
	index := make(map[string]int)
	for _, r := range responses {
		key := DateKey(r.Timestamp)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.ResponseGroup{DateKey: key})
		}
		groups[i].Responses = append(groups[i].Responses, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].DateKey > groups[j].DateKey
	})
	return groups
}
