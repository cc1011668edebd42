package rest

import (
	"context"
	"sort"
	"sync"

	"surveyflow/internal/events"
	"surveyflow/internal/model"
)

type memSurveyRepo struct {
	mu      sync.Mutex
	surveys map[string]model.Survey
}

func (r *memSurveyRepo) Create(_ context.Context, s *model.Survey) error {
	return r.Replace(context.Background(), s)
}

func (r *memSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	pages := make([]model.Page, len(s.Pages))
	for i, p := range s.Pages {
		pages[i] = model.Page{Title: p.Title, Questions: append([]model.Question{}, p.Questions...)}
	}
	s.Pages = pages
	return &s, nil
}

func (r *memSurveyRepo) List(context.Context) ([]model.SurveyListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []model.SurveyListItem{}
	for _, s := range r.surveys {
		items = append(items, model.SurveyListItem{ID: s.ID, Title: s.Title})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}

func (r *memSurveyRepo) Replace(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surveys[s.ID] = *s
	return nil
}

func (r *memSurveyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surveys, id)
	return nil
}

type memResponseRepo struct {
	mu        sync.Mutex
	responses map[string]model.Response
}

func (r *memResponseRepo) Upsert(_ context.Context, resp *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = model.ResponseID(resp.SurveyID, resp.UserID)
	r.responses[resp.ID] = *resp
	return nil
}

func (r *memResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[id]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *memResponseRepo) GetBySurveyAndUser(ctx context.Context, surveyID, userID string) (*model.Response, error) {
	return r.GetByID(ctx, model.ResponseID(surveyID, userID))
}

func (r *memResponseRepo) ListBySurvey(_ context.Context, surveyID string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Response{}
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *memResponseRepo) DeleteBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, resp := range r.responses {
		if resp.SurveyID == surveyID {
			delete(r.responses, id)
			n++
		}
	}
	return n, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (r *memUserRepo) Ensure(_ context.Context, id, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		u = model.User{ID: id, Role: model.RoleUser}
	}
	if email != "" {
		u.Email = email
	}
	r.users[id] = u
	return &u, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*model.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := u
			out[id] = &cp
		}
	}
	return out, nil
}

// noCache never hits, so every read goes to the repository
type noCache struct{}

func (noCache) Get(context.Context, string) (*model.Survey, error) { return nil, nil }
func (noCache) Set(context.Context, *model.Survey) error { return nil }
func (noCache) Invalidate(context.Context, string) error { return nil }

type memDraftCache struct {
	mu     sync.Mutex
	states map[string]model.FormState
}

func (c *memDraftCache) Get(_ context.Context, surveyID, userID string) (*model.FormState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[surveyID+"/"+userID]
	if !ok {
		return nil, nil
	}
	st.Answers = st.Answers.Clone()
	return &st, nil
}

func (c *memDraftCache) Set(_ context.Context, state *model.FormState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := *state
	st.Answers = state.Answers.Clone()
	c.states[state.SurveyID+"/"+state.UserID] = st
	return nil
}

func (c *memDraftCache) Update(_ context.Context, surveyID, userID string, fn func(*model.FormState) (*model.FormState, error)) (*model.FormState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var current *model.FormState
	if st, ok := c.states[surveyID+"/"+userID]; ok {
		st.Answers = st.Answers.Clone()
		current = &st
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	st := *next
	st.Answers = next.Answers.Clone()
	c.states[surveyID+"/"+userID] = st
	return next, nil
}

func (c *memDraftCache) Delete(_ context.Context, surveyID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, surveyID+"/"+userID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ResponseSubmitted
}

func (p *recordingPublisher) PublishResponseSubmitted(_ context.Context, evt events.ResponseSubmitted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
