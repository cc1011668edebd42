package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"surveyflow/internal/events"
	"surveyflow/internal/model"
)

type fakeSurveyRepo struct {
	mu      sync.Mutex
	surveys map[string]*model.Survey
}

func newFakeSurveyRepo(surveys ...*model.Survey) *fakeSurveyRepo {
	r := &fakeSurveyRepo{surveys: make(map[string]*model.Survey)}
	for _, s := range surveys {
		r.surveys[s.ID] = s
	}
	return r
}

func (r *fakeSurveyRepo) Create(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[s.ID]; ok {
		return fmt.Errorf("duplicate %s", s.ID)
	}
	cp := *s
	r.surveys[s.ID] = &cp
	return nil
}

func (r *fakeSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Pages = clonePages(s.Pages)
	return &cp, nil
}

func (r *fakeSurveyRepo) List(context.Context) ([]model.SurveyListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []model.SurveyListItem{}
	for _, s := range r.surveys {
		items = append(items, model.SurveyListItem{ID: s.ID, Title: s.Title})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}

func (r *fakeSurveyRepo) Replace(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Pages = clonePages(s.Pages)
	r.surveys[s.ID] = &cp
	return nil
}

func (r *fakeSurveyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.surveys, id)
	return nil
}

func clonePages(pages []model.Page) []model.Page {
	out := make([]model.Page, len(pages))
	for i, p := range pages {
		out[i] = model.Page{Title: p.Title, Questions: append([]model.Question{}, p.Questions...)}
	}
	return out
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses map[string]model.Response
	err       error
}

func newFakeResponseRepo(responses ...model.Response) *fakeResponseRepo {
	r := &fakeResponseRepo{responses: make(map[string]model.Response)}
	for _, resp := range responses {
		r.responses[resp.ID] = resp
	}
	return r
}

func (r *fakeResponseRepo) Upsert(_ context.Context, resp *model.Response) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.ID = model.ResponseID(resp.SurveyID, resp.UserID)
	r.responses[resp.ID] = *resp
	return nil
}

func (r *fakeResponseRepo) GetByID(_ context.Context, id string) (*model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.responses[id]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *fakeResponseRepo) GetBySurveyAndUser(ctx context.Context, surveyID, userID string) (*model.Response, error) {
	return r.GetByID(ctx, model.ResponseID(surveyID, userID))
}

func (r *fakeResponseRepo) ListBySurvey(_ context.Context, surveyID string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Response{}
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeResponseRepo) DeleteBySurvey(_ context.Context, surveyID string) (int64, error) {
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

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Ensure(_ context.Context, id, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		u = &model.User{ID: id, Role: model.RoleUser}
		r.users[id] = u
	}
	if email != "" {
		u.Email = email
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*model.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

type fakeSurveyCache struct {
	mu      sync.Mutex
	entries map[string]*model.Survey
	sets    int
	err     error
}

func newFakeSurveyCache() *fakeSurveyCache {
	return &fakeSurveyCache{entries: make(map[string]*model.Survey)}
}

func (c *fakeSurveyCache) Get(_ context.Context, id string) (*model.Survey, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id], nil
}

func (c *fakeSurveyCache) Set(_ context.Context, s *model.Survey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[s.ID] = s
	return nil
}

func (c *fakeSurveyCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// fakeDraftCache mimics the Redis WATCH contract: Update reads a versioned
// snapshot, runs fn outside the lock and retries if another write landed.
type fakeDraftCache struct {
	mu       sync.Mutex
	states   map[string]model.FormState
	versions map[string]int
	// delay widens the window between read and write
	delay time.Duration
}

func newFakeDraftCache() *fakeDraftCache {
	return &fakeDraftCache{
		states:   make(map[string]model.FormState),
		versions: make(map[string]int),
	}
}

func (c *fakeDraftCache) Get(_ context.Context, surveyID, userID string) (*model.FormState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[surveyID+"/"+userID]
	if !ok {
		return nil, nil
	}
	st.Answers = st.Answers.Clone()
	return &st, nil
}

func (c *fakeDraftCache) Set(_ context.Context, st *model.FormState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *st
	cp.Answers = st.Answers.Clone()
	c.states[st.SurveyID+"/"+st.UserID] = cp
	c.versions[st.SurveyID+"/"+st.UserID]++
	return nil
}

func (c *fakeDraftCache) Update(ctx context.Context, surveyID, userID string, fn func(*model.FormState) (*model.FormState, error)) (*model.FormState, error) {
	key := surveyID + "/" + userID
	for {
		c.mu.Lock()
		version := c.versions[key]
		var current *model.FormState
		if st, ok := c.states[key]; ok {
			st.Answers = st.Answers.Clone()
			current = &st
		}
		c.mu.Unlock()

		if c.delay > 0 {
			time.Sleep(c.delay)
		}
		next, err := fn(current)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.versions[key] != version {
			c.mu.Unlock()
			continue
		}
		cp := *next
		cp.Answers = next.Answers.Clone()
		c.states[key] = cp
		c.versions[key]++
		c.mu.Unlock()
		return next, nil
	}
}

func (c *fakeDraftCache) Delete(_ context.Context, surveyID, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, surveyID+"/"+userID)
	c.versions[surveyID+"/"+userID]++
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ResponseSubmitted
	err    error
}

func (p *fakePublisher) PublishResponseSubmitted(_ context.Context, evt events.ResponseSubmitted) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *fakePublisher) Close() error {
	return nil
}

type broadcast struct {
	surveyID string
	msgType  string
	payload  interface{}
}

type fakeBroadcaster struct {
	mu           sync.Mutex
	sent         []broadcast
	disconnected []string
}

func (b *fakeBroadcaster) BroadcastToSurvey(surveyID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, broadcast{surveyID: surveyID, msgType: msgType, payload: payload})
}

func (b *fakeBroadcaster) DisconnectSurvey(surveyID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, surveyID)
}

type fakeVideoStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	removeErr error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{objects: make(map[string][]byte)}
}

func (s *fakeVideoStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://cdn.test/videos/" + key, nil
}

func (s *fakeVideoStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, key)
	if s.removeErr != nil {
		return s.removeErr
	}
	if _, ok := s.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(s.objects, key)
	return nil
}
