package rest

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/ws"
)

type testServer struct {
	handler    http.Handler
	auth       *service.AuthService
	responses  *memResponseRepo
	publisher  *recordingPublisher
	adminToken string
	userToken  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()

	surveyRepo := &memSurveyRepo{surveys: make(map[string]model.Survey)}
	responseRepo := &memResponseRepo{responses: make(map[string]model.Response)}
	userRepo := &memUserRepo{users: make(map[string]model.User)}
	drafts := &memDraftCache{states: make(map[string]model.FormState)}
	publisher := &recordingPublisher{}

	auth := service.NewAuthService(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, userRepo, log)
	surveys := service.NewSurveyService(surveyRepo, responseRepo, noCache{}, log)
	forms := service.NewFormService(surveys, responseRepo, drafts, publisher, log)
	reviews := service.NewReviewService(surveys, responseRepo, userRepo, log)
	videos := service.NewVideoService(surveys, nil, log)

	hub := ws.NewHub(log)
	t.Cleanup(hub.Stop)
	surveys.SetBroadcaster(hub)
	forms.SetBroadcaster(hub)

	router := NewRouter(&Container{
		App: config.AppConfig{
			CORS: config.CORSConfig{
				AllowedOrigins: "https://app.example.com",
				AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
				AllowedHeaders: "Content-Type, Authorization",
			},
		},
		Logger:        log,
		AuthService:   auth,
		SurveyService: surveys,
		FormService:   forms,
		ReviewService: reviews,
		VideoService:  videos,
		WSHub:         hub,
	})

	adminToken, err := auth.IssueToken("admin1", "admin@example.com", model.RoleAdmin)
	require.NoError(t, err)
	userToken, err := auth.IssueToken("user1", "user@example.com", "")
	require.NoError(t, err)

	return &testServer{
		handler:    router,
		auth:       auth,
		responses:  responseRepo,
		publisher:  publisher,
		adminToken: adminToken,
		userToken:  userToken,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// createSurvey makes a one-page survey where q3 is only shown when q2 is "yes"
func (s *testServer) createSurvey(t *testing.T) string {
	t.Helper()
	rec := s.do(t, "POST", "/v1/surveys", s.adminToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Survey](t, rec)
	assert.Equal(t, "Untitled Survey", created.Title)
	assert.Equal(t, "admin1", created.CreatedBy)

	rec = s.do(t, "PUT", "/v1/surveys/"+created.ID, s.adminToken, map[string]interface{}{
		"title": "Onboarding",
		"pages": []map[string]interface{}{
			{
				"title": "Intro",
				"questions": []map[string]interface{}{
					{"id": "q1", "label": "Name", "type": "text"},
					{"id": "q2", "label": "Any issues?", "type": "radio", "options": []string{"yes", "no"}},
					{
						"id": "q3", "label": "Describe", "type": "text", "description": "**Be** specific",
						"visibleIf": map[string]interface{}{"questionId": "q2", "value": "yes"},
					},
				},
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return created.ID
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Auth(t *testing.T) {
	s := newTestServer(t)

	t.Run("Missing Token", func(t *testing.T) {
		rec := s.do(t, "GET", "/v1/surveys", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		rec := s.do(t, "GET", "/v1/surveys", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("User On Admin Route", func(t *testing.T) {
		rec := s.do(t, "POST", "/v1/surveys", s.userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Me", func(t *testing.T) {
		rec := s.do(t, "GET", "/v1/me", s.userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		p := decode[model.Principal](t, rec)
		assert.Equal(t, "user1", p.UserID)
		assert.Equal(t, model.RoleUser, p.Role)
	})
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/v1/surveys", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest("OPTIONS", "/v1/surveys", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SurveyValidation(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t)

	t.Run("Bad Type Tag", func(t *testing.T) {
		rec := s.do(t, "PUT", "/v1/surveys/"+id, s.adminToken, map[string]interface{}{
			"title": "Broken",
			"pages": []map[string]interface{}{
				{"title": "P", "questions": []map[string]interface{}{{"id": "q1", "type": "slider"}}},
			},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "validation failed", body["error"])
		assert.Contains(t, rec.Body.String(), "pages[0].questions[0].type")
	})

	t.Run("Unknown Condition Reference", func(t *testing.T) {
		rec := s.do(t, "PUT", "/v1/surveys/"+id, s.adminToken, map[string]interface{}{
			"title": "Broken",
			"pages": []map[string]interface{}{
				{"title": "P", "questions": []map[string]interface{}{
					{"id": "q1", "type": "text", "visibleIf": map[string]interface{}{"questionId": "ghost", "value": "x"}},
				}},
			},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "survey is invalid", body["error"])
		assert.NotEmpty(t, body["issues"])
	})

	t.Run("Unknown Survey", func(t *testing.T) {
		rec := s.do(t, "GET", "/v1/surveys/nope", s.userToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/v1/surveys/"+id, strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+s.adminToken)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_FillAndReview(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t)
	form := "/v1/forms/" + id

	rec := s.do(t, "GET", form, s.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	opened := decode[struct {
		State model.FormState `json:"state"`
		Page  model.PageView  `json:"page"`
	}](t, rec)
	assert.False(t, opened.State.IsUpdate)
	assert.Len(t, opened.Page.Questions, 2)

	rec = s.do(t, "PUT", form+"/answers/q2", s.userToken, map[string]interface{}{"value": "yes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[model.PageView](t, rec)
	require.Len(t, view.Questions, 3)
	assert.Equal(t, 1, view.Questions[2].Depth)
	assert.Equal(t, []string{"q2"}, view.Questions[2].Parents)
	assert.Equal(t, "<strong>Be</strong> specific", view.Questions[2].DescriptionHTML)

	rec = s.do(t, "PUT", form+"/answers/q3", s.userToken, map[string]interface{}{"value": "slow"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Hiding q3 again drops its answer
	rec = s.do(t, "PUT", form+"/answers/q2", s.userToken, map[string]interface{}{"value": "no"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[model.PageView](t, rec)
	assert.Len(t, view.Questions, 2)

	rec = s.do(t, "PUT", form+"/answers/q1", s.userToken, map[string]interface{}{"value": []string{"a"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, "PUT", form+"/answers/ghost", s.userToken, map[string]interface{}{"value": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "PUT", form+"/page", s.userToken, map[string]interface{}{"page": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "PUT", form+"/page", s.userToken, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, "GET", form+"/pages/x", s.userToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "POST", form+"/submit", s.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	submitted := decode[map[string]interface{}](t, rec)
	assert.Equal(t, id+"_user1", submitted["responseId"])
	assert.EqualValues(t, 50, submitted["completion"])

	stored, err := s.responses.GetByID(t.Context(), id+"_user1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Answers.Has("q3"))
	assert.True(t, stored.Completed)
	require.Len(t, s.publisher.events, 1)

	// Reopening prefills from the submission
	rec = s.do(t, "GET", form, s.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isUpdate":true`)

	rec = s.do(t, "GET", "/v1/surveys/"+id+"/responses", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	listing := decode[model.ResponseListing](t, rec)
	assert.Equal(t, 1, listing.Total)
	require.Len(t, listing.Groups, 1)
	assert.Equal(t, "user@example.com", listing.Groups[0].Responses[0].Email)

	rec = s.do(t, "GET", "/v1/surveys/"+id+"/responses/"+id+"_user1", s.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[model.ResponseDetail](t, rec)
	require.Len(t, detail.Pages, 1)
	assert.Equal(t, "Intro", detail.Pages[0].PageTitle)

	rec = s.do(t, "GET", "/v1/surveys/"+id+"/responses", s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_DeleteSurvey(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t)

	require.Equal(t, http.StatusOK, s.do(t, "POST", "/v1/forms/"+id+"/submit", s.userToken, nil).Code)

	rec := s.do(t, "DELETE", "/v1/surveys/"+id, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, "GET", "/v1/surveys/"+id, s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, s.responses.responses)
}

func TestRouter_VideoWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	id := s.createSurvey(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "clip.mp4")
	require.NoError(t, err)
	part.Write([]byte("not really a video"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/v1/surveys/"+id+"/questions/q1/video", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest("POST", "/v1/surveys/"+id+"/questions/q1/video", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
