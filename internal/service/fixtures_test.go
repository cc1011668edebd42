package service

import (
	"time"

	"go.uber.org/zap"

	"surveyflow/internal/model"
)

func sampleSurvey() *model.Survey {
	return &model.Survey{
		ID:        "s1",
		Title:     "Onboarding",
		CreatedBy: "admin1",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Pages: []model.Page{
			{
				Title: "Intro",
				Questions: []model.Question{
					{ID: "q1", Label: "Name", Type: model.QuestionTypeText, Options: []string{}},
					{ID: "q2", Label: "Has pets?", Type: model.QuestionTypeRadio, Options: []string{"yes", "no"}},
					{
						ID: "q3", Label: "Which pets", Type: model.QuestionTypeCheckbox, Options: []string{"cat", "dog"},
						VisibleIf: &model.VisibleIf{QuestionID: "q2", Value: model.TextValue("yes")},
					},
					{
						ID: "q4", Label: "Pet names", Description: "**Tell** us", Type: model.QuestionTypeText,
						VisibleIf: &model.VisibleIf{QuestionID: "q2", Value: model.TextValue("yes")},
					},
				},
			},
			{
				Title: "Details",
				Questions: []model.Question{
					{ID: "intro", Label: "Almost done", Type: model.QuestionTypeNone},
					{ID: "q5", Label: "Anything else?", Type: model.QuestionTypeTextarea},
				},
			},
		},
	}
}

type testEnv struct {
	surveyRepo   *fakeSurveyRepo
	responseRepo *fakeResponseRepo
	userRepo     *fakeUserRepo
	surveyCache  *fakeSurveyCache
	drafts       *fakeDraftCache
	publisher    *fakePublisher
	broadcaster  *fakeBroadcaster
	videos       *fakeVideoStore

	surveys *SurveyService
	forms   *FormService
	reviews *ReviewService
	video   *VideoService
}

func newTestEnv(surveys ...*model.Survey) *testEnv {
	env := &testEnv{
		surveyRepo:   newFakeSurveyRepo(surveys...),
		responseRepo: newFakeResponseRepo(),
		userRepo:     newFakeUserRepo(),
		surveyCache:  newFakeSurveyCache(),
		drafts:       newFakeDraftCache(),
		publisher:    &fakePublisher{},
		broadcaster:  &fakeBroadcaster{},
		videos:       newFakeVideoStore(),
	}
	log := zap.NewNop()

	env.surveys = NewSurveyService(env.surveyRepo, env.responseRepo, env.surveyCache, log)
	env.surveys.SetBroadcaster(env.broadcaster)
	env.surveys.SetVideoStore(env.videos)
	env.forms = NewFormService(env.surveys, env.responseRepo, env.drafts, env.publisher, log)
	env.forms.SetBroadcaster(env.broadcaster)
	env.reviews = NewReviewService(env.surveys, env.responseRepo, env.userRepo, log)
	env.video = NewVideoService(env.surveys, env.videos, log)
	return env
}
