package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"surveyflow/internal/cache"
	"surveyflow/internal/engine"
	"surveyflow/internal/events"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// FormService drives a user through a survey: draft state, navigation,
// answer changes and submission.
type FormService struct {
	surveys      *SurveyService
	responseRepo repository.ResponseRepo
	drafts       cache.FormStateCache
	publisher    events.Publisher
	broadcaster  Broadcaster
	logger       *zap.Logger
	now          func() time.Time
}

// NewFormService creates a new form service
func NewFormService(
	surveys *SurveyService,
	responseRepo repository.ResponseRepo,
	drafts cache.FormStateCache,
	publisher events.Publisher,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		surveys:      surveys,
		responseRepo: responseRepo,
		drafts:       drafts,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *FormService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Load returns the user's working state: the draft if one exists, else
// their previous submission, else an empty form.
func (s *FormService) Load(ctx context.Context, surveyID, userID string) (*model.FormState, *model.Survey, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, nil, err
	}

	draft, err := s.drafts.Get(ctx, surveyID, userID)
	if err != nil {
		s.logger.Warn("Draft read failed", zap.String("surveyId", surveyID), zap.String("userId", userID), zap.Error(err))
	}
	state, err := s.workingState(ctx, survey, userID, draft)
	if err != nil {
		return nil, nil, err
	}
	return state, survey, nil
}

// workingState fits a draft to the current schema, or starts a fresh one
// from the previous submission when there is no draft.
func (s *FormService) workingState(ctx context.Context, survey *model.Survey, userID string, draft *model.FormState) (*model.FormState, error) {
	state := draft
	if state == nil {
		state = &model.FormState{
			SurveyID: survey.ID,
			UserID:   userID,
			Answers:  model.Answers{},
		}
		prior, err := s.responseRepo.GetBySurveyAndUser(ctx, survey.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("load previous response: %w", err)
		}
		if prior != nil {
			state.Answers = prior.Answers.Compact()
			state.IsUpdate = true
		}
	}
	if state.Answers == nil {
		state.Answers = model.Answers{}
	}

	if dropped := engine.DropUnknown(survey.Questions(), state.Answers); len(dropped) > 0 {
		s.logger.Debug("Answers to removed questions dropped",
			zap.String("surveyId", survey.ID),
			zap.String("userId", userID),
			zap.Strings("questionIds", dropped),
		)
	}
	if state.CurrentPage >= len(survey.Pages) || state.CurrentPage < 0 {
		state.CurrentPage = 0
	}
	return state, nil
}

// updateDraft applies fn to the working state and stores the result atomically
func (s *FormService) updateDraft(ctx context.Context, survey *model.Survey, userID string, fn func(state *model.FormState)) (*model.FormState, error) {
	state, err := s.drafts.Update(ctx, survey.ID, userID, func(current *model.FormState) (*model.FormState, error) {
		state, err := s.workingState(ctx, survey, userID, current)
		if err != nil {
			return nil, err
		}
		fn(state)
		state.UpdatedAt = s.now().UTC()
		return state, nil
	})
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return state, nil
}

// Open returns the working state with the page the user last viewed
func (s *FormService) Open(ctx context.Context, surveyID, userID string) (*model.FormState, *model.PageView, error) {
	state, survey, err := s.Load(ctx, surveyID, userID)
	if err != nil {
		return nil, nil, err
	}
	view, err := buildPageView(survey, state, state.CurrentPage)
	if err != nil {
		return nil, nil, err
	}
	return state, view, nil
}

// Page renders one page without moving the user's position
func (s *FormService) Page(ctx context.Context, surveyID, userID string, page int) (*model.PageView, error) {
	state, survey, err := s.Load(ctx, surveyID, userID)
	if err != nil {
		return nil, err
	}
	return buildPageView(survey, state, page)
}

// SetPage moves the user to another page
func (s *FormService) SetPage(ctx context.Context, surveyID, userID string, page int) (*model.PageView, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if page < 0 || page >= len(survey.Pages) {
		return nil, ErrPageOutOfRange
	}

	state, err := s.updateDraft(ctx, survey, userID, func(state *model.FormState) {
		state.CurrentPage = page
	})
	if err != nil {
		return nil, err
	}
	return buildPageView(survey, state, page)
}

// ChangeAnswer records an answer and clears answers of questions it hides.
// An absent value clears the answer.
func (s *FormService) ChangeAnswer(ctx context.Context, surveyID, userID, questionID string, value model.AnswerValue) (*model.PageView, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	pageIdx, questionIdx, ok := survey.FindQuestion(questionID)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	q := survey.Pages[pageIdx].Questions[questionIdx]
	if !q.Type.Answerable() {
		return nil, ErrNotAnswerable
	}
	if err := checkAnswerShape(q, value); err != nil {
		return nil, err
	}

	questions := survey.Questions()
	state, err := s.updateDraft(ctx, survey, userID, func(state *model.FormState) {
		before := len(state.Answers)
		state.Answers = engine.ApplyAnswer(questions, state.Answers, questionID, value)
		if cleared := before - len(state.Answers); cleared > 0 {
			s.logger.Debug("Hidden answers cleared",
				zap.String("surveyId", surveyID),
				zap.String("questionId", questionID),
				zap.Int("cleared", cleared),
			)
		}
	})
	if err != nil {
		return nil, err
	}
	return buildPageView(survey, state, pageIdx)
}

// Submit stores the working answers as the user's response, replacing
// any earlier submission, and notifies subscribers.
func (s *FormService) Submit(ctx context.Context, surveyID, userID string) (*model.Response, error) {
	state, survey, err := s.Load(ctx, surveyID, userID)
	if err != nil {
		return nil, err
	}

	answers := state.Answers.Compact()
	engine.PruneHidden(survey.Questions(), answers)

	response := &model.Response{
		SurveyID:  surveyID,
		UserID:    userID,
		Answers:   answers,
		Progress:  engine.CompletionPercent(answers, survey),
		Completed: true,
		Timestamp: model.NewTimestamp(s.now()),
	}
	if err := s.responseRepo.Upsert(ctx, response); err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	if err := s.drafts.Delete(ctx, surveyID, userID); err != nil {
		s.logger.Warn("Draft cleanup failed", zap.String("surveyId", surveyID), zap.String("userId", userID), zap.Error(err))
	}

	evt := events.ResponseSubmitted{
		ResponseID:  response.ID,
		SurveyID:    surveyID,
		UserID:      userID,
		Completion:  response.Progress,
		IsUpdate:    state.IsUpdate,
		SubmittedAt: response.Timestamp.Time,
	}
	if err := s.publisher.PublishResponseSubmitted(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish submission event", zap.String("responseId", response.ID), zap.Error(err))
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurvey(surveyID, MsgResponseSubmitted, evt)
	}

	s.logger.Info("Response submitted",
		zap.String("surveyId", surveyID),
		zap.String("userId", userID),
		zap.Int("completion", response.Progress),
		zap.Bool("isUpdate", state.IsUpdate),
	)
	return response, nil
}

// checkAnswerShape ties the union's discriminant to the question type
func checkAnswerShape(q model.Question, value model.AnswerValue) error {
	if !value.Defined() {
		return nil
	}
	switch {
	case q.Type == model.QuestionTypeCheckbox && value.Kind != model.AnswerChoices:
		return fmt.Errorf("%w: %s expects a list", ErrInvalidAnswer, q.ID)
	case q.Type != model.QuestionTypeCheckbox && value.Kind != model.AnswerText:
		return fmt.Errorf("%w: %s expects text", ErrInvalidAnswer, q.ID)
	}
	return nil
}

func buildPageView(survey *model.Survey, state *model.FormState, pageIdx int) (*model.PageView, error) {
	if pageIdx < 0 || pageIdx >= len(survey.Pages) {
		return nil, ErrPageOutOfRange
	}
	page := survey.Pages[pageIdx]
	byID := engine.QuestionIndex(page.Questions)

	questions := make([]model.FormQuestion, 0, len(page.Questions))
	for _, q := range page.Questions {
		if !engine.IsVisible(q, state.Answers) {
			continue
		}
		h := engine.Hierarchy(q.ID, byID)
		fq := model.FormQuestion{
			Question:        q,
			DescriptionHTML: engine.RenderDescription(q.Description),
			Depth:           h.Depth,
			Parents:         h.Parents,
		}
		if v, ok := state.Answers.Get(q.ID); ok {
			fq.Answer = &v
		}
		questions = append(questions, fq)
	}

	title := page.Title
	if title == "" {
		title = fmt.Sprintf("Page %d", pageIdx+1)
	}
	return &model.PageView{
		SurveyID:   survey.ID,
		Title:      title,
		PageIndex:  pageIdx,
		PageCount:  len(survey.Pages),
		Progress:   engine.PageProgress(pageIdx, len(survey.Pages)),
		Completion: engine.CompletionPercent(state.Answers, survey),
		Questions:  questions,
		IsUpdate:   state.IsUpdate,
	}, nil
}
