package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

const (
	untitledSubmission = "Untitled Submission"
	unknownEmail       = "Unknown"
	missingEmail       = "No email"
)

// Answer keys checked, in order, for a customer name
var customerNameKeys = []string{"customerName", "customer-name", "Customer Name"}

// ReviewService serves submitted responses to admins
type ReviewService struct {
	surveys      *SurveyService
	responseRepo repository.ResponseRepo
	userRepo     repository.UserRepo
	logger       *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(surveys *SurveyService, responseRepo repository.ResponseRepo, userRepo repository.UserRepo, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		surveys:      surveys,
		responseRepo: responseRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// ListResponses returns the survey's responses newest first, bucketed by date
func (s *ReviewService) ListResponses(ctx context.Context, surveyID string) (*model.ResponseListing, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	// Legacy timestamps may be stored as strings, so the store's order is not trusted
	sorted := engine.SortNewestFirst(responses)

	users := s.lookupUsers(ctx, sorted)

	listing := &model.ResponseListing{
		SurveyID: survey.ID,
		Title:    survey.Title,
		Total:    len(sorted),
		Groups:   []model.SummaryGroup{},
	}
	if len(sorted) > 0 {
		latest := sorted[0].Timestamp
		listing.Latest = &latest
	}

	for _, group := range engine.GroupByDate(sorted) {
		summaries := make([]model.ResponseSummary, 0, len(group.Responses))
		for _, r := range group.Responses {
			summaries = append(summaries, summarize(r, survey, users))
		}
		listing.Groups = append(listing.Groups, model.SummaryGroup{
			DateKey:   group.DateKey,
			Responses: summaries,
		})
	}
	return listing, nil
}

// GetResponse returns one response reorganized by page
func (s *ReviewService) GetResponse(ctx context.Context, surveyID, responseID string) (*model.ResponseDetail, error) {
	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if response == nil || response.SurveyID != surveyID {
		return nil, ErrResponseNotFound
	}

	pages := engine.OrganizeByPage(response.Answers, survey)
	for pi := range pages {
		for ai := range pages[pi].Answers {
			a := &pages[pi].Answers[ai]
			a.DescriptionHTML = engine.RenderDescription(a.Description)
		}
	}

	users := s.lookupUsers(ctx, []model.Response{*response})
	return &model.ResponseDetail{
		Response: *response,
		Email:    emailOf(users, response.UserID),
		Pages:    pages,
	}, nil
}

// lookupUsers degrades to "Unknown" emails when the profile store fails
func (s *ReviewService) lookupUsers(ctx context.Context, responses []model.Response) map[string]*model.User {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range responses {
		if r.UserID != "" && !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Could not fetch user profiles", zap.Int("count", len(ids)), zap.Error(err))
		return map[string]*model.User{}
	}
	return users
}

func summarize(r model.Response, survey *model.Survey, users map[string]*model.User) model.ResponseSummary {
	return model.ResponseSummary{
		ID:              r.ID,
		UserID:          r.UserID,
		Email:           emailOf(users, r.UserID),
		CustomerName:    customerName(r.Answers),
		FirstFieldTitle: firstFieldTitle(r.Answers, survey),
		Completion:      engine.CompletionPercent(r.Answers, survey),
		Completed:       r.Completed,
		Timestamp:       r.Timestamp,
	}
}

func emailOf(users map[string]*model.User, userID string) string {
	u, ok := users[userID]
	if !ok {
		return unknownEmail
	}
	if u.Email == "" {
		return missingEmail
	}
	return u.Email
}

func customerName(answers model.Answers) string {
	for _, key := range customerNameKeys {
		if v, ok := answers.Get(key); ok && v.Answered() {
			return v.Display()
		}
	}
	return ""
}

// firstFieldTitle is the answer to the first question of the first page
// whose first question was answered
func firstFieldTitle(answers model.Answers, survey *model.Survey) string {
	for _, page := range survey.Pages {
		if len(page.Questions) == 0 {
			continue
		}
		first := page.Questions[0]
		if first.ID == "" {
			continue
		}
		if v, ok := answers.Get(first.ID); ok && v.Answered() {
			return v.Display()
		}
	}
	return untitledSubmission
}
