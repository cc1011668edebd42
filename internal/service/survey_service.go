package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"surveyflow/internal/cache"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
	"surveyflow/internal/storage"
)

// SurveyService handles survey authoring and schema reads
type SurveyService struct {
	surveyRepo   repository.SurveyRepo
	responseRepo repository.ResponseRepo
	cache        cache.SurveyCache
	broadcaster  Broadcaster
	videos       storage.VideoStore
	logger       *zap.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(surveyRepo repository.SurveyRepo, responseRepo repository.ResponseRepo, surveyCache cache.SurveyCache, logger *zap.Logger) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		cache:        surveyCache,
		logger:       logger,
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *SurveyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetVideoStore lets schema edits delete the video objects they orphan
func (s *SurveyService) SetVideoStore(store storage.VideoStore) {
	s.videos = store
}

// List returns id and title of every survey
func (s *SurveyService) List(ctx context.Context) ([]model.SurveyListItem, error) {
	return s.surveyRepo.List(ctx)
}

// Get reads a schema through the cache
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Survey cache read failed", zap.String("surveyId", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", id, err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	if err := s.cache.Set(ctx, survey); err != nil {
		s.logger.Warn("Survey cache write failed", zap.String("surveyId", id), zap.Error(err))
	}
	return survey, nil
}

// Create stores a new survey from the default template
func (s *SurveyService) Create(ctx context.Context, createdBy string) (*model.Survey, error) {
	survey := model.DefaultSurvey("survey_" + uuid.New().String())
	survey.CreatedBy = createdBy

	if err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	s.logger.Info("Survey created", zap.String("surveyId", survey.ID), zap.String("createdBy", createdBy))
	return survey, nil
}

// Save validates and replaces the whole schema. Authoring metadata
// is kept from the stored document.
func (s *SurveyService) Save(ctx context.Context, survey *model.Survey) (*model.Survey, error) {
	normalize(survey)
	if err := engine.ValidateSurvey(survey); err != nil {
		return nil, err
	}

	var orphaned []string
	saved, err := s.Update(ctx, survey.ID, func(stored *model.Survey) error {
		keepVideoKeys(stored, survey)
		orphaned = droppedVideoKeys(stored, survey)
		stored.Title = survey.Title
		stored.Pages = survey.Pages
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.removeVideos(ctx, survey.ID, orphaned)
	return saved, nil
}

// droppedVideoKeys lists object keys the stored schema uses and the incoming one does not
func droppedVideoKeys(stored, incoming *model.Survey) []string {
	return missingVideoKeys(stored.Questions(), incoming.Questions())
}

func missingVideoKeys(before, after []model.Question) []string {
	kept := make(map[string]bool)
	for _, q := range after {
		if q.VideoKey != "" {
			kept[q.VideoKey] = true
		}
	}
	var keys []string
	for _, q := range before {
		if q.VideoKey != "" && !kept[q.VideoKey] {
			kept[q.VideoKey] = true
			keys = append(keys, q.VideoKey)
		}
	}
	return keys
}

// removeVideos deletes objects best-effort; the schema write has already landed
func (s *SurveyService) removeVideos(ctx context.Context, surveyID string, keys []string) {
	if s.videos == nil {
		return
	}
	for _, key := range keys {
		if err := s.videos.Remove(ctx, key); err != nil {
			s.logger.Warn("Failed to remove video object", zap.String("surveyId", surveyID), zap.String("key", key), zap.Error(err))
		}
	}
}

// keepVideoKeys restores object keys the editor does not round-trip
func keepVideoKeys(stored, incoming *model.Survey) {
	keys := make(map[string]string)
	for _, q := range stored.Questions() {
		if q.VideoURL != "" && q.VideoKey != "" {
			keys[q.VideoURL] = q.VideoKey
		}
	}
	for pi := range incoming.Pages {
		for qi := range incoming.Pages[pi].Questions {
			q := &incoming.Pages[pi].Questions[qi]
			if q.VideoKey == "" && q.VideoURL != "" {
				q.VideoKey = keys[q.VideoURL]
			}
		}
	}
}

// Update applies fn to the stored survey and writes it back
func (s *SurveyService) Update(ctx context.Context, id string, fn func(*model.Survey) error) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", id, err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}

	if err := fn(survey); err != nil {
		return nil, err
	}
	if err := s.surveyRepo.Replace(ctx, survey); err != nil {
		return nil, fmt.Errorf("save survey %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return survey, nil
}

// Delete removes the survey together with its responses
func (s *SurveyService) Delete(ctx context.Context, id string) error {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load survey %s: %w", id, err)
	}
	if survey == nil {
		return ErrSurveyNotFound
	}

	removed, err := s.responseRepo.DeleteBySurvey(ctx, id)
	if err != nil {
		return fmt.Errorf("delete responses of %s: %w", id, err)
	}
	if err := s.surveyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	s.removeVideos(ctx, id, missingVideoKeys(survey.Questions(), nil))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurvey(id, MsgSurveyDeleted, map[string]string{"surveyId": id})
		s.broadcaster.DisconnectSurvey(id)
	}
	s.logger.Info("Survey deleted", zap.String("surveyId", id), zap.Int64("responses", removed))
	return nil
}

func (s *SurveyService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("Survey cache invalidation failed", zap.String("surveyId", id), zap.Error(err))
	}
}

// normalize fills the defaults the form renderer expects
func normalize(survey *model.Survey) {
	if survey == nil {
		return
	}
	for pi := range survey.Pages {
		page := &survey.Pages[pi]
		if page.Questions == nil {
			page.Questions = []model.Question{}
		}
		for qi := range page.Questions {
			q := &page.Questions[qi]
			if q.Options == nil {
				q.Options = []string{}
			}
			if q.BackgroundColor == "" {
				q.BackgroundColor = model.BackgroundDefault
			}
		}
	}
}
