package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"surveyflow/internal/model"
	"surveyflow/internal/storage"
)

// VideoUpload describes an incoming file
type VideoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// VideoService attaches videos to survey questions
type VideoService struct {
	surveys *SurveyService
	store   storage.VideoStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewVideoService creates a new video service. A nil store disables uploads.
func NewVideoService(surveys *SurveyService, store storage.VideoStore, logger *zap.Logger) *VideoService {
	return &VideoService{
		surveys: surveys,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// AttachVideo uploads the file and points the question at it. A video the
// question held before is removed afterwards; failing that only logs.
func (s *VideoService) AttachVideo(ctx context.Context, surveyID, questionID string, upload VideoUpload) (*model.Question, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if err := storage.ValidateVideo(upload.ContentType, upload.Size); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVideo, err)
	}

	survey, err := s.surveys.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if _, _, ok := survey.FindQuestion(questionID); !ok {
		return nil, ErrUnknownQuestion
	}

	key := storage.VideoObjectKey(surveyID, questionID, upload.Filename, upload.ContentType, s.now())
	url, err := s.store.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	var previousKey string
	var updated model.Question
	_, err = s.surveys.Update(ctx, surveyID, func(stored *model.Survey) error {
		pi, qi, ok := stored.FindQuestion(questionID)
		if !ok {
			return ErrUnknownQuestion
		}
		q := &stored.Pages[pi].Questions[qi]
		previousKey = q.VideoKey
		q.VideoURL = url
		q.VideoKey = key
		updated = *q
		return nil
	})
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	if previousKey != "" && previousKey != key {
		s.removeObject(ctx, previousKey)
	}
	s.logger.Info("Video attached",
		zap.String("surveyId", surveyID),
		zap.String("questionId", questionID),
		zap.String("key", key),
	)
	return &updated, nil
}

// RemoveVideo clears the question's video and deletes the object
func (s *VideoService) RemoveVideo(ctx context.Context, surveyID, questionID string) error {
	var previousKey string
	_, err := s.surveys.Update(ctx, surveyID, func(stored *model.Survey) error {
		pi, qi, ok := stored.FindQuestion(questionID)
		if !ok {
			return ErrUnknownQuestion
		}
		q := &stored.Pages[pi].Questions[qi]
		previousKey = q.VideoKey
		q.VideoURL = ""
		q.VideoKey = ""
		return nil
	})
	if err != nil {
		return err
	}

	if previousKey != "" && s.store != nil {
		s.removeObject(ctx, previousKey)
	}
	return nil
}

func (s *VideoService) removeObject(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("Could not delete video object", zap.String("key", key), zap.Error(err))
	}
}
