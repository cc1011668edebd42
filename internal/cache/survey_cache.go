package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"surveyflow/internal/model"
)

// SurveyCache holds survey schemas read by the live form
type SurveyCache interface {
	Get(ctx context.Context, id string) (*model.Survey, error)
	Set(ctx context.Context, survey *model.Survey) error
	Invalidate(ctx context.Context, id string) error
}

type surveyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSurveyCache creates a new survey cache
func NewSurveyCache(client *redis.Client, ttl time.Duration) SurveyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &surveyCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *surveyCache) key(id string) string {
	return fmt.Sprintf("survey:%s:schema", id)
}

func (c *surveyCache) Get(ctx context.Context, id string) (*model.Survey, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var survey model.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *surveyCache) Set(ctx context.Context, survey *model.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(survey.ID), data, c.ttl).Err()
}

func (c *surveyCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
