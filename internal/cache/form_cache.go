package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"surveyflow/internal/model"
)

// ErrDraftConflict is returned when concurrent writers kept invalidating an Update
var ErrDraftConflict = errors.New("draft changed concurrently")

// Optimistic retries before Update gives up
const maxDraftRetries = 10

// FormStateCache keeps a user's in-progress form between requests
type FormStateCache interface {
	Get(ctx context.Context, surveyID, userID string) (*model.FormState, error)
	Set(ctx context.Context, state *model.FormState) error
	// Update reads the draft (nil when none), applies fn and writes the result
	// only if no other writer touched the draft in between. fn may run more than once.
	Update(ctx context.Context, surveyID, userID string, fn func(current *model.FormState) (*model.FormState, error)) (*model.FormState, error)
	Delete(ctx context.Context, surveyID, userID string) error
}

type formStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormStateCache creates a new draft cache
func NewFormStateCache(client *redis.Client, ttl time.Duration) FormStateCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour // Drafts expire after a week
	}
	return &formStateCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *formStateCache) key(surveyID, userID string) string {
	return fmt.Sprintf("survey:%s:draft:%s", surveyID, userID)
}

func (c *formStateCache) Get(ctx context.Context, surveyID, userID string) (*model.FormState, error) {
	return decodeState(c.client.Get(ctx, c.key(surveyID, userID)).Bytes())
}

func decodeState(data []byte, err error) (*model.FormState, error) {
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Answers == nil {
		state.Answers = model.Answers{}
	}
	return &state, nil
}

func (c *formStateCache) Set(ctx context.Context, state *model.FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(state.SurveyID, state.UserID), data, c.ttl).Err()
}

func (c *formStateCache) Update(ctx context.Context, surveyID, userID string, fn func(*model.FormState) (*model.FormState, error)) (*model.FormState, error) {
	key := c.key(surveyID, userID)

	var result *model.FormState
	txf := func(tx *redis.Tx) error {
		current, err := decodeState(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		// EXEC fails with TxFailedErr if the key changed since WATCH
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxDraftRetries; i++ {
		err := c.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrDraftConflict
}

func (c *formStateCache) Delete(ctx context.Context, surveyID, userID string) error {
	return c.client.Del(ctx, c.key(surveyID, userID)).Err()
}
