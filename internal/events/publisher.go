package events

import (
	"context"
	"time"
)

// RoutingResponseSubmitted is the routing key for submission events
const RoutingResponseSubmitted = "response.submitted"

// ResponseSubmitted is emitted after a response is stored
type ResponseSubmitted struct {
	ResponseID  string    `json:"responseId"`
	SurveyID    string    `json:"surveyId"`
	UserID      string    `json:"userId"`
	Completion  int       `json:"completion"`
	IsUpdate    bool      `json:"isUpdate"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Publisher sends domain events to downstream consumers
type Publisher interface {
	PublishResponseSubmitted(ctx context.Context, evt ResponseSubmitted) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishResponseSubmitted(context.Context, ResponseSubmitted) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
