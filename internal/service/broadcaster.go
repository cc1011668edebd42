package service

// Message types pushed to admin subscribers
const (
	MsgResponseSubmitted = "response_submitted"
	MsgSurveyDeleted     = "survey_deleted"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSurvey(surveyID string, msgType string, payload interface{})
	DisconnectSurvey(surveyID string)
}
