package ws

import (
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans out survey events to the admins watching each survey
type Hub struct {
	// surveyID -> set of subscriber connections
	subscribers map[string]map[*Connection]struct{}

	mu     sync.RWMutex
	logger *zap.Logger

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopOnce   sync.Once
}

// Connection is one admin's live feed for a survey
type Connection struct {
	SurveyID string
	UserID   string
	Send     chan []byte
}

// BroadcastMessage is a message for every subscriber of a survey.
// Close ends their feeds instead; it shares the queue so it lands after
// anything broadcast before it.
type BroadcastMessage struct {
	SurveyID string
	Message  *Message
	Close    bool
}

// NewHub creates a new WebSocket hub and starts its event loop
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Connection]struct{}),
		logger:      logger,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.SurveyID] == nil {
				h.subscribers[conn.SurveyID] = make(map[*Connection]struct{})
			}
			h.subscribers[conn.SurveyID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Subscriber connected", zap.String("surveyId", conn.SurveyID), zap.String("userId", conn.UserID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.subscribers[conn.SurveyID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.subscribers, conn.SurveyID)
					}
					h.logger.Info("Subscriber disconnected", zap.String("surveyId", conn.SurveyID), zap.String("userId", conn.UserID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Close {
				h.mu.Lock()
				for conn := range h.subscribers[msg.SurveyID] {
					close(conn.Send)
				}
				delete(h.subscribers, msg.SurveyID)
				h.mu.Unlock()
				h.logger.Info("Survey feeds closed", zap.String("surveyId", msg.SurveyID))
				continue
			}
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("Failed to encode broadcast", zap.String("surveyId", msg.SurveyID), zap.Error(err))
				continue
			}
			h.mu.RLock()
			for conn := range h.subscribers[msg.SurveyID] {
				select {
				case conn.Send <- data:
				default:
					// Slow consumer; drop rather than block the hub
					h.logger.Warn("Dropping message for slow subscriber", zap.String("surveyId", msg.SurveyID), zap.String("userId", conn.UserID))
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for surveyID, conns := range h.subscribers {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.subscribers, surveyID)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Stop closes every feed and ends the event loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Subscribers reports how many feeds are open for a survey
func (h *Hub) Subscribers(surveyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[surveyID])
}

// BroadcastToSurvey sends a message to every subscriber (implements service.Broadcaster)
func (h *Hub) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SurveyID: surveyID,
		Message:  &Message{Type: MessageType(msgType), Payload: data},
	}:
	case <-h.done:
	}
}

// DisconnectSurvey closes every feed of a survey (implements service.Broadcaster)
func (h *Hub) DisconnectSurvey(surveyID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SurveyID: surveyID, Close: true}:
	case <-h.done:
	}
}
