package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Handler handles WebSocket connections
type Handler struct {
	hub       *Hub
	surveySvc *service.SurveyService
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list
// or a "*" entry accepts any origin.
func NewHandler(hub *Hub, surveySvc *service.SurveyService, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:       hub,
		surveySvc: surveySvc,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ResponsesFeed handles GET /v1/ws/surveys/{surveyId}/responses.
// Runs behind RequireUser and RequireAdmin; the token arrives as a query param.
func (h *Handler) ResponsesFeed(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	if _, err := h.surveySvc.Get(r.Context(), surveyID); err != nil {
		if errors.Is(err, service.ErrSurveyNotFound) {
			http.Error(w, `{"error":"survey not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to load survey for feed", zap.String("surveyId", surveyID), zap.Error(err))
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade error", zap.String("surveyId", surveyID), zap.Error(err))
		return
	}

	conn := &Connection{
		SurveyID: surveyID,
		UserID:   middleware.GetUserID(r.Context()),
		Send:     make(chan []byte, 256),
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// The feed is one-way; reads only drive the pong handler
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket error", zap.String("surveyId", conn.SurveyID), zap.Error(err))
			}
			break
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
