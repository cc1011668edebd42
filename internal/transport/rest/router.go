package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/handler"
	"surveyflow/internal/transport/rest/middleware"
	"surveyflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	App           config.AppConfig
	Logger        *zap.Logger
	Mongo         *mongo.Client // nil skips the health ping
	AuthService   *service.AuthService
	SurveyService *service.SurveyService
	FormService   *service.FormService
	ReviewService *service.ReviewService
	VideoService  *service.VideoService
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	surveyHandler := handler.NewSurveyHandler(c.SurveyService, c.Logger)
	formHandler := handler.NewFormHandler(c.FormService, c.Logger)
	reviewHandler := handler.NewReviewHandler(c.ReviewService, c.Logger)
	videoHandler := handler.NewVideoHandler(c.VideoService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.SurveyService, c.App.CORS.Origins(), c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService, c.Logger)

	// CORS first so preflights never reach auth
	r.Use(corsMiddleware(c.App.CORS))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(c.Logger))
	if c.App.RateLimit > 0 {
		r.Use(httprate.LimitByIP(c.App.RateLimit, time.Minute))
	}

	r.HandleFunc("/health", healthHandler(c.Mongo)).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Any authenticated user
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/me", handler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/forms/{surveyId}", formHandler.Open).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/forms/{surveyId}/pages/{page}", formHandler.Page).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/forms/{surveyId}/answers/{questionId}", formHandler.ChangeAnswer).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/forms/{surveyId}/page", formHandler.SetPage).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/forms/{surveyId}/submit", formHandler.Submit).Methods("POST", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireUser, authMW.RequireAdmin)

	adminRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Save).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/questions/{questionId}/video", videoHandler.Upload).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/questions/{questionId}/video", videoHandler.Remove).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/responses", reviewHandler.ListResponses).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/surveys/{surveyId}/responses/{responseId}", reviewHandler.GetResponse).Methods("GET", "OPTIONS")

	// WebSocket feed (token in query param)
	adminRoutes.HandleFunc("/ws/surveys/{surveyId}/responses", wsHandler.ResponsesFeed).Methods("GET")

	return r
}

func healthHandler(client *mongo.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if client != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := client.Ping(ctx, nil); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.Origins()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowOrigin(origins, r.Header.Get("Origin")); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowOrigin echoes a listed origin back, or "*" when any origin is allowed
func allowOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}
