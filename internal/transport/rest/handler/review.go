package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyflow/internal/service"
)

// ReviewHandler exposes submitted responses to admins
type ReviewHandler struct {
	reviewSvc *service.ReviewService
	logger    *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc *service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc, logger: logger}
}

// ListResponses handles GET /v1/surveys/{surveyId}/responses
func (h *ReviewHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	listing, err := h.reviewSvc.ListResponses(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// GetResponse handles GET /v1/surveys/{surveyId}/responses/{responseId}
func (h *ReviewHandler) GetResponse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	detail, err := h.reviewSvc.GetResponse(r.Context(), vars["surveyId"], vars["responseId"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
