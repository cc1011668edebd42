package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// SurveyHandler handles survey schema endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
	logger    *zap.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc, logger: logger}
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.surveySvc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.Get(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.Create(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// Save handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveSurveyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	survey, err := h.surveySvc.Save(r.Context(), req.ToSurvey(mux.Vars(r)["surveyId"]))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.surveySvc.Delete(r.Context(), mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
