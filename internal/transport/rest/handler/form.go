package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

// FormHandler serves the live form to end users
type FormHandler struct {
	formSvc *service.FormService
	logger  *zap.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService, logger *zap.Logger) *FormHandler {
	return &FormHandler{formSvc: formSvc, logger: logger}
}

// Open handles GET /v1/forms/{surveyId}
func (h *FormHandler) Open(w http.ResponseWriter, r *http.Request) {
	state, view, err := h.formSvc.Open(r.Context(), mux.Vars(r)["surveyId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, FormResponse{State: state, Page: view})
}

// Page handles GET /v1/forms/{surveyId}/pages/{page}
func (h *FormHandler) Page(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a number")
		return
	}

	view, err := h.formSvc.Page(r.Context(), vars["surveyId"], middleware.GetUserID(r.Context()), page)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ChangeAnswer handles PUT /v1/forms/{surveyId}/answers/{questionId}
func (h *FormHandler) ChangeAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	view, err := h.formSvc.ChangeAnswer(r.Context(), vars["surveyId"], middleware.GetUserID(r.Context()), vars["questionId"], req.Value)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetPage handles PUT /v1/forms/{surveyId}/page
func (h *FormHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req PageRequestBody
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.formSvc.SetPage(r.Context(), mux.Vars(r)["surveyId"], middleware.GetUserID(r.Context()), *req.Page)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /v1/forms/{surveyId}/submit
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	resp, err := h.formSvc.Submit(r.Context(), mux.Vars(r)["surveyId"], middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmitResponse{
		ResponseID: resp.ID,
		Completion: resp.Progress,
		Timestamp:  resp.Timestamp,
	})
}
