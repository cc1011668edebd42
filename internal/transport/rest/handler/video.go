package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyflow/internal/service"
	"surveyflow/internal/storage"
)

// multipart framing on top of the largest accepted file
const maxUploadBody = storage.MaxVideoSize + 1<<20

// VideoHandler handles question video uploads
type VideoHandler struct {
	videoSvc *service.VideoService
	logger   *zap.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videoSvc *service.VideoService, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{videoSvc: videoSvc, logger: logger}
}

// Upload handles POST /v1/surveys/{surveyId}/questions/{questionId}/video
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, storage.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	vars := mux.Vars(r)
	question, err := h.videoSvc.AttachVideo(r.Context(), vars["surveyId"], vars["questionId"], service.VideoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// Remove handles DELETE /v1/surveys/{surveyId}/questions/{questionId}/video
func (h *VideoHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.videoSvc.RemoveVideo(r.Context(), vars["surveyId"], vars["questionId"]); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
