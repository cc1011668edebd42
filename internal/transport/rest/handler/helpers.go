package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"surveyflow/internal/engine"
	"surveyflow/internal/service"
	"surveyflow/internal/transport/rest/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeIssues(w http.ResponseWriter, message string, issues []engine.Issue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  message,
		"issues": issues,
	})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]engine.Issue, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, engine.Issue{
					Path:    trimRoot(fe.Namespace()),
					Message: "failed on '" + fe.Tag() + "'",
				})
			}
			writeIssues(w, "validation failed", issues)
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// trimRoot drops the struct name validator puts in front of every namespace
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// writeServiceError maps service errors to HTTP statuses. Anything unmapped
// is logged and reported as a 500 without leaking the cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		writeIssues(w, "survey is invalid", verr.Issues)
	case errors.Is(err, service.ErrSurveyNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, service.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAnswerable),
		errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrInvalidVideo):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("endpoint", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
