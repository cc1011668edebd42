package handler

import (
	"net/http"

	"surveyflow/internal/transport/rest/middleware"
)

// Me handles GET /v1/me
func Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "missing authorization")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
