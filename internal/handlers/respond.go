package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/middleware"
	"vms-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds onto HTTP statuses. Internal
// errors are masked.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireActor pulls the authenticated actor out of the context. The
// auth middleware guarantees it on protected routes.
func requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return actor, ok
}

// parsePaging reads page and size query params with defaults.
func parsePaging(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = 10
	}
	return page, size
}

// emptyIfNil keeps list responses as [] instead of null.
func emptyIfNil(visitors []models.Visitor) []models.Visitor {
	if visitors == nil {
		return []models.Visitor{}
	}
	return visitors
}
