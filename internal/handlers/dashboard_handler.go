package handlers

import (
	"net/http"

	"vms-backend/internal/services"
)

type DashboardHandler struct {
	Service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// Analytics returns the combined admin dashboard for a named range.
// The range defaults to today.
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = "today"
	}
	dashboard, err := h.Service.Analytics(r.Context(), actor, rangeName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
