package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
	"vms-backend/internal/services"
)

const dateLayout = "2006-01-02"

type VisitorHandler struct {
	Service *services.VisitorService
	Export  *services.ExportService
}

func NewVisitorHandler(service *services.VisitorService, export *services.ExportService) *VisitorHandler {
	return &VisitorHandler{Service: service, Export: export}
}

func (h *VisitorHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	visitor, err := h.Service.CheckIn(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, visitor)
}

func (h *VisitorHandler) Scan(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	result, err := h.Service.Scan(r.Context(), actor, r.URL.Query().Get("data"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *VisitorHandler) Exit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req models.ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	visitor, err := h.Service.Exit(r.Context(), actor, req.VisitorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visitor)
}

// ExitByQR completes an exit straight from a scanned payload.
func (h *VisitorHandler) ExitByQR(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	visitor, err := h.Service.ExitByQR(r.Context(), actor, r.URL.Query().Get("data"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visitor)
}

func (h *VisitorHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.ListActive(r.Context(), actor, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.ListAll(r.Context(), actor, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) Search(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.Search(r.Context(), actor, r.URL.Query().Get("keyword"), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) FilterToday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.FilterToday(r.Context(), actor, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) FilterByDateRange(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	from, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("from"), time.Local)
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid from date, expected YYYY-MM-DD"))
		return
	}
	to, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("to"), time.Local)
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid to date, expected YYYY-MM-DD"))
		return
	}
	page, size := parsePaging(r)
	// The to date is inclusive.
	visitors, err := h.Service.FilterByDateRange(r.Context(), actor, from, to.AddDate(0, 0, 1), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) FilterByStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.FilterByStatus(r.Context(), actor, mux.Vars(r)["status"], page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := models.AdvancedSearchFilter{
		Name:   q.Get("name"),
		Email:  q.Get("email"),
		Phone:  q.Get("phone"),
		Staff:  q.Get("staff"),
		Status: q.Get("status"),
	}
	if s := q.Get("fromDate"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid fromDate, expected YYYY-MM-DD"))
			return
		}
		filter.FromDate = &t
	}
	if s := q.Get("toDate"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid toDate, expected YYYY-MM-DD"))
			return
		}
		t = t.AddDate(0, 0, 1)
		filter.ToDate = &t
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.AdvancedSearch(r.Context(), actor, filter, page, size, q.Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

// MyVisitors lists today's visitors hosted by the calling staff member.
func (h *VisitorHandler) MyVisitors(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.StatusActive
	}
	page, size := parsePaging(r)
	visitors, err := h.Service.MyVisitors(r.Context(), actor, status, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

// Overdue previews which ACTIVE visitors have overstayed the given
// number of minutes. Read-only.
func (h *VisitorHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	minutes, err := strconv.Atoi(mux.Vars(r)["minutes"])
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "minutes must be an integer"))
		return
	}
	visitors, err := h.Service.FindOverdue(r.Context(), actor, minutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(visitors))
}

func (h *VisitorHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid visitor id"))
		return
	}
	logs, err := h.Service.History(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []models.VisitLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *VisitorHandler) TodayStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	stats, err := h.Service.TodayStats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *VisitorHandler) HourlyToday(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buckets, err := h.Service.TodayHourlyStats(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (h *VisitorHandler) HourlyByRange(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	buckets, err := h.Service.HourlyStatsByRange(r.Context(), actor, r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (h *VisitorHandler) exportBounds(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return nil, nil, apperr.New(apperr.KindValidation, "invalid from date, expected YYYY-MM-DD")
		}
		from = &t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return nil, nil, apperr.New(apperr.KindValidation, "invalid to date, expected YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to, nil
}

func (h *VisitorHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	from, to, err := h.exportBounds(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := h.Export.ExportCSV(r.Context(), actor, from, to, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("visitors-%s.csv", time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func (h *VisitorHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	from, to, err := h.exportBounds(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := h.Export.ExportExcel(r.Context(), actor, from, to, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("visitors-%s.xlsx", time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
