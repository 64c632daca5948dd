package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

// In-memory stores backing the service tests. They mirror the
// conditional-update semantics of the SQL repositories.

type fakeVisitorStore struct {
	mu       sync.Mutex
	nextID   int
	visitors map[int]*models.Visitor
}

func newFakeVisitorStore() *fakeVisitorStore {
	return &fakeVisitorStore{nextID: 1, visitors: make(map[int]*models.Visitor)}
}

func (s *fakeVisitorStore) Create(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.nextID
	s.nextID++
	v.CreatedAt = time.Now()
	cp := *v
	s.visitors[v.ID] = &cp
	return nil
}

func (s *fakeVisitorStore) Get(_ context.Context, id int) (*models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "visitor %d not found", id)
	}
	cp := *v
	return &cp, nil
}

func (s *fakeVisitorStore) SetQRPath(_ context.Context, id int, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, "visitor %d not found", id)
	}
	v.QRPath = &path
	return nil
}

func (s *fakeVisitorStore) MarkExited(_ context.Context, id int, exitTime time.Time) (*models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "visitor %d not found", id)
	}
	if v.Status != models.StatusActive && v.Status != models.StatusOverdue {
		return nil, apperr.Newf(apperr.KindState, "visitor %d already %s", id, v.Status)
	}
	v.Status = models.StatusExited
	v.ExitTime = &exitTime
	cp := *v
	return &cp, nil
}

func (s *fakeVisitorStore) MarkOverdueBefore(_ context.Context, cutoff time.Time) ([]models.VisitLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.VisitLog
	for _, v := range s.visitors {
		if v.Status == models.StatusActive && v.EntryTime.Before(cutoff) {
			v.Status = models.StatusOverdue
			entries = append(entries, models.VisitLog{
				VisitorID:     v.ID,
				StaffUsername: v.StaffUsername,
				Action:        models.ActionOverdueMarked,
				Timestamp:     time.Now(),
			})
		}
	}
	return entries, nil
}

func (s *fakeVisitorStore) all() []models.Visitor {
	out := make([]models.Visitor, 0, len(s.visitors))
	for _, v := range s.visitors {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out
}

func paginate(visitors []models.Visitor, page, size int) []models.Visitor {
	start := page * size
	if start >= len(visitors) {
		return nil
	}
	end := start + size
	if end > len(visitors) {
		end = len(visitors)
	}
	return visitors[start:end]
}

func (s *fakeVisitorStore) List(_ context.Context, page, size int) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.all(), page, size), nil
}

func (s *fakeVisitorStore) ListByStatus(_ context.Context, status string, page, size int) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return paginate(out, page, size), nil
}

func (s *fakeVisitorStore) Search(_ context.Context, keyword string, page, size int) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw := strings.ToLower(keyword)
	var out []models.Visitor
	for _, v := range s.all() {
		if strings.Contains(strings.ToLower(v.Name), kw) ||
			strings.Contains(strings.ToLower(v.Email), kw) ||
			strings.Contains(v.Phone, kw) {
			out = append(out, v)
		}
	}
	return paginate(out, page, size), nil
}

func (s *fakeVisitorStore) ListByDateRange(_ context.Context, from, to time.Time, page, size int) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			out = append(out, v)
		}
	}
	return paginate(out, page, size), nil
}

func (s *fakeVisitorStore) ListByDateRangeAll(_ context.Context, from, to *time.Time) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if from != nil && v.EntryTime.Before(*from) {
			continue
		}
		if to != nil && !v.EntryTime.Before(*to) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeVisitorStore) ListActiveBefore(_ context.Context, cutoff time.Time) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if v.Status == models.StatusActive && v.EntryTime.Before(cutoff) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeVisitorStore) AdvancedSearch(_ context.Context, f models.AdvancedSearchFilter, page, size int, sortAsc bool) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if f.Name != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Email != "" && !strings.Contains(strings.ToLower(v.Email), strings.ToLower(f.Email)) {
			continue
		}
		if f.Phone != "" && !strings.Contains(v.Phone, f.Phone) {
			continue
		}
		if f.Staff != "" && !strings.Contains(strings.ToLower(v.StaffName), strings.ToLower(f.Staff)) {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.FromDate != nil && v.EntryTime.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && !v.EntryTime.Before(*f.ToDate) {
			continue
		}
		out = append(out, v)
	}
	if sortAsc {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return paginate(out, page, size), nil
}

func (s *fakeVisitorStore) ListByStaffAndStatus(_ context.Context, username, status string, from, to time.Time, page, size int) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if v.StaffUsername == username && v.Status == status &&
			!v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			out = append(out, v)
		}
	}
	return paginate(out, page, size), nil
}

func (s *fakeVisitorStore) ListActiveByStaff(_ context.Context, username string) ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visitor
	for _, v := range s.all() {
		if v.StaffUsername == username && v.Status != models.StatusExited {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *fakeVisitorStore) CountByDateRange(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.visitors {
		if !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitorStore) CountByStatusAndDateRange(_ context.Context, status string, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.visitors {
		if v.Status == status && !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitorStore) CountActiveBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.visitors {
		if v.Status == models.StatusActive && v.EntryTime.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitorStore) CountByStaffAndDateRange(_ context.Context, staffID int, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.visitors {
		if v.StaffID == staffID && !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitorStore) CountByStaffAndStatus(_ context.Context, staffID int, status string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.visitors {
		if v.StaffID == staffID && v.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitorStore) GroupByDay(_ context.Context, from, to time.Time) ([]models.DailyTrend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := make(map[string]int64)
	for _, v := range s.visitors {
		if !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			byDay[v.EntryTime.Format("2006-01-02")]++
		}
	}
	var out []models.DailyTrend
	for day, count := range byDay {
		out = append(out, models.DailyTrend{Date: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *fakeVisitorStore) GroupByHour(_ context.Context, from, to time.Time) ([]models.PeakHour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byHour := make(map[int]int64)
	for _, v := range s.visitors {
		if !v.EntryTime.Before(from) && v.EntryTime.Before(to) {
			byHour[v.EntryTime.Hour()]++
		}
	}
	var out []models.PeakHour
	for h, count := range byHour {
		out = append(out, models.PeakHour{Hour: h, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

type fakeVisitLogStore struct {
	mu      sync.Mutex
	nextID  int
	entries []models.VisitLog
}

func newFakeVisitLogStore() *fakeVisitLogStore {
	return &fakeVisitLogStore{nextID: 1}
}

func (s *fakeVisitLogStore) Append(_ context.Context, entry *models.VisitLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeVisitLogStore) ListByVisitor(_ context.Context, visitorID int) ([]models.VisitLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VisitLog
	for _, e := range s.entries {
		if e.VisitorID == visitorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeVisitLogStore) actions(visitorID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.entries {
		if e.VisitorID == visitorID {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeStaffStore struct {
	mu     sync.Mutex
	nextID int
	staff  map[int]*models.Staff
}

func newFakeStaffStore() *fakeStaffStore {
	return &fakeStaffStore{nextID: 1, staff: make(map[int]*models.Staff)}
}

func (s *fakeStaffStore) add(st models.Staff) *models.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.nextID
	s.nextID++
	cp := st
	s.staff[st.ID] = &cp
	return &cp
}

func (s *fakeStaffStore) Create(_ context.Context, st *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.nextID
	s.nextID++
	cp := *st
	s.staff[st.ID] = &cp
	return nil
}

func (s *fakeStaffStore) Get(_ context.Context, id int) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.staff[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "staff not found")
	}
	cp := *st
	return &cp, nil
}

func (s *fakeStaffStore) GetByUserID(_ context.Context, userID int) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staff {
		if st.UserID == userID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "staff not found")
}

func (s *fakeStaffStore) GetByCode(_ context.Context, code string) (*models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staff {
		if st.StaffCode == code {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "staff not found")
}

func (s *fakeStaffStore) ExistsByCode(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staff {
		if st.StaffCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStaffStore) Search(_ context.Context, query string, page, size int) ([]models.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Staff
	for _, st := range s.staff {
		if q == "" || strings.Contains(strings.ToLower(st.FullName), q) || strings.Contains(strings.ToLower(st.StaffCode), q) {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	start := page * size
	if start >= len(out) {
		return nil, nil
	}
	end := start + size
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *fakeStaffStore) Update(_ context.Context, st *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.staff[st.ID]; !ok {
		return apperr.New(apperr.KindNotFound, "staff not found")
	}
	cp := *st
	s.staff[st.ID] = &cp
	return nil
}

func (s *fakeStaffStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staff, id)
	return nil
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[int]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (s *fakeUserStore) UpdateEmail(_ context.Context, id int, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Email = email
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id int, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.PasswordHash = hash
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// fakeQRGenerator returns a deterministic path without touching disk.
type fakeQRGenerator struct {
	fail bool
}

func (g *fakeQRGenerator) GenerateForVisitor(visitorID int) (string, error) {
	if g.fail {
		return "", fmt.Errorf("qr generation failed")
	}
	return fmt.Sprintf("qrcodes/visitor-%d.png", visitorID), nil
}

// fakeMailer records deliveries.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendVisitorQR(toEmail, visitorName, qrPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

// fakeEvents records published lifecycle events.
type fakeEvents struct {
	mu      sync.Mutex
	actions []string
}

func (e *fakeEvents) PublishVisitorEvent(action string, _ *models.Visitor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, action)
}
