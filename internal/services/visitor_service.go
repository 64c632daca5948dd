package services

import (
	"context"
	"log"
	"regexp"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/mailer"
	"vms-backend/internal/metrics"
	"vms-backend/internal/models"
	"vms-backend/internal/qr"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// VisitorService owns the visitor lifecycle: check-in, QR scan, exit
// and the overdue sweep. Every transition lands one row in the audit
// trail via VisitLogs.
type VisitorService struct {
	Visitors VisitorStore
	Logs     VisitLogStore
	Staff    StaffStore
	QR       QRGenerator
	Mail     mailer.Mailer
	Events   EventPublisher
}

func NewVisitorService(visitors VisitorStore, logs VisitLogStore, staff StaffStore, qrGen QRGenerator, mail mailer.Mailer, events EventPublisher) *VisitorService {
	return &VisitorService{
		Visitors: visitors,
		Logs:     logs,
		Staff:    staff,
		QR:       qrGen,
		Mail:     mail,
		Events:   events,
	}
}

// CheckIn registers a visitor as ACTIVE, generates their QR pass and
// emails it. Only SECURITY performs check-ins.
func (s *VisitorService) CheckIn(ctx context.Context, actor auth.Actor, req models.CheckInRequest) (*models.Visitor, error) {
	if !actor.HasRole(models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "only security can check in visitors")
	}
	if req.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "visitor name is required")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, apperr.New(apperr.KindValidation, "invalid email format")
	}

	host, err := s.Staff.Get(ctx, req.StaffID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.New(apperr.KindValidation, "staff not found")
		}
		return nil, err
	}

	v := &models.Visitor{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Purpose:       req.Purpose,
		StaffID:       host.ID,
		EntryTime:     time.Now(),
		Status:        models.StatusActive,
		StaffName:     host.FullName,
		StaffUsername: host.Username,
	}
	if err := s.Visitors.Create(ctx, v); err != nil {
		return nil, err
	}

	path, err := s.QR.GenerateForVisitor(v.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Visitors.SetQRPath(ctx, v.ID, path); err != nil {
		return nil, err
	}
	v.QRPath = &path

	if err := s.Logs.Append(ctx, &models.VisitLog{
		VisitorID:     v.ID,
		StaffUsername: host.Username,
		Action:        models.ActionEntered,
		Timestamp:     v.EntryTime,
	}); err != nil {
		return nil, err
	}
	metrics.VisitorTransitions.WithLabelValues(models.ActionEntered).Inc()

	// Email delivery never blocks or fails the check-in.
	go func(email, name, qrPath string) {
		if err := s.Mail.SendVisitorQR(email, name, qrPath); err != nil {
			log.Printf("failed to send QR email to %s: %v", email, err)
			metrics.QREmailsSent.WithLabelValues("error").Inc()
			return
		}
		metrics.QREmailsSent.WithLabelValues("sent").Inc()
	}(v.Email, v.Name, path)

	if s.Events != nil {
		s.Events.PublishVisitorEvent(models.ActionEntered, v)
	}
	log.Printf("✓ Visitor %d (%s) checked in for staff %s", v.ID, v.Name, host.Username)
	return v, nil
}

// Scan resolves a QR payload to the visitor it encodes. Any
// authenticated role may scan; CanExit tells the client whether the
// caller could also complete an exit.
func (s *VisitorService) Scan(ctx context.Context, actor auth.Actor, data string) (*models.ScanResult, error) {
	id, err := qr.ParsePayload(data)
	if err != nil {
		return nil, err
	}
	v, err := s.Visitors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ScanResult{
		Visitor: *v,
		CanExit: actor.HasRole(models.RoleSecurity),
	}, nil
}

// Exit completes a visit. The status update is a single conditional
// UPDATE, so concurrent exits (or an exit racing the overdue sweep)
// resolve to exactly one winner. OVERDUE visitors may still exit.
func (s *VisitorService) Exit(ctx context.Context, actor auth.Actor, visitorID int) (*models.Visitor, error) {
	if !actor.HasRole(models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "only security can mark exits")
	}
	v, err := s.Visitors.MarkExited(ctx, visitorID, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Logs.Append(ctx, &models.VisitLog{
		VisitorID:     v.ID,
		StaffUsername: v.StaffUsername,
		Action:        models.ActionExited,
		Timestamp:     *v.ExitTime,
	}); err != nil {
		return nil, err
	}
	metrics.VisitorTransitions.WithLabelValues(models.ActionExited).Inc()

	if s.Events != nil {
		s.Events.PublishVisitorEvent(models.ActionExited, v)
	}
	log.Printf("✓ Visitor %d (%s) exited", v.ID, v.Name)
	return v, nil
}

// ExitByQR scans a payload and exits the visitor in one step.
func (s *VisitorService) ExitByQR(ctx context.Context, actor auth.Actor, data string) (*models.Visitor, error) {
	id, err := qr.ParsePayload(data)
	if err != nil {
		return nil, err
	}
	return s.Exit(ctx, actor, id)
}

// MarkOverdue flips ACTIVE visitors whose entry predates the cutoff to
// OVERDUE and appends one audit row per visitor. Invoked by the
// background sweeper; idempotent because only ACTIVE rows match.
func (s *VisitorService) MarkOverdue(ctx context.Context, cutoff time.Duration) (int, error) {
	entries, err := s.Visitors.MarkOverdueBefore(ctx, time.Now().Add(-cutoff))
	if err != nil {
		return 0, err
	}
	for i := range entries {
		if err := s.Logs.Append(ctx, &entries[i]); err != nil {
			log.Printf("failed to log overdue transition for visitor %d: %v", entries[i].VisitorID, err)
		}
		metrics.VisitorTransitions.WithLabelValues(models.ActionOverdueMarked).Inc()
	}
	if len(entries) > 0 && s.Events != nil {
		for i := range entries {
			s.Events.PublishVisitorEvent(models.ActionOverdueMarked, &models.Visitor{
				ID:     entries[i].VisitorID,
				Status: models.StatusOverdue,
			})
		}
	}
	return len(entries), nil
}

// FindOverdue is the admin read-only view of who would be swept: still
// ACTIVE, inside longer than the given number of minutes. Nothing is
// mutated.
func (s *VisitorService) FindOverdue(ctx context.Context, actor auth.Actor, minutes int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, apperr.New(apperr.KindAuthorization, "admin access required")
	}
	if minutes <= 0 {
		return nil, apperr.New(apperr.KindValidation, "minutes must be positive")
	}
	return s.Visitors.ListActiveBefore(ctx, time.Now().Add(-time.Duration(minutes)*time.Minute))
}

// History returns the audit trail of one visitor, oldest entry first.
func (s *VisitorService) History(ctx context.Context, actor auth.Actor, visitorID int) ([]models.VisitLog, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	if _, err := s.Visitors.Get(ctx, visitorID); err != nil {
		return nil, err
	}
	return s.Logs.ListByVisitor(ctx, visitorID)
}

// ListActive returns currently ACTIVE visitors.
func (s *VisitorService) ListActive(ctx context.Context, actor auth.Actor, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleStaff, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	page, size = normalizePage(page, size)
	return s.Visitors.ListByStatus(ctx, models.StatusActive, page, size)
}

// ListAll returns all visitors, newest entry first.
func (s *VisitorService) ListAll(ctx context.Context, actor auth.Actor, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	page, size = normalizePage(page, size)
	return s.Visitors.List(ctx, page, size)
}

// Search matches the keyword against name, email and phone.
func (s *VisitorService) Search(ctx context.Context, actor auth.Actor, keyword string, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	page, size = normalizePage(page, size)
	return s.Visitors.Search(ctx, keyword, page, size)
}

// FilterToday returns visitors who entered today.
func (s *VisitorService) FilterToday(ctx context.Context, actor auth.Actor, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	page, size = normalizePage(page, size)
	from, to := dayBounds(time.Now())
	return s.Visitors.ListByDateRange(ctx, from, to, page, size)
}

// FilterByDateRange returns visitors who entered inside [from, to].
func (s *VisitorService) FilterByDateRange(ctx context.Context, actor auth.Actor, from, to time.Time, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	if to.Before(from) {
		return nil, apperr.New(apperr.KindValidation, "to must not precede from")
	}
	page, size = normalizePage(page, size)
	return s.Visitors.ListByDateRange(ctx, from, to, page, size)
}

// FilterByStatus returns visitors in the given status.
func (s *VisitorService) FilterByStatus(ctx context.Context, actor auth.Actor, status string, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status: %s", status)
	}
	page, size = normalizePage(page, size)
	return s.Visitors.ListByStatus(ctx, status, page, size)
}

// AdvancedSearch applies the filter as an AND of its non-empty fields.
// An empty filter therefore degenerates to plain pagination.
func (s *VisitorService) AdvancedSearch(ctx context.Context, actor auth.Actor, f models.AdvancedSearchFilter, page, size int, sort string) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status: %s", f.Status)
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return nil, apperr.New(apperr.KindValidation, "to must not precede from")
	}
	page, size = normalizePage(page, size)
	return s.Visitors.AdvancedSearch(ctx, f, page, size, sort == "name")
}

// MyVisitors returns today's visitors hosted by the calling staff
// member, filtered by status.
func (s *VisitorService) MyVisitors(ctx context.Context, actor auth.Actor, status string, page, size int) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid status: %s", status)
	}
	page, size = normalizePage(page, size)
	from, to := dayBounds(time.Now())
	return s.Visitors.ListByStaffAndStatus(ctx, actor.Username, status, from, to, page, size)
}

// TodayStats is the security desk summary for the current day.
func (s *VisitorService) TodayStats(ctx context.Context, actor auth.Actor) (*models.TodayStats, error) {
	if !actor.HasRole(models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "security access required")
	}
	from, to := dayBounds(time.Now())
	total, err := s.Visitors.CountByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	active, err := s.Visitors.CountByStatusAndDateRange(ctx, models.StatusActive, from, to)
	if err != nil {
		return nil, err
	}
	exited, err := s.Visitors.CountByStatusAndDateRange(ctx, models.StatusExited, from, to)
	if err != nil {
		return nil, err
	}
	return &models.TodayStats{
		TotalVisitorsToday: total,
		ActiveVisitors:     active,
		ExitedVisitors:     exited,
	}, nil
}

// TodayHourlyStats buckets today's entries by hour. All 24 buckets are
// present even when empty.
func (s *VisitorService) TodayHourlyStats(ctx context.Context, actor auth.Actor) (map[int]int64, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	from, to := dayBounds(time.Now())
	return s.hourlyBuckets(ctx, from, to)
}

// HourlyStatsByRange buckets entries by hour over a named range.
func (s *VisitorService) HourlyStatsByRange(ctx context.Context, actor auth.Actor, name string) (map[int]int64, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	now := time.Now()
	from, err := rangeStart(name, now)
	if err != nil {
		return nil, err
	}
	return s.hourlyBuckets(ctx, from, now)
}

func (s *VisitorService) hourlyBuckets(ctx context.Context, from, to time.Time) (map[int]int64, error) {
	rows, err := s.Visitors.GroupByHour(ctx, from, to)
	if err != nil {
		return nil, err
	}
	buckets := make(map[int]int64, 24)
	for h := 0; h < 24; h++ {
		buckets[h] = 0
	}
	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < 24 {
			buckets[r.Hour] = r.Count
		}
	}
	return buckets, nil
}
