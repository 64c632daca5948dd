package services

import (
	"context"
	"log"
	"strings"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/models"
)

// StaffService manages staff profiles linked to STAFF accounts and the
// per-staff dashboard counters.
type StaffService struct {
	Staff    StaffStore
	Users    UserStore
	Visitors VisitorStore
}

func NewStaffService(staff StaffStore, users UserStore, visitors VisitorStore) *StaffService {
	return &StaffService{Staff: staff, Users: users, Visitors: visitors}
}

func validateStaffRequest(req *models.StaffRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.StaffCode = strings.TrimSpace(req.StaffCode)
	if req.FullName == "" {
		return apperr.New(apperr.KindValidation, "full name is required")
	}
	if req.StaffCode == "" {
		return apperr.New(apperr.KindValidation, "staff code is required")
	}
	return nil
}

// CreateProfile attaches a staff profile to the calling STAFF account.
// One profile per account; staff codes are unique.
func (s *StaffService) CreateProfile(ctx context.Context, actor auth.Actor, req models.StaffRequest) (*models.Staff, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	if err := validateStaffRequest(&req); err != nil {
		return nil, err
	}
	if _, err := s.Staff.GetByUserID(ctx, actor.UserID); err == nil {
		return nil, apperr.New(apperr.KindConflict, "staff profile already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	taken, err := s.Staff.ExistsByCode(ctx, req.StaffCode)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.KindConflict, "staff code already in use")
	}

	st := &models.Staff{
		UserID:      actor.UserID,
		FullName:    req.FullName,
		StaffCode:   req.StaffCode,
		Department:  req.Department,
		Designation: req.Designation,
		Phone:       req.Phone,
	}
	if err := s.Staff.Create(ctx, st); err != nil {
		return nil, err
	}
	st.Username = actor.Username
	log.Printf("✓ Staff profile %s created for %s", st.StaffCode, actor.Username)
	return st, nil
}

// Me returns the calling staff member's profile.
func (s *StaffService) Me(ctx context.Context, actor auth.Actor) (*models.Staff, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	return s.Staff.GetByUserID(ctx, actor.UserID)
}

// Get returns one staff profile by id.
func (s *StaffService) Get(ctx context.Context, actor auth.Actor, id int) (*models.Staff, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	return s.Staff.Get(ctx, id)
}

// GetByCode resolves a staff code, used by the security desk during
// check-in.
func (s *StaffService) GetByCode(ctx context.Context, actor auth.Actor, code string) (*models.Staff, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	return s.Staff.GetByCode(ctx, strings.TrimSpace(code))
}

// Search lists staff matching the query; an empty query lists everyone.
func (s *StaffService) Search(ctx context.Context, actor auth.Actor, query string, page, size int) ([]models.Staff, error) {
	if !actor.HasRole(models.RoleAdmin, models.RoleSecurity) {
		return nil, apperr.New(apperr.KindAuthorization, "access denied")
	}
	page, size = normalizePage(page, size)
	return s.Staff.Search(ctx, query, page, size)
}

// UpdateMe updates the caller's own profile. The staff code is
// immutable once assigned.
func (s *StaffService) UpdateMe(ctx context.Context, actor auth.Actor, req models.StaffRequest) (*models.Staff, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	st, err := s.Staff.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, st, req)
}

// Update lets an admin update any staff profile.
func (s *StaffService) Update(ctx context.Context, actor auth.Actor, id int, req models.StaffRequest) (*models.Staff, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, apperr.New(apperr.KindAuthorization, "admin access required")
	}
	st, err := s.Staff.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, st, req)
}

func (s *StaffService) applyUpdate(ctx context.Context, st *models.Staff, req models.StaffRequest) (*models.Staff, error) {
	if strings.TrimSpace(req.FullName) != "" {
		st.FullName = strings.TrimSpace(req.FullName)
	}
	st.Department = req.Department
	st.Designation = req.Designation
	st.Phone = req.Phone
	if err := s.Staff.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteMe removes the caller's staff profile, leaving the account.
func (s *StaffService) DeleteMe(ctx context.Context, actor auth.Actor) error {
	if !actor.HasRole(models.RoleStaff) {
		return apperr.New(apperr.KindAuthorization, "staff access required")
	}
	st, err := s.Staff.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	return s.Staff.Delete(ctx, st.ID)
}

// Delete removes a staff profile and its linked account. Admin only.
func (s *StaffService) Delete(ctx context.Context, actor auth.Actor, id int) error {
	if !actor.HasRole(models.RoleAdmin) {
		return apperr.New(apperr.KindAuthorization, "admin access required")
	}
	st, err := s.Staff.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Staff.Delete(ctx, st.ID); err != nil {
		return err
	}
	if err := s.Users.Delete(ctx, st.UserID); err != nil {
		return err
	}
	log.Printf("✓ Staff %s and linked account removed", st.StaffCode)
	return nil
}

// Dashboard returns the caller's counters: visitors hosted today and
// visitors currently inside.
func (s *StaffService) Dashboard(ctx context.Context, actor auth.Actor) (*models.StaffDashboard, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	st, err := s.Staff.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	from, to := dayBounds(time.Now())
	today, err := s.Visitors.CountByStaffAndDateRange(ctx, st.ID, from, to)
	if err != nil {
		return nil, err
	}
	active, err := s.Visitors.CountByStaffAndStatus(ctx, st.ID, models.StatusActive)
	if err != nil {
		return nil, err
	}
	return &models.StaffDashboard{TodayVisitors: today, ActiveVisitors: active}, nil
}

// NotExited lists the caller's visitors who are still inside.
func (s *StaffService) NotExited(ctx context.Context, actor auth.Actor) ([]models.Visitor, error) {
	if !actor.HasRole(models.RoleStaff) {
		return nil, apperr.New(apperr.KindAuthorization, "staff access required")
	}
	return s.Visitors.ListActiveByStaff(ctx, actor.Username)
}
