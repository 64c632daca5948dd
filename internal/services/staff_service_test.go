package services

import (
	"context"
	"testing"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

func newStaffFixture(t *testing.T) (*StaffService, *visitorFixture) {
	t.Helper()
	f := newVisitorFixture(t)
	users := newFakeUserStore()
	users.Create(context.Background(), &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleStaff})
	return NewStaffService(f.staff, users, f.visitors), f
}

func TestCreateProfileRejectsDuplicates(t *testing.T) {
	svc, _ := newStaffFixture(t)

	// staffActor already has a profile from the fixture.
	_, err := svc.CreateProfile(context.Background(), staffActor, models.StaffRequest{
		FullName: "Alice Smith", StaffCode: "EMP002",
	})
	if !apperr.IsConflict(err) {
		t.Errorf("second profile: err = %v, want conflict", err)
	}
}

func TestCreateProfileRejectsTakenCode(t *testing.T) {
	svc, _ := newStaffFixture(t)
	other := staffActor
	other.UserID = 99
	other.Username = "carol"

	_, err := svc.CreateProfile(context.Background(), other, models.StaffRequest{
		FullName: "Carol Jones", StaffCode: "EMP001",
	})
	if !apperr.IsConflict(err) {
		t.Errorf("taken code: err = %v, want conflict", err)
	}
}

func TestStaffCodeIsImmutable(t *testing.T) {
	svc, _ := newStaffFixture(t)

	updated, err := svc.UpdateMe(context.Background(), staffActor, models.StaffRequest{
		FullName: "Alice Q. Smith", StaffCode: "HACKED", Department: "Engineering",
	})
	if err != nil {
		t.Fatalf("UpdateMe failed: %v", err)
	}
	if updated.StaffCode != "EMP001" {
		t.Errorf("staff code = %s, want EMP001 (immutable)", updated.StaffCode)
	}
	if updated.FullName != "Alice Q. Smith" || updated.Department != "Engineering" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestStaffDashboardCounts(t *testing.T) {
	svc, f := newStaffFixture(t)
	v1 := f.checkIn(t)
	f.checkIn(t)
	if _, err := f.svc.Exit(context.Background(), securityActor, v1.ID); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}

	d, err := svc.Dashboard(context.Background(), staffActor)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.TodayVisitors != 2 || d.ActiveVisitors != 1 {
		t.Errorf("dashboard = %+v, want today 2 / active 1", d)
	}
}

func TestStaffNotExitedIncludesOverdue(t *testing.T) {
	svc, f := newStaffFixture(t)
	v1 := f.checkIn(t)
	v2 := f.checkIn(t)
	if _, err := f.svc.Exit(context.Background(), securityActor, v2.ID); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}
	f.visitors.visitors[v1.ID].Status = models.StatusOverdue

	visitors, err := svc.NotExited(context.Background(), staffActor)
	if err != nil {
		t.Fatalf("NotExited failed: %v", err)
	}
	if len(visitors) != 1 || visitors[0].ID != v1.ID {
		t.Errorf("got %v, want only the overdue visitor", visitors)
	}
}

func TestStaffAdminGates(t *testing.T) {
	svc, _ := newStaffFixture(t)

	if _, err := svc.Update(context.Background(), staffActor, 1, models.StaffRequest{}); !apperr.IsAuthorization(err) {
		t.Errorf("non-admin update: err = %v, want authorization error", err)
	}
	if err := svc.Delete(context.Background(), securityActor, 1); !apperr.IsAuthorization(err) {
		t.Errorf("non-admin delete: err = %v, want authorization error", err)
	}
	if _, err := svc.Me(context.Background(), adminActor); !apperr.IsAuthorization(err) {
		t.Errorf("admin Me: err = %v, want authorization error", err)
	}
}

func TestAdminDeleteRemovesLinkedAccount(t *testing.T) {
	f := newVisitorFixture(t)
	users := newFakeUserStore()
	u := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleStaff}
	users.Create(context.Background(), u)
	f.staff.staff[f.host.ID].UserID = u.ID
	svc := NewStaffService(f.staff, users, f.visitors)

	if err := svc.Delete(context.Background(), adminActor, f.host.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.GetByID(context.Background(), u.ID); !apperr.IsNotFound(err) {
		t.Errorf("linked user still present: err = %v, want not found", err)
	}
	if _, err := f.staff.Get(context.Background(), f.host.ID); !apperr.IsNotFound(err) {
		t.Errorf("staff still present: err = %v, want not found", err)
	}
}
