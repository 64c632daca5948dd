package services

import (
	"context"
	"testing"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

func TestDashboardAnalytics(t *testing.T) {
	f := newVisitorFixture(t)
	v1 := f.checkIn(t)
	f.checkIn(t)
	if _, err := f.svc.Exit(context.Background(), securityActor, v1.ID); err != nil {
		t.Fatalf("Exit failed: %v", err)
	}

	dash := NewDashboardService(f.visitors)
	d, err := dash.Analytics(context.Background(), adminActor, "today")
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}

	if d.Summary.Total != 2 || d.Summary.Active != 1 || d.Summary.Exited != 1 {
		t.Errorf("summary = %+v, want total 2 / active 1 / exited 1", d.Summary)
	}
	if len(d.PeakHours) != 24 {
		t.Errorf("peak hours = %d buckets, want 24", len(d.PeakHours))
	}
	for h, p := range d.PeakHours {
		if p.Hour != h {
			t.Errorf("peak hour bucket %d has hour %d", h, p.Hour)
		}
	}
	if len(d.StatusDistribution) != 3 {
		t.Errorf("status distribution = %d entries, want 3", len(d.StatusDistribution))
	}
	if len(d.DailyTrend) != 1 {
		t.Errorf("daily trend = %d entries, want 1", len(d.DailyTrend))
	}
}

func TestDashboardCountsOverstayed(t *testing.T) {
	f := newVisitorFixture(t)
	v := f.checkIn(t)
	f.visitors.visitors[v.ID].EntryTime = time.Now().Add(-4 * time.Hour)

	dash := NewDashboardService(f.visitors)
	d, err := dash.Analytics(context.Background(), adminActor, "week")
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if d.Summary.Overstayed != 1 {
		t.Errorf("overstayed = %d, want 1 (ACTIVE past cutoff)", d.Summary.Overstayed)
	}

	// After the sweep flips it to OVERDUE it still counts.
	if _, err := f.svc.MarkOverdue(context.Background(), 3*time.Hour); err != nil {
		t.Fatalf("MarkOverdue failed: %v", err)
	}
	d, err = dash.Analytics(context.Background(), adminActor, "week")
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if d.Summary.Overstayed != 1 {
		t.Errorf("overstayed after sweep = %d, want 1", d.Summary.Overstayed)
	}
}

func TestDashboardRequiresAdmin(t *testing.T) {
	f := newVisitorFixture(t)
	dash := NewDashboardService(f.visitors)

	if _, err := dash.Analytics(context.Background(), securityActor, "today"); !apperr.IsAuthorization(err) {
		t.Errorf("security: err = %v, want authorization error", err)
	}
	if _, err := dash.Analytics(context.Background(), adminActor, "quarter"); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("bad range: err = %v, want validation error", err)
	}
}

func TestZeroFillHours(t *testing.T) {
	out := zeroFillHours([]models.PeakHour{{Hour: 9, Count: 5}, {Hour: 17, Count: 2}})
	if len(out) != 24 {
		t.Fatalf("len = %d, want 24", len(out))
	}
	if out[9].Count != 5 || out[17].Count != 2 || out[0].Count != 0 {
		t.Errorf("unexpected buckets: %v", out)
	}
}
