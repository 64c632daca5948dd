package services

import (
	"context"
	"time"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/models"
)

// overdueCutoff is how long a visitor may stay ACTIVE before counting
// as overstayed in analytics.
const overdueCutoff = 3 * time.Hour

// DashboardService aggregates visitor data for the admin dashboard.
type DashboardService struct {
	Visitors VisitorStore
}

func NewDashboardService(visitors VisitorStore) *DashboardService {
	return &DashboardService{Visitors: visitors}
}

// Analytics builds the full dashboard for a named range. Admin only.
func (s *DashboardService) Analytics(ctx context.Context, actor auth.Actor, rangeName string) (*models.Dashboard, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, apperr.New(apperr.KindAuthorization, "admin access required")
	}
	now := time.Now()
	from, err := rangeStart(rangeName, now)
	if err != nil {
		return nil, err
	}

	total, err := s.Visitors.CountByDateRange(ctx, from, now)
	if err != nil {
		return nil, err
	}
	active, err := s.Visitors.CountByStatusAndDateRange(ctx, models.StatusActive, from, now)
	if err != nil {
		return nil, err
	}
	exited, err := s.Visitors.CountByStatusAndDateRange(ctx, models.StatusExited, from, now)
	if err != nil {
		return nil, err
	}
	overdue, err := s.Visitors.CountByStatusAndDateRange(ctx, models.StatusOverdue, from, now)
	if err != nil {
		return nil, err
	}
	overstayed, err := s.Visitors.CountActiveBefore(ctx, now.Add(-overdueCutoff))
	if err != nil {
		return nil, err
	}

	trend, err := s.Visitors.GroupByDay(ctx, from, now)
	if err != nil {
		return nil, err
	}
	if trend == nil {
		trend = []models.DailyTrend{}
	}
	hours, err := s.Visitors.GroupByHour(ctx, from, now)
	if err != nil {
		return nil, err
	}
	peaks := zeroFillHours(hours)

	return &models.Dashboard{
		Summary: models.DashboardSummary{
			Total:      total,
			Active:     active,
			Exited:     exited,
			Overstayed: overstayed + overdue,
		},
		DailyTrend: trend,
		StatusDistribution: []models.StatusDistribution{
			{Status: models.StatusActive, Count: active},
			{Status: models.StatusExited, Count: exited},
			{Status: models.StatusOverdue, Count: overdue},
		},
		PeakHours: peaks,
	}, nil
}

// zeroFillHours expands sparse hour rows into all 24 buckets.
func zeroFillHours(rows []models.PeakHour) []models.PeakHour {
	byHour := make(map[int]int64, len(rows))
	for _, r := range rows {
		byHour[r.Hour] = r.Count
	}
	out := make([]models.PeakHour, 24)
	for h := 0; h < 24; h++ {
		out[h] = models.PeakHour{Hour: h, Count: byHour[h]}
	}
	return out
}
