package services

import (
	"context"
	"time"

	"vms-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories
// satisfy them in production; tests swap in in-memory fakes.

type VisitorStore interface {
	Create(ctx context.Context, v *models.Visitor) error
	Get(ctx context.Context, id int) (*models.Visitor, error)
	SetQRPath(ctx context.Context, id int, path string) error
	MarkExited(ctx context.Context, id int, exitTime time.Time) (*models.Visitor, error)
	MarkOverdueBefore(ctx context.Context, cutoff time.Time) ([]models.VisitLog, error)
	List(ctx context.Context, page, size int) ([]models.Visitor, error)
	ListByStatus(ctx context.Context, status string, page, size int) ([]models.Visitor, error)
	Search(ctx context.Context, keyword string, page, size int) ([]models.Visitor, error)
	ListByDateRange(ctx context.Context, from, to time.Time, page, size int) ([]models.Visitor, error)
	ListByDateRangeAll(ctx context.Context, from, to *time.Time) ([]models.Visitor, error)
	ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.Visitor, error)
	AdvancedSearch(ctx context.Context, f models.AdvancedSearchFilter, page, size int, sortAsc bool) ([]models.Visitor, error)
	ListByStaffAndStatus(ctx context.Context, username, status string, from, to time.Time, page, size int) ([]models.Visitor, error)
	ListActiveByStaff(ctx context.Context, username string) ([]models.Visitor, error)
	CountByDateRange(ctx context.Context, from, to time.Time) (int64, error)
	CountByStatusAndDateRange(ctx context.Context, status string, from, to time.Time) (int64, error)
	CountActiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStaffAndDateRange(ctx context.Context, staffID int, from, to time.Time) (int64, error)
	CountByStaffAndStatus(ctx context.Context, staffID int, status string) (int64, error)
	GroupByDay(ctx context.Context, from, to time.Time) ([]models.DailyTrend, error)
	GroupByHour(ctx context.Context, from, to time.Time) ([]models.PeakHour, error)
}

type VisitLogStore interface {
	Append(ctx context.Context, entry *models.VisitLog) error
	ListByVisitor(ctx context.Context, visitorID int) ([]models.VisitLog, error)
}

type StaffStore interface {
	Create(ctx context.Context, s *models.Staff) error
	Get(ctx context.Context, id int) (*models.Staff, error)
	GetByUserID(ctx context.Context, userID int) (*models.Staff, error)
	GetByCode(ctx context.Context, code string) (*models.Staff, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Search(ctx context.Context, query string, page, size int) ([]models.Staff, error)
	Update(ctx context.Context, s *models.Staff) error
	Delete(ctx context.Context, id int) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateEmail(ctx context.Context, id int, email string) error
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
}

// QRGenerator produces the scannable artifact for a visitor.
type QRGenerator interface {
	GenerateForVisitor(visitorID int) (string, error)
}

// EventPublisher pushes visitor lifecycle events to live dashboard
// subscribers. Publishing is best-effort.
type EventPublisher interface {
	PublishVisitorEvent(action string, visitor *models.Visitor)
}
