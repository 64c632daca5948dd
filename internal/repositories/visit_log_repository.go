package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"vms-backend/internal/models"
)

// VisitLogRepository appends to the audit trail. Rows are never
// updated or deleted.
type VisitLogRepository struct {
	DB *pgxpool.Pool
}

func NewVisitLogRepository(db *pgxpool.Pool) *VisitLogRepository {
	return &VisitLogRepository{DB: db}
}

// Append records one state transition.
func (r *VisitLogRepository) Append(ctx context.Context, entry *models.VisitLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	query := `
		INSERT INTO visit_logs (visitor_id, staff_username, action, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRow(ctx, query,
		entry.VisitorID, entry.StaffUsername, entry.Action, entry.Timestamp,
	).Scan(&entry.ID)
}

// ListByVisitor returns the transition history of one visitor,
// oldest first.
func (r *VisitLogRepository) ListByVisitor(ctx context.Context, visitorID int) ([]models.VisitLog, error) {
	query := `
		SELECT id, visitor_id, staff_username, action, timestamp
		FROM visit_logs
		WHERE visitor_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := r.DB.Query(ctx, query, visitorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.VisitLog
	for rows.Next() {
		var l models.VisitLog
		if err := rows.Scan(&l.ID, &l.VisitorID, &l.StaffUsername, &l.Action, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
