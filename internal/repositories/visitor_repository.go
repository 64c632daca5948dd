package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

type VisitorRepository struct {
	DB *pgxpool.Pool
}

func NewVisitorRepository(db *pgxpool.Pool) *VisitorRepository {
	return &VisitorRepository{DB: db}
}

// visitorColumns is the shared projection: visitor row plus the
// assigned staff's display name and login username.
const visitorColumns = `
	v.id, v.name, v.email, v.phone, v.purpose, v.staff_id,
	v.entry_time, v.exit_time, v.status, v.qr_path, v.created_at,
	COALESCE(s.full_name, ''), COALESCE(u.username, '')
`

const visitorJoins = `
	FROM visitors v
	LEFT JOIN staff s ON v.staff_id = s.id
	LEFT JOIN users u ON s.user_id = u.id
`

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(
		&v.ID, &v.Name, &v.Email, &v.Phone, &v.Purpose, &v.StaffID,
		&v.EntryTime, &v.ExitTime, &v.Status, &v.QRPath, &v.CreatedAt,
		&v.StaffName, &v.StaffUsername,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisitors(rows pgx.Rows) ([]models.Visitor, error) {
	defer rows.Close()

	var visitors []models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, *v)
	}
	return visitors, rows.Err()
}

// Create inserts a new visitor record.
func (r *VisitorRepository) Create(ctx context.Context, v *models.Visitor) error {
	query := `
		INSERT INTO visitors (name, email, phone, purpose, staff_id, entry_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		v.Name, v.Email, v.Phone, v.Purpose, v.StaffID, v.EntryTime, v.Status,
	).Scan(&v.ID, &v.CreatedAt)
}

// Get retrieves a visitor by id with staff details.
func (r *VisitorRepository) Get(ctx context.Context, id int) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + ` WHERE v.id = $1`

	v, err := scanVisitor(r.DB.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "visitor %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SetQRPath stores the generated QR artifact reference.
func (r *VisitorRepository) SetQRPath(ctx context.Context, id int, path string) error {
	_, err := r.DB.Exec(ctx, `UPDATE visitors SET qr_path = $2 WHERE id = $1`, id, path)
	return err
}

// MarkExited performs the exit transition as one atomic conditional
// update. When two callers race on the same visitor, exactly one
// update matches; the loser sees a state error. OVERDUE visitors stay
// exitable so a sweep can never trap someone inside.
func (r *VisitorRepository) MarkExited(ctx context.Context, id int, exitTime time.Time) (*models.Visitor, error) {
	query := `
		UPDATE visitors
		SET status = 'EXITED', exit_time = $2
		WHERE id = $1 AND status IN ('ACTIVE', 'OVERDUE')
		RETURNING id
	`
	var updated int
	err := r.DB.QueryRow(ctx, query, id, exitTime).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing visitor from one already in a terminal state.
		existing, getErr := r.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperr.Newf(apperr.KindState, "visitor %d already %s", id, existing.Status)
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// MarkOverdueBefore transitions every ACTIVE visitor older than the
// cutoff to OVERDUE and returns the affected ids with their staff
// usernames for the audit trail. The ACTIVE filter makes repeated
// sweeps no-ops.
func (r *VisitorRepository) MarkOverdueBefore(ctx context.Context, cutoff time.Time) ([]models.VisitLog, error) {
	query := `
		UPDATE visitors v
		SET status = 'OVERDUE'
		FROM staff s
		JOIN users u ON u.id = s.user_id
		WHERE v.staff_id = s.id AND v.status = 'ACTIVE' AND v.entry_time < $1
		RETURNING v.id, u.username
	`
	rows, err := r.DB.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marked []models.VisitLog
	for rows.Next() {
		var entry models.VisitLog
		if err := rows.Scan(&entry.VisitorID, &entry.StaffUsername); err != nil {
			return nil, err
		}
		entry.Action = models.ActionOverdueMarked
		marked = append(marked, entry)
	}
	return marked, rows.Err()
}

// List returns all visitors, newest entry first.
func (r *VisitorRepository) List(ctx context.Context, page, size int) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		ORDER BY v.entry_time DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.DB.Query(ctx, query, size, page*size)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListByStatus returns visitors with the given status, newest entry first.
func (r *VisitorRepository) ListByStatus(ctx context.Context, status string, page, size int) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE v.status = $1
		ORDER BY v.entry_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(ctx, query, status, size, page*size)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// Search matches a keyword against name, email and phone.
func (r *VisitorRepository) Search(ctx context.Context, keyword string, page, size int) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE v.name ILIKE $1 OR v.email ILIKE $1 OR v.phone ILIKE $1
		ORDER BY v.name ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(ctx, query, "%"+keyword+"%", size, page*size)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListByDateRange returns visitors whose entry falls in [from, to), paginated.
func (r *VisitorRepository) ListByDateRange(ctx context.Context, from, to time.Time, page, size int) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE v.entry_time >= $1 AND v.entry_time < $2
		ORDER BY v.entry_time DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.DB.Query(ctx, query, from, to, size, page*size)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListByDateRangeAll returns the full (unpaginated) row set for exports.
// Nil bounds mean unbounded.
func (r *VisitorRepository) ListByDateRangeAll(ctx context.Context, from, to *time.Time) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE ($1::timestamptz IS NULL OR v.entry_time >= $1)
		  AND ($2::timestamptz IS NULL OR v.entry_time < $2)
		ORDER BY v.entry_time DESC`

	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListActiveBefore returns ACTIVE visitors that entered before the
// cutoff (read-only overdue query).
func (r *VisitorRepository) ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE v.status = 'ACTIVE' AND v.entry_time < $1
		ORDER BY v.entry_time ASC`

	rows, err := r.DB.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// AdvancedSearch applies a conjunction of optional predicates. Empty
// parameters collapse to TRUE, so an empty filter equals plain
// pagination over the same window.
func (r *VisitorRepository) AdvancedSearch(ctx context.Context, f models.AdvancedSearchFilter, page, size int, sortAsc bool) ([]models.Visitor, error) {
	order := "DESC"
	if sortAsc {
		order = "ASC"
	}
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE ($1 = '' OR v.name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR v.email ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR v.phone ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR u.username ILIKE '%' || $4 || '%')
		  AND ($5 = '' OR v.status = $5)
		  AND ($6::timestamptz IS NULL OR v.entry_time >= $6)
		  AND ($7::timestamptz IS NULL OR v.entry_time < $7)
		ORDER BY v.entry_time ` + order + `
		LIMIT $8 OFFSET $9`

	rows, err := r.DB.Query(ctx, query,
		f.Name, f.Email, f.Phone, f.Staff, f.Status, f.FromDate, f.ToDate,
		size, page*size,
	)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListByStaffAndStatus returns a staff member's visitors in a window,
// optionally narrowed to one status.
func (r *VisitorRepository) ListByStaffAndStatus(ctx context.Context, username, status string, from, to time.Time, page, size int) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE LOWER(u.username) = LOWER($1)
		  AND v.entry_time >= $2 AND v.entry_time < $3
		  AND ($4 = '' OR v.status = $4)
		ORDER BY v.entry_time DESC
		LIMIT $5 OFFSET $6`

	rows, err := r.DB.Query(ctx, query, username, from, to, status, size, page*size)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListActiveByStaff returns a staff member's still-inside visitors,
// oldest entry first.
func (r *VisitorRepository) ListActiveByStaff(ctx context.Context, username string) ([]models.Visitor, error) {
	query := `SELECT ` + visitorColumns + visitorJoins + `
		WHERE LOWER(u.username) = LOWER($1) AND v.status IN ('ACTIVE', 'OVERDUE')
		ORDER BY v.entry_time ASC`

	rows, err := r.DB.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// CountByDateRange counts entries in [from, to).
func (r *VisitorRepository) CountByDateRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM visitors WHERE entry_time >= $1 AND entry_time < $2`,
		from, to,
	).Scan(&count)
	return count, err
}

// CountByStatusAndDateRange counts entries with a status in [from, to).
func (r *VisitorRepository) CountByStatusAndDateRange(ctx context.Context, status string, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM visitors WHERE status = $1 AND entry_time >= $2 AND entry_time < $3`,
		status, from, to,
	).Scan(&count)
	return count, err
}

// CountActiveBefore counts ACTIVE visitors older than the cutoff.
func (r *VisitorRepository) CountActiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM visitors WHERE status = 'ACTIVE' AND entry_time < $1`,
		cutoff,
	).Scan(&count)
	return count, err
}

// CountByStaffAndDateRange counts a staff member's visitors in [from, to).
func (r *VisitorRepository) CountByStaffAndDateRange(ctx context.Context, staffID int, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM visitors WHERE staff_id = $1 AND entry_time >= $2 AND entry_time < $3`,
		staffID, from, to,
	).Scan(&count)
	return count, err
}

// CountByStaffAndStatus counts a staff member's visitors with a status.
func (r *VisitorRepository) CountByStaffAndStatus(ctx context.Context, staffID int, status string) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM visitors WHERE staff_id = $1 AND status = $2`,
		staffID, status,
	).Scan(&count)
	return count, err
}

// GroupByDay buckets entries per calendar day over [from, to).
func (r *VisitorRepository) GroupByDay(ctx context.Context, from, to time.Time) ([]models.DailyTrend, error) {
	query := `
		SELECT DATE(entry_time)::text, COUNT(*)
		FROM visitors
		WHERE entry_time >= $1 AND entry_time < $2
		GROUP BY DATE(entry_time)
		ORDER BY DATE(entry_time)
	`
	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []models.DailyTrend
	for rows.Next() {
		var t models.DailyTrend
		if err := rows.Scan(&t.Date, &t.Count); err != nil {
			return nil, err
		}
		trend = append(trend, t)
	}
	return trend, rows.Err()
}

// GroupByHour buckets entries per hour of day over [from, to). Hours
// with no entries are absent; callers zero-fill the 0..23 domain.
func (r *VisitorRepository) GroupByHour(ctx context.Context, from, to time.Time) ([]models.PeakHour, error) {
	query := `
		SELECT EXTRACT(HOUR FROM entry_time)::int, COUNT(*)
		FROM visitors
		WHERE entry_time >= $1 AND entry_time < $2
		GROUP BY EXTRACT(HOUR FROM entry_time)
		ORDER BY EXTRACT(HOUR FROM entry_time)
	`
	rows, err := r.DB.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []models.PeakHour
	for rows.Next() {
		var h models.PeakHour
		if err := rows.Scan(&h.Hour, &h.Count); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}
