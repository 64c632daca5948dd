package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vms-backend/internal/apperr"
	"vms-backend/internal/models"
)

type StaffRepository struct {
	DB *pgxpool.Pool
}

func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{DB: db}
}

const staffColumns = `
	s.id, s.user_id, s.full_name, s.staff_code, s.department,
	s.designation, s.phone, s.created_at,
	COALESCE(u.username, ''), COALESCE(u.email, '')
`

const staffJoins = `
	FROM staff s
	LEFT JOIN users u ON s.user_id = u.id
`

func scanStaff(row pgx.Row) (*models.Staff, error) {
	var s models.Staff
	err := row.Scan(
		&s.ID, &s.UserID, &s.FullName, &s.StaffCode, &s.Department,
		&s.Designation, &s.Phone, &s.CreatedAt, &s.Username, &s.Email,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "staff not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new staff profile.
func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) error {
	query := `
		INSERT INTO staff (user_id, full_name, staff_code, department, designation, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.DB.QueryRow(ctx, query,
		s.UserID, s.FullName, s.StaffCode, s.Department, s.Designation, s.Phone,
	).Scan(&s.ID, &s.CreatedAt)
}

// Get retrieves a staff profile by id.
func (r *StaffRepository) Get(ctx context.Context, id int) (*models.Staff, error) {
	return scanStaff(r.DB.QueryRow(ctx,
		`SELECT `+staffColumns+staffJoins+` WHERE s.id = $1`, id))
}

// GetByUserID retrieves the staff profile linked to a user account.
func (r *StaffRepository) GetByUserID(ctx context.Context, userID int) (*models.Staff, error) {
	return scanStaff(r.DB.QueryRow(ctx,
		`SELECT `+staffColumns+staffJoins+` WHERE s.user_id = $1`, userID))
}

// GetByCode retrieves a staff profile by its unique staff code.
func (r *StaffRepository) GetByCode(ctx context.Context, code string) (*models.Staff, error) {
	return scanStaff(r.DB.QueryRow(ctx,
		`SELECT `+staffColumns+staffJoins+` WHERE LOWER(s.staff_code) = LOWER($1)`, code))
}

// ExistsByCode reports whether a staff code is already taken.
func (r *StaffRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM staff WHERE LOWER(staff_code) = LOWER($1))`, code,
	).Scan(&exists)
	return exists, err
}

// Search matches a query against full name and staff code, paginated.
// An empty query lists everyone ordered by name.
func (r *StaffRepository) Search(ctx context.Context, query string, page, size int) ([]models.Staff, error) {
	sql := `SELECT ` + staffColumns + staffJoins + `
		WHERE ($1 = '' OR s.full_name ILIKE '%' || $1 || '%' OR s.staff_code ILIKE '%' || $1 || '%')
		ORDER BY s.full_name ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(ctx, sql, query, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// Update changes the mutable profile fields. The staff code is
// identity and never updated.
func (r *StaffRepository) Update(ctx context.Context, s *models.Staff) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE staff
		SET full_name = $2, department = $3, designation = $4, phone = $5
		WHERE id = $1`,
		s.ID, s.FullName, s.Department, s.Designation, s.Phone,
	)
	return err
}

// Delete removes a staff profile.
func (r *StaffRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	return err
}
