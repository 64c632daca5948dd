package models

import "time"

type Staff struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	FullName    string    `json:"full_name" db:"full_name"`
	StaffCode   string    `json:"staff_code" db:"staff_code"`
	Department  string    `json:"department" db:"department"`
	Designation string    `json:"designation" db:"designation"`
	Phone       string    `json:"phone" db:"phone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Username    string    `json:"username,omitempty" db:"username"`
	Email       string    `json:"email,omitempty" db:"email"`
}

type StaffRequest struct {
	FullName    string `json:"full_name"`
	StaffCode   string `json:"staff_code"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
}

// StaffDashboard is the per-staff counters shown on the staff home page.
type StaffDashboard struct {
	TodayVisitors  int64 `json:"todayVisitors"`
	ActiveVisitors int64 `json:"activeVisitors"`
}
