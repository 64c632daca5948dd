package models

import "time"

// Visitor status values. Transitions are monotonic: a visitor never
// returns to ACTIVE once EXITED or OVERDUE.
const (
	StatusActive  = "ACTIVE"
	StatusExited  = "EXITED"
	StatusOverdue = "OVERDUE"
)

// ValidStatus reports whether s is a known visitor status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusExited || s == StatusOverdue
}

type Visitor struct {
	ID            int        `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	Purpose       string     `json:"purpose" db:"purpose"`
	StaffID       int        `json:"staff_id" db:"staff_id"`
	EntryTime     time.Time  `json:"entry_time" db:"entry_time"`
	ExitTime      *time.Time `json:"exit_time,omitempty" db:"exit_time"`
	Status        string     `json:"status" db:"status"`
	QRPath        *string    `json:"qr_path,omitempty" db:"qr_path"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	StaffName     string     `json:"staff_name,omitempty" db:"staff_name"`
	StaffUsername string     `json:"staff_username,omitempty" db:"staff_username"`
}

type CheckInRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	StaffID int    `json:"staff_id"`
}

type ExitRequest struct {
	VisitorID int `json:"visitorId"`
}

// ScanResult is returned for a QR lookup. CanExit is informational:
// the exit endpoint re-checks the caller's role regardless.
type ScanResult struct {
	Visitor
	CanExit bool `json:"canExit"`
}

// AdvancedSearchFilter is a conjunction of optional predicates. Empty
// fields are skipped, so a zero filter matches everything.
type AdvancedSearchFilter struct {
	Name     string
	Email    string
	Phone    string
	Staff    string
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
}

type TodayStats struct {
	TotalVisitorsToday int64 `json:"totalVisitorsToday"`
	ActiveVisitors     int64 `json:"activeVisitors"`
	ExitedVisitors     int64 `json:"exitedVisitors"`
}
