package models

import "time"

// Visit log actions. One row is appended for every visitor state
// transition; rows are never updated or deleted.
const (
	ActionEntered       = "ENTERED"
	ActionExited        = "EXITED"
	ActionOverdueMarked = "OVERDUE_MARKED"
)

type VisitLog struct {
	ID            int       `json:"id" db:"id"`
	VisitorID     int       `json:"visitor_id" db:"visitor_id"`
	StaffUsername string    `json:"staff_username" db:"staff_username"`
	Action        string    `json:"action" db:"action"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
}
