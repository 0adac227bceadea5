package model

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type FindingStatus string

const (
	StatusOpen                     FindingStatus = "open"
	StatusAssigned                 FindingStatus = "assigned"
	StatusInProgress               FindingStatus = "in_progress"
	StatusCompletedPendingApproval FindingStatus = "completed_pending_approval"
	StatusClosed                   FindingStatus = "closed"
)

// Finding is an audit finding raised against a project.
type Finding struct {
	ID        string        `db:"id" json:"id"`
	Title     string        `db:"title" json:"title"`
	Severity  Severity      `db:"severity" json:"severity"`
	Status    FindingStatus `db:"status" json:"status"`
	DueDate   time.Time     `db:"due_date" json:"due_date"`
	ProjectID string        `db:"project_id" json:"project_id"`
}

// Overdue reports whether the finding is past due and not yet closed.
func (f Finding) Overdue(now time.Time) bool {
	return f.DueDate.Before(now) && f.Status != StatusClosed
}
