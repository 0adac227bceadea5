package model

import "time"

type NotificationType string

const (
	TypeDeadlineReminder NotificationType = "deadline_reminder"
	TypeOverdueAlert     NotificationType = "overdue_alert"
	TypeEscalation       NotificationType = "escalation"
)

// Notification is a durable alert delivered to a single user about a
// finding. Rows are immutable once written except for the IsRead and
// EmailSent flags.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	FindingID string           `db:"finding_id" json:"finding_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	SentAt    time.Time        `db:"sent_at" json:"sent_at"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	EmailSent bool             `db:"email_sent" json:"email_sent"`
}
