package store

import (
	"context"
	"time"

	"audittrack/escalation-runner/internal/model"
)

// FindingStore is the findings query boundary consumed by the
// escalation evaluator.
type FindingStore interface {
	// OverdueFindings returns all findings with a due date before now
	// and a status other than closed.
	OverdueFindings(ctx context.Context, now time.Time) ([]model.Finding, error)
}

// MembershipStore resolves project membership and the profile directory.
type MembershipStore interface {
	ProjectMembers(ctx context.Context, projectID string) ([]model.ProjectMember, error)

	// ProfilesByRole returns the profiles among userIDs that hold role.
	// An empty userIDs slice yields an empty result, not an error.
	ProfilesByRole(ctx context.Context, userIDs []string, role model.Role) ([]model.Profile, error)

	// ProjectByID returns nil (no error) when the project does not exist.
	ProjectByID(ctx context.Context, id string) (*model.Project, error)
}

// NotificationStore persists and queries escalation notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) error

	// HasRecentNotification reports whether a notification with the same
	// finding and type exists with sent_at at or after since.
	HasRecentNotification(ctx context.Context, findingID string, typ model.NotificationType, since time.Time) (bool, error)

	// MarkEmailSent flags a notification's email as delivered.
	MarkEmailSent(ctx context.Context, id string) error
}
