package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"audittrack/escalation-runner/internal/model"
)

// CreateNotification inserts a notification row.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.SentAt.IsZero() {
		n.SentAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, finding_id, type, title, message, sent_at, is_read, email_sent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.FindingID, n.Type, n.Title, n.Message,
		n.SentAt.UTC(), boolToInt(n.IsRead), boolToInt(n.EmailSent),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// HasRecentNotification reports whether an escalation of the same type
// already exists for the finding at or after since.
func (s *SQLiteStore) HasRecentNotification(ctx context.Context, findingID string, typ model.NotificationType, since time.Time) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM notifications
		WHERE finding_id = ? AND type = ? AND sent_at >= ?`,
		findingID, typ, since.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("checking recent notifications: %w", err)
	}
	return count > 0, nil
}

// MarkEmailSent flags a notification's email as delivered.
func (s *SQLiteStore) MarkEmailSent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET email_sent = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking email sent on %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// MarkNotificationRead flags a notification as read by its owner.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// NotificationsForFinding returns all notifications recorded against a
// finding, newest first.
func (s *SQLiteStore) NotificationsForFinding(ctx context.Context, findingID string) ([]model.Notification, error) {
	notifs := []model.Notification{}
	err := s.db.SelectContext(ctx, &notifs, `
		SELECT id, user_id, finding_id, type, title, message, sent_at, is_read, email_sent
		FROM notifications
		WHERE finding_id = ?
		ORDER BY sent_at DESC`,
		findingID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for finding %s: %w", findingID, err)
	}
	return notifs, nil
}
