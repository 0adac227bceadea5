package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"audittrack/escalation-runner/internal/model"
)

// OverdueFindings returns findings past due and not yet closed,
// oldest due date first.
func (s *SQLiteStore) OverdueFindings(ctx context.Context, now time.Time) ([]model.Finding, error) {
	findings := []model.Finding{}
	err := s.db.SelectContext(ctx, &findings, `
		SELECT id, title, severity, status, due_date, project_id
		FROM findings
		WHERE status != ? AND due_date < ?
		ORDER BY due_date`,
		model.StatusClosed, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying overdue findings: %w", err)
	}
	return findings, nil
}

// CreateFinding inserts a new finding. A missing ID is generated and a
// missing status defaults to open.
func (s *SQLiteStore) CreateFinding(ctx context.Context, f model.Finding) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("finding title must not be empty")
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Status == "" {
		f.Status = model.StatusOpen
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, title, severity, status, due_date, project_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Title, f.Severity, f.Status, f.DueDate.UTC(), f.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("creating finding: %w", err)
	}
	return nil
}

// UpdateFindingStatus moves a finding through its lifecycle.
func (s *SQLiteStore) UpdateFindingStatus(ctx context.Context, id string, status model.FindingStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE findings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("updating finding %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("finding %s not found", id)
	}
	return nil
}
