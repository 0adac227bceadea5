package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"audittrack/escalation-runner/internal/model"
)

// ProjectMembers lists the membership rows for a project.
func (s *SQLiteStore) ProjectMembers(ctx context.Context, projectID string) ([]model.ProjectMember, error) {
	members := []model.ProjectMember{}
	err := s.db.SelectContext(ctx, &members, `
		SELECT project_id, user_id, role
		FROM project_members
		WHERE project_id = ?`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying members of project %s: %w", projectID, err)
	}
	return members, nil
}

// ProfilesByRole returns the profiles among userIDs holding role.
func (s *SQLiteStore) ProfilesByRole(ctx context.Context, userIDs []string, role model.Role) ([]model.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, first_name, last_name, email, role
		FROM profiles
		WHERE id IN (?) AND role = ?`,
		userIDs, role,
	)
	if err != nil {
		return nil, fmt.Errorf("building profile query: %w", err)
	}

	profiles := []model.Profile{}
	if err := s.db.SelectContext(ctx, &profiles, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying %s profiles: %w", role, err)
	}
	return profiles, nil
}

// ProjectByID fetches a single project, nil when absent.
func (s *SQLiteStore) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := s.db.GetContext(ctx, &p, "SELECT id, name FROM projects WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying project %s: %w", id, err)
	}
	return &p, nil
}

// CreateProject inserts a new project.
func (s *SQLiteStore) CreateProject(ctx context.Context, p model.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name) VALUES (?, ?)", p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

// CreateProfile inserts a directory entry.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, first_name, last_name, email, role)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Role,
	)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	return nil
}

// AddProjectMember attaches a user to a project with a role.
func (s *SQLiteStore) AddProjectMember(ctx context.Context, m model.ProjectMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES (?, ?, ?)`,
		m.ProjectID, m.UserID, m.Role,
	)
	if err != nil {
		return fmt.Errorf("adding member %s to project %s: %w", m.UserID, m.ProjectID, err)
	}
	return nil
}
