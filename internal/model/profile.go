package model

import "strings"

type Role string

const (
	RoleInspector            Role = "inspector"
	RoleGCProjectManager     Role = "gc_project_manager"
	RoleGCSiteDirector       Role = "gc_site_director"
	RoleClientProjectManager Role = "client_project_manager"
)

// Profile is a user directory entry.
type Profile struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Role      Role   `db:"role" json:"role"`
}

// FullName joins first and last name, tolerating either being empty.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProjectMember links a user to a project with the role they hold there.
type ProjectMember struct {
	ProjectID string `db:"project_id" json:"project_id"`
	UserID    string `db:"user_id" json:"user_id"`
	Role      Role   `db:"role" json:"role"`
}

type Project struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
