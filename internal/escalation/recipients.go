package escalation

import (
	"context"
	"fmt"

	"audittrack/escalation-runner/internal/model"
	"audittrack/escalation-runner/internal/store"
)

// Resolver finds the project members holding a target role.
type Resolver struct {
	members store.MembershipStore
}

func NewResolver(members store.MembershipStore) *Resolver {
	return &Resolver{members: members}
}

// Recipients returns the profiles of project members holding role.
// A project with no members, or with nobody in the role, yields an
// empty set and no error: the project may simply not staff that role.
func (r *Resolver) Recipients(ctx context.Context, projectID string, role model.Role) ([]model.Profile, error) {
	members, err := r.members.ProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading members of project %s: %w", projectID, err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	profiles, err := r.members.ProfilesByRole(ctx, ids, role)
	if err != nil {
		return nil, fmt.Errorf("loading %s profiles: %w", role, err)
	}
	return profiles, nil
}
