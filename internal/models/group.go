package models

// GroupRole is a permission tier scoped to a single group membership.
// A user may hold a different role in every group they belong to.
type GroupRole string

const (
	GroupRoleTeamLead  GroupRole = "team_lead"
	GroupRoleDeveloper GroupRole = "developer"
	GroupRoleObserver  GroupRole = "observer"
)

func (r GroupRole) Valid() bool {
	switch r {
	case GroupRoleTeamLead, GroupRoleDeveloper, GroupRoleObserver:
		return true
	}
	return false
}

type Group struct {
	ID          uint   `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// GroupMember links a user to a group with a group-scoped role.
// Unique per (group_id, user_id).
type GroupMember struct {
	ID      uint      `json:"id" db:"id"`
	GroupID uint      `json:"group_id" db:"group_id"`
	UserID  uint      `json:"user_id" db:"user_id"`
	Role    GroupRole `json:"role" db:"role"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GroupUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p *GroupUpdate) Apply(g *Group) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
}
