// Package authz holds the pure authorization decision logic. Every method
// is a function of already-fetched facts: the acting user, their membership
// row in the relevant group (nil when not a member), and the resource.
// Nothing here touches storage; callers fetch first, then ask.
package authz

import "github.com/taskhive-io/taskhive-ce/internal/models"

// Engine decides allow/deny for (actor, action, resource) triples.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) isAdmin(actor *models.User) bool {
	return actor != nil && actor.Role == models.RoleAdmin
}

func isGroupLead(member *models.GroupMember) bool {
	return member != nil && member.Role == models.GroupRoleTeamLead
}

// CanCreateGroup allows admins and global team leads.
func (e *Engine) CanCreateGroup(actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleTeamLead
}

// ShouldAutoEnrollCreator reports whether the group creator must be enrolled
// into the new group as its team lead. Admins stay outside the groups they
// create; team leads are enrolled so the group has a lead from the start.
func (e *Engine) ShouldAutoEnrollCreator(actor *models.User) bool {
	return actor != nil && actor.Role == models.RoleTeamLead
}

// CanDeleteGroup is admin-only.
func (e *Engine) CanDeleteGroup(actor *models.User) bool {
	return e.isAdmin(actor)
}

// CanManageGroup covers group update and membership add/role-change:
// admin, or team lead of that group.
func (e *Engine) CanManageGroup(actor *models.User, actorMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return isGroupLead(actorMember)
}

// CanRemoveMember applies the management rule plus the self-removal guard:
// a team lead cannot remove themself from a group they lead. Hand-off or an
// admin action is required instead.
func (e *Engine) CanRemoveMember(actor *models.User, actorMember *models.GroupMember, targetUserID uint) bool {
	if e.isAdmin(actor) {
		return true
	}
	if !isGroupLead(actorMember) {
		return false
	}
	if actor.ID == targetUserID {
		return false
	}
	return true
}

// CanViewProject allows admins everywhere and members (any role) of the
// project's group. A project orphaned from its group is admin-only.
func (e *Engine) CanViewProject(actor *models.User, actorMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return actorMember != nil
}

// CanCreateProject requires admin or team lead in the target group.
func (e *Engine) CanCreateProject(actor *models.User, targetGroupMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return isGroupLead(targetGroupMember)
}

// CanEditProject covers project update and delete: admin or team lead in
// the project's current group.
func (e *Engine) CanEditProject(actor *models.User, actorMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return isGroupLead(actorMember)
}

// CanMoveProject gates moving a project into another group. The caller must
// already hold edit rights on the project; this checks the destination.
func (e *Engine) CanMoveProject(actor *models.User, destGroupMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return isGroupLead(destGroupMember)
}

// CanReadTask mirrors project visibility: admin or any membership in the
// task's project's group.
func (e *Engine) CanReadTask(actor *models.User, actorMember *models.GroupMember) bool {
	if e.isAdmin(actor) {
		return true
	}
	return actorMember != nil
}

// CanCreateTask requires only read access to the target project. Observers
// may file tasks.
func (e *Engine) CanCreateTask(actor *models.User, actorMember *models.GroupMember) bool {
	return e.CanReadTask(actor, actorMember)
}

// CanUpdateTask gates non-status field updates: admin, group team lead,
// the task's creator, or its assignee.
func (e *Engine) CanUpdateTask(actor *models.User, actorMember *models.GroupMember, task *models.Task) bool {
	if e.isAdmin(actor) {
		return true
	}
	if isGroupLead(actorMember) {
		return true
	}
	if task.CreatedByID != nil && *task.CreatedByID == actor.ID {
		return true
	}
	if task.AssignedToID != nil && *task.AssignedToID == actor.ID {
		return true
	}
	return false
}

// CanDeleteTask: admin, group team lead, or creator. The assignee alone
// cannot delete.
func (e *Engine) CanDeleteTask(actor *models.User, actorMember *models.GroupMember, task *models.Task) bool {
	if e.isAdmin(actor) {
		return true
	}
	if isGroupLead(actorMember) {
		return true
	}
	return task.CreatedByID != nil && *task.CreatedByID == actor.ID
}

// CanDeleteComment: admin, the comment's author, or a team lead of the
// task's group.
func (e *Engine) CanDeleteComment(actor *models.User, actorMember *models.GroupMember, comment *models.Comment) bool {
	if e.isAdmin(actor) {
		return true
	}
	if comment.UserID != nil && *comment.UserID == actor.ID {
		return true
	}
	return isGroupLead(actorMember)
}
