// Package workflow implements the task status state machine. Most pairs of
// statuses are freely reachable; the one hard rule concerns resolved tasks.
package workflow

import "github.com/taskhive-io/taskhive-ce/internal/models"

// TransitionFacts captures everything the guard needs to know about the
// actor relative to the task. Callers resolve membership and ownership
// before asking.
type TransitionFacts struct {
	IsAdmin     bool
	IsGroupLead bool
	IsCreator   bool
	IsAssignee  bool
}

// CanTransition decides whether the actor may move a task from current to
// target status.
//
// Admins and group team leads bypass every guard and may set any status.
// Everyone else must be the task's creator or assignee, and once a task is
// resolved only the creator may move it anywhere other than closed: the
// assignee's say ends at resolution.
func CanTransition(f TransitionFacts, current, target models.TaskStatus) bool {
	if f.IsAdmin || f.IsGroupLead {
		return true
	}
	if !f.IsCreator && !f.IsAssignee {
		return false
	}
	if current == models.StatusResolved && target != models.StatusClosed && !f.IsCreator {
		return false
	}
	return true
}

// IsTerminal reports whether the status ends the task's active life.
func IsTerminal(s models.TaskStatus) bool {
	return s == models.StatusResolved || s == models.StatusClosed
}

// ActiveStatuses lists the statuses the deadline sweep considers live work.
// Returned tasks are deliberately excluded: they already got attention.
func ActiveStatuses() []models.TaskStatus {
	return []models.TaskStatus{models.StatusNew, models.StatusInProgress, models.StatusWaiting}
}
