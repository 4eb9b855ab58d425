package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

func user(id uint, role models.GlobalRole) *models.User {
	return &models.User{ID: id, Role: role}
}

func member(userID uint, role models.GroupRole) *models.GroupMember {
	return &models.GroupMember{GroupID: 1, UserID: userID, Role: role}
}

var globalRoles = []models.GlobalRole{
	models.RoleAdmin, models.RoleTeamLead, models.RoleDeveloper, models.RoleObserver,
}

func TestCanCreateGroup(t *testing.T) {
	e := NewEngine()

	expect := map[models.GlobalRole]bool{
		models.RoleAdmin:     true,
		models.RoleTeamLead:  true,
		models.RoleDeveloper: false,
		models.RoleObserver:  false,
	}
	for _, role := range globalRoles {
		t.Run(string(role), func(t *testing.T) {
			assert.Equal(t, expect[role], e.CanCreateGroup(user(1, role)))
		})
	}

	t.Run("nil actor", func(t *testing.T) {
		assert.False(t, e.CanCreateGroup(nil))
	})
}

func TestShouldAutoEnrollCreator(t *testing.T) {
	e := NewEngine()

	assert.True(t, e.ShouldAutoEnrollCreator(user(1, models.RoleTeamLead)))
	assert.False(t, e.ShouldAutoEnrollCreator(user(1, models.RoleAdmin)))
	assert.False(t, e.ShouldAutoEnrollCreator(user(1, models.RoleDeveloper)))
}

func TestCanDeleteGroup(t *testing.T) {
	e := NewEngine()

	assert.True(t, e.CanDeleteGroup(user(1, models.RoleAdmin)))
	assert.False(t, e.CanDeleteGroup(user(1, models.RoleTeamLead)))
	assert.False(t, e.CanDeleteGroup(user(1, models.RoleDeveloper)))
	assert.False(t, e.CanDeleteGroup(user(1, models.RoleObserver)))
}

func TestCanManageGroup(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name   string
		actor  *models.User
		member *models.GroupMember
		want   bool
	}{
		{"admin without membership", user(1, models.RoleAdmin), nil, true},
		{"global team lead without membership", user(1, models.RoleTeamLead), nil, false},
		{"group lead", user(1, models.RoleDeveloper), member(1, models.GroupRoleTeamLead), true},
		{"group developer", user(1, models.RoleDeveloper), member(1, models.GroupRoleDeveloper), false},
		{"group observer", user(1, models.RoleObserver), member(1, models.GroupRoleObserver), false},
		{"outsider", user(1, models.RoleDeveloper), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.CanManageGroup(tt.actor, tt.member))
		})
	}
}

func TestCanRemoveMember(t *testing.T) {
	e := NewEngine()

	t.Run("admin removes anyone including self", func(t *testing.T) {
		admin := user(1, models.RoleAdmin)
		assert.True(t, e.CanRemoveMember(admin, nil, 2))
		assert.True(t, e.CanRemoveMember(admin, member(1, models.GroupRoleTeamLead), 1))
	})

	t.Run("group lead removes another member", func(t *testing.T) {
		lead := user(1, models.RoleTeamLead)
		assert.True(t, e.CanRemoveMember(lead, member(1, models.GroupRoleTeamLead), 2))
	})

	t.Run("group lead cannot remove self", func(t *testing.T) {
		lead := user(1, models.RoleTeamLead)
		assert.False(t, e.CanRemoveMember(lead, member(1, models.GroupRoleTeamLead), 1))
	})

	t.Run("developer cannot remove", func(t *testing.T) {
		dev := user(1, models.RoleDeveloper)
		assert.False(t, e.CanRemoveMember(dev, member(1, models.GroupRoleDeveloper), 2))
	})
}

func TestProjectPermissions(t *testing.T) {
	e := NewEngine()

	t.Run("view", func(t *testing.T) {
		assert.True(t, e.CanViewProject(user(1, models.RoleAdmin), nil))
		assert.True(t, e.CanViewProject(user(1, models.RoleObserver), member(1, models.GroupRoleObserver)))
		assert.True(t, e.CanViewProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleDeveloper)))
		assert.False(t, e.CanViewProject(user(1, models.RoleDeveloper), nil))
	})

	t.Run("create", func(t *testing.T) {
		assert.True(t, e.CanCreateProject(user(1, models.RoleAdmin), nil))
		assert.True(t, e.CanCreateProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleTeamLead)))
		assert.False(t, e.CanCreateProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleDeveloper)))
		assert.False(t, e.CanCreateProject(user(1, models.RoleTeamLead), nil))
	})

	t.Run("edit", func(t *testing.T) {
		assert.True(t, e.CanEditProject(user(1, models.RoleAdmin), nil))
		assert.True(t, e.CanEditProject(user(1, models.RoleObserver), member(1, models.GroupRoleTeamLead)))
		assert.False(t, e.CanEditProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleDeveloper)))
	})

	t.Run("move requires destination lead", func(t *testing.T) {
		assert.True(t, e.CanMoveProject(user(1, models.RoleAdmin), nil))
		assert.True(t, e.CanMoveProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleTeamLead)))
		assert.False(t, e.CanMoveProject(user(1, models.RoleDeveloper), member(1, models.GroupRoleDeveloper)))
		assert.False(t, e.CanMoveProject(user(1, models.RoleDeveloper), nil))
	})
}

func TestTaskPermissions(t *testing.T) {
	e := NewEngine()
	creator := uint(10)
	assignee := uint(20)
	task := &models.Task{ID: 1, ProjectID: 1, CreatedByID: &creator, AssignedToID: &assignee}

	t.Run("read mirrors project visibility", func(t *testing.T) {
		assert.True(t, e.CanReadTask(user(1, models.RoleAdmin), nil))
		assert.True(t, e.CanReadTask(user(1, models.RoleObserver), member(1, models.GroupRoleObserver)))
		assert.False(t, e.CanReadTask(user(1, models.RoleDeveloper), nil))
	})

	t.Run("observers may create tasks", func(t *testing.T) {
		assert.True(t, e.CanCreateTask(user(1, models.RoleObserver), member(1, models.GroupRoleObserver)))
		assert.False(t, e.CanCreateTask(user(1, models.RoleObserver), nil))
	})

	t.Run("update", func(t *testing.T) {
		assert.True(t, e.CanUpdateTask(user(1, models.RoleAdmin), nil, task))
		assert.True(t, e.CanUpdateTask(user(2, models.RoleDeveloper), member(2, models.GroupRoleTeamLead), task))
		assert.True(t, e.CanUpdateTask(user(creator, models.RoleDeveloper), member(creator, models.GroupRoleDeveloper), task))
		assert.True(t, e.CanUpdateTask(user(assignee, models.RoleDeveloper), member(assignee, models.GroupRoleDeveloper), task))
		assert.False(t, e.CanUpdateTask(user(99, models.RoleDeveloper), member(99, models.GroupRoleDeveloper), task))
	})

	t.Run("delete excludes the bare assignee", func(t *testing.T) {
		assert.True(t, e.CanDeleteTask(user(1, models.RoleAdmin), nil, task))
		assert.True(t, e.CanDeleteTask(user(2, models.RoleDeveloper), member(2, models.GroupRoleTeamLead), task))
		assert.True(t, e.CanDeleteTask(user(creator, models.RoleDeveloper), member(creator, models.GroupRoleDeveloper), task))
		assert.False(t, e.CanDeleteTask(user(assignee, models.RoleDeveloper), member(assignee, models.GroupRoleDeveloper), task))
	})
}

func TestCanDeleteComment(t *testing.T) {
	e := NewEngine()
	author := uint(10)
	comment := &models.Comment{ID: 1, TaskID: 1, UserID: &author}

	assert.True(t, e.CanDeleteComment(user(1, models.RoleAdmin), nil, comment))
	assert.True(t, e.CanDeleteComment(user(author, models.RoleObserver), member(author, models.GroupRoleObserver), comment))
	assert.True(t, e.CanDeleteComment(user(2, models.RoleDeveloper), member(2, models.GroupRoleTeamLead), comment))
	assert.False(t, e.CanDeleteComment(user(2, models.RoleDeveloper), member(2, models.GroupRoleDeveloper), comment))
}
