package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

func TestProjectGet(t *testing.T) {
	ctx := context.Background()

	t.Run("member sees the project, outsider does not", func(t *testing.T) {
		f := newFixture(t)
		dev := f.addUser("dev", models.RoleDeveloper)
		outsider := f.addUser("outsider", models.RoleDeveloper)
		group := f.addGroup("backend")
		f.addMember(group.ID, dev.ID, models.GroupRoleDeveloper)
		project := f.addProject("api", group.ID)

		got, err := f.projects.Get(ctx, dev, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, got.ID)

		_, err = f.projects.Get(ctx, outsider, project.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		group := f.addGroup("backend")
		project := f.addProject("api", group.ID)

		_, err := f.projects.Get(ctx, admin, project.ID)
		require.NoError(t, err)

		// Remove the row under the cache; a cached read must still succeed.
		require.NoError(t, f.projectRepo.Delete(ctx, project.ID))

		got, err := f.projects.Get(ctx, admin, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.Name, got.Name)
	})

	t.Run("orphaned project is admin-only", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		dev := f.addUser("dev", models.RoleDeveloper)
		group := f.addGroup("backend")
		f.addMember(group.ID, dev.ID, models.GroupRoleDeveloper)
		project := f.addProject("api", group.ID)

		stored, err := f.projectRepo.GetByID(ctx, project.ID)
		require.NoError(t, err)
		stored.GroupID = nil
		require.NoError(t, f.projectRepo.Update(ctx, stored))

		_, err = f.projects.Get(ctx, dev, project.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)

		_, err = f.projects.Get(ctx, admin, project.ID)
		require.NoError(t, err)
	})
}

func TestProjectList(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin sees only own groups", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		dev := f.addUser("dev", models.RoleDeveloper)
		backend := f.addGroup("backend")
		frontend := f.addGroup("frontend")
		f.addMember(backend.ID, dev.ID, models.GroupRoleDeveloper)
		f.addProject("api", backend.ID)
		f.addProject("web", frontend.ID)

		all, err := f.projects.List(ctx, admin, 0, 100)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		mine, err := f.projects.List(ctx, dev, 0, 100)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "api", mine[0].Name)
	})

	t.Run("listing is cached per window", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		group := f.addGroup("backend")
		f.addProject("api", group.ID)

		first, err := f.projects.List(ctx, admin, 0, 100)
		require.NoError(t, err)
		require.Len(t, first, 1)

		// A direct store write bypasses invalidation; the cached window
		// keeps serving the old snapshot.
		f.addProject("sneaky", group.ID)
		second, err := f.projects.List(ctx, admin, 0, 100)
		require.NoError(t, err)
		assert.Len(t, second, 1)
	})
}

func TestProjectListByGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dev := f.addUser("dev", models.RoleDeveloper)
	outsider := f.addUser("outsider", models.RoleDeveloper)
	group := f.addGroup("backend")
	f.addMember(group.ID, dev.ID, models.GroupRoleDeveloper)
	f.addProject("api", group.ID)

	projects, err := f.projects.ListByGroup(ctx, dev, group.ID, 0, 100)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	_, err = f.projects.ListByGroup(ctx, outsider, group.ID, 0, 100)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.projects.ListByGroup(ctx, dev, 42, 0, 100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestProjectCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("group lead creates and listings are invalidated", func(t *testing.T) {
		f := newFixture(t)
		lead := f.addUser("lead", models.RoleTeamLead)
		group := f.addGroup("backend")
		f.addMember(group.ID, lead.ID, models.GroupRoleTeamLead)
		f.addProject("api", group.ID)

		// Warm the listing cache.
		first, err := f.projects.List(ctx, lead, 0, 100)
		require.NoError(t, err)
		require.Len(t, first, 1)

		created, err := f.projects.Create(ctx, lead, models.CreateProjectRequest{
			Name:    "worker",
			GroupID: group.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, created.GroupID)
		assert.Equal(t, group.ID, *created.GroupID)

		second, err := f.projects.List(ctx, lead, 0, 100)
		require.NoError(t, err)
		assert.Len(t, second, 2)
	})

	t.Run("unknown group is not found", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)

		_, err := f.projects.Create(ctx, admin, models.CreateProjectRequest{Name: "x", GroupID: 42})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("group developer denied", func(t *testing.T) {
		f := newFixture(t)
		dev := f.addUser("dev", models.RoleDeveloper)
		group := f.addGroup("backend")
		f.addMember(group.ID, dev.ID, models.GroupRoleDeveloper)

		_, err := f.projects.Create(ctx, dev, models.CreateProjectRequest{Name: "x", GroupID: group.ID})
		assert.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestProjectUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("move requires lead rights in the destination", func(t *testing.T) {
		f := newFixture(t)
		lead := f.addUser("lead", models.RoleTeamLead)
		src := f.addGroup("backend")
		dst := f.addGroup("frontend")
		f.addMember(src.ID, lead.ID, models.GroupRoleTeamLead)
		project := f.addProject("api", src.ID)

		_, err := f.projects.Update(ctx, lead, project.ID, models.ProjectUpdate{GroupID: &dst.ID})
		assert.ErrorIs(t, err, models.ErrForbidden)

		f.addMember(dst.ID, lead.ID, models.GroupRoleTeamLead)
		moved, err := f.projects.Update(ctx, lead, project.ID, models.ProjectUpdate{GroupID: &dst.ID})
		require.NoError(t, err)
		require.NotNil(t, moved.GroupID)
		assert.Equal(t, dst.ID, *moved.GroupID)
	})

	t.Run("move to unknown group is not found", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		group := f.addGroup("backend")
		project := f.addProject("api", group.ID)

		missing := uint(42)
		_, err := f.projects.Update(ctx, admin, project.ID, models.ProjectUpdate{GroupID: &missing})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("update evicts the cached item", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		group := f.addGroup("backend")
		project := f.addProject("api", group.ID)

		_, err := f.projects.Get(ctx, admin, project.ID)
		require.NoError(t, err)

		name := "api-v2"
		_, err = f.projects.Update(ctx, admin, project.ID, models.ProjectUpdate{Name: &name})
		require.NoError(t, err)

		got, err := f.projects.Get(ctx, admin, project.ID)
		require.NoError(t, err)
		assert.Equal(t, "api-v2", got.Name)
	})
}

func TestProjectDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lead := f.addUser("lead", models.RoleTeamLead)
	dev := f.addUser("dev", models.RoleDeveloper)
	group := f.addGroup("backend")
	f.addMember(group.ID, lead.ID, models.GroupRoleTeamLead)
	f.addMember(group.ID, dev.ID, models.GroupRoleDeveloper)
	project := f.addProject("api", group.ID)

	assert.ErrorIs(t, f.projects.Delete(ctx, dev, project.ID), models.ErrForbidden)
	require.NoError(t, f.projects.Delete(ctx, lead, project.ID))

	_, err := f.projectRepo.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
