package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

func TestUserCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("role defaults to developer", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.users.Create(ctx, models.CreateUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleDeveloper, user.Role)
		assert.True(t, user.IsActive)
		assert.True(t, user.CheckPassword("secret123"))
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		f := newFixture(t)
		f.addUser("alice", models.RoleDeveloper)

		_, err := f.users.Create(ctx, models.CreateUserRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newFixture(t)
		f.addUser("alice", models.RoleDeveloper)

		_, err := f.users.Create(ctx, models.CreateUserRequest{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestUserUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("only admin changes roles", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser("admin", models.RoleAdmin)
		alice := f.addUser("alice", models.RoleDeveloper)

		promoted := models.RoleTeamLead
		_, err := f.users.Update(ctx, alice, alice.ID, models.UserUpdate{Role: &promoted})
		assert.ErrorIs(t, err, models.ErrForbidden)

		updated, err := f.users.Update(ctx, admin, alice.ID, models.UserUpdate{Role: &promoted})
		require.NoError(t, err)
		assert.Equal(t, models.RoleTeamLead, updated.Role)
	})

	t.Run("non-admin updates only self", func(t *testing.T) {
		f := newFixture(t)
		alice := f.addUser("alice", models.RoleDeveloper)
		bob := f.addUser("bob", models.RoleDeveloper)

		name := "Alice A."
		_, err := f.users.Update(ctx, bob, alice.ID, models.UserUpdate{FullName: &name})
		assert.ErrorIs(t, err, models.ErrForbidden)

		updated, err := f.users.Update(ctx, alice, alice.ID, models.UserUpdate{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, updated.FullName)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		f := newFixture(t)
		alice := f.addUser("alice", models.RoleDeveloper)

		newPass := "evenmoresecret"
		updated, err := f.users.Update(ctx, alice, alice.ID, models.UserUpdate{Password: &newPass})
		require.NoError(t, err)
		assert.True(t, updated.CheckPassword(newPass))
		assert.False(t, updated.CheckPassword("secret123"))
	})
}

func TestUserAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		f := newFixture(t)
		alice := f.addUser("alice", models.RoleDeveloper)

		user, err := f.users.Authenticate(ctx, alice.Email, "secret123")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		alice := f.addUser("alice", models.RoleDeveloper)

		_, err := f.users.Authenticate(ctx, alice.Email, "nope")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("inactive user denied", func(t *testing.T) {
		f := newFixture(t)
		alice := f.addUser("alice", models.RoleDeveloper)
		alice.IsActive = false
		require.NoError(t, f.userRepo.Update(ctx, alice))

		_, err := f.users.Authenticate(ctx, alice.Email, "secret123")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.Authenticate(ctx, "ghost@example.com", "secret123")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
