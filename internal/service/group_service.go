// Package service contains the domain services. Each mutating method is one
// transaction boundary: fetch the resource, run the authorization check,
// apply the mutation, then handle cache invalidation and event emission.
// Authorization is computed fresh on every call; only data is cached.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskhive-io/taskhive-ce/internal/authz"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
)

// GroupService orchestrates group and membership operations.
type GroupService struct {
	groups repository.GroupRepository
	users  repository.UserRepository
	authz  *authz.Engine
}

func NewGroupService(groups repository.GroupRepository, users repository.UserRepository, engine *authz.Engine) *GroupService {
	return &GroupService{groups: groups, users: users, authz: engine}
}

// membership fetches the actor's membership row for a group, mapping
// "not a member" to nil so the authz engine can treat it as a plain fact.
func membership(ctx context.Context, groups repository.GroupRepository, groupID, userID uint) (*models.GroupMember, error) {
	m, err := groups.GetMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *GroupService) Get(ctx context.Context, id uint) (*models.Group, error) {
	return s.groups.GetByID(ctx, id)
}

func (s *GroupService) List(ctx context.Context, skip, limit int) ([]*models.Group, error) {
	return s.groups.List(ctx, skip, limit)
}

// Create makes a new group. Admins and global team leads only; a team lead
// creator is auto-enrolled as the group's team lead.
func (s *GroupService) Create(ctx context.Context, actor *models.User, req models.CreateGroupRequest) (*models.Group, error) {
	if !s.authz.CanCreateGroup(actor) {
		return nil, models.ErrForbidden
	}

	if _, err := s.groups.GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("group name %q: %w", req.Name, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	group := &models.Group{Name: req.Name, Description: req.Description}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}

	if s.authz.ShouldAutoEnrollCreator(actor) {
		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  actor.ID,
			Role:    models.GroupRoleTeamLead,
		}
		if err := s.groups.AddMember(ctx, member); err != nil {
			return nil, fmt.Errorf("enroll creator into group %d: %w", group.ID, err)
		}
	}

	return group, nil
}

// Update edits group fields. Admin or the group's team lead.
func (s *GroupService) Update(ctx context.Context, actor *models.User, groupID uint, patch models.GroupUpdate) (*models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	actorMember, err := membership(ctx, s.groups, groupID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageGroup(actor, actorMember) {
		return nil, models.ErrForbidden
	}

	if patch.Name != nil && *patch.Name != group.Name {
		if _, err := s.groups.GetByName(ctx, *patch.Name); err == nil {
			return nil, fmt.Errorf("group name %q: %w", *patch.Name, models.ErrConflict)
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	patch.Apply(group)
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group. Admin only.
func (s *GroupService) Delete(ctx context.Context, actor *models.User, groupID uint) error {
	if !s.authz.CanDeleteGroup(actor) {
		return models.ErrForbidden
	}
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	return s.groups.Delete(ctx, groupID)
}

// AddMember enrolls a user. Admin or the group's team lead; adding someone
// twice is a conflict.
func (s *GroupService) AddMember(ctx context.Context, actor *models.User, groupID, userID uint, role models.GroupRole) (*models.GroupMember, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	actorMember, err := membership(ctx, s.groups, groupID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageGroup(actor, actorMember) {
		return nil, models.ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if existing, err := membership(ctx, s.groups, groupID, userID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("user %d already in group %d: %w", userID, groupID, models.ErrConflict)
	}

	if role == "" {
		role = models.GroupRoleDeveloper
	}
	member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: role}
	if err := s.groups.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberRole changes a member's group role. Admin or group team lead.
func (s *GroupService) UpdateMemberRole(ctx context.Context, actor *models.User, groupID, userID uint, role models.GroupRole) (*models.GroupMember, error) {
	actorMember, err := membership(ctx, s.groups, groupID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageGroup(actor, actorMember) {
		return nil, models.ErrForbidden
	}
	return s.groups.UpdateMemberRole(ctx, groupID, userID, role)
}

// RemoveMember drops a user from a group. Admin or group team lead, except
// that a team lead cannot remove themself.
func (s *GroupService) RemoveMember(ctx context.Context, actor *models.User, groupID, userID uint) error {
	actorMember, err := membership(ctx, s.groups, groupID, actor.ID)
	if err != nil {
		return err
	}
	if !s.authz.CanRemoveMember(actor, actorMember, userID) {
		return models.ErrForbidden
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// ListMembers returns the group's membership rows.
func (s *GroupService) ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}
