package repository

import (
	"context"
	"sync"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// MemoryGroupRepository implements GroupRepository with in-memory storage.
type MemoryGroupRepository struct {
	mu           sync.RWMutex
	groups       map[uint]*models.Group
	members      map[uint]*models.GroupMember
	nextGroupID  uint
	nextMemberID uint
}

func NewMemoryGroupRepository() *MemoryGroupRepository {
	return &MemoryGroupRepository{
		groups:       make(map[uint]*models.Group),
		members:      make(map[uint]*models.GroupMember),
		nextGroupID:  1,
		nextMemberID: 1,
	}
}

func (r *MemoryGroupRepository) GetByID(_ context.Context, id uint) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *MemoryGroupRepository) GetByName(_ context.Context, name string) (*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryGroupRepository) List(_ context.Context, skip, limit int) ([]*models.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var groups []*models.Group
	for id := uint(1); id < r.nextGroupID; id++ {
		if g, ok := r.groups[id]; ok {
			cp := *g
			groups = append(groups, &cp)
		}
	}
	return paginate(groups, skip, limit), nil
}

func (r *MemoryGroupRepository) Create(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.ID = r.nextGroupID
	r.nextGroupID++
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *MemoryGroupRepository) Update(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *MemoryGroupRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.groups, id)
	// Memberships cascade with the group.
	for mid, m := range r.members {
		if m.GroupID == id {
			delete(r.members, mid)
		}
	}
	return nil
}

func (r *MemoryGroupRepository) AddMember(_ context.Context, member *models.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.ID = r.nextMemberID
	r.nextMemberID++
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *MemoryGroupRepository) GetMember(_ context.Context, groupID, userID uint) (*models.GroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.GroupID == groupID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryGroupRepository) UpdateMemberRole(_ context.Context, groupID, userID uint, role models.GroupRole) (*models.GroupMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.GroupID == groupID && m.UserID == userID {
			m.Role = role
			cp := *m
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryGroupRepository) RemoveMember(_ context.Context, groupID, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.members {
		if m.GroupID == groupID && m.UserID == userID {
			delete(r.members, id)
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *MemoryGroupRepository) ListUserMemberships(_ context.Context, userID uint) ([]*models.GroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*models.GroupMember
	for id := uint(1); id < r.nextMemberID; id++ {
		if m, ok := r.members[id]; ok && m.UserID == userID {
			cp := *m
			members = append(members, &cp)
		}
	}
	return members, nil
}

func (r *MemoryGroupRepository) ListMembers(_ context.Context, groupID uint) ([]*models.GroupMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*models.GroupMember
	for id := uint(1); id < r.nextMemberID; id++ {
		if m, ok := r.members[id]; ok && m.GroupID == groupID {
			cp := *m
			members = append(members, &cp)
		}
	}
	return members, nil
}
