package service

import (
	"context"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/authz"
	"github.com/taskhive-io/taskhive-ce/internal/cache"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
)

// ProjectService orchestrates project operations. Reads go through the
// cache-aside helper; every write goes to the store first and invalidates
// the cache second.
type ProjectService struct {
	projects repository.ProjectRepository
	groups   repository.GroupRepository
	authz    *authz.Engine
	cache    *projectCache
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepository, groups repository.GroupRepository, engine *authz.Engine, c cache.Cache) *ProjectService {
	return &ProjectService{
		projects: projects,
		groups:   groups,
		authz:    engine,
		cache:    &projectCache{cache: c},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// fetch reads a project cache-first, repopulating on miss.
func (s *ProjectService) fetch(ctx context.Context, id uint) (*models.Project, error) {
	if p := s.cache.getItem(ctx, id); p != nil {
		return p, nil
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.setItem(ctx, p)
	return p, nil
}

// projectMembership resolves the actor's membership in the project's group.
// Orphaned projects (no group) yield nil, which only admins get past.
func (s *ProjectService) projectMembership(ctx context.Context, p *models.Project, actor *models.User) (*models.GroupMember, error) {
	if p.GroupID == nil {
		return nil, nil
	}
	return membership(ctx, s.groups, *p.GroupID, actor.ID)
}

// Get returns a project the actor may see.
func (s *ProjectService) Get(ctx context.Context, actor *models.User, id uint) (*models.Project, error) {
	p, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	member, err := s.projectMembership(ctx, p, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanViewProject(actor, member) {
		return nil, models.ErrForbidden
	}
	return p, nil
}

// List returns projects visible to the actor: everything for admins,
// otherwise only projects in groups the actor belongs to.
func (s *ProjectService) List(ctx context.Context, actor *models.User, skip, limit int) ([]*models.Project, error) {
	key := listKey(skip, limit)
	projects := s.cache.getList(ctx, key)
	if projects == nil {
		var err error
		projects, err = s.projects.List(ctx, skip, limit)
		if err != nil {
			return nil, err
		}
		s.cache.setList(ctx, key, projects)
	}

	if actor.Role == models.RoleAdmin {
		return projects, nil
	}

	memberships, err := s.groups.ListUserMemberships(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint]bool, len(memberships))
	for _, m := range memberships {
		allowed[m.GroupID] = true
	}

	visible := projects[:0:0]
	for _, p := range projects {
		if p.GroupID != nil && allowed[*p.GroupID] {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// ListByGroup returns a group's projects; the group must exist and the
// actor must be admin or a member of it.
func (s *ProjectService) ListByGroup(ctx context.Context, actor *models.User, groupID uint, skip, limit int) ([]*models.Project, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	member, err := membership(ctx, s.groups, groupID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanViewProject(actor, member) {
		return nil, models.ErrForbidden
	}

	key := groupListKey(groupID, skip, limit)
	if projects := s.cache.getList(ctx, key); projects != nil {
		return projects, nil
	}
	projects, err := s.projects.ListByGroup(ctx, groupID, skip, limit)
	if err != nil {
		return nil, err
	}
	s.cache.setList(ctx, key, projects)
	return projects, nil
}

// Create makes a project under a group. The group must exist; admin or a
// team lead of that group may create.
func (s *ProjectService) Create(ctx context.Context, actor *models.User, req models.CreateProjectRequest) (*models.Project, error) {
	if _, err := s.groups.GetByID(ctx, req.GroupID); err != nil {
		return nil, err
	}

	member, err := membership(ctx, s.groups, req.GroupID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanCreateProject(actor, member) {
		return nil, models.ErrForbidden
	}

	now := s.now()
	gid := req.GroupID
	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		GroupID:     &gid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	s.cache.invalidateLists(ctx, project.GroupID)
	return project, nil
}

// Update edits project fields. Admin or team lead of the current group;
// moving to another group additionally requires team lead there.
func (s *ProjectService) Update(ctx context.Context, actor *models.User, id uint, patch models.ProjectUpdate) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member, err := s.projectMembership(ctx, project, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanEditProject(actor, member) {
		return nil, models.ErrForbidden
	}

	oldGroupID := project.GroupID
	moving := patch.GroupID != nil && (oldGroupID == nil || *patch.GroupID != *oldGroupID)
	if moving {
		if _, err := s.groups.GetByID(ctx, *patch.GroupID); err != nil {
			return nil, err
		}
		destMember, err := membership(ctx, s.groups, *patch.GroupID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !s.authz.CanMoveProject(actor, destMember) {
			return nil, models.ErrForbidden
		}
	}

	patch.Apply(project)
	project.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx, project.ID, oldGroupID, project.GroupID)
	return project, nil
}

// Delete removes a project. Admin or team lead of its group.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, id uint) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	member, err := s.projectMembership(ctx, project, actor)
	if err != nil {
		return err
	}
	if !s.authz.CanEditProject(actor, member) {
		return models.ErrForbidden
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.invalidate(ctx, id, project.GroupID)
	return nil
}
