package repository

import (
	"context"
	"sync"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// MemoryProjectRepository implements ProjectRepository with in-memory storage.
type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[uint]*models.Project
	nextID   uint
}

func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[uint]*models.Project), nextID: 1}
}

func (r *MemoryProjectRepository) GetByID(_ context.Context, id uint) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProjectRepository) List(_ context.Context, skip, limit int) ([]*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var projects []*models.Project
	for id := uint(1); id < r.nextID; id++ {
		if p, ok := r.projects[id]; ok {
			cp := *p
			projects = append(projects, &cp)
		}
	}
	return paginate(projects, skip, limit), nil
}

func (r *MemoryProjectRepository) ListByGroup(_ context.Context, groupID uint, skip, limit int) ([]*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var projects []*models.Project
	for id := uint(1); id < r.nextID; id++ {
		if p, ok := r.projects[id]; ok && p.GroupID != nil && *p.GroupID == groupID {
			cp := *p
			projects = append(projects, &cp)
		}
	}
	return paginate(projects, skip, limit), nil
}

func (r *MemoryProjectRepository) Create(_ context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project.ID = r.nextID
	r.nextID++
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *MemoryProjectRepository) Update(_ context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[project.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *MemoryProjectRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}
