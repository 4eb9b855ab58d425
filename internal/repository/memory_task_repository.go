package repository

import (
	"context"
	"sync"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// MemoryTaskRepository implements TaskRepository with in-memory storage.
type MemoryTaskRepository struct {
	mu            sync.RWMutex
	tasks         map[uint]*models.Task
	comments      map[uint]*models.Comment
	nextTaskID    uint
	nextCommentID uint
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks:         make(map[uint]*models.Task),
		comments:      make(map[uint]*models.Comment),
		nextTaskID:    1,
		nextCommentID: 1,
	}
}

func (r *MemoryTaskRepository) GetByID(_ context.Context, id uint) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func matchesFilter(t *models.Task, f models.TaskFilter) bool {
	if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.CreatedByID != nil && (t.CreatedByID == nil || *t.CreatedByID != *f.CreatedByID) {
		return false
	}
	if f.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *f.AssignedToID) {
		return false
	}
	if f.DeadlineAfter != nil && (t.Deadline == nil || t.Deadline.Before(*f.DeadlineAfter)) {
		return false
	}
	if f.DeadlineBefore != nil && (t.Deadline == nil || t.Deadline.After(*f.DeadlineBefore)) {
		return false
	}
	return true
}

func (r *MemoryTaskRepository) List(_ context.Context, filter models.TaskFilter, skip, limit int) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*models.Task
	for id := uint(1); id < r.nextTaskID; id++ {
		if t, ok := r.tasks[id]; ok && matchesFilter(t, filter) {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	return paginate(tasks, skip, limit), nil
}

func (r *MemoryTaskRepository) ListDueBetween(_ context.Context, from, until time.Time, statuses []models.TaskStatus) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	allowed := make(map[models.TaskStatus]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var tasks []*models.Task
	for id := uint(1); id < r.nextTaskID; id++ {
		t, ok := r.tasks[id]
		if !ok || t.Deadline == nil || !allowed[t.Status] {
			continue
		}
		if t.Deadline.Before(from) || t.Deadline.After(until) {
			continue
		}
		cp := *t
		tasks = append(tasks, &cp)
	}
	return tasks, nil
}

func (r *MemoryTaskRepository) CountByStatus(_ context.Context) (map[models.TaskStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[models.TaskStatus]int)
	for _, t := range r.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = r.nextTaskID
	r.nextTaskID++
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.tasks, id)
	// Comments cascade with the task.
	for cid, c := range r.comments {
		if c.TaskID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r *MemoryTaskRepository) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.nextCommentID
	r.nextCommentID++
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	cp := *comment
	r.comments[comment.ID] = &cp
	return nil
}

func (r *MemoryTaskRepository) GetComment(_ context.Context, id uint) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryTaskRepository) ListComments(_ context.Context, taskID uint) ([]*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var comments []*models.Comment
	for id := uint(1); id < r.nextCommentID; id++ {
		if c, ok := r.comments[id]; ok && c.TaskID == taskID {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	return comments, nil
}

func (r *MemoryTaskRepository) DeleteComment(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}
