package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/authz"
	"github.com/taskhive-io/taskhive-ce/internal/events"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
	"github.com/taskhive-io/taskhive-ce/internal/workflow"
)

// TaskService orchestrates task and comment operations. Task create and
// field update emit domain events; the publisher is best-effort and never
// fails the mutation.
type TaskService struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	authz     *authz.Engine
	publisher events.Publisher
	now       func() time.Time
}

func NewTaskService(
	tasks repository.TaskRepository,
	projects repository.ProjectRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	engine *authz.Engine,
	publisher events.Publisher,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		projects:  projects,
		groups:    groups,
		users:     users,
		authz:     engine,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// taskMembership resolves the actor's membership in the group owning the
// task's project. Nil when the project is orphaned or the actor is outside.
func (s *TaskService) taskMembership(ctx context.Context, task *models.Task, actor *models.User) (*models.GroupMember, error) {
	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.GroupID == nil {
		return nil, nil
	}
	return membership(ctx, s.groups, *project.GroupID, actor.ID)
}

// Get returns a task the actor may see.
func (s *TaskService) Get(ctx context.Context, actor *models.User, id uint) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanReadTask(actor, member) {
		return nil, models.ErrForbidden
	}
	return task, nil
}

// List returns tasks matching the filter. Admins may list across projects;
// everyone else must scope the query to a project they can read.
func (s *TaskService) List(ctx context.Context, actor *models.User, filter models.TaskFilter, skip, limit int) ([]*models.Task, error) {
	if actor.Role != models.RoleAdmin {
		if filter.ProjectID == nil {
			return nil, models.ErrForbidden
		}
		project, err := s.projects.GetByID(ctx, *filter.ProjectID)
		if err != nil {
			return nil, err
		}
		var member *models.GroupMember
		if project.GroupID != nil {
			member, err = membership(ctx, s.groups, *project.GroupID, actor.ID)
			if err != nil {
				return nil, err
			}
		}
		if !s.authz.CanReadTask(actor, member) {
			return nil, models.ErrForbidden
		}
	}
	return s.tasks.List(ctx, filter, skip, limit)
}

// Create files a task on a project. Any member of the project's group may
// create; created_by always comes from the authenticated actor.
func (s *TaskService) Create(ctx context.Context, actor *models.User, req models.CreateTaskRequest) (*models.Task, error) {
	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	var member *models.GroupMember
	if project.GroupID != nil {
		member, err = membership(ctx, s.groups, *project.GroupID, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if !s.authz.CanCreateTask(actor, member) {
		return nil, models.ErrForbidden
	}

	status := req.Status
	if status == "" {
		status = models.StatusNew
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	creatorID := actor.ID
	task := &models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Status:       status,
		Priority:     priority,
		CreatedByID:  &creatorID,
		AssignedToID: req.AssignedToID,
		ProjectID:    req.ProjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Deadline != nil {
		d := req.Deadline.UTC()
		task.Deadline = &d
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.emitTaskEvent(ctx, events.EventTaskCreated, task)
	return task, nil
}

// Update edits task fields, status included, under the field-update
// authorization table. A status carried here bypasses the state-machine
// guard: the assignee may always update, even on a resolved task.
// ChangeStatus is the transition-guarded entry point.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id uint, patch models.TaskUpdate) (*models.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("unknown task status %q: %w", *patch.Status, models.ErrInvalidInput)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Authorization is gated on the task's current project, so moving a
	// task requires update rights where it lives now.
	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanUpdateTask(actor, member, task) {
		return nil, models.ErrForbidden
	}

	if patch.AssignedToID != nil {
		if _, err := s.users.GetByID(ctx, *patch.AssignedToID); err != nil {
			return nil, err
		}
	}
	if patch.ProjectID != nil {
		if _, err := s.projects.GetByID(ctx, *patch.ProjectID); err != nil {
			return nil, err
		}
	}

	patch.Apply(task)
	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.emitTaskEvent(ctx, events.EventTaskUpdated, task)
	return task, nil
}

// ChangeStatus moves a task through the state machine. It re-fetches the
// task immediately before applying and is last-write-wins: there is no
// version token, so concurrent transitions race by design.
func (s *TaskService) ChangeStatus(ctx context.Context, actor *models.User, id uint, target models.TaskStatus) (*models.Task, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown task status %q: %w", target, models.ErrInvalidInput)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanReadTask(actor, member) {
		return nil, models.ErrForbidden
	}

	facts := workflow.TransitionFacts{
		IsAdmin:     actor.Role == models.RoleAdmin,
		IsGroupLead: member != nil && member.Role == models.GroupRoleTeamLead,
		IsCreator:   task.CreatedByID != nil && *task.CreatedByID == actor.ID,
		IsAssignee:  task.AssignedToID != nil && *task.AssignedToID == actor.ID,
	}
	if !workflow.CanTransition(facts, task.Status, target) {
		return nil, models.ErrForbidden
	}

	task.Status = target
	task.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task. Admin, group team lead, or the creator.
func (s *TaskService) Delete(ctx context.Context, actor *models.User, id uint) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return err
	}
	if !s.authz.CanDeleteTask(actor, member, task) {
		return models.ErrForbidden
	}
	return s.tasks.Delete(ctx, id)
}

// AddComment appends a comment to a task the actor can read.
func (s *TaskService) AddComment(ctx context.Context, actor *models.User, taskID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanReadTask(actor, member) {
		return nil, models.ErrForbidden
	}

	authorID := actor.ID
	comment := &models.Comment{
		TaskID:    taskID,
		UserID:    &authorID,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	if err := s.tasks.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a task's comments for actors who can read the task.
func (s *TaskService) ListComments(ctx context.Context, actor *models.User, taskID uint) ([]*models.Comment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanReadTask(actor, member) {
		return nil, models.ErrForbidden
	}
	return s.tasks.ListComments(ctx, taskID)
}

// DeleteComment removes a comment. Admin, the author, or a team lead of
// the task's group.
func (s *TaskService) DeleteComment(ctx context.Context, actor *models.User, commentID uint) error {
	comment, err := s.tasks.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	task, err := s.tasks.GetByID(ctx, comment.TaskID)
	if err != nil {
		return err
	}
	member, err := s.taskMembership(ctx, task, actor)
	if err != nil {
		return err
	}
	if !s.authz.CanDeleteComment(actor, member, comment) {
		return models.ErrForbidden
	}
	return s.tasks.DeleteComment(ctx, commentID)
}

// emitTaskEvent publishes a post-mutation snapshot. The assignee email is
// resolved here; a missing assignee just omits the field. Lookup failures
// are tolerated because events are best-effort.
func (s *TaskService) emitTaskEvent(ctx context.Context, eventType string, task *models.Task) {
	payload := map[string]interface{}{
		"id":          task.ID,
		"title":       task.Title,
		"description": task.Description,
		"status":      string(task.Status),
		"priority":    string(task.Priority),
		"project_id":  task.ProjectID,
	}
	if task.CreatedByID != nil {
		payload["created_by_id"] = *task.CreatedByID
	}
	if task.AssignedToID != nil {
		payload["assigned_to_id"] = *task.AssignedToID
		if user, err := s.users.GetByID(ctx, *task.AssignedToID); err == nil {
			payload["assigned_to_email"] = user.Email
		}
	}
	s.publisher.Publish(events.TopicTaskEvents, eventType, payload)
}
