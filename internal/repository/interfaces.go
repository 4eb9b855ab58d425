package repository

import (
	"context"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// Repositories return models.ErrNotFound (wrapped or bare) when an id has
// no row, so services can branch with errors.Is without knowing the driver.

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type GroupRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	List(ctx context.Context, skip, limit int) ([]*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error

	AddMember(ctx context.Context, member *models.GroupMember) error
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	UpdateMemberRole(ctx context.Context, groupID, userID uint, role models.GroupRole) (*models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID uint) error
	ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error)
	ListUserMemberships(ctx context.Context, userID uint) ([]*models.GroupMember, error)
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	List(ctx context.Context, skip, limit int) ([]*models.Project, error)
	ListByGroup(ctx context.Context, groupID uint, skip, limit int) ([]*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
}

type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter, skip, limit int) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error

	// ListDueBetween feeds the deadline sweep: tasks whose deadline falls in
	// [from, until] and whose status is one of the given set.
	ListDueBetween(ctx context.Context, from, until time.Time, statuses []models.TaskStatus) ([]*models.Task, error)

	// CountByStatus feeds the daily status report.
	CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, taskID uint) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
}
