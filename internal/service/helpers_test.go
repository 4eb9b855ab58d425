package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhive-io/taskhive-ce/internal/authz"
	"github.com/taskhive-io/taskhive-ce/internal/cache"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	Topic   string
	Type    string
	Payload map[string]interface{}
}

func (p *capturePublisher) Publish(topic, eventType string, payload map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Type: eventType, Payload: payload})
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) captured() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

// fixture wires all services over in-memory storage.
type fixture struct {
	t *testing.T

	userRepo    *repository.MemoryUserRepository
	groupRepo   *repository.MemoryGroupRepository
	projectRepo *repository.MemoryProjectRepository
	taskRepo    *repository.MemoryTaskRepository
	cache       *cache.LocalCache
	publisher   *capturePublisher

	users    *UserService
	groups   *GroupService
	projects *ProjectService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:           t,
		userRepo:    repository.NewMemoryUserRepository(),
		groupRepo:   repository.NewMemoryGroupRepository(),
		projectRepo: repository.NewMemoryProjectRepository(),
		taskRepo:    repository.NewMemoryTaskRepository(),
		cache:       cache.NewLocalCache(),
		publisher:   &capturePublisher{},
	}
	engine := authz.NewEngine()
	f.users = NewUserService(f.userRepo)
	f.groups = NewGroupService(f.groupRepo, f.userRepo, engine)
	f.projects = NewProjectService(f.projectRepo, f.groupRepo, engine, f.cache)
	f.tasks = NewTaskService(f.taskRepo, f.projectRepo, f.groupRepo, f.userRepo, engine, f.publisher)
	return f
}

func (f *fixture) addUser(username string, role models.GlobalRole) *models.User {
	f.t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FullName:  username,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(f.t, user.SetPassword("secret123"))
	require.NoError(f.t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *fixture) addGroup(name string) *models.Group {
	f.t.Helper()
	group := &models.Group{Name: name, Description: name + " team"}
	require.NoError(f.t, f.groupRepo.Create(context.Background(), group))
	return group
}

func (f *fixture) addMember(groupID, userID uint, role models.GroupRole) *models.GroupMember {
	f.t.Helper()
	member := &models.GroupMember{GroupID: groupID, UserID: userID, Role: role}
	require.NoError(f.t, f.groupRepo.AddMember(context.Background(), member))
	return member
}

func (f *fixture) addProject(name string, groupID uint) *models.Project {
	f.t.Helper()
	gid := groupID
	project := &models.Project{
		Name:      name,
		GroupID:   &gid,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(f.t, f.projectRepo.Create(context.Background(), project))
	return project
}

func (f *fixture) addTask(title string, projectID uint, createdBy *models.User, assignee *models.User) *models.Task {
	f.t.Helper()
	task := &models.Task{
		Title:     title,
		ProjectID: projectID,
		Status:    models.StatusNew,
		Priority:  models.PriorityMedium,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if createdBy != nil {
		id := createdBy.ID
		task.CreatedByID = &id
	}
	if assignee != nil {
		id := assignee.ID
		task.AssignedToID = &id
	}
	require.NoError(f.t, f.taskRepo.Create(context.Background(), task))
	return task
}
