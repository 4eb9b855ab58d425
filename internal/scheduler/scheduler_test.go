package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *captureMailer) mails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func TestCheckDeadlines(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	tasks := repository.NewMemoryTaskRepository()
	mailer := &captureMailer{}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(tasks, users, mailer, WithClock(func() time.Time { return now }))

	assignee := &models.User{Username: "dev", Email: "dev@example.com", Role: models.RoleDeveloper, IsActive: true}
	require.NoError(t, users.Create(ctx, assignee))

	addTask := func(status models.TaskStatus, deadline *time.Time, assignedTo *uint) {
		t.Helper()
		require.NoError(t, tasks.Create(ctx, &models.Task{
			Title:        "t",
			ProjectID:    1,
			Status:       status,
			Priority:     models.PriorityMedium,
			Deadline:     deadline,
			AssignedToID: assignedTo,
		}))
	}

	soon := now.Add(6 * time.Hour)
	far := now.Add(72 * time.Hour)

	addTask(models.StatusInProgress, &soon, &assignee.ID)
	addTask(models.StatusInProgress, &far, &assignee.ID)
	addTask(models.StatusResolved, &soon, &assignee.ID)
	addTask(models.StatusInProgress, &soon, nil)

	require.NoError(t, svc.CheckDeadlines(ctx))

	sent := mailer.mails()
	require.Len(t, sent, 1)
	assert.Equal(t, "dev@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "6 hours")
}

func TestCheckDeadlinesSkipsUnknownAssignee(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	tasks := repository.NewMemoryTaskRepository()
	mailer := &captureMailer{}

	now := time.Now().UTC()
	svc := NewService(tasks, users, mailer, WithClock(func() time.Time { return now }))

	deadline := now.Add(time.Hour)
	ghost := uint(99)
	require.NoError(t, tasks.Create(ctx, &models.Task{
		Title:        "orphan",
		ProjectID:    1,
		Status:       models.StatusNew,
		Priority:     models.PriorityMedium,
		Deadline:     &deadline,
		AssignedToID: &ghost,
	}))

	require.NoError(t, svc.CheckDeadlines(ctx))
	assert.Empty(t, mailer.mails())
}

func TestStatusReport(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	tasks := repository.NewMemoryTaskRepository()

	require.NoError(t, tasks.Create(ctx, &models.Task{Title: "a", ProjectID: 1, Status: models.StatusNew}))
	require.NoError(t, tasks.Create(ctx, &models.Task{Title: "b", ProjectID: 1, Status: models.StatusResolved}))

	svc := NewService(tasks, users, &captureMailer{})
	require.NoError(t, svc.StatusReport(ctx))
}

func TestStartStopIdempotent(t *testing.T) {
	svc := NewService(repository.NewMemoryTaskRepository(), repository.NewMemoryUserRepository(), &captureMailer{})
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Start())
	svc.Stop()
	svc.Stop()
}
