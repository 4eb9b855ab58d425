// Package scheduler runs the periodic background jobs: the hourly task
// deadline sweep and the daily status report.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/notifications"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
	"github.com/taskhive-io/taskhive-ce/internal/workflow"
)

const (
	deadlineSchedule = "0 * * * *" // hourly, on the hour
	reportSchedule   = "0 0 * * *" // daily, midnight UTC
)

// Service coordinates cron job execution.
type Service struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	mailer    notifications.Mailer
	cron      *cron.Cron
	logger    *log.Logger
	now       func() time.Time
	startOnce sync.Once
	stopOnce  sync.Once
}

// Option tweaks the service, mainly for tests.
type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(tasks repository.TaskRepository, users repository.UserRepository, mailer notifications.Mailer, opts ...Option) *Service {
	s := &Service{
		tasks:  tasks,
		users:  users,
		mailer: mailer,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: log.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the jobs and launches the cron engine. Safe to call more
// than once.
func (s *Service) Start() error {
	var err error
	s.startOnce.Do(func() {
		if _, addErr := s.cron.AddFunc(deadlineSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if sweepErr := s.CheckDeadlines(ctx); sweepErr != nil {
				s.logger.Printf("scheduler: deadline sweep: %v", sweepErr)
			}
		}); addErr != nil {
			err = fmt.Errorf("register deadline sweep: %w", addErr)
			return
		}
		if _, addErr := s.cron.AddFunc(reportSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if repErr := s.StatusReport(ctx); repErr != nil {
				s.logger.Printf("scheduler: status report: %v", repErr)
			}
		}); addErr != nil {
			err = fmt.Errorf("register status report: %w", addErr)
			return
		}
		s.cron.Start()
	})
	return err
}

// Stop halts the cron engine and waits for running jobs.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
	})
}

// CheckDeadlines notifies assignees of active tasks due within 24 hours.
// The sweep does not coordinate with concurrent status changes; a task may
// be notified moments before it is resolved, which is acceptable staleness.
func (s *Service) CheckDeadlines(ctx context.Context) error {
	now := s.now()
	due, err := s.tasks.ListDueBetween(ctx, now, now.Add(24*time.Hour), workflow.ActiveStatuses())
	if err != nil {
		return err
	}

	for _, task := range due {
		if task.AssignedToID == nil {
			continue
		}
		user, err := s.users.GetByID(ctx, *task.AssignedToID)
		if err != nil {
			s.logger.Printf("scheduler: resolve assignee for task %d: %v", task.ID, err)
			continue
		}
		hoursLeft := int(task.Deadline.Sub(now).Hours())
		subject := fmt.Sprintf("Task %q is due soon", task.Title)
		body := fmt.Sprintf("Task %q is due in %d hours.", task.Title, hoursLeft)
		if err := s.mailer.Send(user.Email, subject, body); err != nil {
			s.logger.Printf("scheduler: notify %s about task %d: %v", user.Email, task.ID, err)
		}
	}
	return nil
}

// StatusReport logs the task count per status.
func (s *Service) StatusReport(ctx context.Context) error {
	counts, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return err
	}
	for _, status := range []models.TaskStatus{
		models.StatusNew, models.StatusInProgress, models.StatusWaiting,
		models.StatusReturned, models.StatusResolved, models.StatusClosed,
	} {
		s.logger.Printf("scheduler: status report: %s=%d", status, counts[status])
	}
	return nil
}
