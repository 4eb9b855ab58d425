package models

import "time"

type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusWaiting    TaskStatus = "waiting"
	StatusReturned   TaskStatus = "returned"
	StatusResolved   TaskStatus = "resolved"
	StatusClosed     TaskStatus = "closed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusWaiting, StatusReturned, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task always belongs to a project and is cascade-deleted with it.
// CreatedByID and AssignedToID go NULL when the referenced user is deleted.
type Task struct {
	ID           uint         `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	Description  string       `json:"description,omitempty" db:"description"`
	Status       TaskStatus   `json:"status" db:"status"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	CreatedByID  *uint        `json:"created_by_id,omitempty" db:"created_by_id"`
	AssignedToID *uint        `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	ProjectID    uint         `json:"project_id" db:"project_id"`
	Deadline     *time.Time   `json:"deadline,omitempty" db:"deadline"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Comment content is immutable once written.
type Comment struct {
	ID        uint      `json:"id" db:"id"`
	TaskID    uint      `json:"task_id" db:"task_id"`
	UserID    *uint     `json:"user_id,omitempty" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateTaskRequest struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	AssignedToID *uint        `json:"assigned_to_id,omitempty"`
	ProjectID    uint         `json:"project_id"`
	Deadline     *time.Time   `json:"deadline,omitempty"`
}

// TaskUpdate covers every mutable task field. A status set here is applied
// through the field-update authorization path, not the state machine; the
// dedicated status-change entry point is for transition-guarded moves.
type TaskUpdate struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Status       *TaskStatus   `json:"status,omitempty"`
	Priority     *TaskPriority `json:"priority,omitempty"`
	AssignedToID *uint         `json:"assigned_to_id,omitempty"`
	ProjectID    *uint         `json:"project_id,omitempty"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
}

func (p *TaskUpdate) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedToID != nil {
		id := *p.AssignedToID
		t.AssignedToID = &id
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Deadline != nil {
		d := p.Deadline.UTC()
		t.Deadline = &d
	}
}

// TaskFilter narrows task listings. Nil fields are ignored.
type TaskFilter struct {
	ProjectID      *uint
	Status         *TaskStatus
	Priority       *TaskPriority
	CreatedByID    *uint
	AssignedToID   *uint
	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
