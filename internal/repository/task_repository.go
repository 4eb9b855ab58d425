package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// SQLTaskRepository handles database operations for tasks and comments.
type SQLTaskRepository struct {
	db *sql.DB
}

func NewSQLTaskRepository(db *sql.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

const taskColumns = "id, title, description, status, priority, created_by_id, assigned_to_id, project_id, deadline, created_at, updated_at"

func scanTaskRow(scan func(dest ...interface{}) error) (*models.Task, error) {
	var t models.Task
	var desc sql.NullString
	var createdBy, assignedTo sql.NullInt64
	var deadline sql.NullTime
	err := scan(&t.ID, &t.Title, &desc, &t.Status, &t.Priority, &createdBy, &assignedTo, &t.ProjectID, &deadline, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Description = desc.String
	if createdBy.Valid {
		id := uint(createdBy.Int64)
		t.CreatedByID = &id
	}
	if assignedTo.Valid {
		id := uint(assignedTo.Int64)
		t.AssignedToID = &id
	}
	if deadline.Valid {
		d := deadline.Time.UTC()
		t.Deadline = &d
	}
	return &t, nil
}

func (r *SQLTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1"), id)
	t, err := scanTaskRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List assembles the WHERE clause from whichever filter fields are set.
func (r *SQLTaskRepository) List(ctx context.Context, filter models.TaskFilter, skip, limit int) ([]*models.Task, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ProjectID != nil {
		add("project_id = $%d", *filter.ProjectID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Priority != nil {
		add("priority = $%d", *filter.Priority)
	}
	if filter.CreatedByID != nil {
		add("created_by_id = $%d", *filter.CreatedByID)
	}
	if filter.AssignedToID != nil {
		add("assigned_to_id = $%d", *filter.AssignedToID)
	}
	if filter.DeadlineAfter != nil {
		add("deadline >= $%d", filter.DeadlineAfter.UTC())
	}
	if filter.DeadlineBefore != nil {
		add("deadline <= $%d", filter.DeadlineBefore.UTC())
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLTaskRepository) ListDueBetween(ctx context.Context, from, until time.Time, statuses []models.TaskStatus) ([]*models.Task, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	args := []interface{}{from.UTC(), until.UTC()}
	placeholders := make([]string, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, s)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE deadline >= $1 AND deadline <= $2" +
		" AND status IN (" + strings.Join(placeholders, ", ") + ") ORDER BY deadline"

	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLTaskRepository) CountByStatus(ctx context.Context) (map[models.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TaskStatus]int)
	for rows.Next() {
		var status models.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTaskRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLTaskRepository) Create(ctx context.Context, task *models.Task) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(`
		INSERT INTO tasks (title, description, status, priority, created_by_id, assigned_to_id, project_id, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`),
		task.Title, task.Description, task.Status, task.Priority,
		nullableUint(task.CreatedByID), nullableUint(task.AssignedToID),
		task.ProjectID, nullableTime(task.Deadline), task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *SQLTaskRepository) Update(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(`
		UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4,
		       assigned_to_id = $5, project_id = $6, deadline = $7, updated_at = $8
		WHERE id = $9`),
		task.Title, task.Description, task.Status, task.Priority,
		nullableUint(task.AssignedToID), task.ProjectID, nullableTime(task.Deadline),
		task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return requireRow(res)
}

func (r *SQLTaskRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM tasks WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *SQLTaskRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(`
		INSERT INTO comments (task_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`),
		comment.TaskID, nullableUint(comment.UserID), comment.Content, comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *SQLTaskRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	var userID sql.NullInt64
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT id, task_id, user_id, content, created_at FROM comments WHERE id = $1"), id,
	).Scan(&c.ID, &c.TaskID, &userID, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if userID.Valid {
		uid := uint(userID.Int64)
		c.UserID = &uid
	}
	return &c, nil
}

func (r *SQLTaskRepository) ListComments(ctx context.Context, taskID uint) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT id, task_id, user_id, content, created_at FROM comments WHERE task_id = $1 ORDER BY created_at"), taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		var userID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.TaskID, &userID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			uid := uint(userID.Int64)
			c.UserID = &uid
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *SQLTaskRepository) DeleteComment(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM comments WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return requireRow(res)
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
