package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// SQLProjectRepository handles database operations for projects.
type SQLProjectRepository struct {
	db *sql.DB
}

func NewSQLProjectRepository(db *sql.DB) *SQLProjectRepository {
	return &SQLProjectRepository{db: db}
}

const projectColumns = "id, name, description, group_id, created_at, updated_at"

func scanProjectRow(scan func(dest ...interface{}) error) (*models.Project, error) {
	var p models.Project
	var desc sql.NullString
	var groupID sql.NullInt64
	if err := scan(&p.ID, &p.Name, &desc, &groupID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Description = desc.String
	if groupID.Valid {
		gid := uint(groupID.Int64)
		p.GroupID = &gid
	}
	return &p, nil
}

func (r *SQLProjectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT "+projectColumns+" FROM projects WHERE id = $1"), id)
	p, err := scanProjectRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLProjectRepository) List(ctx context.Context, skip, limit int) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT "+projectColumns+" FROM projects ORDER BY id LIMIT $1 OFFSET $2"), limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *SQLProjectRepository) ListByGroup(ctx context.Context, groupID uint, skip, limit int) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT "+projectColumns+" FROM projects WHERE group_id = $1 ORDER BY id LIMIT $2 OFFSET $3"),
		groupID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]*models.Project, error) {
	var projects []*models.Project
	for rows.Next() {
		p, err := scanProjectRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLProjectRepository) Create(ctx context.Context, project *models.Project) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(`
		INSERT INTO projects (name, description, group_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`),
		project.Name, project.Description, nullableUint(project.GroupID), project.CreatedAt, project.UpdatedAt,
	).Scan(&project.ID)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *SQLProjectRepository) Update(ctx context.Context, project *models.Project) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(`
		UPDATE projects SET name = $1, description = $2, group_id = $3, updated_at = $4
		WHERE id = $5`),
		project.Name, project.Description, nullableUint(project.GroupID), project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project %d: %w", project.ID, err)
	}
	return requireRow(res)
}

func (r *SQLProjectRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM projects WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return requireRow(res)
}

func nullableUint(v *uint) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}
