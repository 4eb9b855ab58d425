package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// SQLGroupRepository handles database operations for groups and memberships.
type SQLGroupRepository struct {
	db *sql.DB
}

func NewSQLGroupRepository(db *sql.DB) *SQLGroupRepository {
	return &SQLGroupRepository{db: db}
}

func scanGroup(row *sql.Row) (*models.Group, error) {
	var g models.Group
	var desc sql.NullString
	if err := row.Scan(&g.ID, &g.Name, &desc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	g.Description = desc.String
	return &g, nil
}

func (r *SQLGroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT id, name, description FROM groups WHERE id = $1"), id)
	return scanGroup(row)
}

func (r *SQLGroupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT id, name, description FROM groups WHERE name = $1"), name)
	return scanGroup(row)
}

func (r *SQLGroupRepository) List(ctx context.Context, skip, limit int) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT id, name, description FROM groups ORDER BY id LIMIT $1 OFFSET $2"), limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var g models.Group
		var desc sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &desc); err != nil {
			return nil, err
		}
		g.Description = desc.String
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

func (r *SQLGroupRepository) Create(ctx context.Context, group *models.Group) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"INSERT INTO groups (name, description) VALUES ($1, $2) RETURNING id"),
		group.Name, group.Description,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (r *SQLGroupRepository) Update(ctx context.Context, group *models.Group) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"UPDATE groups SET name = $1, description = $2 WHERE id = $3"),
		group.Name, group.Description, group.ID,
	)
	if err != nil {
		return fmt.Errorf("update group %d: %w", group.ID, err)
	}
	return requireRow(res)
}

func (r *SQLGroupRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM groups WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete group %d: %w", id, err)
	}
	return requireRow(res)
}

func (r *SQLGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3) RETURNING id"),
		member.GroupID, member.UserID, member.Role,
	).Scan(&member.ID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *SQLGroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var m models.GroupMember
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT id, group_id, user_id, role FROM group_members WHERE group_id = $1 AND user_id = $2"),
		groupID, userID,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// UpdateMemberRole checks existence up front rather than trusting
// RowsAffected: mysql reports zero affected rows when the new role equals
// the stored one, which would misread a no-op change as a missing row.
func (r *SQLGroupRepository) UpdateMemberRole(ctx context.Context, groupID, userID uint, role models.GroupRole) (*models.GroupMember, error) {
	member, err := r.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role == role {
		return member, nil
	}
	if _, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"UPDATE group_members SET role = $1 WHERE group_id = $2 AND user_id = $3"),
		role, groupID, userID,
	); err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	member.Role = role
	return member, nil
}

func (r *SQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2"),
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireRow(res)
}

func (r *SQLGroupRepository) ListUserMemberships(ctx context.Context, userID uint) ([]*models.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT id, group_id, user_id, role FROM group_members WHERE user_id = $1 ORDER BY id"), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *SQLGroupRepository) ListMembers(ctx context.Context, groupID uint) ([]*models.GroupMember, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT id, group_id, user_id, role FROM group_members WHERE group_id = $1 ORDER BY id"), groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
