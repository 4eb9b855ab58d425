package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskhive-io/taskhive-ce/internal/database"
	"github.com/taskhive-io/taskhive-ce/internal/models"
)

// SQLUserRepository handles database operations for users.
type SQLUserRepository struct {
	db *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, full_name, role, is_active, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var fullName sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &fullName, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	u.FullName = fullName.String
	return &u, nil
}

func (r *SQLUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT "+userColumns+" FROM users WHERE id = $1"), id)
	return scanUser(row)
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT "+userColumns+" FROM users WHERE username = $1"), username)
	return scanUser(row)
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(
		"SELECT "+userColumns+" FROM users WHERE email = $1"), email)
	return scanUser(row)
}

func (r *SQLUserRepository) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, database.ConvertPlaceholders(
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT $1 OFFSET $2"), limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		var fullName sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &fullName, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.FullName = fullName.String
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowContext(ctx, database.ConvertPlaceholders(`
		INSERT INTO users (username, email, password_hash, full_name, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`),
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(`
		UPDATE users SET email = $1, password_hash = $2, full_name = $3, role = $4, is_active = $5
		WHERE id = $6`),
		user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return requireRow(res)
}

func (r *SQLUserRepository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, database.ConvertPlaceholders(
		"DELETE FROM users WHERE id = $1"), id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireRow(res)
}

// requireRow maps a zero-row mutation onto ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
