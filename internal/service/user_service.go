package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/repository"
)

// UserService handles registration, profile updates, and authentication.
type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	return s.users.List(ctx, skip, limit)
}

// Create registers a user. Username and email uniqueness is checked before
// insert so callers see ErrConflict instead of a driver constraint error.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username %q: %w", req.Username, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleDeveloper
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update patches a user. Global role is intrinsic: only an admin actor may
// change it.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uint, patch models.UserUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Role != nil && actor.Role != models.RoleAdmin {
		return nil, models.ErrForbidden
	}
	if actor.Role != models.RoleAdmin && actor.ID != id {
		return nil, models.ErrForbidden
	}

	if patch.Email != nil && *patch.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, *patch.Email); err == nil {
			return nil, fmt.Errorf("email %q: %w", *patch.Email, models.ErrConflict)
		} else if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	patch.Apply(user)
	if patch.Password != nil {
		if err := user.SetPassword(*patch.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials by email. Inactive users cannot log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, models.ErrForbidden
	}
	return user, nil
}
