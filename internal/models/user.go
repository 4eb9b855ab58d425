package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// GlobalRole is the system-wide permission tier attached to a user. It is
// independent of any role the user holds inside a group.
type GlobalRole string

const (
	RoleAdmin     GlobalRole = "admin"
	RoleTeamLead  GlobalRole = "team_lead"
	RoleDeveloper GlobalRole = "developer"
	RoleObserver  GlobalRole = "observer"
)

// Valid reports whether the role is one of the known global roles.
func (r GlobalRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLead, RoleDeveloper, RoleObserver:
		return true
	}
	return false
}

type User struct {
	ID           uint       `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name,omitempty" db:"full_name"`
	Role         GlobalRole `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CreateUserRequest carries the fields accepted when registering a user.
type CreateUserRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"full_name"`
	Role     GlobalRole `json:"role"`
}

// UserUpdate is an optional-fields patch. Nil means "leave unchanged".
type UserUpdate struct {
	Email    *string     `json:"email,omitempty"`
	Password *string     `json:"password,omitempty"`
	FullName *string     `json:"full_name,omitempty"`
	Role     *GlobalRole `json:"role,omitempty"`
	IsActive *bool       `json:"is_active,omitempty"`
}

// Apply merges the provided fields onto u. Password is handled by the
// service so the hash never transits through here.
func (p *UserUpdate) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}
