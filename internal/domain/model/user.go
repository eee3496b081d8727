package model

import (
	"time"

	"iptv-reseller-store/internal/domain"

	"github.com/google/uuid"
)

// Role distinguishes the administrator from regular storefront clients.
// It is fixed at profile creation and never changes afterwards.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleClient }

// User is the domain profile behind an authenticated principal.
// Points is a loyalty balance credited on each completed purchase.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Points    int64
	CreatedAt time.Time
}

// NewUser validates and constructs a user profile.
func NewUser(id, name, email string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || email == "" || !role.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		Points:    0,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (u *User) IsZero() bool  { return u == nil || u.ID == "" }
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
