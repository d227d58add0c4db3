package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	Email          string
	Name           string
	Role           string
	HashedPassword string
}

// Public is the identity summary safe to return to clients
type Public struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
}

func (u User) Public() Public {
	return Public{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
	}
}
