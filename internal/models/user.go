package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a fest participant or admin.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	RollNumber string     `json:"roll_number"`
	Department string     `json:"department"`
	Password   string     `json:"-"`
	Role       Role       `json:"role"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	RollNumber string     `json:"roll_number"`
	Department string     `json:"department"`
	Role       Role       `json:"role"`
	TeamID     *uuid.UUID `json:"team_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		RollNumber: u.RollNumber,
		Department: u.Department,
		Role:       u.Role,
		TeamID:     u.TeamID,
		CreatedAt:  u.CreatedAt,
	}
}
