package model

import (
	"time"

	"github.com/google/uuid"
)

// Role defines what a user is allowed to see and acknowledge
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleDoctor Role = "DOCTOR"
	RoleFamily Role = "FAMILY"
)

// User represents clinical staff or a linked family member
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `json:"name" gorm:"size:100;not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string    `json:"-" gorm:"size:255;not null"`
	Role     Role      `json:"role" gorm:"size:20;not null;default:'FAMILY';index"`
	// LinkedPatientID ties a FAMILY user to the single patient whose
	// alerts they receive; NULL for staff roles
	LinkedPatientID *string `json:"linkedPatientId" gorm:"size:32;index"`
	PhoneNumber     string  `json:"phoneNumber" gorm:"size:32"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	LinkedPatientID *string   `json:"linkedPatientId"`
}

// ToResponse converts User to safe UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		LinkedPatientID: u.LinkedPatientID,
	}
}
