package users

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	MFAEnabled   bool      `json:"mfaEnabled"`
	MFASecret    string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
