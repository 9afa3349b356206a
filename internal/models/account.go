package models

import "time"

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a wallet owner in the system.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
