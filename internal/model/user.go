package model

import (
	"fmt"
	"time"
)

// User represents an authentication user. Users are the people operating
// the system; they are distinct from the employees assets are assigned to.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

var roleLevels = map[string]int{
	RoleAdmin:   3,
	RoleManager: 2,
	RoleUser:    1,
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles fail closed.
func RoleAtLeast(role, minimum string) bool {
	level, ok := roleLevels[role]
	if !ok {
		return false
	}
	required, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return level >= required
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a plaintext password against the local policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
