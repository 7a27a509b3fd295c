package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleKTV   Role = "ktv"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleKTV
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Tasks counts analysis work attributed to a user.
type Tasks struct {
	Triggered int
	Completed int
}

// User is an operator account (admin or KTV).
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Status       Status
	Tasks        Tasks
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Validate() error {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("email is invalid")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("role %q is not supported", u.Role)
	}
	if !u.Status.Valid() {
		return fmt.Errorf("status %q is not supported", u.Status)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

func (p Principal) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
