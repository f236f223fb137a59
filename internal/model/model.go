package model

import (
	"errors"
	"time"

	"github.com/Mann-lohchab/Portal/internal/session"
)

var ErrNotFound = errors.New("principal not found")

// Role is the closed set of principal kinds. Every role-dependent decision
// switches exhaustively over these three values.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return Role(raw), true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}

// Principal is one account record in a role namespace. ExternalID is the
// human-facing identifier (admin ID, teacher ID, student number) and is
// unique within the role's table; ID is the internal record identifier.
type Principal struct {
	ID           string
	ExternalID   string
	Role         Role
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Session      session.State
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the principal representation returned to clients. It never
// carries the password hash or server-side session timestamps.
type Summary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

func (p Principal) Summary() Summary {
	return Summary{
		ID:        p.ExternalID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Role:      p.Role,
	}
}

// DisplayName is used for the login greeting.
func (p Principal) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
