package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleApplicant Role = "APPLICANT"
	RoleRecruiter Role = "RECRUITER"
)

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleApplicant, RoleRecruiter:
		return r, true
	default:
		return "", false
	}
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
