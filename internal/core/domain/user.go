package domain

import (
	"strings"
	"time"
)

// Canonical role names.
const (
	RoleAdmin      = "admin"
	RoleTeamLeader = "team-leader"
	RoleWorker     = "worker"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// FSUniquifier is an opaque per-user secret mixed into signed token
	// claims. Rotating it invalidates every outstanding token for the user.
	FSUniquifier string
	Active       bool
	Roles        []string
	CreatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// HasRole reports whether the user carries the given role name.
func (u User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	clean := u
	clean.PasswordHash = ""
	clean.FSUniquifier = ""
	return clean
}

// Role mirrors the persisted representation in the roles table.
type Role struct {
	ID          string
	Name        string
	Label       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsDeleted reports whether the role has been soft-deleted.
func (r Role) IsDeleted() bool {
	return r.DeletedAt != nil
}

// RoleNameFromLabel derives the slug-form role name from a human label.
func RoleNameFromLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
}
