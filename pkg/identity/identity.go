package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role values accepted for an identity. Transport-level role strings are
// mapped onto this closed set at the boundary; anything else is rejected.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity represents a credential record in the domain model
type Identity struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateIdentityParams represents parameters for creating an identity
type CreateIdentityParams struct {
	Username     string
	PasswordHash string
	Role         string
}

// ValidRole reports whether s is a member of the closed role set
func ValidRole(s string) bool {
	return s == RoleUser || s == RoleAdmin
}
