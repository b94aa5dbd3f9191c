package identity

import "errors"

// Common errors
var (
	// ErrIdentityNotFound is returned when no identity matches the lookup
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrUsernameTaken is returned when attempting to create an identity
	// with a username that already exists
	ErrUsernameTaken = errors.New("username already taken")
)
