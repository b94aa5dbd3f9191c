// Package authz decides whether a verified identity may perform an
// operation. The decision is a pure function of the role claim; unknown
// role values always deny.
package authz

import "errors"

// Role is the closed set of roles an access token may carry
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Common errors
var (
	// ErrForbidden is returned when the role does not satisfy the requirement
	ErrForbidden = errors.New("access forbidden")

	// ErrUnknownRole is returned when a transport-level role string is not
	// a member of the closed role set
	ErrUnknownRole = errors.New("unknown role")
)

// ParseRole maps a transport-level role string onto the closed enumeration.
// Unknown values are rejected rather than passed through.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrUnknownRole
	}
}

// Authorize reports whether a holder of role may perform an operation that
// requires required. Admin satisfies any requirement; user satisfies only
// user-level requirements. Anything unrecognized denies.
func Authorize(role, required Role) error {
	switch required {
	case RoleUser:
		if role == RoleUser || role == RoleAdmin {
			return nil
		}
	case RoleAdmin:
		if role == RoleAdmin {
			return nil
		}
	}
	return ErrForbidden
}
