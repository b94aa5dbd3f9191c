package refreshtoken

import "errors"

// Common errors
var (
	// ErrTokenNotFound is returned when no record matches the presented
	// token id, or the record is expired. Malformed tokens map here too so
	// a probing client cannot distinguish the cases.
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrInvalidSecret is returned when the presented secret does not match
	// the stored hash
	ErrInvalidSecret = errors.New("refresh token secret mismatch")

	// ErrReuseDetected is returned when an already-consumed token is
	// redeemed again. By the time the caller sees this the whole rotation
	// chain has been revoked.
	ErrReuseDetected = errors.New("refresh token reuse detected")
)
