package tokengenerator

import "errors"

// Verification errors. Callers branch with errors.Is; every parse failure
// maps onto exactly one of these so nothing leaks past the boundary untyped.
var (
	// ErrTokenExpired is returned when the token is past its expiry,
	// beyond the configured leeway
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidSignature is returned when the signature does not verify
	// against the configured key
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenMalformed is returned when the token cannot be parsed or is
	// missing required claims
	ErrTokenMalformed = errors.New("malformed token")
)
