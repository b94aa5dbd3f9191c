package login

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidCredentials covers unknown username, wrong password and
	// disabled identity alike. Collapsing them is deliberate: the caller
	// must not be able to enumerate usernames from the failure kind.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable marks infrastructure failures talking to the
	// credential store or token registry. It is retryable and is never
	// conflated with an authentication decision.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrPasswordComplexity is returned when a password does not meet complexity requirements
type ErrPasswordComplexity struct {
	Details string
}

func (e ErrPasswordComplexity) Error() string {
	return fmt.Sprintf("password does not meet complexity requirements: %s", e.Details)
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
