package login

import (
	"fmt"
	"log/slog"
	"strings"
)

// PasswordVersion represents the version of the password hashing algorithm
type PasswordVersion int

const (
	// PasswordV1 is the original bcrypt implementation
	PasswordV1 PasswordVersion = 1
	// PasswordV2 is the Argon2id implementation
	PasswordV2 PasswordVersion = 2

	// CurrentPasswordVersion is the version used for new passwords
	CurrentPasswordVersion = PasswordV2
)

// PasswordHasher defines the interface for password hashing implementations
type PasswordHasher interface {
	// Hash hashes a password
	Hash(password string) (string, error)

	// Verify checks if the provided password matches the stored hash
	Verify(password, hashedPassword string) (bool, error)
}

// PasswordHasherFactory creates password hashers based on version
type PasswordHasherFactory interface {
	// GetHasher returns a password hasher for the specified version
	GetHasher(version PasswordVersion) (PasswordHasher, error)

	// GetCurrentHasher returns the hasher used for new passwords
	GetCurrentHasher() PasswordHasher
}

// DefaultHasherFactory is the standard factory covering all known versions
type DefaultHasherFactory struct {
	hasherMap map[PasswordVersion]PasswordHasher
}

// NewDefaultHasherFactory creates a new DefaultHasherFactory
func NewDefaultHasherFactory() *DefaultHasherFactory {
	return &DefaultHasherFactory{
		hasherMap: map[PasswordVersion]PasswordHasher{
			PasswordV1: &BcryptHasher{},
			PasswordV2: NewArgon2Hasher(),
		},
	}
}

// GetHasher implements PasswordHasherFactory.GetHasher
func (f *DefaultHasherFactory) GetHasher(version PasswordVersion) (PasswordHasher, error) {
	hasher, ok := f.hasherMap[version]
	if !ok {
		return nil, fmt.Errorf("unsupported password version: %d", version)
	}
	return hasher, nil
}

// GetCurrentHasher implements PasswordHasherFactory.GetCurrentHasher
func (f *DefaultHasherFactory) GetCurrentHasher() PasswordHasher {
	return f.hasherMap[CurrentPasswordVersion]
}

// DetectVersion infers the hash version from the encoded blob so stored
// bcrypt hashes keep verifying after the default moved to Argon2
func DetectVersion(encodedHash string) PasswordVersion {
	if strings.HasPrefix(encodedHash, "$argon2id$") {
		return PasswordV2
	}
	return PasswordV1
}

// VerifyAny verifies a password against a hash of any known version.
// Malformed or unrecognized blobs fail closed: the result is false with no
// error surfaced to callers, so a probing client learns nothing from the
// shape of the stored value.
func VerifyAny(f PasswordHasherFactory, password, encodedHash string) bool {
	hasher, err := f.GetHasher(DetectVersion(encodedHash))
	if err != nil {
		slog.Debug("No hasher for stored password hash", "err", err)
		return false
	}
	ok, err := hasher.Verify(password, encodedHash)
	if err != nil {
		slog.Debug("Password verification failed", "err", err)
		return false
	}
	return ok
}
