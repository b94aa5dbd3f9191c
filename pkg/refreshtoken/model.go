package refreshtoken

import (
	"time"

	"github.com/google/uuid"
)

// Record represents a refresh token row in persistent storage. The secret
// itself is never stored, only its SHA-256 digest.
type Record struct {
	TokenID       uuid.UUID
	Subject       uuid.UUID
	SecretHash    []byte
	Used          bool
	PredecessorID uuid.NullUUID
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Token is what gets handed to the client. Raw is the wire form
// "<token_id>.<secret>"; it exists only in memory at issuance time and is
// never reconstructable from the store.
type Token struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Raw       string
	ExpiresAt time.Time
}
