package refreshtoken

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for refresh-token persistence.
//
// Consume is the one operation with a hard atomicity requirement: marking a
// record used and inserting its successor must be a single transaction with
// a compare-and-set on the used flag, otherwise two concurrent redemptions
// of the same token could both succeed and slip past reuse detection.
type Repository interface {
	// Get looks up a record by token id. Returns ErrTokenNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (Record, error)

	// Create persists a new record
	Create(ctx context.Context, rec Record) error

	// Consume atomically flips used from false to true on the record with
	// the given id and persists successor in the same transaction. Returns
	// false when the record was already used (or gone), in which case the
	// successor is not persisted.
	Consume(ctx context.Context, id uuid.UUID, successor Record) (bool, error)

	// DeleteChain removes the record with the given id and every descendant
	// reachable through predecessor links
	DeleteChain(ctx context.Context, id uuid.UUID) error

	// DeleteBySubject removes every record belonging to the subject
	DeleteBySubject(ctx context.Context, subject uuid.UUID) error
}
