package refreshtoken

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// A single mutex covers every operation, so Consume is atomic by
// construction the same way the Postgres transaction makes it atomic.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

// NewInMemoryRepository creates a new in-memory refresh token repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[uuid.UUID]Record),
	}
}

// Get looks up a record by token id
func (r *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrTokenNotFound
	}
	return rec, nil
}

// Create persists a new record
func (r *InMemoryRepository) Create(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.TokenID] = rec
	return nil
}

// Consume marks the record used and inserts its successor atomically
func (r *InMemoryRepository) Consume(ctx context.Context, id uuid.UUID, successor Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Used {
		return false, nil
	}
	rec.Used = true
	r.records[id] = rec
	r.records[successor.TokenID] = successor
	return true, nil
}

// DeleteChain removes the record and all descendants reachable through
// predecessor links
func (r *InMemoryRepository) DeleteChain(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doomed := map[uuid.UUID]bool{id: true}
	// Predecessor links point backwards, so walk forward until no new
	// descendant shows up.
	for {
		grew := false
		for _, rec := range r.records {
			if rec.PredecessorID.Valid && doomed[rec.PredecessorID.UUID] && !doomed[rec.TokenID] {
				doomed[rec.TokenID] = true
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	for tid := range doomed {
		delete(r.records, tid)
	}
	return nil
}

// DeleteBySubject removes every record belonging to the subject
func (r *InMemoryRepository) DeleteBySubject(ctx context.Context, subject uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for tid, rec := range r.records {
		if rec.Subject == subject {
			delete(r.records, tid)
		}
	}
	return nil
}
