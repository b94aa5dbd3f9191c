package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]Identity
}

// NewInMemoryRepository creates a new in-memory identity repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		identities: make(map[uuid.UUID]Identity),
	}
}

// Get retrieves an identity by ID
func (r *InMemoryRepository) Get(ctx context.Context, id uuid.UUID) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.identities[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return ident, nil
}

// GetByUsername retrieves an identity by username
func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ident := range r.identities {
		if ident.Username == username {
			return ident, nil
		}
	}
	return Identity{}, ErrIdentityNotFound
}

// Create creates a new identity
func (r *InMemoryRepository) Create(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ident := range r.identities {
		if ident.Username == params.Username {
			return Identity{}, ErrUsernameTaken
		}
	}

	now := time.Now().UTC()
	ident := Identity{
		ID:           uuid.New(),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.identities[ident.ID] = ident
	return ident, nil
}

// UpdatePassword replaces the stored password hash
func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(ident *Identity) {
		ident.PasswordHash = passwordHash
	})
}

// UpdateRole replaces the stored role
func (r *InMemoryRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return r.update(id, func(ident *Identity) {
		ident.Role = role
	})
}

// Disable soft-disables an identity
func (r *InMemoryRepository) Disable(ctx context.Context, id uuid.UUID) error {
	return r.update(id, func(ident *Identity) {
		ident.Disabled = true
	})
}

func (r *InMemoryRepository) update(id uuid.UUID, fn func(*Identity)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.identities[id]
	if !ok {
		return ErrIdentityNotFound
	}
	fn(&ident)
	ident.UpdatedAt = time.Now().UTC()
	r.identities[id] = ident
	return nil
}
