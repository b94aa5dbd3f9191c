package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := NewInMemoryRepository()
		ident, err := repo.Create(ctx, CreateIdentityParams{
			Username:     "alice",
			PasswordHash: "hash",
			Role:         RoleUser,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, ident.ID)
		assert.False(t, ident.Disabled)

		got, err := repo.Get(ctx, ident.ID)
		require.NoError(t, err)
		assert.Equal(t, ident, got)

		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, ident, byName)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		repo := NewInMemoryRepository()
		_, err := repo.Create(ctx, CreateIdentityParams{Username: "alice", PasswordHash: "hash", Role: RoleUser})
		require.NoError(t, err)

		_, err = repo.Create(ctx, CreateIdentityParams{Username: "alice", PasswordHash: "other", Role: RoleUser})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := NewInMemoryRepository()
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrIdentityNotFound)

		_, err = repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrIdentityNotFound)

		assert.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "hash"), ErrIdentityNotFound)
		assert.ErrorIs(t, repo.Disable(ctx, uuid.New()), ErrIdentityNotFound)
	})

	t.Run("Updates", func(t *testing.T) {
		repo := NewInMemoryRepository()
		ident, err := repo.Create(ctx, CreateIdentityParams{Username: "alice", PasswordHash: "hash", Role: RoleUser})
		require.NoError(t, err)

		require.NoError(t, repo.UpdatePassword(ctx, ident.ID, "newhash"))
		require.NoError(t, repo.UpdateRole(ctx, ident.ID, RoleAdmin))
		require.NoError(t, repo.Disable(ctx, ident.ID))

		got, err := repo.Get(ctx, ident.ID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)
		assert.Equal(t, RoleAdmin, got.Role)
		assert.True(t, got.Disabled)
	})
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
