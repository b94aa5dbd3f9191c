package login

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher(t *testing.T) {
	hasher := NewArgon2Hasher()

	t.Run("HashAndVerify", func(t *testing.T) {
		hash, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

		ok, err := hasher.Verify("P@ssw0rd1", hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = hasher.Verify("wrong", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SaltedHashesDiffer", func(t *testing.T) {
		first, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)
		second, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("MalformedHash", func(t *testing.T) {
		_, err := hasher.Verify("P@ssw0rd1", "$argon2id$not-a-hash")
		assert.Error(t, err)
	})
}

func TestBcryptHasher(t *testing.T) {
	hasher := &BcryptHasher{}

	hash, err := hasher.Hash("P@ssw0rd1")
	require.NoError(t, err)

	ok, err := hasher.Verify("P@ssw0rd1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDetectVersion(t *testing.T) {
	assert.Equal(t, PasswordV2, DetectVersion("$argon2id$v=19$m=65536,t=3,p=2$abc$def"))
	assert.Equal(t, PasswordV1, DetectVersion("$2a$10$abcdefghijklmnopqrstuv"))
	assert.Equal(t, PasswordV1, DetectVersion(""))
}

func TestVerifyAny(t *testing.T) {
	factory := NewDefaultHasherFactory()

	t.Run("CurrentVersion", func(t *testing.T) {
		hash, err := factory.GetCurrentHasher().Hash("P@ssw0rd1")
		require.NoError(t, err)

		assert.True(t, VerifyAny(factory, "P@ssw0rd1", hash))
		assert.False(t, VerifyAny(factory, "wrong", hash))
	})

	t.Run("LegacyBcryptStillVerifies", func(t *testing.T) {
		legacy, err := factory.GetHasher(PasswordV1)
		require.NoError(t, err)
		hash, err := legacy.Hash("P@ssw0rd1")
		require.NoError(t, err)

		assert.True(t, VerifyAny(factory, "P@ssw0rd1", hash))
	})

	t.Run("GarbageFailsClosed", func(t *testing.T) {
		assert.False(t, VerifyAny(factory, "P@ssw0rd1", "not a hash at all"))
		assert.False(t, VerifyAny(factory, "P@ssw0rd1", ""))
	})
}

func TestUnsupportedVersion(t *testing.T) {
	factory := NewDefaultHasherFactory()
	_, err := factory.GetHasher(PasswordVersion(99))
	assert.Error(t, err)
}
