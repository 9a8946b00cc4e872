package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLegacyDigest(t *testing.T) {
	assert.Equal(t, "e99a18c428cb38d5f260853678922e03", LegacyDigest("abc123"))
	assert.Equal(t, LegacyDigest("abc123"), LegacyDigest("  abc123 "))
}

func TestPasswordHasher_Legacy(t *testing.T) {
	h := NewPasswordHasher(SchemeLegacyMD5, 0)

	hash, err := h.Hash(" abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "e99a18c428cb38d5f260853678922e03", hash)
	assert.True(t, h.Verify("abc123", hash))
	assert.False(t, h.Verify("abc124", hash))
	assert.False(t, h.NeedsUpgrade(hash))
}

func TestPasswordHasher_Bcrypt(t *testing.T) {
	h := NewPasswordHasher(SchemeBcrypt, bcrypt.MinCost)

	hash, err := h.Hash("abc123")
	require.NoError(t, err)
	assert.NotEqual(t, LegacyDigest("abc123"), hash)
	assert.True(t, h.Verify(" abc123", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.NeedsUpgrade(hash))

	again, err := h.Hash("abc123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "bcrypt hashes are salted")
}

func TestPasswordHasher_VerifiesLegacyAndFlagsUpgrade(t *testing.T) {
	h := NewPasswordHasher(SchemeBcrypt, bcrypt.MinCost)
	legacy := LegacyDigest("abc123")

	assert.True(t, h.Verify("abc123", legacy))
	assert.True(t, h.NeedsUpgrade(legacy))
}

func TestPasswordHasher_Rejects(t *testing.T) {
	h := NewPasswordHasher(SchemeBcrypt, bcrypt.MinCost)

	_, err := h.Hash("   ")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	assert.False(t, h.Verify("", LegacyDigest("")))
	assert.False(t, h.Verify("abc123", ""))
	assert.False(t, h.Verify("abc123", "not-a-hash"))
}

func TestNewPasswordHasher_Defaults(t *testing.T) {
	h := NewPasswordHasher("argon", 99)
	assert.Equal(t, SchemeBcrypt, h.Scheme())
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
