package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	h := NewBcrypt()

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.False(t, strings.Contains(hash, "secret1"), "hash must not embed the plaintext")

	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
}

func TestHashesAreSalted(t *testing.T) {
	h := NewBcrypt()

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same input must hash to different values")
	assert.True(t, h.Verify("secret1", first))
	assert.True(t, h.Verify("secret1", second))
}

func TestVerifyMalformedHashReturnsFalse(t *testing.T) {
	h := NewBcrypt()

	for _, hash := range []string{"", "not-a-hash", "$2a$10$tooshort", "$argon2id$v=19$..."} {
		assert.False(t, h.Verify("secret1", hash), "hash=%q", hash)
	}
}
