package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBKDF2Hasher_HashVerifyRoundTrip(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "admin123"},
		{name: "long password", password: "correct horse battery staple with extra length"},
		{name: "unicode password", password: "pässwörd-日本語"},
		{name: "empty password", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest := hasher.Hash(tt.password, salt)
			assert.NotEmpty(t, digest)
			assert.True(t, hasher.Verify(tt.password, salt, digest))
		})
	}
}

func TestPBKDF2Hasher_Deterministic(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	first := hasher.Hash("admin123", "fixed-salt")
	second := hasher.Hash("admin123", "fixed-salt")
	assert.Equal(t, first, second)
}

func TestPBKDF2Hasher_VerifyRejectsTamperedDigest(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)
	digest := hasher.Hash("admin123", salt)

	assert.False(t, hasher.Verify("admin123", salt, digest+"x"))
	assert.False(t, hasher.Verify("admin123", salt, ""))
	assert.False(t, hasher.Verify("wrong-password", salt, digest))
}

func TestPBKDF2Hasher_SaltChangesDigest(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	saltA, err := hasher.GenerateSalt()
	require.NoError(t, err)
	saltB, err := hasher.GenerateSalt()
	require.NoError(t, err)

	require.NotEqual(t, saltA, saltB)
	assert.NotEqual(t, hasher.Hash("admin123", saltA), hasher.Hash("admin123", saltB))
}

func TestPBKDF2Hasher_GenerateSaltUnique(t *testing.T) {
	hasher := NewPBKDF2Hasher()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		salt, err := hasher.GenerateSalt()
		require.NoError(t, err)
		// 32 bytes base64 without padding is 43 characters.
		assert.Len(t, salt, 43)

		_, dup := seen[salt]
		require.False(t, dup, "salt collision after %d draws", i)
		seen[salt] = struct{}{}
	}
}
