package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, "secret", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$"), "unexpected hash prefix: %s", hash)
}

func TestBcryptHasher_HashIsSalted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash1, err := h.Hash("secret")
	require.NoError(t, err)
	hash2, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestBcryptHasher_Verify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct password", "secret", true},
		{"wrong password", "wrong", false},
		{"empty password", "", false},
		{"case differs", "Secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.password, hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestBcryptHasher_VerifyInvalidHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "not-a-hash", "$2a$10$abc"} {
		_, err := h.Verify("secret", hash)
		assert.Error(t, err, "hash %q", hash)
	}
}

func TestNewBcryptHasher_Cost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewBcryptHasher(100).cost)

	h := NewBcryptHasher(5)
	hash, err := h.Hash("secret")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 5, cost)
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	long := strings.Repeat("a", 100)
	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	// bytes past bcrypt's 72-byte window still matter
	ok, err = h.Verify(strings.Repeat("a", 99)+"b", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
