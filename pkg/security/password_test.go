package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloraworld/velora-backend/pkg/config"
)

func fastArgonConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := fastArgonConfig()

	encoded, err := HashPassword("correct horse battery staple", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("", fastArgonConfig())
	assert.Error(t, err)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "$argon2id$nope")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = VerifyPassword("anything", "$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	cfg := fastArgonConfig()

	first, err := HashPassword("same password", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same password", cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
