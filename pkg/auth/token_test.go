package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloraworld/velora-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "velora-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	adminID := uuid.New()
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		AdminID: adminID,
		Email:   "ops@velora.test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID)
	assert.Equal(t, "ops@velora.test", claims.Email)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	_, err := MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}, now, AccessTokenPayload{AdminID: uuid.New()})
	assert.Error(t, err)

	_, err = MintAccessToken(cfg, now, AccessTokenPayload{})
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{AdminID: uuid.New()})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseAccessToken(other, token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{AdminID: uuid.New()})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.Error(t, err)
}
