package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washandgo/engagement-api/internal/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		Enabled:  true,
		Secret:   "test-secret-at-least-32-characters-long",
		Issuer:   "engagement-api-test",
		TokenTTL: 3600,
	}
}

func TestMintAndValidateRoundTrip(t *testing.T) {
	v := NewJWTValidator(testAuthConfig())

	token, err := v.MintToken("Jean Martin", "jean@washandgo.fr", []string{RoleOperator})
	require.NoError(t, err)

	userCtx, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, userCtx.UserID)
	assert.Equal(t, "Jean Martin", userCtx.DisplayName)
	assert.Equal(t, "jean@washandgo.fr", userCtx.Email)
	assert.True(t, userCtx.HasRole(RoleOperator))
	assert.False(t, userCtx.IsAdmin())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	minter := NewJWTValidator(testAuthConfig())
	token, err := minter.MintToken("Jean Martin", "", nil)
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.Secret = "a-different-secret-also-32-characters!!"
	_, err = NewJWTValidator(otherCfg).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Issuer = "someone-else"
	minter := NewJWTValidator(cfg)
	token, err := minter.MintToken("Jean Martin", "", nil)
	require.NoError(t, err)

	_, err = NewJWTValidator(testAuthConfig()).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = -60
	minter := NewJWTValidator(cfg)
	token, err := minter.MintToken("Jean Martin", "", nil)
	require.NoError(t, err)

	_, err = NewJWTValidator(testAuthConfig()).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestHasAnyRole(t *testing.T) {
	u := &UserContext{Roles: []string{RoleAdmin}}
	assert.True(t, u.HasAnyRole(RoleOperator, RoleAdmin))
	assert.False(t, u.HasAnyRole(RoleOperator))
	assert.True(t, u.IsAdmin())
}
