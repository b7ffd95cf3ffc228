package token

import (
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drifty/config"
	pkgerrors "drifty/pkg/errors"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.Cfg.JWTSecret
	config.Cfg.JWTSecret = secret
	t.Cleanup(func() { config.Cfg.JWTSecret = prev })
}

func TestIdentityTokenRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	signed, err := GenerateIdentityToken("u_abc123", "+919876543210")
	require.NoError(t, err)

	uid, phone, err := ValidateIdentityToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u_abc123", uid)
	assert.Equal(t, "+919876543210", phone)
}

func TestIdentityTokenWrongSecretRejected(t *testing.T) {
	withSecret(t, "test-secret")

	signed, err := GenerateIdentityToken("u_abc123", "+919876543210")
	require.NoError(t, err)

	config.Cfg.JWTSecret = "different-secret"
	_, _, err = ValidateIdentityToken(signed)
	assert.Error(t, err)
}

func TestIdentityTokenGarbageRejected(t *testing.T) {
	withSecret(t, "test-secret")

	_, _, err := ValidateIdentityToken("not.a.token")
	assert.Error(t, err)
}

func TestIdentityTokenAlgorithmPinned(t *testing.T) {
	withSecret(t, "test-secret")

	// A token signed with none must not validate.
	unsigned := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
		IdentityKey: "u_abc123",
		PhoneKey:    "+919876543210",
	})
	raw, err := unsigned.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = ValidateIdentityToken(raw)
	assert.ErrorIs(t, err, pkgerrors.ErrUnexpectedSigningMethod)
}
