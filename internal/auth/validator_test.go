package auth

import (
	"context"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

func signToken(t *testing.T, secret []byte, kid string, subject string, expiry time.Duration) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(expiry)).
		Build()
	require.NoError(t, err)

	hdrs := jws.NewHeaders()
	if kid != "" {
		require.NoError(t, hdrs.Set(jws.KeyIDKey, kid))
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, secret, jws.WithProtectedHeaders(hdrs)))
	require.NoError(t, err)
	return string(signed)
}

func TestValidator_AcceptsWellFormedToken(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewValidator(EnvSecretSource{Value: string(secret)}, "", "", "")
	token := signToken(t, secret, "", "user-1", time.Hour)

	claims, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidator_RejectsBadSignature(t *testing.T) {
	v := NewValidator(EnvSecretSource{Value: "correct-secret"}, "", "", "")
	token := signToken(t, []byte("wrong-secret"), "", "user-1", time.Hour)

	_, err := v.Validate(context.Background(), token)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.AuthInvalid, ae.Kind)
}

func TestValidator_RejectsExpiredToken(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewValidator(EnvSecretSource{Value: string(secret)}, "", "", "")
	token := signToken(t, secret, "", "user-1", -time.Hour)

	_, err := v.Validate(context.Background(), token)
	require.Error(t, err)
}

func TestValidator_RejectsMismatchedKeyID(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewValidator(EnvSecretSource{Value: string(secret)}, "expected-kid", "", "")
	token := signToken(t, secret, "other-kid", "user-1", time.Hour)

	_, err := v.Validate(context.Background(), token)
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.AuthInvalid, ae.Kind)
}

func TestValidator_AcceptsMatchingKeyID(t *testing.T) {
	secret := []byte("shared-secret")
	v := NewValidator(EnvSecretSource{Value: string(secret)}, "key-1", "", "")
	token := signToken(t, secret, "key-1", "user-1", time.Hour)

	_, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
}

func TestRedact_NeverExposesFullToken(t *testing.T) {
	token := "abcdefghijklmnopqrstuvwxyz"
	redacted := Redact(token)
	assert.NotEqual(t, token, redacted)
	assert.Contains(t, redacted, "abcd")
	assert.Contains(t, redacted, "wxyz")
}
