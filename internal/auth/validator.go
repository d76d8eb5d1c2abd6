// Package auth implements the JWT validation, credential-exchange, and
// credential-cache parts of the auth plane (C3).
package auth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

// SecretSource resolves the shared HS256 secret used to validate tokens.
// Concrete implementations read from an environment variable or an AWS SSM
// parameter; param-store wins when both are configured (see NewSecretSource).
type SecretSource interface {
	Resolve(ctx context.Context) (string, error)
}

// Validator checks a bearer token's signature, expiry, key id, and
// (optionally) issuer/audience, grounded on evalgo's JWTService shape but
// extended with kid pinning and a pluggable secret source.
type Validator struct {
	secrets  SecretSource
	kid      string
	issuer   string
	audience string
}

// NewValidator builds a Validator. kid, issuer, and audience are optional;
// an empty kid skips key-id pinning, empty issuer/audience skip those checks.
func NewValidator(secrets SecretSource, kid, issuer, audience string) *Validator {
	return &Validator{secrets: secrets, kid: kid, issuer: issuer, audience: audience}
}

// Validate parses and verifies tokenString, returning the flattened claims
// on success. Failures are always *apperr.Error with Kind AuthInvalid so
// callers never need to re-classify a jwx error.
func (v *Validator) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	if v.kid != "" {
		if err := v.checkKeyID(tokenString); err != nil {
			return nil, err
		}
	}

	secret, err := v.secrets.Resolve(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.AuthInvalid, "resolving signing secret", err)
	}

	opts := []jwt.ParseOption{jwt.WithKey(jwa.HS256, []byte(secret))}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	tok, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.AuthInvalid, "token signature or claims invalid", err)
	}

	return claimsFromToken(tok), nil
}

// checkKeyID rejects a token whose JWS "kid" header does not match the
// configured key id, before the signature is even checked against a secret.
func (v *Validator) checkKeyID(tokenString string) error {
	msg, err := jws.Parse([]byte(tokenString))
	if err != nil {
		return apperr.Wrap(apperr.AuthInvalid, "malformed JWS", err)
	}
	sigs := msg.Signatures()
	if len(sigs) == 0 {
		return apperr.New(apperr.AuthInvalid, "token carries no signature")
	}
	kid := sigs[0].ProtectedHeaders().KeyID()
	if kid != v.kid {
		return apperr.New(apperr.AuthInvalid, fmt.Sprintf("unknown key id %q", kid))
	}
	return nil
}

// Redact returns a diagnostic-safe rendering of a token: never the full
// JWT, only its first and last four characters.
func Redact(tokenString string) string {
	if len(tokenString) <= 8 {
		return "****"
	}
	return tokenString[:4] + "..." + tokenString[len(tokenString)-4:]
}
