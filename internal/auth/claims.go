package auth

import (
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Claims is the flattened view of a validated JWT used by the rest of the
// server. It keeps the underlying jwx token for callers that need a claim
// this type doesn't flatten, without forcing every caller to know jwx.
type Claims struct {
	Token     jwt.Token
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time

	// Catalog-specific scopes, extracted from private claims.
	Roles       []string
	Buckets     []string
	Permissions []string

	// Bundle is set when the token embeds a short-lived AWS credential
	// bundle directly (credential-exchange probe 1).
	Bundle *CredentialBundle
}

func claimsFromToken(tok jwt.Token) *Claims {
	c := &Claims{
		Token:     tok,
		Subject:   tok.Subject(),
		Issuer:    tok.Issuer(),
		Audience:  tok.Audience(),
		ExpiresAt: tok.Expiration(),
	}
	c.Roles = stringSliceClaim(tok, "roles")
	c.Buckets = stringSliceClaim(tok, "buckets")
	c.Permissions = stringSliceClaim(tok, "permissions")
	if bundle, ok := bundleClaim(tok); ok {
		c.Bundle = bundle
	}
	return c
}

func stringSliceClaim(tok jwt.Token, name string) []string {
	raw, ok := tok.Get(name)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func bundleClaim(tok jwt.Token) (*CredentialBundle, bool) {
	raw, ok := tok.Get("aws_credentials")
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	get := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	bundle := &CredentialBundle{
		AccessKeyID:     get("AccessKeyId"),
		SecretAccessKey: get("SecretAccessKey"),
		SessionToken:    get("SessionToken"),
	}
	if exp, ok := m["Expiration"].(string); ok {
		if t, err := time.Parse(time.RFC3339, exp); err == nil {
			bundle.Expiration = t
		}
	}
	if bundle.AccessKeyID == "" || bundle.SecretAccessKey == "" {
		return nil, false
	}
	return bundle, true
}
