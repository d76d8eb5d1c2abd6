// Package session builds a per-request catalog.RequestContext from the raw
// bearer token carried on ctx, the one piece of ambient state the transport
// layer is allowed to stash. Every tool calls Resolver.Resolve at the top of
// Execute instead of reaching into ctx for claims or credentials directly.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/auth"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
)

// Resolver turns a request's bearer token into a fully populated
// RequestContext: validated claims, resolved AWS credentials, and the
// catalog/registry endpoints the active deployment targets.
type Resolver struct {
	cfg       *config.Resolved
	validator *auth.Validator
	chain     *auth.CredentialChain
	cache     *auth.CredentialCache
}

func NewResolver(cfg *config.Resolved, validator *auth.Validator, chain *auth.CredentialChain, cache *auth.CredentialCache) *Resolver {
	return &Resolver{cfg: cfg, validator: validator, chain: chain, cache: cache}
}

func (r *Resolver) Resolve(ctx context.Context) (*catalog.RequestContext, error) {
	token, _ := auth.TokenFrom(ctx)

	if token == "" && r.cfg.Auth.RequireJWT {
		return nil, apperr.New(apperr.AuthInvalid, "no bearer token presented").
			WithFixHint("send an Authorization: Bearer <token> header")
	}

	var claims *auth.Claims
	if token != "" {
		var err error
		claims, err = r.validator.Validate(ctx, token)
		if err != nil {
			return nil, err
		}
	}

	var creds *auth.CredentialBundle
	if r.chain != nil {
		key := auth.CacheKey{Catalog: r.cfg.Catalog.URL, TokenHash: auth.TokenHash(token)}
		if claims != nil {
			key.Subject = claims.Subject
		}
		var err error
		creds, err = r.cache.GetOrResolve(ctx, key, func(ctx context.Context) (*auth.CredentialBundle, error) {
			return r.chain.Resolve(ctx, claims, token)
		})
		if err != nil {
			// A tokenless request outside require-jwt that no probe could
			// serve proceeds anonymously with no bundle; awsdata clients then
			// use the process's default AWS configuration.
			ae := apperr.As(err)
			if token != "" || ae == nil || ae.Kind != apperr.AuthNoCredentials || ae.Cause != nil {
				return nil, err
			}
			creds = nil
		}
	}

	return &catalog.RequestContext{
		RequestID:   newRequestID(),
		Deployment:  r.cfg.Deployment,
		Backend:     r.cfg.Backend,
		Claims:      claims,
		Credentials: creds,
		Token:       token,
		CatalogURL:  r.cfg.Catalog.URL,
		RegistryURL: r.cfg.Catalog.RegistryURL,
		ProxyURL:    r.cfg.Catalog.S3ProxyURL,
	}, nil
}

func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
