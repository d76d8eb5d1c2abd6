package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies a cached credential bundle: catalog URL, JWT subject,
// and a hash of the raw token (never the token itself, so logs and cache
// dumps never carry the secret).
type CacheKey struct {
	Catalog   string
	Subject   string
	TokenHash string
}

func (k CacheKey) String() string {
	return k.Catalog + "|" + k.Subject + "|" + k.TokenHash
}

// TokenHash returns a truncated SHA-256 digest of a token, suitable for
// cache keys and diagnostics that must never carry the raw JWT.
func TokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:16]
}

// CredentialCache caches AWSCredentialBundle values per CacheKey with a
// single-in-flight-fetch guarantee: concurrent requests for the same key
// collapse into one underlying Resolve call.
type CredentialCache struct {
	entries sync.Map // CacheKey -> *CredentialBundle
	group   singleflight.Group
	now     func() time.Time
}

// NewCredentialCache builds an empty cache.
func NewCredentialCache() *CredentialCache {
	return &CredentialCache{now: time.Now}
}

// Get returns a cached, still-valid bundle for key if one exists.
func (c *CredentialCache) Get(key CacheKey) (*CredentialBundle, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	bundle := v.(*CredentialBundle)
	if !bundle.Valid(c.now()) {
		c.entries.Delete(key)
		return nil, false
	}
	return bundle, true
}

// GetOrResolve returns the cached bundle for key, or calls resolve exactly
// once across any concurrent callers sharing the same key and caches the
// result.
func (c *CredentialCache) GetOrResolve(ctx context.Context, key CacheKey, resolve func(context.Context) (*CredentialBundle, error)) (*CredentialBundle, error) {
	if bundle, ok := c.Get(key); ok {
		return bundle, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		// Re-check under the singleflight lock: another caller may have
		// just populated the entry while we were waiting to enter Do.
		if bundle, ok := c.Get(key); ok {
			return bundle, nil
		}
		bundle, err := resolve(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, bundle)
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CredentialBundle), nil
}

// Evict removes expired entries; intended to be run periodically by a
// scheduler job rather than on every request.
func (c *CredentialCache) Evict() int {
	removed := 0
	now := c.now()
	c.entries.Range(func(k, v any) bool {
		bundle := v.(*CredentialBundle)
		if !bundle.Valid(now) {
			c.entries.Delete(k)
			removed++
		}
		return true
	})
	return removed
}
