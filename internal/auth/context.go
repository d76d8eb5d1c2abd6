package auth

import "context"

// contextKey avoids collisions with context keys from other packages.
type contextKey int

const tokenKey contextKey = iota

// WithToken attaches the raw bearer token to ctx. Only the token and
// cancellation travel via context.Context; everything else (claims,
// credentials, catalog URLs) is carried explicitly on RequestContext.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom extracts the bearer token previously attached with WithToken.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
