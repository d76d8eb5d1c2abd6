package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

func TestCredentialChain_EmbeddedBundleWins(t *testing.T) {
	chain := &CredentialChain{probes: []Probe{EmbeddedBundleProbe(), func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) {
		t.Fatal("should never reach the second probe when the bundle is embedded")
		return nil, Err, nil
	}}}

	claims := &Claims{Bundle: &CredentialBundle{AccessKeyID: "embedded"}}
	bundle, err := chain.Resolve(context.Background(), claims, "tok")
	require.NoError(t, err)
	assert.Equal(t, "embedded", bundle.AccessKeyID)
}

func TestCredentialChain_FallsThroughToNextProbeOnSkip(t *testing.T) {
	chain := &CredentialChain{probes: []Probe{
		func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) { return nil, Skip, nil },
		func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) {
			return &CredentialBundle{AccessKeyID: "second"}, OK, nil
		},
	}}
	bundle, err := chain.Resolve(context.Background(), &Claims{}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "second", bundle.AccessKeyID)
}

func TestCredentialChain_ErrAbortsImmediately(t *testing.T) {
	called := false
	chain := &CredentialChain{probes: []Probe{
		func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) {
			return nil, Err, apperr.New(apperr.UpstreamUnavailable, "boom")
		},
		func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) {
			called = true
			return &CredentialBundle{}, OK, nil
		},
	}}
	_, err := chain.Resolve(context.Background(), &Claims{}, "tok")
	require.Error(t, err)
	assert.False(t, called, "an Err outcome must abort the chain, not fall through")
}

func TestCredentialChain_ExhaustedChainYieldsAuthNoCredentials(t *testing.T) {
	chain := &CredentialChain{probes: []Probe{
		func(ctx context.Context, c *Claims, tok string) (*CredentialBundle, Outcome, error) { return nil, Skip, nil },
	}}
	_, err := chain.Resolve(context.Background(), &Claims{}, "tok")
	require.Error(t, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.AuthNoCredentials, ae.Kind)
}

func TestCatalogExchangeProbe_DecodesBundle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{
			"AccessKeyId":     "AKIA",
			"SecretAccessKey": "secret",
			"SessionToken":    "session",
			"Expiration":      "2099-01-01T00:00:00Z",
		})
	}))
	defer srv.Close()

	probe := CatalogExchangeProbe(srv.URL, srv.Client())
	bundle, outcome, err := probe(context.Background(), &Claims{}, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, OK, outcome)
	assert.Equal(t, "AKIA", bundle.AccessKeyID)
}

func TestCatalogExchangeProbe_SkipsWithoutToken(t *testing.T) {
	probe := CatalogExchangeProbe("https://cat", http.DefaultClient)
	_, outcome, err := probe(context.Background(), &Claims{}, "")
	require.NoError(t, err)
	assert.Equal(t, Skip, outcome)
}

func TestNewCredentialChain_RequireJWTOmitsAmbientProbe(t *testing.T) {
	chain := NewCredentialChain("https://cat", http.DefaultClient, true, "")
	assert.Len(t, chain.probes, 2, "require-jwt must not fall through to any ambient-identity probe")
}

func TestNewCredentialChain_WithoutRequireJWTAddsOneMoreProbe(t *testing.T) {
	withoutRole := NewCredentialChain("https://cat", http.DefaultClient, false, "")
	withRole := NewCredentialChain("https://cat", http.DefaultClient, false, "arn:aws:iam::123456789012:role/quilt-mcp")
	assert.Len(t, withoutRole.probes, 3)
	assert.Len(t, withRole.probes, 3, "an assume-role ARN swaps the ambient probe, it doesn't add a fourth")
}
