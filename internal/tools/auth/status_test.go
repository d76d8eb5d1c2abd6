package auth_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	authtools "github.com/quiltdata/quiltmcp/internal/tools/auth"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestAuthStatus_ReturnsBackendStatus(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendGraphQL)
	ops := &toolkittest.Ops{AuthStatusResult: &catalog.AuthStatus{LoggedIn: true, Subject: "user@example.com", Catalog: "https://catalog.example.com"}}
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: rc},
		Factory:  &toolkittest.Factory{Ops: ops},
	}
	tool := authtools.NewAuthStatus(deps)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got catalog.AuthStatus
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.True(t, got.LoggedIn)
	assert.Equal(t, "user@example.com", got.Subject)
}

func TestAuthStatus_PropagatesResolverError(t *testing.T) {
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{Err: apperr.New(apperr.AuthInvalid, "bad token")},
	}
	tool := authtools.NewAuthStatus(deps)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.AuthInvalid))
}

func TestCatalogStatus_ReportsResolvedConfigWithoutTouchingBackend(t *testing.T) {
	cfg := &config.Resolved{
		Deployment: config.DeploymentLocal,
		Backend:    config.BackendGraphQL,
		Transport:  config.TransportStdio,
	}
	cfg.Catalog.URL = "https://catalog.example.com"
	cfg.Catalog.RegistryURL = "s3://registry"
	cfg.Auth.RequireJWT = true

	tool := authtools.NewCatalogStatus(cfg)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Backend     string `json:"backend"`
		Transport   string `json:"transport"`
		CatalogURL  string `json:"catalog_url"`
		RegistryURL string `json:"registry_url"`
		RequireJWT  bool   `json:"require_jwt"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, string(config.BackendGraphQL), got.Backend)
	assert.Equal(t, "https://catalog.example.com", got.CatalogURL)
	assert.True(t, got.RequireJWT)
}
