// Package auth implements the auth_status and catalog_status tools: the
// only two tool actions that report on the server's own configuration and
// credential state rather than proxying a catalog operation.
package auth

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// AuthStatus calls QuiltOps.AuthStatus for the caller's resolved backend,
// confirming the credential chain actually produced usable credentials.
type AuthStatus struct {
	deps *toolkit.Deps
}

func NewAuthStatus(deps *toolkit.Deps) *AuthStatus { return &AuthStatus{deps: deps} }

func (t *AuthStatus) Name() string        { return "auth_status" }
func (t *AuthStatus) Description() string { return "Report whether the caller is authenticated and which catalog/registry their credentials resolve against." }
func (t *AuthStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *AuthStatus) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	status, opErr := ops.AuthStatus(ctx, rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(status)
}

// CatalogStatus reports the server's resolved deployment/backend/endpoint
// configuration without touching any backend — useful for client-side
// debugging of which mode a server instance is running in.
type CatalogStatus struct {
	cfg *config.Resolved
}

func NewCatalogStatus(cfg *config.Resolved) *CatalogStatus { return &CatalogStatus{cfg: cfg} }

func (t *CatalogStatus) Name() string        { return "catalog_status" }
func (t *CatalogStatus) Description() string { return "Report the server's resolved deployment mode, backend, and catalog/registry endpoints. Never touches a backend." }
func (t *CatalogStatus) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *CatalogStatus) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	return mcp.JSONResult(map[string]any{
		"deployment":   string(t.cfg.Deployment),
		"backend":      string(t.cfg.Backend),
		"transport":    string(t.cfg.Transport),
		"catalog_url":  t.cfg.Catalog.URL,
		"registry_url": t.cfg.Catalog.RegistryURL,
		"require_jwt":  t.cfg.Auth.RequireJWT,
	})
}
