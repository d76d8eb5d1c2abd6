// Package packaging implements the packaging_* tool module: package and
// revision discovery/browsing, routed through catalog.QuiltOps so both the
// direct and graphql backends serve identical semantics.
package packaging

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// List lists package names in a registry, optionally filtered by prefix.
type List struct {
	deps *toolkit.Deps
}

func NewList(deps *toolkit.Deps) *List { return &List{deps: deps} }

func (t *List) Name() string        { return "packaging_list" }
func (t *List) Description() string { return "List package names in a registry bucket, optionally filtered by name prefix." }
func (t *List) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string", "description": "Registry bucket name"},
    "prefix": {"type": "string"},
    "limit": {"type": "integer", "default": 100}
  },
  "required": ["registry"],
  "additionalProperties": false
}`)
}

type listParams struct {
	Registry string `json:"registry"`
	Prefix   string `json:"prefix,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (t *List) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p listParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	names, opErr := ops.PackageList(ctx, rc, p.Registry, p.Prefix, limit)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"packages": names, "count": len(names)})
}

// VersionsList lists a package's revision history.
type VersionsList struct {
	deps *toolkit.Deps
}

func NewVersionsList(deps *toolkit.Deps) *VersionsList { return &VersionsList{deps: deps} }

func (t *VersionsList) Name() string        { return "packaging_versions_list" }
func (t *VersionsList) Description() string { return "List a package's revision history: top_hash, timestamp, message, and tags pointing at each revision." }
func (t *VersionsList) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"}
  },
  "required": ["registry", "name"],
  "additionalProperties": false
}`)
}

type nameParams struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
}

func (t *VersionsList) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p nameParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	versions, opErr := ops.PackageVersionsList(ctx, rc, p.Registry, p.Name)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"versions": versions, "count": len(versions)})
}

// Manifest fetches the full committed manifest for a package revision.
type Manifest struct {
	deps *toolkit.Deps
}

func NewManifest(deps *toolkit.Deps) *Manifest { return &Manifest{deps: deps} }

func (t *Manifest) Name() string        { return "packaging_manifest" }
func (t *Manifest) Description() string { return "Fetch the full manifest (all entries) for a package at a top_hash or tag." }
func (t *Manifest) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "top_hash": {"type": "string"},
    "tag": {"type": "string", "default": "latest"}
  },
  "required": ["registry", "name"],
  "additionalProperties": false
}`)
}

type refParams struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	TopHash  string `json:"top_hash,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (p refParams) toRef() catalog.PackageRef {
	return catalog.PackageRef{Registry: p.Registry, Name: p.Name, TopHash: p.TopHash, Tag: p.Tag}
}

func (t *Manifest) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p refParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	m, opErr := ops.PackageManifest(ctx, rc, p.toRef())
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(m)
}

// Browse lists manifest entries under a logical path prefix, without
// fetching the whole manifest when the caller only needs one subtree.
type Browse struct {
	deps *toolkit.Deps
}

func NewBrowse(deps *toolkit.Deps) *Browse { return &Browse{deps: deps} }

func (t *Browse) Name() string        { return "packaging_browse" }
func (t *Browse) Description() string { return "List manifest entries under a logical path prefix within a package revision." }
func (t *Browse) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "top_hash": {"type": "string"},
    "tag": {"type": "string", "default": "latest"},
    "path": {"type": "string", "description": "Logical path prefix filter"}
  },
  "required": ["registry", "name"],
  "additionalProperties": false
}`)
}

type browseParams struct {
	refParams
	Path string `json:"path,omitempty"`
}

func (t *Browse) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p browseParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	m, opErr := ops.PackageBrowse(ctx, rc, p.toRef(), p.Path)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(m)
}
