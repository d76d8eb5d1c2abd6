// Package search implements the unified search_query tool, a thin wire
// adapter over internal/search's classification/fan-out/merge engine.
package search

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	searchengine "github.com/quiltdata/quiltmcp/internal/search"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

type Query struct {
	deps *toolkit.Deps
}

func NewQuery(deps *toolkit.Deps) *Query { return &Query{deps: deps} }

func (t *Query) Name() string        { return "search_query" }
func (t *Query) Description() string { return "Search packages and objects across backends. Classifies the query (text, file-type, metadata predicate, or analytical) and fans out to the appropriate primary/fallback backends." }
func (t *Query) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "Search text"},
    "scope": {"type": "string", "enum": ["bucket", "package", "global"], "default": "global"},
    "bucket": {"type": "string", "description": "Single-bucket filter"},
    "buckets": {"type": "array", "items": {"type": "string"}, "description": "Multi-bucket filter; wins over bucket when both given"},
    "type": {"type": "string", "enum": ["packages", "objects", "both"], "default": "both"},
    "limit": {"type": "integer", "default": 20}
  },
  "required": ["query"],
  "additionalProperties": false
}`)
}

type queryParams struct {
	Query   string   `json:"query"`
	Scope   string   `json:"scope,omitempty"`
	Bucket  string   `json:"bucket,omitempty"`
	Buckets []string `json:"buckets,omitempty"`
	Type    string   `json:"type,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func (t *Query) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p queryParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Query == "" {
		return toolkit.ValidationError("query is required"), nil
	}

	scope := catalog.SearchScope(p.Scope)
	switch scope {
	case "":
		scope = catalog.ScopeGlobal
	case catalog.ScopeBucket, catalog.ScopePackage, catalog.ScopeGlobal:
	default:
		return toolkit.ValidationError("scope must be one of bucket, package, global"), nil
	}

	searchType := catalog.SearchType(p.Type)
	switch searchType {
	case "":
		searchType = catalog.SearchTypeBoth
	case catalog.SearchTypePackages, catalog.SearchTypeObjects, catalog.SearchTypeBoth:
	default:
		return toolkit.ValidationError("type must be one of packages, objects, both"), nil
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	q := catalog.SearchQuery{
		Text:    p.Query,
		Scope:   scope,
		Buckets: searchengine.NormalizeBuckets(p.Bucket, p.Buckets),
		Type:    searchType,
		Limit:   limit,
	}

	result, opErr := t.deps.Search.Execute(ctx, rc, q)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{
		"hits":          result.Hits,
		"count":         len(result.Hits),
		"class":         string(result.Class),
		"fallback_used": result.FallbackUsed,
	})
}
